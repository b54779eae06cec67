package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kmapteam/knowledgemap/internal/app/controllers"
	"github.com/kmapteam/knowledgemap/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	branchController *controllers.BranchController,
	postController *controllers.PostController,
	subscriptionController *controllers.SubscriptionController,
	likeController *controllers.LikeController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/logout", authMiddleware.JWTAuth(), authController.Logout)
	}

	// --- Optionally authenticated routes ---
	// Visibility depends on who is asking; anonymous requests see the
	// public slice and a bearer token widens it.
	public := v1.Group("")
	public.Use(authMiddleware.OptionalJWTAuth())
	{
		public.GET("/users", userController.ListUsers)
		public.GET("/users/:username", userController.GetUser)
		public.GET("/users/:username/branches", userController.GetUserBranches)
		public.GET("/users/:username/timeline", userController.GetUserTimeline)

		public.GET("/branches", branchController.ListBranches)
		public.GET("/branches/:id", branchController.GetBranch)
		public.GET("/branches/:id/posts", branchController.GetBranchPosts)

		public.GET("/posts", postController.ListPosts)
		public.GET("/posts/:id", postController.GetPost)
		public.GET("/posts/:id/likes", postController.GetPostLikes)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/users/me", userController.GetMe)
		authenticated.PUT("/users/me", userController.UpdateMe)
		authenticated.DELETE("/users/me", userController.DeleteMe)
		authenticated.PUT("/users/:username", userController.UpdateUser)
		authenticated.DELETE("/users/:username", userController.DeleteUser)

		authenticated.GET("/timeline/:username", userController.GetDetailedTimeline)

		authenticated.POST("/branches", branchController.CreateBranch)
		authenticated.PUT("/branches/:id", branchController.UpdateBranch)
		authenticated.DELETE("/branches/:id", branchController.DeleteBranch)

		authenticated.POST("/posts", postController.CreatePost)
		authenticated.PUT("/posts/:id", postController.UpdatePost)
		authenticated.DELETE("/posts/:id", postController.DeletePost)
		authenticated.POST("/posts/:id/like", postController.ToggleLike)

		authenticated.POST("/subscriptions", subscriptionController.Subscribe)
		authenticated.GET("/subscriptions", subscriptionController.ListSubscriptions)
		authenticated.GET("/subscriptions/my", subscriptionController.ListSubscriptions)
		authenticated.DELETE("/subscriptions/:id", subscriptionController.Unsubscribe)

		authenticated.POST("/likes", likeController.CreateLike)
		authenticated.GET("/likes", likeController.ListMyLikes)
		authenticated.DELETE("/likes/:id", likeController.DeleteLike)
	}
}
