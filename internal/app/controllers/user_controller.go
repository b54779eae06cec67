package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/services"
	"github.com/kmapteam/knowledgemap/internal/middleware"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// UserController handles user profile endpoints
type UserController struct {
	userService     services.UserService
	branchService   services.BranchService
	timelineService services.TimelineService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, branchService services.BranchService, timelineService services.TimelineService) *UserController {
	return &UserController{
		userService:     userService,
		branchService:   branchService,
		timelineService: timelineService,
	}
}

// GetMe returns the authenticated user's own profile
// @Summary Get own profile
// @Description Returns the authenticated user's profile with aggregate counts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	profile, err := c.userService.GetProfileByID(ctx, viewer.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      profile,
		Timestamp: time.Now(),
	})
}

// UpdateMe updates the authenticated user's profile
// @Summary Update own profile
// @Description Applies the provided fields to the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid profile data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	profile, err := c.userService.UpdateProfile(ctx, viewer.ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      profile,
		Timestamp: time.Now(),
	})
}

// DeleteMe deletes the authenticated user's account
// @Summary Delete own account
// @Description Removes the account and all of its branches, posts, likes and subscriptions
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Account deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/me [delete]
func (c *UserController) DeleteMe(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	if err := c.userService.DeleteAccount(ctx, viewer.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Account deleted"},
		Timestamp: time.Now(),
	})
}

// ListUsers lists users
// @Summary List users
// @Description Lists users ordered by username with their aggregate counts
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse} "Users retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	users, err := c.userService.ListUsers(ctx, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      users,
		Timestamp: time.Now(),
	})
}

// GetUser returns a public profile by username
// @Summary Get a user profile
// @Description Returns a user's public profile with aggregate counts
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile retrieved"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{username} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	profile, err := c.userService.GetProfile(ctx, ctx.Param("username"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      profile,
		Timestamp: time.Now(),
	})
}

// resolveOwnedProfile loads the target profile and verifies the viewer may
// mutate it. Only the account owner and staff pass.
func (c *UserController) resolveOwnedProfile(ctx *gin.Context) (*dto.UserResponse, bool) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return nil, false
	}

	target, err := c.userService.GetProfile(ctx, ctx.Param("username"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}

	if target.ID != viewer.ID && !viewer.IsStaff {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return nil, false
	}

	return target, true
}

// UpdateUser updates a profile addressed by username
// @Summary Update a user profile
// @Description Applies the provided fields to the profile; only the owner and staff may do this
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body dto.UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid profile data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the account owner"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{username} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	target, ok := c.resolveOwnedProfile(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	profile, err := c.userService.UpdateProfile(ctx, target.ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      profile,
		Timestamp: time.Now(),
	})
}

// DeleteUser deletes an account addressed by username
// @Summary Delete a user account
// @Description Removes the account and all dependent data; only the owner and staff may do this
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Account deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the account owner"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{username} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	target, ok := c.resolveOwnedProfile(ctx)
	if !ok {
		return
	}

	if err := c.userService.DeleteAccount(ctx, target.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Account deleted"},
		Timestamp: time.Now(),
	})
}

// GetUserBranches lists a user's branches
// @Summary List a user's branches
// @Description Lists the user's branches; private branches appear only for the owner and staff
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.BranchListResponse} "Branches retrieved"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{username}/branches [get]
func (c *UserController) GetUserBranches(ctx *gin.Context) {
	viewer := middleware.GetViewer(ctx)
	page, size := helpers.ParsePaginationParams(ctx)

	branches, err := c.branchService.ListUserBranches(ctx, viewer, ctx.Param("username"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      branches,
		Timestamp: time.Now(),
	})
}

// GetUserTimeline returns a user's aggregated timeline
// @Summary Get a user's aggregated timeline
// @Description Monthly post counts with per-branch breakdown, oldest month first. Drafts and private-branch posts never appear, the owner included.
// @Tags timeline
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.APIResponse{data=[]dto.TimelineBucket} "Timeline retrieved"
// @Failure 403 {object} dto.ErrorResponse "Profile is private"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{username}/timeline [get]
func (c *UserController) GetUserTimeline(ctx *gin.Context) {
	viewer := middleware.GetViewer(ctx)

	timeline, err := c.timelineService.GetTimeline(ctx, viewer, ctx.Param("username"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      timeline,
		Timestamp: time.Now(),
	})
}

// GetDetailedTimeline returns a user's timeline with individual posts
// @Summary Get a user's detailed timeline
// @Description Monthly buckets carrying the individual posts, newest month first. The owner and staff also see drafts and private-branch posts.
// @Tags timeline
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} dto.APIResponse{data=[]dto.DetailedTimelineBucket} "Timeline retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /timeline/{username} [get]
func (c *UserController) GetDetailedTimeline(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	timeline, err := c.timelineService.GetTimelineDetailed(ctx, viewer, ctx.Param("username"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      timeline,
		Timestamp: time.Now(),
	})
}
