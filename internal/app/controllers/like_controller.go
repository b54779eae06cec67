package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/services"
	"github.com/kmapteam/knowledgemap/internal/middleware"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// LikeController handles likes addressed as standalone resources
type LikeController struct {
	likeService services.LikeService
}

// NewLikeController creates a new LikeController
func NewLikeController(likeService services.LikeService) *LikeController {
	return &LikeController{likeService: likeService}
}

// CreateLike handles liking a post by its ID in the request body
// @Summary Create a like
// @Description Likes the referenced post on behalf of the authenticated user
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateLikeRequest true "Post to like"
// @Success 201 {object} dto.APIResponse{data=dto.LikeResponse} "Like created"
// @Failure 400 {object} dto.ErrorResponse "Invalid like data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 409 {object} dto.ErrorResponse "Post already liked"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /likes [post]
func (c *LikeController) CreateLike(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	var req dto.CreateLikeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	like, err := c.likeService.CreateLike(ctx, viewer, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      like,
		Timestamp: time.Now(),
	})
}

// DeleteLike handles removing a like by its own ID
// @Summary Delete a like
// @Description Removes a like owned by the authenticated user
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Like ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Like deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the like owner"
// @Failure 404 {object} dto.ErrorResponse "Like not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /likes/{id} [delete]
func (c *LikeController) DeleteLike(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.likeService.DeleteLike(ctx, viewer, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Like deleted"},
		Timestamp: time.Now(),
	})
}

// ListMyLikes lists the authenticated user's likes
// @Summary List own likes
// @Description Returns a paginated listing of the authenticated user's likes, newest first
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.LikeListResponse} "Likes retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /likes [get]
func (c *LikeController) ListMyLikes(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	likes, err := c.likeService.ListMyLikes(ctx, viewer, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      likes,
		Timestamp: time.Now(),
	})
}
