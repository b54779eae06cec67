package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/services"
	"github.com/kmapteam/knowledgemap/internal/middleware"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// BranchController handles branch endpoints
type BranchController struct {
	branchService services.BranchService
	postService   services.PostService
}

// NewBranchController creates a new BranchController
func NewBranchController(branchService services.BranchService, postService services.PostService) *BranchController {
	return &BranchController{
		branchService: branchService,
		postService:   postService,
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		errorDetail = errorDetail.WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// CreateBranch handles branch creation
// @Summary Create a branch
// @Description Creates a new branch owned by the authenticated user
// @Tags branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBranchRequest true "Branch data"
// @Success 201 {object} dto.APIResponse{data=dto.BranchResponse} "Branch created"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Branch title already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches [post]
func (c *BranchController) CreateBranch(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	var req dto.CreateBranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	branch, err := c.branchService.CreateBranch(ctx, viewer, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      branch,
		Timestamp: time.Now(),
	})
}

// ListBranches lists the branches visible to the viewer
// @Summary List branches
// @Description Returns a paginated listing of branches the viewer may see
// @Tags branches
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.BranchListResponse} "Branches retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches [get]
func (c *BranchController) ListBranches(ctx *gin.Context) {
	viewer := middleware.GetViewer(ctx)
	page, size := helpers.ParsePaginationParams(ctx)

	branches, err := c.branchService.ListBranches(ctx, viewer, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      branches,
		Timestamp: time.Now(),
	})
}

// GetBranch retrieves a branch by ID
// @Summary Get branch details
// @Description Retrieves a branch; a private branch of another user reads as not found
// @Tags branches
// @Produce json
// @Param id path int true "Branch ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.BranchResponse} "Branch retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch ID"
// @Failure 404 {object} dto.ErrorResponse "Branch not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches/{id} [get]
func (c *BranchController) GetBranch(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	branch, err := c.branchService.GetBranch(ctx, middleware.GetViewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      branch,
		Timestamp: time.Now(),
	})
}

// GetBranchPosts lists the posts of a branch
// @Summary List branch posts
// @Description Lists posts in a branch visible to the viewer, newest event first
// @Tags branches
// @Produce json
// @Param id path int true "Branch ID" Format(int64) minimum(1)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch ID"
// @Failure 404 {object} dto.ErrorResponse "Branch not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches/{id}/posts [get]
func (c *BranchController) GetBranchPosts(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	posts, err := c.postService.ListPosts(ctx, middleware.GetViewer(ctx), &id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      posts,
		Timestamp: time.Now(),
	})
}

// UpdateBranch updates a branch
// @Summary Update a branch
// @Description Applies the provided fields to a branch owned by the authenticated user
// @Tags branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID" Format(int64) minimum(1)
// @Param request body dto.UpdateBranchRequest true "Branch fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.BranchResponse} "Branch updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the branch owner"
// @Failure 404 {object} dto.ErrorResponse "Branch not found"
// @Failure 409 {object} dto.ErrorResponse "Branch title already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches/{id} [put]
func (c *BranchController) UpdateBranch(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateBranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	branch, err := c.branchService.UpdateBranch(ctx, viewer, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      branch,
		Timestamp: time.Now(),
	})
}

// DeleteBranch deletes a branch
// @Summary Delete a branch
// @Description Deletes a branch owned by the authenticated user; its posts go with it
// @Tags branches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Branch deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the branch owner"
// @Failure 404 {object} dto.ErrorResponse "Branch not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /branches/{id} [delete]
func (c *BranchController) DeleteBranch(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.branchService.DeleteBranch(ctx, viewer, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Branch deleted"},
		Timestamp: time.Now(),
	})
}
