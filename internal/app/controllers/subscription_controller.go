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

// SubscriptionController handles subscription endpoints
type SubscriptionController struct {
	subscriptionService services.SubscriptionService
}

// NewSubscriptionController creates a new SubscriptionController
func NewSubscriptionController(subscriptionService services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
	}
}

// Subscribe creates a subscription
// @Summary Subscribe to a user or branch
// @Description Creates a subscription targeting exactly one user or one public branch
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubscriptionRequest true "Subscription target"
// @Success 201 {object} dto.APIResponse{data=dto.SubscriptionResponse} "Subscribed"
// @Failure 400 {object} dto.ErrorResponse "Invalid subscription target"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Target not found"
// @Failure 409 {object} dto.ErrorResponse "Subscription already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /subscriptions [post]
func (c *SubscriptionController) Subscribe(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	sub, err := c.subscriptionService.Subscribe(ctx, viewer, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      sub,
		Timestamp: time.Now(),
	})
}

// ListSubscriptions lists the viewer's subscriptions
// @Summary List own subscriptions
// @Description Lists the authenticated user's subscriptions, newest first
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.SubscriptionListResponse} "Subscriptions retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /subscriptions [get]
func (c *SubscriptionController) ListSubscriptions(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	subs, err := c.subscriptionService.ListSubscriptions(ctx, viewer, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      subs,
		Timestamp: time.Now(),
	})
}

// Unsubscribe removes a subscription
// @Summary Unsubscribe
// @Description Removes a subscription owned by the authenticated user
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscription ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Unsubscribed"
// @Failure 400 {object} dto.ErrorResponse "Invalid subscription ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the subscription owner"
// @Failure 404 {object} dto.ErrorResponse "Subscription not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /subscriptions/{id} [delete]
func (c *SubscriptionController) Unsubscribe(ctx *gin.Context) {
	viewer, ok := middleware.RequireViewer(ctx)
	if !ok {
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.subscriptionService.Unsubscribe(ctx, viewer, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Unsubscribed"},
		Timestamp: time.Now(),
	})
}
