package services

import (
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// Services defined in this package:
// - AuthService: registration, login and refresh token rotation
// - UserService: profiles and aggregate counts
// - BranchService: branch CRUD with visibility rules
// - PostService: post CRUD, visibility rules and like toggling
// - SubscriptionService: follow relationships and their validation
// - TimelineService: timeline aggregation per user

func newPagination(total int64, page, size int) dto.PaginationInfo {
	return helpers.NewPaginationInfo(total, page, size)
}
