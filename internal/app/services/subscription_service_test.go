package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

func int64Ptr(v int64) *int64 { return &v }

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, field, custom.Details["field"])
}

func TestValidateSubscriptionTargetUser(t *testing.T) {
	err := ValidateSubscriptionTarget(1, int64Ptr(2), nil)
	assert.NoError(t, err)
}

func TestValidateSubscriptionTargetPublicBranch(t *testing.T) {
	branch := &models.Branch{ID: 5, UserID: 2, IsPrivate: false}
	err := ValidateSubscriptionTarget(1, nil, branch)
	assert.NoError(t, err)
}

func TestValidateSubscriptionTargetBothTargets(t *testing.T) {
	branch := &models.Branch{ID: 5, UserID: 2}
	err := ValidateSubscriptionTarget(1, int64Ptr(2), branch)
	requireValidationError(t, err, "target")
}

func TestValidateSubscriptionTargetNoTarget(t *testing.T) {
	err := ValidateSubscriptionTarget(1, nil, nil)
	requireValidationError(t, err, "target")
}

func TestValidateSubscriptionTargetSelf(t *testing.T) {
	err := ValidateSubscriptionTarget(1, int64Ptr(1), nil)
	requireValidationError(t, err, "targetUser")
}

func TestValidateSubscriptionTargetOwnBranch(t *testing.T) {
	branch := &models.Branch{ID: 5, UserID: 1, IsPrivate: false}
	err := ValidateSubscriptionTarget(1, nil, branch)
	requireValidationError(t, err, "targetBranch")
}

func TestValidateSubscriptionTargetPrivateBranch(t *testing.T) {
	branch := &models.Branch{ID: 5, UserID: 2, IsPrivate: true}
	err := ValidateSubscriptionTarget(1, nil, branch)
	requireValidationError(t, err, "targetBranch")
}
