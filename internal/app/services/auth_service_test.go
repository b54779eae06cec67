package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

func TestValidateUsername(t *testing.T) {
	s := &AuthService{}

	assert.NoError(t, s.validateUsername("mkuznetsov"))
	assert.NoError(t, s.validateUsername("user.name-42_x"))

	for _, username := range []string{"", "ab", "has space", "bad!char"} {
		err := s.validateUsername(username)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "username %q", username)
	}
}

func TestValidateEmail(t *testing.T) {
	s := &AuthService{}

	assert.NoError(t, s.validateEmail("user@example.com"))

	for _, email := range []string{"", "plain", "user@", "@example.com"} {
		err := s.validateEmail(email)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "email %q", email)
	}
}

func TestValidatePassword(t *testing.T) {
	s := &AuthService{}

	assert.NoError(t, s.validatePassword("secret12"))
	assert.NoError(t, s.validatePassword("l0ngerPassword"))

	for _, password := range []string{"", "short1", "onlyletters", "12345678"} {
		err := s.validatePassword(password)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "password %q", password)
	}
}
