package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationErrorKeyedByField(t *testing.T) {
	type registerBody struct {
		Username string `validate:"required"`
		Email    string `validate:"required,email"`
	}

	err := validator.New().Struct(registerBody{})
	require.Error(t, err)

	detail := HandleValidationError(err)

	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "Username", detail.Field)
	assert.Equal(t, "Username is required", detail.Message)
	assert.NotEmpty(t, detail.Details)
}

func TestHandleValidationErrorFormatsKnownTags(t *testing.T) {
	type body struct {
		Email string `validate:"email"`
		Size  int    `validate:"min=2"`
		Kind  string `validate:"oneof=text event"`
	}

	v := validator.New()

	err := v.StructPartial(body{Email: "nope"}, "Email")
	require.Error(t, err)
	assert.Equal(t, "Email must be a valid email address", HandleValidationError(err).Message)

	err = v.StructPartial(body{Size: 1}, "Size")
	require.Error(t, err)
	assert.Equal(t, "Size must be at least 2", HandleValidationError(err).Message)

	err = v.StructPartial(body{Kind: "video"}, "Kind")
	require.Error(t, err)
	assert.Equal(t, "Kind must be one of: text event", HandleValidationError(err).Message)
}

func TestHandleValidationErrorPlainError(t *testing.T) {
	detail := HandleValidationError(errors.New("unexpected EOF"))

	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	assert.Empty(t, detail.Field)
	assert.Equal(t, "Validation failed", detail.Message)
	assert.Equal(t, "unexpected EOF", detail.Details)
}
