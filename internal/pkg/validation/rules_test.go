package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailPattern(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"user+tag@example.io",
	}
	for _, email := range valid {
		assert.True(t, CompiledPatterns.Email.MatchString(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@domain",
	}
	for _, email := range invalid {
		assert.False(t, CompiledPatterns.Email.MatchString(email), email)
	}
}

func TestUsernamePattern(t *testing.T) {
	valid := []string{"abc", "m.kuznetsov", "user_42", "some-name"}
	for _, username := range valid {
		assert.True(t, CompiledPatterns.Username.MatchString(username), username)
	}

	invalid := []string{"", "ab", "has space", "weird!char"}
	for _, username := range invalid {
		assert.False(t, CompiledPatterns.Username.MatchString(username), username)
	}
}
