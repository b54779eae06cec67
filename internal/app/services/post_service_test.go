package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

func TestParseEventDateValid(t *testing.T) {
	parsed, err := parseEventDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
	assert.Equal(t, 5, parsed.Day())
}

func TestParseEventDateToday(t *testing.T) {
	today := time.Now().UTC().Format(time.DateOnly)
	_, err := parseEventDate(today)
	assert.NoError(t, err)
}

func TestParseEventDateFuture(t *testing.T) {
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)
	_, err := parseEventDate(tomorrow)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestParseEventDateMalformed(t *testing.T) {
	for _, value := range []string{"", "05-03-2024", "2024/03/05", "not-a-date", "2024-13-01"} {
		_, err := parseEventDate(value)
		require.Error(t, err, "value %q", value)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	}
}
