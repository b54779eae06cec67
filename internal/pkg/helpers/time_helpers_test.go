package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("1h30m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("bogus", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("", time.Hour))
}

func TestParseDateOnly(t *testing.T) {
	parsed, err := ParseDateOnly("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.February, parsed.Month())
	assert.Equal(t, 29, parsed.Day())

	_, err = ParseDateOnly("2023-02-29")
	assert.Error(t, err)

	_, err = ParseDateOnly("2024-02-29T10:00:00Z")
	assert.Error(t, err)
}
