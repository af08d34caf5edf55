package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderDateLayouts(t *testing.T) {
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"03/15/2025", "2025-03-15", "15-03-2025", "Mar 15, 2025", "15 Mar 2025"} {
		assert.Equal(t, want, ParseOrderDate(in), "input %q", in)
	}
}

func TestParseOrderDateNeverFails(t *testing.T) {
	before := time.Now()
	got := ParseOrderDate("not a date")
	assert.False(t, got.Before(before.Add(-time.Second)))

	got = ParseOrderDate("")
	assert.False(t, got.Before(before.Add(-time.Second)))
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2025, 1, 31, 9, 30, 0, 0, time.UTC)
	got := EndOfDay(in)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
	assert.Equal(t, 59, got.Second())
	assert.Equal(t, in.Day(), got.Day())
	assert.True(t, got.Before(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}
