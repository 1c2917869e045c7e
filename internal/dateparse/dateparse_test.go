package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday.
var ref = time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

func TestParseFrom(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"today", "2025-06-18"},
		{"Tomorrow", "2025-06-19"},
		{"yesterday", "2025-06-17"},
		{"next week", "2025-06-25"},
		{"last week", "2025-06-11"},
		{"next month", "2025-07-18"},
		{"last month", "2025-05-18"},
		{"friday", "2025-06-20"},
		{"wednesday", "2025-06-25"}, // same weekday means next week
		{"last friday", "2025-06-13"},
		{"last wednesday", "2025-06-11"},
		{"+3", "2025-06-21"},
		{"-2", "2025-06-16"},
		{"in 5 days", "2025-06-23"},
		{"in 2 weeks", "2025-07-02"},
		{"3 days ago", "2025-06-15"},
		{"1 week ago", "2025-06-11"},
		{"2025-01-31", "2025-01-31"},
		{"  today  ", "2025-06-18"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseFrom(tc.input, ref), tc.input)
	}
}

func TestParseFromUnrecognizedPassthrough(t *testing.T) {
	// Unrecognized input is passed through for the API to reject.
	assert.Equal(t, "whenever", ParseFrom("whenever", ref))
	assert.Equal(t, "31/01/2025", ParseFrom("31/01/2025", ref))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("today"))
	assert.True(t, IsValid("2025-01-31"))
	assert.False(t, IsValid("whenever"))
}
