// Package dateparse provides natural language date parsing for the
// --since/--until activity filters.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parse parses a natural language date string and returns a date in
// YYYY-MM-DD format. Supported formats:
//   - today, tomorrow, yesterday
//   - monday, tuesday, ... (next occurrence)
//   - last monday, last tuesday, ... (most recent past occurrence)
//   - last week, last month (7 days / 1 month ago)
//   - next week, next month
//   - +N / -N (N days from now / ago)
//   - in N days, in N weeks
//   - N days ago, N weeks ago
//   - YYYY-MM-DD (passthrough)
//
// Unrecognized input is returned as-is so the API can reject it with a
// clear error.
func Parse(input string) string {
	return ParseFrom(input, time.Now())
}

// ParseFrom parses a date relative to the given reference time.
func ParseFrom(input string, now time.Time) string {
	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "today":
		return formatDate(now)
	case "tomorrow":
		return formatDate(now.AddDate(0, 0, 1))
	case "yesterday":
		return formatDate(now.AddDate(0, 0, -1))
	case "next week":
		return formatDate(now.AddDate(0, 0, 7))
	case "next month":
		return formatDate(now.AddDate(0, 1, 0))
	case "last week":
		return formatDate(now.AddDate(0, 0, -7))
	case "last month":
		return formatDate(now.AddDate(0, -1, 0))
	}

	// Weekday names, forward ("friday") or backward ("last friday")
	if day, ok := parseWeekday(input); ok {
		if strings.HasPrefix(input, "last ") {
			return formatDate(prevWeekday(now, day))
		}
		return formatDate(nextWeekday(now, day))
	}

	// +N / -N days
	if strings.HasPrefix(input, "+") || strings.HasPrefix(input, "-") {
		if days, err := strconv.Atoi(input); err == nil {
			return formatDate(now.AddDate(0, 0, days))
		}
	}

	if match := inPattern.FindStringSubmatch(input); match != nil {
		n, err := strconv.Atoi(match[1])
		if err == nil {
			if match[2] == "week" || match[2] == "weeks" {
				n *= 7
			}
			return formatDate(now.AddDate(0, 0, n))
		}
	}

	if match := agoPattern.FindStringSubmatch(input); match != nil {
		n, err := strconv.Atoi(match[1])
		if err == nil {
			if match[2] == "week" || match[2] == "weeks" {
				n *= 7
			}
			return formatDate(now.AddDate(0, 0, -n))
		}
	}

	// YYYY-MM-DD passthrough
	if datePattern.MatchString(input) {
		return input
	}

	return input
}

// IsValid returns true if the input parses to a recognized date.
func IsValid(input string) bool {
	return datePattern.MatchString(Parse(input))
}

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inPattern   = regexp.MustCompile(`^in (\d+) (day|days|week|weeks)$`)
	agoPattern  = regexp.MustCompile(`^(\d+) (day|days|week|weeks) ago$`)
)

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseWeekday(input string) (time.Weekday, bool) {
	input = strings.TrimPrefix(input, "last ")
	input = strings.TrimPrefix(input, "next ")

	switch input {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return 0, false
}

// nextWeekday returns the next occurrence of the given weekday. If today is
// the target weekday, it returns next week's.
func nextWeekday(now time.Time, target time.Weekday) time.Time {
	daysUntil := int(target - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return now.AddDate(0, 0, daysUntil)
}

// prevWeekday returns the most recent past occurrence of the given weekday.
// If today is the target weekday, it returns last week's.
func prevWeekday(now time.Time, target time.Weekday) time.Time {
	daysSince := int(now.Weekday() - target)
	if daysSince <= 0 {
		daysSince += 7
	}
	return now.AddDate(0, 0, -daysSince)
}
