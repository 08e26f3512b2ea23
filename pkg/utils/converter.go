package utils

import (
	"math"
	"time"
)

// StringPtr returns a pointer to the string value
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the int value
func IntPtr(i int) *int {
	return &i
}

// CeilDays returns the number of days in d, rounded up. Negative durations round toward zero.
func CeilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// CeilSeconds returns the number of whole seconds in d, rounded up.
func CeilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// FormatDate formats a time as a calendar date in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

//Personal.AI order the ending
