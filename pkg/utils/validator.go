package utils

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrInvalidPhoneNumberFormat = errors.New("invalid phone number, must be 10 digits")
	ErrInvalidDateFormat        = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidClockFormat       = errors.New("invalid time, use HH:MM or HH:MM:SS")
)

const (
	DateLayout = "2006-01-02"
)

var emailCaser = cases.Lower(language.Und)

// NormalizeEmail trims and lower-cases an address so lookups are case insensitive.
func NormalizeEmail(email string) string {
	return emailCaser.String(strings.TrimSpace(email))
}

// IsNumeric 检查字符串是否只包含数字
func IsNumeric(s string) bool {
	if s == "" {
		return false // 空字符串不视为数字
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidatePhoneNumber accepts exactly 10 ASCII digits.
func ValidatePhoneNumber(phone string) error {
	trimmed := strings.TrimSpace(phone)
	if len(trimmed) != 10 || !IsNumeric(trimmed) {
		return ErrInvalidPhoneNumberFormat
	}
	return nil
}

// ParseDate 解析日期字符串，支持多种常见格式。
// 支持 YYYY-MM-DD, YYYY/MM/DD, YYYY-M-D, YYYY/M/D 等及其变体。
// The result is midnight in loc; a nil loc means UTC.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	trimmed := strings.TrimSpace(dateStr)
	if trimmed == "" {
		return time.Time{}, ErrInvalidDateFormat
	}
	normalized := strings.ReplaceAll(trimmed, "/", "-")

	layouts := []string{
		"2006-01-02",
		"2006-1-2",
		"2006-01-2",
		"2006-1-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, ErrInvalidDateFormat
}

// ParseClock parses HH:MM or HH:MM:SS and returns the offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, ErrInvalidClockFormat
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
