package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/pkg/utils"
)

// normalizeDate parses a user supplied date and returns it as YYYY-MM-DD.
func normalizeDate(field, value string, loc *time.Location) (string, error) {
	t, err := utils.ParseDate(value, loc)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, err)
	}
	return t.Format(models.WorkDateLayout), nil
}

// normalizeClock accepts HH:MM[:SS] and returns HH:MM. Empty stays empty.
func normalizeClock(field, value string) (string, time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", 0, nil
	}
	d, err := utils.ParseClock(value)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, err)
	}
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60), d, nil
}

// checkClockOrder rejects an out time earlier than the in time when both are set.
func checkClockOrder(in, out string, inD, outD time.Duration) error {
	if in != "" && out != "" && outD < inD {
		return ErrCheckOutBeforeCheckIn
	}
	return nil
}
