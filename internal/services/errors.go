package services

import (
	"errors"
	"fmt"
	"time"
)

// Validation
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidAction         = errors.New("action must be CHECK_IN or CHECK_OUT")
	ErrInvalidDateRange      = errors.New("to date must not be before from date")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time must not be before check-in time")
)

// Authorization
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotVerified = errors.New("email not verified")
	ErrAccountInactive    = errors.New("account inactive")
)

// Not found
var (
	ErrAccountNotFound  = errors.New("user not found")
	ErrOfficeNotFound   = errors.New("office not found or inactive")
	ErrQRNotGenerated   = errors.New("QR not generated yet")
	ErrInvalidQRToken   = errors.New("invalid or inactive QR")
	ErrRequestNotFound  = errors.New("request not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrReportNotFound   = errors.New("daily report not found")
	ErrShiftNotFound    = errors.New("shift not found")
)

// Conflict
var (
	ErrAccountAlreadyVerified = errors.New("email already registered and verified")
	ErrMustCheckInFirst       = errors.New("you must CHECK_IN first")
	ErrRequestAlreadyDecided  = errors.New("request has already been decided")
	ErrShiftExists            = errors.New("a shift with this name already exists")
)

// OTP
var (
	ErrOTPNotFound    = errors.New("OTP not found, please request a new one")
	ErrOTPExpired     = errors.New("OTP expired, please request a new one")
	ErrOTPInvalid     = errors.New("invalid OTP")
	ErrOTPRateLimited = errors.New("OTP rate limited")
	// ErrEmailDelivery wraps a transport failure after the OTP was stored.
	ErrEmailDelivery = errors.New("failed to send email")
)

// ErrOutOfRange is matched by every *GeofenceError.
var ErrOutOfRange = errors.New("outside allowed office radius")

// GeofenceError carries the measured and allowed distance of a rejected scan.
type GeofenceError struct {
	DistanceM float64
	AllowedM  int
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("you are outside the office radius. Distance=%dm, Allowed=%dm", int(e.DistanceM), e.AllowedM)
}

func (e *GeofenceError) Is(target error) bool { return target == ErrOutOfRange }

// RateLimitReason tells which throttle rejected an OTP request.
type RateLimitReason string

const (
	RateLimitCooldown RateLimitReason = "cooldown"
	RateLimitHourly   RateLimitReason = "hourly_cap"
)

// RateLimitError is returned when an OTP cannot be issued yet.
type RateLimitError struct {
	Reason     RateLimitReason
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.Reason == RateLimitCooldown {
		return fmt.Sprintf("Please wait %d seconds before requesting another OTP.", e.RetryAfterSeconds())
	}
	return "OTP limit reached. Try again later."
}

func (e *RateLimitError) Is(target error) bool { return target == ErrOTPRateLimited }

// RetryAfterSeconds rounds the wait up to whole seconds.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
