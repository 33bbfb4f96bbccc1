package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendance_system/internal/models"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestOTPIssueAndVerify(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	d, err := e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	require.NoError(t, err)
	assert.Regexp(t, sixDigits, d.Code)
	assert.Equal(t, e.clock.Now().Add(10*time.Minute), d.ExpiresAt)

	var row models.EmailOTP
	require.NoError(t, e.db.First(&row).Error)
	assert.NotEqual(t, d.Code, row.OTPHash, "plaintext must never be stored")
	assert.Equal(t, 1, row.SendCount)
	assert.True(t, row.LastSentAt.Equal(e.clock.Now()), "last_sent_at records the issue time")

	require.NoError(t, e.otp.Dispatch(ctx, d))
	msg, ok := e.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "a@example.com", msg.To)
	assert.Contains(t, msg.Body, d.Code)

	assert.ErrorIs(t, e.otp.Verify(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify, "not-it"), ErrOTPInvalid)
	require.NoError(t, e.otp.Verify(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify, d.Code))
	assert.ErrorIs(t, e.otp.Verify(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify, d.Code), ErrOTPNotFound,
		"a consumed code cannot be replayed")
}

func TestOTPVerifyExpired(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	d, err := e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	require.NoError(t, err)

	e.clock.Advance(10*time.Minute + time.Second)
	assert.ErrorIs(t, e.otp.Verify(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify, d.Code), ErrOTPExpired)
}

func TestOTPVerifyWithoutCode(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	err := e.otp.Verify(context.Background(), nil, "nobody@example.com", models.OTPPurposeRegisterVerify, "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPCooldown(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	require.NoError(t, err)

	e.clock.Advance(20 * time.Second)
	_, err = e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, RateLimitCooldown, rl.Reason)
	assert.Equal(t, 40, rl.RetryAfterSeconds())
	assert.ErrorIs(t, err, ErrOTPRateLimited)

	// the throttle is per purpose
	_, err = e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposePasswordReset)
	assert.NoError(t, err)

	e.clock.Advance(40 * time.Second)
	_, err = e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	assert.NoError(t, err)
}

func TestOTPHourlyCap(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()
	first := e.clock.Now()

	for i := 0; i < 5; i++ {
		d, err := e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
		require.NoError(t, err, "issue %d", i+1)
		require.NotNil(t, d)
		e.clock.Advance(61 * time.Second)
	}

	_, err := e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, RateLimitHourly, rl.Reason)
	assert.Equal(t, first.Add(time.Hour).Sub(e.clock.Now()), rl.RetryAfter)

	// once the oldest send leaves the window a new code can be issued
	e.clock.Advance(first.Add(time.Hour + time.Second).Sub(e.clock.Now()))
	_, err = e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	assert.NoError(t, err)
}

func TestOTPNewestCodeWins(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	old, err := e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	require.NoError(t, err)
	e.clock.Advance(2 * time.Minute)
	fresh, err := e.otp.Issue(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify)
	require.NoError(t, err)

	if old.Code != fresh.Code {
		assert.ErrorIs(t, e.otp.Verify(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify, old.Code), ErrOTPInvalid)
	}
	assert.NoError(t, e.otp.Verify(ctx, nil, "a@example.com", models.OTPPurposeRegisterVerify, fresh.Code))
}

func TestOTPDispatchFailure(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	e.mailer.Err = errors.New("smtp down")

	d, err := e.otp.Issue(context.Background(), nil, "a@example.com", models.OTPPurposeRegisterVerify)
	require.NoError(t, err)
	err = e.otp.Dispatch(context.Background(), d)
	assert.ErrorIs(t, err, ErrEmailDelivery)
	assert.Contains(t, err.Error(), "smtp down")
}
