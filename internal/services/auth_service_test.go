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
	"github.com/attendance_system/internal/testutil"
)

var otpInBody = regexp.MustCompile(`Your OTP is: (\d{6})`)

func lastCode(t *testing.T, e *env) string {
	t.Helper()
	msg, ok := e.mailer.Last()
	require.True(t, ok, "no email sent")
	m := otpInBody.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2)
	return m[1]
}

func TestRegisterVerifyLogin(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	u, err := e.auth.Register(ctx, RegisterInput{
		Email: "  Asha@Example.com ", Password: "s3cret-pass", FullName: "Asha", Phone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.False(t, u.IsVerified)
	assert.False(t, u.IsActive)
	require.NotNil(t, u.Profile)
	assert.Equal(t, "9876543210", u.Profile.Phone)

	_, err = e.auth.Authenticate(ctx, "asha@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrAccountNotVerified)

	verified, err := e.auth.VerifyRegistration(ctx, "ASHA@example.com", lastCode(t, e))
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.True(t, verified.IsActive)

	got, err := e.auth.Authenticate(ctx, "asha@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = e.auth.Authenticate(ctx, "asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := e.auth.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", me.FullName)
	assert.Equal(t, "9876543210", me.Phone)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := e.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "long-enough", Phone: "12ab"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, e.mailer.Count())
}

func TestRegisterAlreadyVerified(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	testutil.NewUser(t, e.db, "taken@example.com")

	_, err := e.auth.Register(context.Background(), RegisterInput{Email: "taken@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrAccountAlreadyVerified)
}

func TestRegisterRetryRefreshesPendingAccount(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := e.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "first-pass"})
	require.NoError(t, err)

	// within the cooldown the retry is throttled and nothing changes
	_, err = e.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "second-pass"})
	assert.ErrorIs(t, err, ErrOTPRateLimited)

	e.clock.Advance(time.Minute)
	second, err := e.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "second-pass", FullName: "A"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = e.auth.VerifyRegistration(ctx, "a@example.com", lastCode(t, e))
	require.NoError(t, err)
	_, err = e.auth.Authenticate(ctx, "a@example.com", "second-pass")
	assert.NoError(t, err)
}

func TestRegisterDeliveryFailureKeepsUser(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	e.mailer.Err = errors.New("connection refused")

	u, err := e.auth.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrEmailDelivery)
	require.NotNil(t, u)

	var n int64
	require.NoError(t, e.db.Model(&models.EmailOTP{}).Where("email = ?", "a@example.com").Count(&n).Error)
	assert.EqualValues(t, 1, n, "the committed OTP survives a delivery failure")
}

func TestResendOTP(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()

	assert.ErrorIs(t, e.auth.ResendOTP(ctx, "nobody@example.com"), ErrAccountNotFound)

	_, err := e.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.ErrorIs(t, e.auth.ResendOTP(ctx, "a@example.com"), ErrOTPRateLimited)

	e.clock.Advance(61 * time.Second)
	require.NoError(t, e.auth.ResendOTP(ctx, "a@example.com"))
	msg, _ := e.mailer.Last()
	assert.Contains(t, msg.Subject, "(Resend)")

	_, err = e.auth.VerifyRegistration(ctx, "a@example.com", lastCode(t, e))
	require.NoError(t, err)
	assert.ErrorIs(t, e.auth.ResendOTP(ctx, "a@example.com"), ErrAccountAlreadyVerified)
}

func TestVerifyRegistrationUnknownEmail(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	_, err := e.auth.VerifyRegistration(context.Background(), "ghost@example.com", "123456")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	ctx := context.Background()
	testutil.NewUser(t, e.db, "a@example.com")

	// unknown addresses are accepted silently
	require.NoError(t, e.auth.ForgotPassword(ctx, "ghost@example.com"))
	assert.Zero(t, e.mailer.Count())

	require.NoError(t, e.auth.ForgotPassword(ctx, "a@example.com"))
	code := lastCode(t, e)

	assert.ErrorIs(t, e.auth.ResetPassword(ctx, "a@example.com", code, "short"), ErrInvalidInput)
	assert.ErrorIs(t, e.auth.ResetPassword(ctx, "a@example.com", "000000x", "brand-new-pass"), ErrOTPInvalid)
	require.NoError(t, e.auth.ResetPassword(ctx, "a@example.com", code, "brand-new-pass"))

	_, err := e.auth.Authenticate(ctx, "a@example.com", testutil.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Authenticate(ctx, "a@example.com", "brand-new-pass")
	assert.NoError(t, err)

	// a consumed reset code cannot be replayed
	assert.ErrorIs(t, e.auth.ResetPassword(ctx, "a@example.com", code, "another-pass"), ErrOTPNotFound)
}
