package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/pkg/email"
)

const otpSubject = "Your Attendance App OTP"

// OTPSettings are the issuance limits.
type OTPSettings struct {
	Expiry     time.Duration
	Cooldown   time.Duration
	MaxPerHour int
}

// DefaultOTPSettings: 10 minute codes, 60s cooldown, 5 per hour.
var DefaultOTPSettings = OTPSettings{
	Expiry:     10 * time.Minute,
	Cooldown:   60 * time.Second,
	MaxPerHour: 5,
}

// OTPDispatch carries a freshly issued plaintext code to the mailer. It is
// never persisted.
type OTPDispatch struct {
	Email     string
	Purpose   models.OTPPurpose
	Code      string
	ExpiresAt time.Time
	Subject   string
}

// Message renders the email for this code.
func (d *OTPDispatch) Message(expiry time.Duration) email.Message {
	return email.Message{
		To:      d.Email,
		Subject: d.Subject,
		Body: fmt.Sprintf("Your OTP is: %s\n\nThis OTP will expire in %d minutes.\nIf you did not request this, please ignore this email.",
			d.Code, int(expiry/time.Minute)),
	}
}

// OTPService issues and verifies emailed one-time codes.
type OTPService interface {
	// Issue stores a new code for (email, purpose) using tx when non-nil. The
	// returned dispatch must only be sent once tx has committed.
	Issue(ctx context.Context, tx *gorm.DB, email string, purpose models.OTPPurpose) (*OTPDispatch, error)
	// Dispatch delivers a code. Failures wrap ErrEmailDelivery.
	Dispatch(ctx context.Context, d *OTPDispatch) error
	// Verify consumes the latest unused code when candidate matches.
	Verify(ctx context.Context, tx *gorm.DB, email string, purpose models.OTPPurpose, candidate string) error
}

type otpService struct {
	repo     repositories.OTPRepository
	mailer   email.Mailer
	settings OTPSettings
	now      func() time.Time
}

func NewOTPService(repo repositories.OTPRepository, mailer email.Mailer, settings OTPSettings) OTPService {
	return newOTPService(repo, mailer, settings, time.Now)
}

func newOTPService(repo repositories.OTPRepository, mailer email.Mailer, settings OTPSettings, now func() time.Time) *otpService {
	return &otpService{repo: repo, mailer: mailer, settings: settings, now: now}
}

func (s *otpService) repoFor(tx *gorm.DB) repositories.OTPRepository {
	if tx == nil {
		return s.repo
	}
	return s.repo.WithTx(tx)
}

func (s *otpService) Issue(ctx context.Context, tx *gorm.DB, emailAddr string, purpose models.OTPPurpose) (*OTPDispatch, error) {
	repo := s.repoFor(tx)
	now := s.now().UTC()

	last, err := repo.LatestIssued(ctx, emailAddr, purpose)
	if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("load latest otp: %w", err)
	}
	if last != nil {
		if elapsed := now.Sub(last.CreatedAt); elapsed < s.settings.Cooldown {
			return nil, &RateLimitError{Reason: RateLimitCooldown, RetryAfter: s.settings.Cooldown - elapsed}
		}
	}

	windowStart := now.Add(-time.Hour)
	sent, err := repo.CountIssuedSince(ctx, emailAddr, purpose, windowStart)
	if err != nil {
		return nil, fmt.Errorf("count recent otps: %w", err)
	}
	if s.settings.MaxPerHour > 0 && sent >= int64(s.settings.MaxPerHour) {
		retry := time.Hour
		if oldest, err := repo.EarliestIssuedSince(ctx, emailAddr, purpose, windowStart); err == nil {
			retry = oldest.CreatedAt.Add(time.Hour).Sub(now)
		}
		return nil, &RateLimitError{Reason: RateLimitHourly, RetryAfter: retry}
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, err
	}
	salt, err := randomHex(8)
	if err != nil {
		return nil, err
	}

	row := &models.EmailOTP{
		Email:      emailAddr,
		Purpose:    purpose,
		OTPHash:    hashOTP(code, salt),
		Salt:       salt,
		ExpiresAt:  now.Add(s.settings.Expiry),
		SendCount:  int(sent) + 1,
		LastSentAt: now,
		CreatedAt:  now,
	}
	if err := repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	return &OTPDispatch{
		Email:     emailAddr,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: row.ExpiresAt,
		Subject:   subjectFor(purpose),
	}, nil
}

func (s *otpService) Dispatch(ctx context.Context, d *OTPDispatch) error {
	if err := s.mailer.Send(ctx, d.Message(s.settings.Expiry)); err != nil {
		log.Error().Err(err).Str("email", d.Email).Str("purpose", string(d.Purpose)).Msg("otp email delivery failed")
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

func (s *otpService) Verify(ctx context.Context, tx *gorm.DB, emailAddr string, purpose models.OTPPurpose, candidate string) error {
	repo := s.repoFor(tx)

	otp, err := repo.LatestUnused(ctx, emailAddr, purpose)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return ErrOTPNotFound
		}
		return fmt.Errorf("load otp: %w", err)
	}
	if s.now().UTC().After(otp.ExpiresAt) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(hashOTP(candidate, otp.Salt)), []byte(otp.OTPHash)) != 1 {
		return ErrOTPInvalid
	}
	if err := repo.MarkUsed(ctx, otp.ID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			// consumed concurrently
			return ErrOTPNotFound
		}
		return fmt.Errorf("mark otp used: %w", err)
	}
	return nil
}

func subjectFor(purpose models.OTPPurpose) string {
	if purpose == models.OTPPurposePasswordReset {
		return "Your Attendance App password reset OTP"
	}
	return otpSubject
}

// generateOTPCode draws uniformly from 000000-999999.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func randomHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashOTP(code, salt string) string {
	sum := sha256.Sum256([]byte(code + ":" + salt))
	return hex.EncodeToString(sum[:])
}
