package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/pkg/utils"
)

// RegisterInput is a self sign-up request. Email is normalised by the service.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// MeProfile flattens a user and their optional profile; missing profile fields are "".
type MeProfile struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	IsVerified   bool   `json:"is_verified"`
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`
	Phone        string `json:"phone"`
	Department   string `json:"department"`
	Designation  string `json:"designation"`
	EmployeeCode string `json:"employee_code"`
}

// NewMeProfile builds the flattened view of u.
func NewMeProfile(u *models.User) MeProfile {
	p := MeProfile{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
		IsAdmin:    u.IsAdmin,
	}
	if u.Profile != nil {
		p.Phone = u.Profile.Phone
		p.Department = u.Profile.Department
		p.Designation = u.Profile.Designation
		p.EmployeeCode = u.Profile.EmployeeCode
	}
	return p
}

// AuthService 定义了账号注册、验证与登录的业务接口
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	VerifyRegistration(ctx context.Context, email, code string) (*models.User, error)
	ResendOTP(ctx context.Context, email string) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Me(ctx context.Context, userID uint) (*MeProfile, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type authService struct {
	db    *gorm.DB
	users repositories.UserRepository
	otp   OTPService
}

func NewAuthService(db *gorm.DB, users repositories.UserRepository, otp OTPService) AuthService {
	return &authService{db: db, users: users, otp: otp}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	emailAddr := utils.NormalizeEmail(in.Email)
	if emailAddr == "" || len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: email and a password of at least 8 characters are required", ErrInvalidInput)
	}
	if in.Phone != "" {
		if err := utils.ValidatePhoneNumber(in.Phone); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	var dispatch *OTPDispatch
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		existing, err := users.GetByEmail(ctx, emailAddr)
		switch {
		case err == nil && existing.IsVerified:
			return ErrAccountAlreadyVerified
		case err == nil:
			// unverified sign-up is retried: refresh credentials, keep it locked
			if name := strings.TrimSpace(in.FullName); name != "" {
				existing.FullName = name
			}
			existing.PasswordHash = hash
			existing.IsActive = false
			if err := users.Save(ctx, existing); err != nil {
				return err
			}
			user = existing
		case errors.Is(err, repositories.ErrRecordNotFound):
			user = &models.User{
				Email:        emailAddr,
				PasswordHash: hash,
				FullName:     strings.TrimSpace(in.FullName),
			}
			if err := users.Create(ctx, user); err != nil {
				if errors.Is(err, repositories.ErrDuplicate) {
					return ErrAccountAlreadyVerified
				}
				return err
			}
		default:
			return err
		}

		profile, err := users.EnsureProfile(ctx, user.ID)
		if err != nil {
			return err
		}
		if phone := strings.TrimSpace(in.Phone); phone != "" {
			profile.Phone = phone
			if err := users.SaveProfile(ctx, profile); err != nil {
				return err
			}
		}
		user.Profile = profile

		dispatch, err = s.otp.Issue(ctx, tx, emailAddr, models.OTPPurposeRegisterVerify)
		return err
	})
	if err != nil {
		return nil, err
	}

	// only after commit
	if err := s.otp.Dispatch(ctx, dispatch); err != nil {
		return user, err
	}
	return user, nil
}

func (s *authService) VerifyRegistration(ctx context.Context, emailAddr, code string) (*models.User, error) {
	emailAddr = utils.NormalizeEmail(emailAddr)

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		u, err := users.GetByEmail(ctx, emailAddr)
		if err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		user = u
		if u.IsVerified {
			return nil
		}
		if err := s.otp.Verify(ctx, tx, emailAddr, models.OTPPurposeRegisterVerify, strings.TrimSpace(code)); err != nil {
			return err
		}
		u.IsVerified = true
		u.IsActive = true
		return users.Save(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ResendOTP(ctx context.Context, emailAddr string) error {
	emailAddr = utils.NormalizeEmail(emailAddr)

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAccountAlreadyVerified
	}

	var dispatch *OTPDispatch
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		dispatch, err = s.otp.Issue(ctx, tx, emailAddr, models.OTPPurposeRegisterVerify)
		return err
	})
	if err != nil {
		return err
	}
	dispatch.Subject += " (Resend)"
	return s.otp.Dispatch(ctx, dispatch)
}

func (s *authService) Authenticate(ctx context.Context, emailAddr, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*MeProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	p := NewMeProfile(user)
	return &p, nil
}

// ForgotPassword is silent for unknown or unverified addresses so it cannot
// be used to probe which emails are registered.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = utils.NormalizeEmail(emailAddr)
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !user.IsVerified {
		return nil
	}

	var dispatch *OTPDispatch
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		dispatch, err = s.otp.Issue(ctx, tx, emailAddr, models.OTPPurposePasswordReset)
		return err
	})
	if err != nil {
		return err
	}
	return s.otp.Dispatch(ctx, dispatch)
}

func (s *authService) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	emailAddr = utils.NormalizeEmail(emailAddr)
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		user, err := users.GetByEmail(ctx, emailAddr)
		if err != nil {
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return ErrOTPNotFound
			}
			return err
		}
		if err := s.otp.Verify(ctx, tx, emailAddr, models.OTPPurposePasswordReset, strings.TrimSpace(code)); err != nil {
			return err
		}
		user.PasswordHash = hash
		return users.Save(ctx, user)
	})
}
