package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
)

const (
	qrTokenBytes      = 24
	defaultQRSize     = 320
	maxQRSize         = 2048
	defaultRadiusM    = 100
	minAllowedRadiusM = 1
)

// OfficeInput creates an office. Zero AllowedRadiusM means the default radius.
type OfficeInput struct {
	Name           string
	Address        string
	Latitude       float64
	Longitude      float64
	AllowedRadiusM int
	IsActive       *bool
}

// OfficePatch updates only the non-nil fields.
type OfficePatch struct {
	Name           *string
	Address        *string
	Latitude       *float64
	Longitude      *float64
	AllowedRadiusM *int
	IsActive       *bool
}

// OfficeService 定义了办公地点与二维码管理的业务接口
type OfficeService interface {
	List(ctx context.Context) ([]models.OfficeLocation, error)
	Create(ctx context.Context, in OfficeInput) (*models.OfficeLocation, error)
	Update(ctx context.Context, id uint, patch OfficePatch) (*models.OfficeLocation, error)
	// GenerateQR rotates the office token; the previous one stops validating at once.
	GenerateQR(ctx context.Context, officeID uint) (*models.OfficeQRToken, error)
	GetQR(ctx context.Context, officeID uint) (*models.OfficeQRToken, error)
	// QRCodePNG renders the current token as a PNG of size x size pixels.
	QRCodePNG(ctx context.Context, officeID uint, size int) ([]byte, error)
	ResolveToken(ctx context.Context, token string) (*models.OfficeQRToken, error)
}

type officeService struct {
	db      *gorm.DB
	offices repositories.OfficeRepository
}

func NewOfficeService(db *gorm.DB, offices repositories.OfficeRepository) OfficeService {
	return &officeService{db: db, offices: offices}
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: latitude must be within ±90 and longitude within ±180", ErrInvalidInput)
	}
	return nil
}

func (s *officeService) List(ctx context.Context) ([]models.OfficeLocation, error) {
	return s.offices.List(ctx)
}

func (s *officeService) Create(ctx context.Context, in OfficeInput) (*models.OfficeLocation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	radius := in.AllowedRadiusM
	if radius == 0 {
		radius = defaultRadiusM
	}
	if radius < minAllowedRadiusM {
		return nil, fmt.Errorf("%w: allowed_radius_m must be positive", ErrInvalidInput)
	}
	office := &models.OfficeLocation{
		Name:           name,
		Address:        strings.TrimSpace(in.Address),
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		AllowedRadiusM: radius,
		IsActive:       true,
	}
	if err := s.offices.Create(ctx, office); err != nil {
		return nil, err
	}
	// gorm writes the column default over a zero bool on insert
	if in.IsActive != nil && !*in.IsActive {
		office.IsActive = false
		if err := s.offices.Save(ctx, office); err != nil {
			return nil, err
		}
	}
	log.Info().Uint("office_id", office.ID).Str("name", office.Name).Msg("office created")
	return office, nil
}

func (s *officeService) getOffice(ctx context.Context, id uint) (*models.OfficeLocation, error) {
	office, err := s.offices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrOfficeNotFound
		}
		return nil, err
	}
	return office, nil
}

func (s *officeService) Update(ctx context.Context, id uint, patch OfficePatch) (*models.OfficeLocation, error) {
	office, err := s.getOffice(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		office.Name = name
	}
	if patch.Address != nil {
		office.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.Latitude != nil {
		office.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		office.Longitude = *patch.Longitude
	}
	if err := validateCoordinates(office.Latitude, office.Longitude); err != nil {
		return nil, err
	}
	if patch.AllowedRadiusM != nil {
		if *patch.AllowedRadiusM < minAllowedRadiusM {
			return nil, fmt.Errorf("%w: allowed_radius_m must be positive", ErrInvalidInput)
		}
		office.AllowedRadiusM = *patch.AllowedRadiusM
	}
	if patch.IsActive != nil {
		office.IsActive = *patch.IsActive
	}
	if err := s.offices.Save(ctx, office); err != nil {
		return nil, err
	}
	return office, nil
}

func (s *officeService) GenerateQR(ctx context.Context, officeID uint) (*models.OfficeQRToken, error) {
	office, err := s.getOffice(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if !office.IsActive {
		return nil, ErrOfficeNotFound
	}

	token, err := newQRToken()
	if err != nil {
		return nil, err
	}

	var qr *models.OfficeQRToken
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		qr, err = s.offices.WithTx(tx).UpsertQR(ctx, officeID, token)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rotate qr token: %w", err)
	}
	log.Info().Uint("office_id", officeID).Msg("office QR rotated")
	return qr, nil
}

func (s *officeService) GetQR(ctx context.Context, officeID uint) (*models.OfficeQRToken, error) {
	if _, err := s.getOffice(ctx, officeID); err != nil {
		return nil, err
	}
	qr, err := s.offices.GetQR(ctx, officeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrQRNotGenerated
		}
		return nil, err
	}
	return qr, nil
}

func (s *officeService) QRCodePNG(ctx context.Context, officeID uint, size int) ([]byte, error) {
	qr, err := s.GetQR(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}
	png, err := qrcode.Encode(qr.Token, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}

func (s *officeService) ResolveToken(ctx context.Context, token string) (*models.OfficeQRToken, error) {
	qr, err := s.offices.FindActiveQR(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrInvalidQRToken
		}
		return nil, err
	}
	return qr, nil
}

func newQRToken() (string, error) {
	b := make([]byte, qrTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate qr token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
