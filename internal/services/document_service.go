package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/pkg/storage"
)

const myDocumentsLimit = 200

type DocumentUpload struct {
	DocType  string
	Title    string
	FileName string
	Content  io.Reader
}

// ESICPatch updates only the non-nil fields.
type ESICPatch struct {
	ESICNumber   *string
	Dispensary   *string
	BranchOffice *string
}

// DocumentService handles employee document uploads and the ESIC profile.
type DocumentService interface {
	Upload(ctx context.Context, userID uint, in DocumentUpload) (*models.EmployeeDocument, error)
	ListMine(ctx context.Context, userID uint) ([]models.EmployeeDocument, error)
	DeleteMine(ctx context.Context, userID, docID uint) error
	GetESIC(ctx context.Context, userID uint) (*models.ESICProfile, error)
	UpdateESIC(ctx context.Context, userID uint, patch ESICPatch) (*models.ESICProfile, error)
}

type documentService struct {
	docs  repositories.DocumentRepository
	store storage.Store
}

func NewDocumentService(docs repositories.DocumentRepository, store storage.Store) DocumentService {
	return &documentService{docs: docs, store: store}
}

func (s *documentService) withURL(doc *models.EmployeeDocument) {
	doc.FileURL = s.store.URL(doc.Path)
}

func (s *documentService) Upload(ctx context.Context, userID uint, in DocumentUpload) (*models.EmployeeDocument, error) {
	docType := strings.TrimSpace(in.DocType)
	if docType == "" || len(docType) > 32 {
		return nil, fmt.Errorf("%w: doc_type is required (max 32 characters)", ErrInvalidInput)
	}
	if in.Content == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}

	rel, err := s.store.Save(fmt.Sprintf("employee_docs/%d", userID), in.FileName, in.Content)
	if err != nil {
		return nil, err
	}
	doc := &models.EmployeeDocument{
		UserID:  userID,
		DocType: docType,
		Title:   strings.TrimSpace(in.Title),
		Path:    rel,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		if rmErr := s.store.Delete(rel); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", rel).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}
	s.withURL(doc)
	return doc, nil
}

func (s *documentService) ListMine(ctx context.Context, userID uint) ([]models.EmployeeDocument, error) {
	docs, err := s.docs.ListByUser(ctx, userID, myDocumentsLimit)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		s.withURL(&docs[i])
	}
	return docs, nil
}

func (s *documentService) DeleteMine(ctx context.Context, userID, docID uint) error {
	doc, err := s.docs.GetForUser(ctx, docID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	if err := s.store.Delete(doc.Path); err != nil {
		log.Warn().Err(err).Uint("document_id", doc.ID).Msg("failed to remove document file")
	}
	return s.docs.Delete(ctx, doc)
}

func (s *documentService) GetESIC(ctx context.Context, userID uint) (*models.ESICProfile, error) {
	return s.docs.GetOrCreateESIC(ctx, userID)
}

func (s *documentService) UpdateESIC(ctx context.Context, userID uint, patch ESICPatch) (*models.ESICProfile, error) {
	profile, err := s.docs.GetOrCreateESIC(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.ESICNumber != nil {
		profile.ESICNumber = strings.TrimSpace(*patch.ESICNumber)
	}
	if patch.Dispensary != nil {
		profile.Dispensary = strings.TrimSpace(*patch.Dispensary)
	}
	if patch.BranchOffice != nil {
		profile.BranchOffice = strings.TrimSpace(*patch.BranchOffice)
	}
	if err := s.docs.SaveESIC(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
