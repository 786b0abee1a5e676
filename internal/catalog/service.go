package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/models"
)

// ErrInvalidTitle is returned when a title is empty or too long.
var ErrInvalidTitle = errors.New("title must be non-empty and at most 120 characters")

// Store is the repository surface the catalog service needs. *Repository
// implements it; tests substitute an in-memory fake.
type Store interface {
	CreateOffering(ctx context.Context, o *models.SkillOffering) error
	CreateRequest(ctx context.Context, q *models.SkillRequest) error
	GetOffering(ctx context.Context, id uuid.UUID) (*models.SkillOffering, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.SkillRequest, error)
	SetOfferingActive(ctx context.Context, id uuid.UUID, active bool) error
	SetRequestActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteOffering(ctx context.Context, id uuid.UUID) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	CountOpenSwapsByOffering(ctx context.Context, offeringID uuid.UUID) (int, error)
	CountOpenSwapsByRequest(ctx context.Context, requestID uuid.UUID) (int, error)
	ListActiveOfferingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillOffering, error)
	ListActiveOfferingsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillOffering, error)
	ListActiveRequestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillRequest, error)
	ListActiveRequestsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillRequest, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// SkillFields are the caller-supplied attributes of an offering or request.
type SkillFields struct {
	Title           string
	Description     string
	CategoryID      uuid.UUID
	ExperienceLevel string
	TeachingMethod  string
}

type Service interface {
	CreateOffering(ctx context.Context, ownerID uuid.UUID, f SkillFields) (*models.SkillOffering, error)
	CreateRequest(ctx context.Context, ownerID uuid.UUID, f SkillFields) (*models.SkillRequest, error)
	DeactivateOffering(ctx context.Context, id, byUserID uuid.UUID) error
	DeactivateRequest(ctx context.Context, id, byUserID uuid.UUID) error
	DeleteOffering(ctx context.Context, id, byUserID uuid.UUID) error
	DeleteRequest(ctx context.Context, id, byUserID uuid.UUID) error
	GetOffering(ctx context.Context, id uuid.UUID) (*models.SkillOffering, error)
	ListActiveOfferingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillOffering, error)
	ListActiveOfferingsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillOffering, error)
	ListActiveRequestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillRequest, error)
	ListActiveRequestsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillRequest, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func validateFields(f *SkillFields) error {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" || len(f.Title) > models.MaxTitleLength {
		return ErrInvalidTitle
	}
	if f.CategoryID == uuid.Nil {
		return models.ErrNotFound
	}
	return nil
}

func (s *service) CreateOffering(ctx context.Context, ownerID uuid.UUID, f SkillFields) (*models.SkillOffering, error) {
	if err := validateFields(&f); err != nil {
		return nil, err
	}
	o := &models.SkillOffering{
		ID:              uuid.New(),
		UserID:          ownerID,
		Title:           f.Title,
		Description:     f.Description,
		CategoryID:      f.CategoryID,
		ExperienceLevel: f.ExperienceLevel,
		TeachingMethod:  f.TeachingMethod,
	}
	if err := s.store.CreateOffering(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) CreateRequest(ctx context.Context, ownerID uuid.UUID, f SkillFields) (*models.SkillRequest, error) {
	if err := validateFields(&f); err != nil {
		return nil, err
	}
	q := &models.SkillRequest{
		ID:              uuid.New(),
		UserID:          ownerID,
		Title:           f.Title,
		Description:     f.Description,
		CategoryID:      f.CategoryID,
		ExperienceLevel: f.ExperienceLevel,
		TeachingMethod:  f.TeachingMethod,
	}
	if err := s.store.CreateRequest(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// DeactivateOffering hides the offering from discovery without deleting it,
// preserving referential integrity for existing swaps.
func (s *service) DeactivateOffering(ctx context.Context, id, byUserID uuid.UUID) error {
	o, err := s.store.GetOffering(ctx, id)
	if err != nil {
		return err
	}
	if o.UserID != byUserID {
		return models.ErrForbidden
	}
	return s.store.SetOfferingActive(ctx, id, false)
}

func (s *service) DeactivateRequest(ctx context.Context, id, byUserID uuid.UUID) error {
	q, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if q.UserID != byUserID {
		return models.ErrForbidden
	}
	return s.store.SetRequestActive(ctx, id, false)
}

// DeleteOffering removes the offering. Deletion is blocked while any
// non-terminal swap references it; callers must deactivate first and let
// open swaps finish or be cancelled.
func (s *service) DeleteOffering(ctx context.Context, id, byUserID uuid.UUID) error {
	o, err := s.store.GetOffering(ctx, id)
	if err != nil {
		return err
	}
	if o.UserID != byUserID {
		return models.ErrForbidden
	}
	open, err := s.store.CountOpenSwapsByOffering(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return models.ErrConflict
	}
	return s.store.DeleteOffering(ctx, id)
}

func (s *service) DeleteRequest(ctx context.Context, id, byUserID uuid.UUID) error {
	q, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if q.UserID != byUserID {
		return models.ErrForbidden
	}
	open, err := s.store.CountOpenSwapsByRequest(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return models.ErrConflict
	}
	return s.store.DeleteRequest(ctx, id)
}

func (s *service) GetOffering(ctx context.Context, id uuid.UUID) (*models.SkillOffering, error) {
	return s.store.GetOffering(ctx, id)
}

func (s *service) ListActiveOfferingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillOffering, error) {
	return s.store.ListActiveOfferingsByOwner(ctx, ownerID)
}

func (s *service) ListActiveOfferingsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillOffering, error) {
	return s.store.ListActiveOfferingsByCategory(ctx, categoryID)
}

func (s *service) ListActiveRequestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillRequest, error) {
	return s.store.ListActiveRequestsByOwner(ctx, ownerID)
}

func (s *service) ListActiveRequestsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillRequest, error) {
	return s.store.ListActiveRequestsByCategory(ctx, categoryID)
}

func (s *service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.store.ListCategories(ctx)
}
