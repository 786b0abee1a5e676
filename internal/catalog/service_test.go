package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory Store fake. Lets us test the real service logic without a
// database.
// ---------------------------------------------------------------------------

type memStore struct {
	mu        sync.Mutex
	offerings map[uuid.UUID]*models.SkillOffering
	requests  map[uuid.UUID]*models.SkillRequest
	// open swap counts keyed by offering/request id
	openByOffering map[uuid.UUID]int
	openByRequest  map[uuid.UUID]int
	categories     []*models.Category
}

func newMemStore() *memStore {
	return &memStore{
		offerings:      make(map[uuid.UUID]*models.SkillOffering),
		requests:       make(map[uuid.UUID]*models.SkillRequest),
		openByOffering: make(map[uuid.UUID]int),
		openByRequest:  make(map[uuid.UUID]int),
	}
}

func (m *memStore) CreateOffering(_ context.Context, o *models.SkillOffering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.IsActive = true
	cp := *o
	m.offerings[o.ID] = &cp
	return nil
}

func (m *memStore) CreateRequest(_ context.Context, q *models.SkillRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.IsActive = true
	cp := *q
	m.requests[q.ID] = &cp
	return nil
}

func (m *memStore) GetOffering(_ context.Context, id uuid.UUID) (*models.SkillOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offerings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetRequest(_ context.Context, id uuid.UUID) (*models.SkillRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.requests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *memStore) SetOfferingActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.offerings[id]; ok {
		o.IsActive = active
	}
	return nil
}

func (m *memStore) SetRequestActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.requests[id]; ok {
		q.IsActive = active
	}
	return nil
}

func (m *memStore) DeleteOffering(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.offerings, id)
	return nil
}

func (m *memStore) DeleteRequest(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, id)
	return nil
}

func (m *memStore) CountOpenSwapsByOffering(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openByOffering[id], nil
}

func (m *memStore) CountOpenSwapsByRequest(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openByRequest[id], nil
}

func (m *memStore) ListActiveOfferingsByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.SkillOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SkillOffering
	for _, o := range m.offerings {
		if o.UserID == ownerID && o.IsActive {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveOfferingsByCategory(_ context.Context, categoryID uuid.UUID) ([]*models.SkillOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SkillOffering
	for _, o := range m.offerings {
		if o.CategoryID == categoryID && o.IsActive {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveRequestsByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.SkillRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SkillRequest
	for _, q := range m.requests {
		if q.UserID == ownerID && q.IsActive {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveRequestsByCategory(_ context.Context, categoryID uuid.UUID) ([]*models.SkillRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SkillRequest
	for _, q := range m.requests {
		if q.CategoryID == categoryID && q.IsActive {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ListCategories(_ context.Context) ([]*models.Category, error) {
	return m.categories, nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func fields() SkillFields {
	return SkillFields{
		Title:           "Conversational Spanish",
		Description:     "From beginner to cafe-ordering fluency",
		CategoryID:      uuid.New(),
		ExperienceLevel: "intermediate",
		TeachingMethod:  "video call",
	}
}

func TestCreateOffering_Validation(t *testing.T) {
	svc := NewService(newMemStore())
	owner := uuid.New()
	ctx := context.Background()

	f := fields()
	o, err := svc.CreateOffering(ctx, owner, f)
	if err != nil {
		t.Fatalf("CreateOffering: %v", err)
	}
	if !o.IsActive {
		t.Error("new offering should be active")
	}
	if o.UserID != owner {
		t.Error("offering should belong to its creator")
	}

	f.Title = "   "
	if _, err := svc.CreateOffering(ctx, owner, f); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("blank title: expected ErrInvalidTitle, got %v", err)
	}

	f.Title = strings.Repeat("x", models.MaxTitleLength+1)
	if _, err := svc.CreateOffering(ctx, owner, f); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("overlong title: expected ErrInvalidTitle, got %v", err)
	}

	f = fields()
	f.CategoryID = uuid.Nil
	if _, err := svc.CreateOffering(ctx, owner, f); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing category: expected ErrNotFound, got %v", err)
	}
}

func TestDeactivateOffering(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	owner := uuid.New()
	ctx := context.Background()

	o, err := svc.CreateOffering(ctx, owner, fields())
	if err != nil {
		t.Fatalf("CreateOffering: %v", err)
	}

	if err := svc.DeactivateOffering(ctx, o.ID, uuid.New()); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("non-owner deactivate: expected ErrForbidden, got %v", err)
	}

	if err := svc.DeactivateOffering(ctx, o.ID, owner); err != nil {
		t.Fatalf("DeactivateOffering: %v", err)
	}
	got, _ := svc.GetOffering(ctx, o.ID)
	if got.IsActive {
		t.Error("offering should be inactive after deactivate")
	}

	// Deactivated offerings drop out of discovery but still exist.
	listed, _ := svc.ListActiveOfferingsByOwner(ctx, owner)
	if len(listed) != 0 {
		t.Errorf("inactive offering should not be listed, got %d", len(listed))
	}
}

func TestDeleteOffering_BlockedByOpenSwaps(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	owner := uuid.New()
	ctx := context.Background()

	o, err := svc.CreateOffering(ctx, owner, fields())
	if err != nil {
		t.Fatalf("CreateOffering: %v", err)
	}

	// A pending swap references the offering: delete must conflict.
	store.openByOffering[o.ID] = 1
	if err := svc.DeleteOffering(ctx, o.ID, owner); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := svc.GetOffering(ctx, o.ID); err != nil {
		t.Error("offering must survive a blocked delete")
	}

	// Non-owner can never delete, conflict or not.
	if err := svc.DeleteOffering(ctx, o.ID, uuid.New()); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	// Once the swap is terminal the delete goes through.
	store.openByOffering[o.ID] = 0
	if err := svc.DeleteOffering(ctx, o.ID, owner); err != nil {
		t.Fatalf("DeleteOffering: %v", err)
	}
	if _, err := svc.GetOffering(ctx, o.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteRequest_BlockedByOpenSwaps(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	owner := uuid.New()
	ctx := context.Background()

	q, err := svc.CreateRequest(ctx, owner, fields())
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	store.openByRequest[q.ID] = 2
	if err := svc.DeleteRequest(ctx, q.ID, owner); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	store.openByRequest[q.ID] = 0
	if err := svc.DeleteRequest(ctx, q.ID, owner); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
}
