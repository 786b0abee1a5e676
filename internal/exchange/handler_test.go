package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/middleware"
	"github.com/skillswap/backend/internal/models"
)

// stubService lets each test pin the service behavior per method.
type stubService struct {
	initiateReciprocal   func(ctx context.Context, initiatorID, offeringByInitiator, counterpartID, offeringByCounterpart uuid.UUID) (*models.Exchange, error)
	initiateCreditFunded func(ctx context.Context, learnerID, offeringID uuid.UUID, amount int) (*models.Exchange, error)
	transition           func(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error)
	get                  func(ctx context.Context, id uuid.UUID) (*models.Exchange, error)
	list                 func(ctx context.Context, userID uuid.UUID) ([]*models.Exchange, error)
}

func (s *stubService) InitiateReciprocal(ctx context.Context, a, b, c, d uuid.UUID) (*models.Exchange, error) {
	return s.initiateReciprocal(ctx, a, b, c, d)
}

func (s *stubService) InitiateCreditFunded(ctx context.Context, learnerID, offeringID uuid.UUID, amount int) (*models.Exchange, error) {
	return s.initiateCreditFunded(ctx, learnerID, offeringID, amount)
}

func (s *stubService) AcceptSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID)
}

func (s *stubService) DeclineSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID)
}

func (s *stubService) CancelSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID)
}

func (s *stubService) CompleteSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID)
}

func (s *stubService) FindExisting(context.Context, uuid.UUID, *uuid.UUID) (*models.Exchange, error) {
	return nil, nil
}

func (s *stubService) Get(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	return s.get(ctx, id)
}

func (s *stubService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Exchange, error) {
	return s.list(ctx, userID)
}

var _ Service = (*stubService)(nil)

func authedRequest(method, target string, body []byte, user *models.User) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

func TestInitiateCreditFundedHandler(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	offeringID := uuid.New()
	want := &models.Exchange{ID: uuid.New(), User1ID: user.ID}

	svc := &stubService{
		initiateCreditFunded: func(_ context.Context, learnerID, gotOffering uuid.UUID, amount int) (*models.Exchange, error) {
			if learnerID != user.ID || gotOffering != offeringID || amount != 3 {
				t.Errorf("unexpected args: %s %s %d", learnerID, gotOffering, amount)
			}
			return want, nil
		},
	}
	h := NewHandler(svc, nil)

	body, _ := json.Marshal(CreditFundedRequest{OfferingID: offeringID.String(), CreditAmount: 3})
	rr := httptest.NewRecorder()
	h.InitiateCreditFunded(rr, authedRequest(http.MethodPost, "/api/v1/exchanges/credit", body, user))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var got models.Exchange
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("exchange id: got %s, want %s", got.ID, want.ID)
	}
}

func TestInitiateCreditFundedHandler_InsufficientBalance(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	svc := &stubService{
		initiateCreditFunded: func(context.Context, uuid.UUID, uuid.UUID, int) (*models.Exchange, error) {
			return nil, models.ErrInsufficientBalance
		},
	}
	h := NewHandler(svc, nil)

	body, _ := json.Marshal(CreditFundedRequest{OfferingID: uuid.New().String(), CreditAmount: 99})
	rr := httptest.NewRecorder()
	h.InitiateCreditFunded(rr, authedRequest(http.MethodPost, "/api/v1/exchanges/credit", body, user))

	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("status: got %d, want 402", rr.Code)
	}
}

func TestInitiateReciprocalHandler_Unauthorized(t *testing.T) {
	h := NewHandler(&stubService{}, nil)
	rr := httptest.NewRecorder()
	h.InitiateReciprocal(rr, authedRequest(http.MethodPost, "/api/v1/exchanges/reciprocal", []byte(`{}`), nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rr.Code)
	}
}

func TestSwapTransitionHandler(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	swapID := uuid.New()
	svc := &stubService{
		transition: func(_ context.Context, gotSwap, byUser uuid.UUID) (*models.Swap, error) {
			if gotSwap != swapID || byUser != user.ID {
				t.Errorf("unexpected args: %s %s", gotSwap, byUser)
			}
			return &models.Swap{ID: swapID, Status: models.SwapStatusAccepted}, nil
		},
	}
	h := NewHandler(svc, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/swaps/{id}/accept", h.SwapTransition("accept"))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/swaps/"+swapID.String()+"/accept", nil, user))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var got models.Swap
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != models.SwapStatusAccepted {
		t.Errorf("swap status: got %q, want accepted", got.Status)
	}
}

func TestSwapTransitionHandler_InvalidState(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	svc := &stubService{
		transition: func(context.Context, uuid.UUID, uuid.UUID) (*models.Swap, error) {
			return nil, models.ErrInvalidState
		},
	}
	h := NewHandler(svc, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/swaps/{id}/complete", h.SwapTransition("complete"))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/swaps/"+uuid.New().String()+"/complete", nil, user))

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409", rr.Code)
	}
}

func TestGetExchangeHandler_ForbiddenForOutsider(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	e := &models.Exchange{ID: uuid.New(), User1ID: uuid.New(), User2ID: uuid.New()}
	svc := &stubService{
		get: func(context.Context, uuid.UUID) (*models.Exchange, error) { return e, nil },
	}
	h := NewHandler(svc, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/exchanges/{id}", h.Get)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/exchanges/"+e.ID.String(), nil, user))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rr.Code)
	}
}
