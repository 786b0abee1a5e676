package exchange

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/middleware"
	"github.com/skillswap/backend/internal/models"
)

type ReciprocalRequest struct {
	OfferingID            string `json:"offering_id"`
	CounterpartID         string `json:"counterpart_id"`
	CounterpartOfferingID string `json:"counterpart_offering_id"`
}

type CreditFundedRequest struct {
	OfferingID   string `json:"offering_id"`
	CreditAmount int    `json:"credit_amount"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// InitiateReciprocal handles POST /exchanges/reciprocal.
func (h *Handler) InitiateReciprocal(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req ReciprocalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	offeringID, err := uuid.Parse(req.OfferingID)
	if err != nil {
		http.Error(w, "invalid offering_id", http.StatusBadRequest)
		return
	}
	counterpartID, err := uuid.Parse(req.CounterpartID)
	if err != nil {
		http.Error(w, "invalid counterpart_id", http.StatusBadRequest)
		return
	}
	counterpartOfferingID, err := uuid.Parse(req.CounterpartOfferingID)
	if err != nil {
		http.Error(w, "invalid counterpart_offering_id", http.StatusBadRequest)
		return
	}
	e, err := h.svc.InitiateReciprocal(r.Context(), user.ID, offeringID, counterpartID, counterpartOfferingID)
	if err != nil {
		h.writeError(w, "initiate exchange failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// InitiateCreditFunded handles POST /exchanges/credit. The balance check
// middleware has already vetted credit_amount against the caller's balance.
func (h *Handler) InitiateCreditFunded(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req CreditFundedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	offeringID, err := uuid.Parse(req.OfferingID)
	if err != nil {
		http.Error(w, "invalid offering_id", http.StatusBadRequest)
		return
	}
	e, err := h.svc.InitiateCreditFunded(r.Context(), user.ID, offeringID, req.CreditAmount)
	if err != nil {
		h.writeError(w, "initiate exchange failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Get handles GET /exchanges/{id}. Only participants may view an exchange.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid exchange id", http.StatusBadRequest)
		return
	}
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get exchange failed", err)
		return
	}
	if e.User1ID != user.ID && e.User2ID != user.ID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// List handles GET /exchanges.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list exchanges failed", "error", err)
		http.Error(w, "list exchanges failed", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Exchange{}
	}
	writeJSON(w, http.StatusOK, list)
}

// SwapTransition handles POST /swaps/{id}/{accept|decline|cancel|complete}.
func (h *Handler) SwapTransition(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserFromCtx(r.Context())
		if user == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		swapID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid swap id", http.StatusBadRequest)
			return
		}
		var sw *models.Swap
		switch action {
		case "accept":
			sw, err = h.svc.AcceptSwap(r.Context(), swapID, user.ID)
		case "decline":
			sw, err = h.svc.DeclineSwap(r.Context(), swapID, user.ID)
		case "cancel":
			sw, err = h.svc.CancelSwap(r.Context(), swapID, user.ID)
		case "complete":
			sw, err = h.svc.CompleteSwap(r.Context(), swapID, user.ID)
		default:
			http.Error(w, "unknown action", http.StatusNotFound)
			return
		}
		if err != nil {
			h.writeError(w, "swap transition failed", err)
			return
		}
		writeJSON(w, http.StatusOK, sw)
	}
}

// writeError maps domain sentinels to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrInvalidState):
		http.Error(w, "invalid state for this action", http.StatusConflict)
	case errors.Is(err, models.ErrInvalidParticipants):
		http.Error(w, "invalid participants", http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidAmount):
		http.Error(w, "invalid amount", http.StatusBadRequest)
	case errors.Is(err, models.ErrInsufficientBalance):
		http.Error(w, "insufficient balance", http.StatusPaymentRequired)
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrDuplicate):
		http.Error(w, "conflict", http.StatusConflict)
	default:
		h.log.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
