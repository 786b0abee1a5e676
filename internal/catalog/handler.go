package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/middleware"
	"github.com/skillswap/backend/internal/models"
)

type SkillRequestBody struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	CategoryID      string `json:"category_id"`
	ExperienceLevel string `json:"experience_level"`
	TeachingMethod  string `json:"teaching_method"`
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

func (h *Handler) CreateOffering(w http.ResponseWriter, r *http.Request) {
	user, fields, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}
	o, err := h.svc.CreateOffering(r.Context(), user.ID, fields)
	if err != nil {
		h.writeError(w, "create offering failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user, fields, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}
	req, err := h.svc.CreateRequest(r.Context(), user.ID, fields)
	if err != nil {
		h.writeError(w, "create request failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) decodeCreate(w http.ResponseWriter, r *http.Request) (*models.User, SkillFields, bool) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, SkillFields{}, false
	}
	var body SkillRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return nil, SkillFields{}, false
	}
	categoryID, err := uuid.Parse(body.CategoryID)
	if err != nil {
		http.Error(w, "invalid category_id", http.StatusBadRequest)
		return nil, SkillFields{}, false
	}
	return user, SkillFields{
		Title:           body.Title,
		Description:     body.Description,
		CategoryID:      categoryID,
		ExperienceLevel: body.ExperienceLevel,
		TeachingMethod:  body.TeachingMethod,
	}, true
}

func (h *Handler) GetOffering(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid offering id", http.StatusBadRequest)
		return
	}
	o, err := h.svc.GetOffering(r.Context(), id)
	if err != nil {
		h.writeError(w, "get offering failed", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ListOfferings handles GET /offerings, filtered by owner_id or category_id.
// Without a filter it lists the caller's own active offerings.
func (h *Handler) ListOfferings(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid category_id", http.StatusBadRequest)
			return
		}
		list, err := h.svc.ListActiveOfferingsByCategory(r.Context(), categoryID)
		if err != nil {
			h.writeError(w, "list offerings failed", err)
			return
		}
		writeJSON(w, http.StatusOK, emptyIfNilOfferings(list))
		return
	}
	ownerID := user.ID
	if raw := q.Get("owner_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid owner_id", http.StatusBadRequest)
			return
		}
		ownerID = parsed
	}
	list, err := h.svc.ListActiveOfferingsByOwner(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, "list offerings failed", err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNilOfferings(list))
}

// ListRequests mirrors ListOfferings for skill requests.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid category_id", http.StatusBadRequest)
			return
		}
		list, err := h.svc.ListActiveRequestsByCategory(r.Context(), categoryID)
		if err != nil {
			h.writeError(w, "list requests failed", err)
			return
		}
		writeJSON(w, http.StatusOK, emptyIfNilRequests(list))
		return
	}
	ownerID := user.ID
	if raw := q.Get("owner_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid owner_id", http.StatusBadRequest)
			return
		}
		ownerID = parsed
	}
	list, err := h.svc.ListActiveRequestsByOwner(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, "list requests failed", err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNilRequests(list))
}

func (h *Handler) DeactivateOffering(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.svc.DeactivateOffering, "deactivate offering failed")
}

func (h *Handler) DeactivateRequest(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.svc.DeactivateRequest, "deactivate request failed")
}

func (h *Handler) DeleteOffering(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.svc.DeleteOffering, "delete offering failed")
}

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.svc.DeleteRequest, "delete request failed")
}

func (h *Handler) mutateByID(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, byUserID uuid.UUID) error, msg string) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := op(r.Context(), id, user.ID); err != nil {
		h.writeError(w, msg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	list, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.log.Error("list categories failed", "error", err)
		http.Error(w, "list categories failed", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Category{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrInvalidTitle):
		http.Error(w, ErrInvalidTitle.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrConflict):
		http.Error(w, "open swaps reference this skill", http.StatusConflict)
	default:
		h.log.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func emptyIfNilOfferings(list []*models.SkillOffering) []*models.SkillOffering {
	if list == nil {
		return []*models.SkillOffering{}
	}
	return list
}

func emptyIfNilRequests(list []*models.SkillRequest) []*models.SkillRequest {
	if list == nil {
		return []*models.SkillRequest{}
	}
	return list
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
