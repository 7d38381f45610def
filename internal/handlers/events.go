package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/crucial707/social-auth/internal/middleware"
	"github.com/crucial707/social-auth/internal/models"
)

// EventLister reads a user's auth events, newest first.
type EventLister interface {
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.AuthEvent, error)
}

// EventsHandler serves the caller's own signup/login history.
type EventsHandler struct {
	Events EventLister
}

// ListMine returns recent events of the authenticated user. Query: limit (default 20, max 100), offset (default 0).
func (h *EventsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, "list events", errors.New("no user in request context"))
		return
	}

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.Events.ListForUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, r, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
