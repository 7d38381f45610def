package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/social-auth/internal/auth"
	"github.com/crucial707/social-auth/internal/middleware"
	"github.com/crucial707/social-auth/internal/models"
	"github.com/crucial707/social-auth/internal/repo"
)

type stubEvents struct {
	recorded []models.AuthEvent
	err      error

	gotUser           string
	gotLimit, gotOffs int
	list              []models.AuthEvent
}

func (s *stubEvents) Record(ctx context.Context, e *models.AuthEvent) error {
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, *e)
	return nil
}

func (s *stubEvents) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.AuthEvent, error) {
	s.gotUser, s.gotLimit, s.gotOffs = userID, limit, offset
	return s.list, s.err
}

func TestAuthHandler_Login_RecordsEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, fullname, email, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(loginColumns).
			AddRow("u-1", "alice", "Alice A", "alice@example.com", hash, "{}", "{}", "", "", now, now))

	events := &stubEvents{}
	h := newAuthHandler(db)
	h.Events = events

	req := postJSON(t, "/login", map[string]string{"username": "alice", "password": "secret1"})
	req.RemoteAddr = "192.0.2.7:51000"
	req.Header.Set("User-Agent", "social-cli/1")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if len(events.recorded) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(events.recorded))
	}
	got := events.recorded[0]
	if got.UserID != "u-1" || got.Action != models.EventLogin || got.IP != "192.0.2.7" || got.UserAgent != "social-cli/1" {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestAuthHandler_Login_EventFailureDoesNotFailLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := auth.HashPassword("secret1")
	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, fullname, email, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(loginColumns).
			AddRow("u-1", "alice", "Alice A", "alice@example.com", hash, "{}", "{}", "", "", now, now))

	h := newAuthHandler(db)
	h.Events = &stubEvents{err: errors.New("db down")}

	rr := httptest.NewRecorder()
	h.Login(rr, postJSON(t, "/login", map[string]string{"username": "alice", "password": "secret1"}))

	if rr.Code != http.StatusOK || sessionCookie(rr) == nil {
		t.Errorf("login should still succeed: code=%d", rr.Code)
	}
}

func TestEventsHandler_ListMine(t *testing.T) {
	events := &stubEvents{list: []models.AuthEvent{{ID: 1, UserID: "u-1", Action: models.EventSignup}}}
	h := &EventsHandler{Events: events}

	req := httptest.NewRequest("GET", "/me/events?limit=5&offset=10", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: "u-1"}))
	rr := httptest.NewRecorder()
	h.ListMine(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if events.gotUser != "u-1" || events.gotLimit != 5 || events.gotOffs != 10 {
		t.Errorf("unexpected query: user=%q limit=%d offset=%d", events.gotUser, events.gotLimit, events.gotOffs)
	}
	var out []models.AuthEvent
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Action != models.EventSignup {
		t.Errorf("unexpected body: %+v", out)
	}
}

func TestEventsHandler_ListMine_ClampsParams(t *testing.T) {
	events := &stubEvents{list: []models.AuthEvent{}}
	h := &EventsHandler{Events: events}

	req := httptest.NewRequest("GET", "/me/events?limit=1000&offset=-3", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: "u-1"}))
	rr := httptest.NewRecorder()
	h.ListMine(rr, req)

	if events.gotLimit != 20 || events.gotOffs != 0 {
		t.Errorf("expected defaults, got limit=%d offset=%d", events.gotLimit, events.gotOffs)
	}
}

func TestEventsHandler_ListMine_StoreError(t *testing.T) {
	h := &EventsHandler{Events: &stubEvents{err: errors.New("boom")}}

	req := httptest.NewRequest("GET", "/me/events", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: "u-1"}))
	rr := httptest.NewRecorder()
	h.ListMine(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
	if msg := decodeError(t, rr); msg != ErrMessageInternal {
		t.Errorf("unexpected error: %q", msg)
	}
}

var _ EventRecorder = (*repo.AuthEventRepo)(nil)
var _ EventLister = (*repo.AuthEventRepo)(nil)
