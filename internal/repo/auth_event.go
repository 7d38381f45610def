package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crucial707/social-auth/internal/models"
)

// AuthEventRepo persists signup and login events.
type AuthEventRepo struct {
	db *sql.DB
}

// NewAuthEventRepo returns a new AuthEventRepo.
func NewAuthEventRepo(db *sql.DB) *AuthEventRepo {
	return &AuthEventRepo{db: db}
}

// Record stores e. ID and CreatedAt are assigned by the database.
func (r *AuthEventRepo) Record(ctx context.Context, e *models.AuthEvent) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO auth_events (user_id, action, ip, user_agent) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		e.UserID, e.Action, e.IP, e.UserAgent,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}
	return nil
}

// ListForUser returns the user's events, newest first.
func (r *AuthEventRepo) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.AuthEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, ip, user_agent, created_at FROM auth_events WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	defer rows.Close()

	entries := []models.AuthEvent{}
	for rows.Next() {
		var e models.AuthEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.IP, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneBefore deletes events older than cutoff and reports how many went.
func (r *AuthEventRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune auth events: %w", err)
	}
	return res.RowsAffected()
}
