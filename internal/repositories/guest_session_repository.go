package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/cart-service/internal/utils"
)

type guestSessionRepository struct {
	DB *sql.DB
}

func NewGuestSessionRepo(db *sql.DB) GuestSessionRepository {
	return &guestSessionRepository{DB: db}
}

func (r *guestSessionRepository) Touch(ctx context.Context, sessionID string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO guest_sessions (session_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE SET updated_at = NOW()
	`

	if _, err := r.DB.ExecContext(dbCtx, query, sessionID); err != nil {
		return fmt.Errorf("failed to record guest session: %w", err)
	}

	return nil
}

func (r *guestSessionRepository) DeleteBySessionID(ctx context.Context, sessionID string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(dbCtx, `DELETE FROM guest_sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete guest session: %w", err)
	}

	return nil
}
