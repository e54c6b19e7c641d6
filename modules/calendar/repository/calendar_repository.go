package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"book-my-session/core/database"
	"book-my-session/modules/calendar/entity"

	"github.com/google/uuid"
)

type CalendarRepository interface {
	// GetActiveConnection returns nil, nil when the user has no active connection.
	GetActiveConnection(ctx context.Context, userID uuid.UUID, provider string) (*entity.CalendarConnection, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.CalendarConnection, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error
	// Disconnect deactivates the connection. It returns false when nothing was active.
	Disconnect(ctx context.Context, userID uuid.UUID, provider string) (bool, error)
}

type calendarRepository struct {
	db database.IDatabase
}

func NewCalendarRepository(db database.IDatabase) CalendarRepository {
	return &calendarRepository{db: db}
}

const connectionColumns = `id, user_id, provider, access_token, refresh_token, token_expires_at, calendar_email, is_active, created_at, updated_at`

func (r *calendarRepository) GetActiveConnection(ctx context.Context, userID uuid.UUID, provider string) (*entity.CalendarConnection, error) {
	var conn entity.CalendarConnection
	query := `SELECT ` + connectionColumns + ` FROM calendar_connections WHERE user_id = ? AND provider = ? AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &conn, query, userID, provider); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get calendar connection: %w", err)
	}
	return &conn, nil
}

func (r *calendarRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.CalendarConnection, error) {
	connections := []entity.CalendarConnection{}
	query := `SELECT ` + connectionColumns + ` FROM calendar_connections WHERE user_id = ? AND is_active = TRUE ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &connections, query, userID); err != nil {
		return nil, fmt.Errorf("list calendar connections: %w", err)
	}
	return connections, nil
}

func (r *calendarRepository) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error {
	var expiry any
	if expiresAt != nil {
		expiry = expiresAt.UTC()
	}
	query := `
		UPDATE calendar_connections
		SET access_token = ?, refresh_token = ?, token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiry, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update calendar tokens: %w", err)
	}
	return nil
}

func (r *calendarRepository) Disconnect(ctx context.Context, userID uuid.UUID, provider string) (bool, error) {
	query := `
		UPDATE calendar_connections
		SET is_active = FALSE, updated_at = ?
		WHERE user_id = ? AND provider = ? AND is_active = TRUE
	`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID, provider)
	if err != nil {
		return false, fmt.Errorf("disconnect calendar: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("disconnect calendar rows affected: %w", err)
	}
	return n > 0, nil
}
