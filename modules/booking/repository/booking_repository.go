package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"book-my-session/core/database"
	"book-my-session/modules/booking/entity"

	"github.com/google/uuid"
)

type BookingRepository interface {
	// ClaimExclusive flips the slot's claimed flag and inserts the booking in one
	// transaction. It returns false when the slot was not claimable.
	ClaimExclusive(ctx context.Context, booking *entity.Booking) (bool, error)
	// InsertShared relies on the (user_id, slot_id) constraint. It returns false
	// when the caller already holds a booking for the slot.
	InsertShared(ctx context.Context, booking *entity.Booking) (bool, error)
	ExistsForUserSlot(ctx context.Context, userID, slotID uuid.UUID) (bool, error)
	// GetDetail returns nil, nil when the booking does not exist.
	GetDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.BookingDetail, error)
	// MarkNotified sets notified_at once. It returns false if it was already set.
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ListUndispatched(ctx context.Context, createdBefore time.Time, limit int) ([]uuid.UUID, error)
}

type bookingRepository struct {
	db database.IDatabase
}

func NewBookingRepository(db database.IDatabase) BookingRepository {
	return &bookingRepository{db: db}
}

const insertBookingQuery = `
	INSERT INTO bookings (id, reference, slot_id, user_id, speaker_profile_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

const detailQuery = `
	SELECT b.id, b.reference, b.slot_id, b.user_id, b.speaker_profile_id, b.created_at, b.notified_at,
		s.slot_start, s.slot_end, sp.user_id AS speaker_user_id, sp.slug AS speaker_slug
	FROM bookings b
	JOIN slots s ON s.id = b.slot_id
	JOIN speaker_profiles sp ON sp.id = b.speaker_profile_id
`

func bookingArgs(b *entity.Booking) []any {
	return []any{b.ID, b.Reference, b.SlotID, b.UserID, b.SpeakerProfileID, b.CreatedAt.UTC()}
}

func (r *bookingRepository) ClaimExclusive(ctx context.Context, booking *entity.Booking) (bool, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE slots SET claimed = TRUE WHERE id = ? AND speaker_profile_id = ? AND claimed = FALSE`,
		booking.SlotID, booking.SpeakerProfileID,
	)
	if err != nil {
		return false, fmt.Errorf("claim slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim slot rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, insertBookingQuery, bookingArgs(booking)...); err != nil {
		return false, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit claim: %w", err)
	}
	return true, nil
}

func (r *bookingRepository) InsertShared(ctx context.Context, booking *entity.Booking) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertBookingQuery+` ON CONFLICT (user_id, slot_id) DO NOTHING`, bookingArgs(booking)...)
	if err != nil {
		return false, fmt.Errorf("insert booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert booking rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *bookingRepository) ExistsForUserSlot(ctx context.Context, userID, slotID uuid.UUID) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings WHERE user_id = ? AND slot_id = ?`, userID, slotID); err != nil {
		return false, fmt.Errorf("check booking: %w", err)
	}
	return count > 0, nil
}

func (r *bookingRepository) GetDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	var detail entity.BookingDetail
	if err := r.db.GetContext(ctx, &detail, detailQuery+` WHERE b.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return &detail, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.BookingDetail, error) {
	details := []entity.BookingDetail{}
	if err := r.db.SelectContext(ctx, &details, detailQuery+` WHERE b.user_id = ? ORDER BY s.slot_start, b.id`, userID); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return details, nil
}

func (r *bookingRepository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET notified_at = ? WHERE id = ? AND notified_at IS NULL`, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("mark booking notified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark booking notified rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *bookingRepository) ListUndispatched(ctx context.Context, createdBefore time.Time, limit int) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `SELECT id FROM bookings WHERE notified_at IS NULL AND created_at < ? ORDER BY created_at LIMIT ?`
	if err := r.db.SelectContext(ctx, &ids, query, createdBefore.UTC(), limit); err != nil {
		return nil, fmt.Errorf("list undispatched bookings: %w", err)
	}
	return ids, nil
}
