package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"book-my-session/core/database"
	"book-my-session/modules/slot/entity"

	"github.com/google/uuid"
)

type SlotRepository interface {
	// InsertBatch writes all slots in one statement. With skipExisting, rows whose
	// (speaker_profile_id, slot_start) already exist are left untouched.
	InsertBatch(ctx context.Context, q database.Queryer, slots []entity.Slot, skipExisting bool) (int64, error)
	DeleteByProfile(ctx context.Context, q database.Queryer, profileID uuid.UUID) error
	CountBookingsForProfile(ctx context.Context, q database.Queryer, profileID uuid.UUID) (int, error)
	// GetByID returns nil, nil when the slot does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	ListFree(ctx context.Context, profileID uuid.UUID) ([]entity.Slot, error)
	ListWithOccupancy(ctx context.Context, profileID uuid.UUID) ([]entity.SlotOccupancy, error)
}

type slotRepository struct {
	db database.IDatabase
}

func NewSlotRepository(db database.IDatabase) SlotRepository {
	return &slotRepository{db: db}
}

const slotColumns = `s.id, s.speaker_profile_id, s.slot_start, s.slot_end, s.claimed, s.created_at`

func (r *slotRepository) InsertBatch(ctx context.Context, q database.Queryer, slots []entity.Slot, skipExisting bool) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO slots (id, speaker_profile_id, slot_start, slot_end, claimed, created_at) VALUES `)
	args := make([]any, 0, len(slots)*6)
	for i, s := range slots {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, s.ID, s.SpeakerProfileID, s.Start.UTC(), s.End.UTC(), s.Claimed, s.CreatedAt.UTC())
	}
	if skipExisting {
		sb.WriteString(` ON CONFLICT (speaker_profile_id, slot_start) DO NOTHING`)
	}

	res, err := q.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert slots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert slots rows affected: %w", err)
	}
	return n, nil
}

func (r *slotRepository) DeleteByProfile(ctx context.Context, q database.Queryer, profileID uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM slots WHERE speaker_profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}

func (r *slotRepository) CountBookingsForProfile(ctx context.Context, q database.Queryer, profileID uuid.UUID) (int, error) {
	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings WHERE speaker_profile_id = ?`, profileID); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func (r *slotRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	var slot entity.Slot
	query := `SELECT ` + slotColumns + ` FROM slots s WHERE s.id = ?`
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot %s: %w", id, err)
	}
	return &slot, nil
}

func (r *slotRepository) ListFree(ctx context.Context, profileID uuid.UUID) ([]entity.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots s
		WHERE s.speaker_profile_id = ?
		AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = s.id)
		ORDER BY s.slot_start, s.id
	`
	slots := []entity.Slot{}
	if err := r.db.SelectContext(ctx, &slots, query, profileID); err != nil {
		return nil, fmt.Errorf("list free slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) ListWithOccupancy(ctx context.Context, profileID uuid.UUID) ([]entity.SlotOccupancy, error) {
	query := `
		SELECT ` + slotColumns + `,
			(SELECT COUNT(*) FROM bookings b WHERE b.slot_id = s.id) AS booking_count
		FROM slots s
		WHERE s.speaker_profile_id = ?
		ORDER BY s.slot_start, s.id
	`
	slots := []entity.SlotOccupancy{}
	if err := r.db.SelectContext(ctx, &slots, query, profileID); err != nil {
		return nil, fmt.Errorf("list slot occupancy: %w", err)
	}
	return slots, nil
}
