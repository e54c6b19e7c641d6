package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"book-my-session/core/database"
	"book-my-session/modules/speaker/entity"

	"github.com/google/uuid"
)

type SpeakerRepository interface {
	// Upsert creates the owner's profile or updates expertise and price in place.
	// The slug of an existing profile is kept.
	Upsert(ctx context.Context, q database.Queryer, profile *entity.SpeakerProfile) (*entity.SpeakerProfile, error)
	// The getters return nil, nil when nothing matches.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SpeakerProfile, error)
	GetByIDOrUserID(ctx context.Context, id uuid.UUID) (*entity.SpeakerProfile, error)
	GetBySlug(ctx context.Context, slug string) (*entity.SpeakerProfile, error)
	List(ctx context.Context, filter entity.SpeakerFilter) ([]entity.SpeakerListing, error)
}

type speakerRepository struct {
	db database.IDatabase
}

func NewSpeakerRepository(db database.IDatabase) SpeakerRepository {
	return &speakerRepository{db: db}
}

const profileColumns = `sp.id, sp.user_id, sp.slug, sp.expertise, sp.price_per_session, sp.created_at, sp.updated_at`

func (r *speakerRepository) Upsert(ctx context.Context, q database.Queryer, profile *entity.SpeakerProfile) (*entity.SpeakerProfile, error) {
	query := `
		INSERT INTO speaker_profiles (id, user_id, slug, expertise, price_per_session, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET expertise = excluded.expertise,
			price_per_session = excluded.price_per_session,
			updated_at = excluded.updated_at
	`
	_, err := q.ExecContext(ctx, query,
		profile.ID, profile.UserID, profile.Slug, profile.Expertise, profile.PricePerSession,
		profile.CreatedAt.UTC(), profile.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert speaker profile: %w", err)
	}

	var saved entity.SpeakerProfile
	if err := q.GetContext(ctx, &saved, `SELECT `+profileColumns+` FROM speaker_profiles sp WHERE sp.user_id = ?`, profile.UserID); err != nil {
		return nil, fmt.Errorf("reload speaker profile: %w", err)
	}
	return &saved, nil
}

func (r *speakerRepository) get(ctx context.Context, where string, args ...any) (*entity.SpeakerProfile, error) {
	var profile entity.SpeakerProfile
	if err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM speaker_profiles sp WHERE `+where, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get speaker profile: %w", err)
	}
	return &profile, nil
}

func (r *speakerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SpeakerProfile, error) {
	return r.get(ctx, `sp.id = ?`, id)
}

func (r *speakerRepository) GetByIDOrUserID(ctx context.Context, id uuid.UUID) (*entity.SpeakerProfile, error) {
	return r.get(ctx, `sp.id = ? OR sp.user_id = ? ORDER BY sp.created_at LIMIT 1`, id, id)
}

func (r *speakerRepository) GetBySlug(ctx context.Context, slug string) (*entity.SpeakerProfile, error) {
	return r.get(ctx, `sp.slug = ?`, slug)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List applies every filter through bound parameters.
func (r *speakerRepository) List(ctx context.Context, filter entity.SpeakerFilter) ([]entity.SpeakerListing, error) {
	conditions := []string{"1 = 1"}
	args := []any{}

	if expertise := strings.TrimSpace(filter.Expertise); expertise != "" {
		conditions = append(conditions, `LOWER(sp.expertise) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(expertise))+"%")
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, `sp.price_per_session >= ?`)
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, `sp.price_per_session <= ?`)
		args = append(args, *filter.MaxPrice)
	}

	query := `
		SELECT ` + profileColumns + `, u.first_name, u.last_name, u.email
		FROM speaker_profiles sp
		JOIN users u ON u.id = sp.user_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY sp.price_per_session, sp.id
	`
	listings := []entity.SpeakerListing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	return listings, nil
}
