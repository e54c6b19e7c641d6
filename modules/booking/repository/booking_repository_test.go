package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"book-my-session/core/database"
	"book-my-session/modules/booking/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (BookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBookingRepository(database.New(sqlx.NewDb(db, "postgres"))), mock
}

func newBooking() *entity.Booking {
	return &entity.Booking{
		ID:               uuid.New(),
		Reference:        "BMS-7K2QX9PA",
		SlotID:           uuid.New(),
		UserID:           uuid.New(),
		SpeakerProfileID: uuid.New(),
		CreatedAt:        time.Date(2030, 1, 6, 10, 0, 0, 0, time.UTC),
	}
}

const claimQuery = `UPDATE slots SET claimed = TRUE WHERE id = $1 AND speaker_profile_id = $2 AND claimed = FALSE`

func TestClaimExclusive(t *testing.T) {
	t.Run("claims and inserts", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		b := newBooking()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(claimQuery)).
			WithArgs(b.SlotID, b.SpeakerProfileID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings`)).
			WithArgs(b.ID, b.Reference, b.SlotID, b.UserID, b.SpeakerProfileID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.ClaimExclusive(context.Background(), b)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already claimed rolls back without inserting", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		b := newBooking()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(claimQuery)).
			WithArgs(b.SlotID, b.SpeakerProfileID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		ok, err := repo.ClaimExclusive(context.Background(), b)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back the claim", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		b := newBooking()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(claimQuery)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings`)).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		ok, err := repo.ClaimExclusive(context.Background(), b)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInsertShared(t *testing.T) {
	repo, mock := newMockRepo(t)
	b := newBooking()
	query := regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id, slot_id) DO NOTHING`)

	mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.InsertShared(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.InsertShared(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotified(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	at := time.Date(2030, 1, 6, 10, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`UPDATE bookings SET notified_at = $1 WHERE id = $2 AND notified_at IS NULL`)

	mock.ExpectExec(query).WithArgs(at, id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(at, id).WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.MarkNotified(context.Background(), id, at)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkNotified(context.Background(), id, at)
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetail(t *testing.T) {
	repo, mock := newMockRepo(t)
	b := newBooking()
	speakerUser := uuid.New()
	start := time.Date(2030, 1, 7, 3, 30, 0, 0, time.UTC)

	cols := []string{"id", "reference", "slot_id", "user_id", "speaker_profile_id", "created_at", "notified_at",
		"slot_start", "slot_end", "speaker_user_id", "speaker_slug"}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE b.id = $1`)).
		WithArgs(b.ID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			b.ID.String(), b.Reference, b.SlotID.String(), b.UserID.String(), b.SpeakerProfileID.String(), b.CreatedAt, nil,
			start, start.Add(time.Hour), speakerUser.String(), "ana-tester-abc123",
		))

	detail, err := repo.GetDetail(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, b.Reference, detail.Reference)
	assert.Equal(t, speakerUser, detail.SpeakerUserID)
	assert.Nil(t, detail.NotifiedAt)
	assert.True(t, detail.SlotStart.Equal(start))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE b.id = $1`)).WillReturnError(sql.ErrNoRows)
	detail, err = repo.GetDetail(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, detail)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUndispatched(t *testing.T) {
	repo, mock := newMockRepo(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	before := time.Date(2030, 1, 6, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM bookings WHERE notified_at IS NULL AND created_at < $1 ORDER BY created_at LIMIT $2`)).
		WithArgs(before, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(ids[0].String()).AddRow(ids[1].String()))

	got, err := repo.ListUndispatched(context.Background(), before, 100)
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	require.NoError(t, mock.ExpectationsWereMet())
}
