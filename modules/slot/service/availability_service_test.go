package service_test

import (
	"context"
	"testing"
	"time"

	"book-my-session/core/config"
	"book-my-session/core/constants"
	"book-my-session/core/database"
	"book-my-session/core/database/databasetest"
	"book-my-session/core/errors"
	"book-my-session/core/utils"
	"book-my-session/modules/slot/repository"
	"book-my-session/modules/slot/service"
	speakerDto "book-my-session/modules/speaker/dto"
	speakerRepository "book-my-session/modules/speaker/repository"
	speakerService "book-my-session/modules/speaker/service"
	userRepository "book-my-session/modules/user/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       database.IDatabase
	speakers speakerService.SpeakerService
	loc      *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := databasetest.NewSQLite(t)
	slotsCfg := config.SlotsConfig{WindowStart: "09:00", WindowEnd: "16:00", Duration: time.Hour, DisplayOffset: "+05:30"}
	window, err := service.NewWindow(slotsCfg)
	require.NoError(t, err)

	generator := service.NewGenerationService(repository.NewSlotRepository(db), service.GenerationOptions{
		Window:    window,
		StartDate: "2030-01-07",
	})
	speakers := speakerService.NewSpeakerService(db, speakerRepository.NewSpeakerRepository(db), userRepository.NewUserRepository(db), generator)
	return &fixture{db: db, speakers: speakers, loc: slotsCfg.DisplayLocation()}
}

func (f *fixture) speaker(t *testing.T, name, email string) *speakerDto.SpeakerProfileResponse {
	t.Helper()
	userID := databasetest.SeedUser(t, f.db, name, email, constants.RoleSpeaker)
	p := 40.0
	profile, appErr := f.speakers.SetupProfile(t.Context(), userID, &speakerDto.SetupProfileRequest{Expertise: "Go", PricePerSession: &p})
	require.Nil(t, appErr)
	return profile
}

func (f *fixture) book(t *testing.T, profileID, slotID uuid.UUID) {
	t.Helper()
	userID := databasetest.SeedUser(t, f.db, "Guest", uuid.NewString()+"@example.com", constants.RoleUser)
	ref, err := utils.GenerateBookingReference()
	require.NoError(t, err)
	_, err = f.db.ExecContext(context.Background(),
		`INSERT INTO bookings (id, reference, slot_id, user_id, speaker_profile_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New(), ref, slotID, userID, profileID, time.Now().UTC())
	require.NoError(t, err)
}

func TestGetAvailabilityFreeView(t *testing.T) {
	f := newFixture(t)
	profile := f.speaker(t, "Ana", "ana@example.com")
	svc := service.NewAvailabilityService(repository.NewSlotRepository(f.db), f.speakers, constants.AvailabilityViewFree, f.loc)

	first, appErr := svc.GetAvailability(t.Context(), profile.Slug)
	require.Nil(t, appErr)
	require.Len(t, first.Slots, 7)
	assert.False(t, first.Empty)
	assert.Equal(t, "+05:30", first.UTCOffset)
	assert.Equal(t, "2030-01-07T09:00:00+05:30", first.Slots[0].StartTime)
	assert.Equal(t, "2030-01-07T16:00:00+05:30", first.Slots[6].EndTime)
	for _, s := range first.Slots {
		assert.Nil(t, s.BookingCount)
	}

	t.Run("reads are idempotent", func(t *testing.T) {
		second, appErr := svc.GetAvailability(t.Context(), profile.ID.String())
		require.Nil(t, appErr)
		assert.Equal(t, first.Slots, second.Slots)
	})

	t.Run("booked slots disappear", func(t *testing.T) {
		f.book(t, profile.ID, first.Slots[2].ID)

		got, appErr := svc.GetAvailability(t.Context(), profile.Slug)
		require.Nil(t, appErr)
		require.Len(t, got.Slots, 6)
		for _, s := range got.Slots {
			assert.NotEqual(t, first.Slots[2].ID, s.ID)
		}
	})

	t.Run("fully booked speaker is empty, not an error", func(t *testing.T) {
		for _, s := range first.Slots {
			if s.ID != first.Slots[2].ID {
				f.book(t, profile.ID, s.ID)
			}
		}
		got, appErr := svc.GetAvailability(t.Context(), profile.Slug)
		require.Nil(t, appErr)
		assert.True(t, got.Empty)
		assert.NotNil(t, got.Slots)
		assert.Empty(t, got.Slots)
	})
}

func TestGetAvailabilityOccupancyView(t *testing.T) {
	f := newFixture(t)
	profile := f.speaker(t, "Ana", "ana@example.com")
	svc := service.NewAvailabilityService(repository.NewSlotRepository(f.db), f.speakers, constants.AvailabilityViewOccupancy, f.loc)

	before, appErr := svc.GetAvailability(t.Context(), profile.Slug)
	require.Nil(t, appErr)
	require.Len(t, before.Slots, 7)

	f.book(t, profile.ID, before.Slots[0].ID)
	f.book(t, profile.ID, before.Slots[0].ID)

	after, appErr := svc.GetAvailability(t.Context(), profile.Slug)
	require.Nil(t, appErr)
	require.Len(t, after.Slots, 7)
	require.NotNil(t, after.Slots[0].BookingCount)
	assert.Equal(t, 2, *after.Slots[0].BookingCount)
	assert.Equal(t, 0, *after.Slots[1].BookingCount)
}

func TestGetAvailabilityUnknownSpeaker(t *testing.T) {
	f := newFixture(t)
	svc := service.NewAvailabilityService(repository.NewSlotRepository(f.db), f.speakers, "", f.loc)

	_, appErr := svc.GetAvailability(t.Context(), "nobody-123456")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestSlotsAreOrderedAndDisjoint(t *testing.T) {
	f := newFixture(t)
	a := f.speaker(t, "Ana", "ana@example.com")
	b := f.speaker(t, "Bo", "bo@example.com")
	repo := repository.NewSlotRepository(f.db)

	slotsA, err := repo.ListFree(t.Context(), a.ID)
	require.NoError(t, err)
	slotsB, err := repo.ListFree(t.Context(), b.ID)
	require.NoError(t, err)
	require.Len(t, slotsA, 7)
	require.Len(t, slotsB, 7)

	seen := map[uuid.UUID]bool{}
	for i, s := range slotsA {
		seen[s.ID] = true
		if i > 0 {
			assert.True(t, slotsA[i-1].Start.Before(s.Start))
		}
	}
	for _, s := range slotsB {
		assert.False(t, seen[s.ID])
	}
}
