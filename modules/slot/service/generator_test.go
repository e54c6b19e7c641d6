package service

import (
	"testing"
	"time"

	"book-my-session/core/config"
	"book-my-session/core/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func istWindow(t *testing.T, start, end string, d time.Duration) Window {
	t.Helper()
	w, err := NewWindow(config.SlotsConfig{
		WindowStart:   start,
		WindowEnd:     end,
		Duration:      d,
		DisplayOffset: "+05:30",
	})
	require.NoError(t, err)
	return w
}

func TestGenerateDefaultWindow(t *testing.T) {
	w := istWindow(t, "09:00", "16:00", time.Hour)
	profileID := uuid.New()
	day := time.Date(2024, 12, 5, 12, 0, 0, 0, w.Location)
	now := time.Date(2024, 12, 4, 8, 0, 0, 0, time.UTC)

	slots := Generate(profileID, day, w, now)
	require.Len(t, slots, 7)
	assert.Equal(t, 7, w.SlotsPerDay())

	assert.Equal(t, time.Date(2024, 12, 5, 3, 30, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, "2024-12-05T09:00:00+05:30", utils.FormatDisplay(slots[0].Start, w.Location))
	assert.Equal(t, "2024-12-05T16:00:00+05:30", utils.FormatDisplay(slots[6].End, w.Location))

	ids := map[uuid.UUID]struct{}{}
	for i, s := range slots {
		assert.Equal(t, profileID, s.SpeakerProfileID)
		assert.Equal(t, time.UTC, s.Start.Location())
		assert.Equal(t, time.Hour, s.End.Sub(s.Start))
		assert.False(t, s.Claimed)
		if i > 0 {
			assert.Equal(t, slots[i-1].End, s.Start, "slots must be contiguous")
		}
		ids[s.ID] = struct{}{}
	}
	assert.Len(t, ids, 7)
}

func TestGenerateDropsPartialTrailingSlot(t *testing.T) {
	w := istWindow(t, "09:00", "16:30", time.Hour)
	slots := Generate(uuid.New(), time.Date(2024, 12, 5, 12, 0, 0, 0, w.Location), w, time.Now())

	require.Len(t, slots, 7)
	assert.Equal(t, "2024-12-05T16:00:00+05:30", utils.FormatDisplay(slots[6].End, w.Location))
}

func TestGenerateUsesWindowCalendarDay(t *testing.T) {
	w := istWindow(t, "09:00", "16:00", time.Hour)
	// 20:00Z on the 4th is already the 5th in +05:30
	day := time.Date(2024, 12, 4, 20, 0, 0, 0, time.UTC)

	slots := Generate(uuid.New(), day, w, time.Now())
	require.NotEmpty(t, slots)
	assert.Equal(t, time.Date(2024, 12, 5, 3, 30, 0, 0, time.UTC), slots[0].Start)
}

func TestGenerateDays(t *testing.T) {
	w := istWindow(t, "10:00", "12:00", 30*time.Minute)
	first := time.Date(2024, 12, 30, 0, 0, 0, 0, w.Location)

	slots := GenerateDays(uuid.New(), first, 3, w, time.Now())
	require.Len(t, slots, 12)
	assert.Equal(t, "2024-12-30T10:00:00+05:30", utils.FormatDisplay(slots[0].Start, w.Location))
	assert.Equal(t, "2025-01-01T11:30:00+05:30", utils.FormatDisplay(slots[11].Start, w.Location))
}

func TestWindowValidate(t *testing.T) {
	_, err := NewWindow(config.SlotsConfig{WindowStart: "16:00", WindowEnd: "09:00", Duration: time.Hour, DisplayOffset: "Z"})
	assert.Error(t, err)

	_, err = NewWindow(config.SlotsConfig{WindowStart: "09:00", WindowEnd: "16:00", Duration: 0, DisplayOffset: "Z"})
	assert.Error(t, err)

	assert.Empty(t, Generate(uuid.New(), time.Now(), Window{}, time.Now()))
}
