package service

import (
	"fmt"
	"time"

	"book-my-session/core/config"
	"book-my-session/core/utils"
	"book-my-session/modules/slot/entity"

	"github.com/google/uuid"
)

// Window is a daily [Start, End) range, expressed as offsets from midnight in Location.
type Window struct {
	Start    time.Duration
	End      time.Duration
	Duration time.Duration
	Location *time.Location
}

func NewWindow(cfg config.SlotsConfig) (Window, error) {
	start, err := utils.ParseClock(cfg.WindowStart)
	if err != nil {
		return Window{}, err
	}
	end, err := utils.ParseClock(cfg.WindowEnd)
	if err != nil {
		return Window{}, err
	}
	w := Window{
		Start:    start,
		End:      end,
		Duration: cfg.Duration,
		Location: cfg.DisplayLocation(),
	}
	return w, w.Validate()
}

func (w Window) Validate() error {
	if w.Duration <= 0 {
		return fmt.Errorf("slot duration must be positive, got %s", w.Duration)
	}
	if w.End <= w.Start {
		return fmt.Errorf("window end %s must be after start %s", w.End, w.Start)
	}
	if w.Location == nil {
		return fmt.Errorf("window location is required")
	}
	return nil
}

// SlotsPerDay is floor((End-Start)/Duration).
func (w Window) SlotsPerDay() int {
	return int((w.End - w.Start) / w.Duration)
}

// Generate lays out contiguous slots over the window on the calendar day of `day`
// (read in the window's location). A trailing interval shorter than Duration is dropped.
func Generate(profileID uuid.UUID, day time.Time, w Window, now time.Time) []entity.Slot {
	if w.Validate() != nil {
		return nil
	}

	y, m, d := day.In(w.Location).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, w.Location)
	start := midnight.Add(w.Start)
	end := midnight.Add(w.End)

	slots := make([]entity.Slot, 0, w.SlotsPerDay())
	for s := start; !s.Add(w.Duration).After(end); s = s.Add(w.Duration) {
		slots = append(slots, entity.Slot{
			ID:               uuid.New(),
			SpeakerProfileID: profileID,
			Start:            s.UTC(),
			End:              s.Add(w.Duration).UTC(),
			CreatedAt:        now.UTC(),
		})
	}
	return slots
}

// GenerateDays repeats Generate for `days` consecutive days starting at firstDay.
func GenerateDays(profileID uuid.UUID, firstDay time.Time, days int, w Window, now time.Time) []entity.Slot {
	var slots []entity.Slot
	y, m, d := firstDay.In(w.Location).Date()
	for i := range days {
		day := time.Date(y, m, d+i, 12, 0, 0, 0, w.Location)
		slots = append(slots, Generate(profileID, day, w, now)...)
	}
	return slots
}
