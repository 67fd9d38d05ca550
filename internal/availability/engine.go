// Package availability turns a shop's schedule configuration and the set of
// already-booked slot labels into the ordered list of selectable time slots
// for a given date.
//
// The engine is pure: no clock, no storage, no shared state between calls.
// Its output is advisory for UI purposes only. Two callers can compute the
// same "available" slot from stale booked-label snapshots; true mutual
// exclusion on a slot is enforced at commit time by the bookings service.
package availability

import (
	"fmt"
	"time"

	"barberbook/pkg/model"
)

// TimeSlot is an ephemeral, computed value; it is never persisted. Label is
// both the display string and the conflict-matching key stored on bookings,
// so its formatting must stay byte-stable.
type TimeSlot struct {
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// GenerateSlots produces the ordered slots for date. Friday and Saturday use
// the weekend quota configuration ("Slot 1".."Slot N"); all other days use
// the weekday interval configuration (zero-padded 24-hour "HH:MM" labels,
// stepping from StartTime while strictly before EndTime).
//
// An empty result is a valid outcome, not an error: a weekend SlotsCount of
// zero or a weekday StartTime at or past EndTime simply yields no slots.
// Errors are reserved for malformed clock strings, which the shop validator
// rejects upstream.
//
// The caller must exclude cancelled bookings from booked before calling;
// the engine matches labels exactly and applies no status semantics.
func GenerateSlots(date time.Time, cfg model.ScheduleConfig, booked map[string]struct{}) ([]TimeSlot, error) {
	if isWeekend(date) {
		return weekendSlots(cfg.Weekend, booked), nil
	}
	return weekdaySlots(cfg.Weekday, booked)
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

func weekendSlots(cfg model.WeekendConfig, booked map[string]struct{}) []TimeSlot {
	if cfg.SlotsCount <= 0 {
		return []TimeSlot{}
	}

	slots := make([]TimeSlot, 0, cfg.SlotsCount)
	for n := 1; n <= cfg.SlotsCount; n++ {
		label := fmt.Sprintf("Slot %d", n)
		slots = append(slots, TimeSlot{
			Label:     label,
			Available: !isBooked(label, booked),
		})
	}
	return slots
}

func weekdaySlots(cfg model.WeekdayConfig, booked map[string]struct{}) ([]TimeSlot, error) {
	start, err := parseClock(cfg.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", cfg.StartTime, err)
	}
	end, err := parseClock(cfg.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end time %q: %w", cfg.EndTime, err)
	}
	if cfg.SlotIntervalMin <= 0 {
		return nil, fmt.Errorf("slot interval must be positive, got %d", cfg.SlotIntervalMin)
	}

	slots := []TimeSlot{}
	for t := start; t < end; t += cfg.SlotIntervalMin {
		label := fmt.Sprintf("%02d:%02d", t/60, t%60)
		slots = append(slots, TimeSlot{
			Label:     label,
			Available: !isBooked(label, booked),
		})
	}
	return slots, nil
}

func isBooked(label string, booked map[string]struct{}) bool {
	_, taken := booked[label]
	return taken
}

// parseClock converts an HH:MM string to minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// BookedSet converts a label list into the lookup set GenerateSlots expects.
func BookedSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}
