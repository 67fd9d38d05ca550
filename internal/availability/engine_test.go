package availability

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"barberbook/pkg/model"
)

// 2025-09-01 was a Monday.
var (
	wednesday = time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	friday    = time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)
	saturday  = time.Date(2025, time.September, 6, 0, 0, 0, 0, time.UTC)
	sunday    = time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)
)

func weekdayConfig(start, end string, interval int) model.ScheduleConfig {
	return model.ScheduleConfig{
		Weekday: model.WeekdayConfig{StartTime: start, EndTime: end, SlotIntervalMin: interval},
		Weekend: model.WeekendConfig{SlotsCount: 10},
	}
}

func weekendConfig(count int) model.ScheduleConfig {
	return model.ScheduleConfig{
		Weekday: model.WeekdayConfig{StartTime: "09:00", EndTime: "18:00", SlotIntervalMin: 30},
		Weekend: model.WeekendConfig{SlotsCount: count, StartTime: "10:00"},
	}
}

func TestGenerateSlots_WeekdayScenario(t *testing.T) {
	// 09:30-19:30 at 30 minutes: 20 slots, 09:30 first, 19:00 last; 19:30
	// itself is excluded because steps must stay strictly before EndTime.
	slots, err := GenerateSlots(wednesday, weekdayConfig("09:30", "19:30", 30), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 20 {
		t.Fatalf("expected 20 slots, got %d", len(slots))
	}
	if slots[0].Label != "09:30" {
		t.Errorf("expected first slot 09:30, got %s", slots[0].Label)
	}
	if slots[len(slots)-1].Label != "19:00" {
		t.Errorf("expected last slot 19:00, got %s", slots[len(slots)-1].Label)
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("slot %s should be available with no bookings", s.Label)
		}
	}
}

func TestGenerateSlots_WeekdayCountFormula(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		interval int
		want     int
	}{
		{"full day hourly", "09:00", "18:00", 60, 9},
		{"half hour steps", "09:00", "18:00", 30, 18},
		{"uneven tail dropped", "09:00", "18:10", 60, 10},
		{"quarter hours", "08:15", "12:00", 15, 15},
		{"single slot", "09:00", "09:45", 45, 1},
		{"interval larger than window", "09:00", "09:30", 60, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(wednesday, weekdayConfig(tt.start, tt.end, tt.interval), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(slots) != tt.want {
				t.Errorf("expected %d slots, got %d", tt.want, len(slots))
			}
		})
	}
}

func TestGenerateSlots_WeekdayLabelsStrictlyIncreasing(t *testing.T) {
	slots, err := GenerateSlots(sunday, weekdayConfig("08:00", "20:00", 25), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]struct{}{}
	for i, s := range slots {
		if _, dup := seen[s.Label]; dup {
			t.Fatalf("duplicate label %s at index %d", s.Label, i)
		}
		seen[s.Label] = struct{}{}
		// Zero-padded HH:MM compares correctly as a string.
		if i > 0 && slots[i-1].Label >= s.Label {
			t.Fatalf("labels not strictly increasing: %s then %s", slots[i-1].Label, s.Label)
		}
	}
}

func TestGenerateSlots_WeekendScenario(t *testing.T) {
	booked := BookedSet([]string{"Slot 1", "Slot 5"})

	slots, err := GenerateSlots(friday, weekendConfig(20), booked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 20 {
		t.Fatalf("expected 20 slots, got %d", len(slots))
	}
	for i, s := range slots {
		wantLabel := fmt.Sprintf("Slot %d", i+1)
		if s.Label != wantLabel {
			t.Errorf("slot %d: expected label %s, got %s", i, wantLabel, s.Label)
		}
		wantAvailable := s.Label != "Slot 1" && s.Label != "Slot 5"
		if s.Available != wantAvailable {
			t.Errorf("slot %s: expected available=%v, got %v", s.Label, wantAvailable, s.Available)
		}
	}
}

func TestGenerateSlots_SaturdayUsesWeekendMode(t *testing.T) {
	slots, err := GenerateSlots(saturday, weekendConfig(3), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TimeSlot{
		{Label: "Slot 1", Available: true},
		{Label: "Slot 2", Available: true},
		{Label: "Slot 3", Available: true},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("expected %v, got %v", want, slots)
	}
}

func TestGenerateSlots_SundayUsesWeekdayMode(t *testing.T) {
	slots, err := GenerateSlots(sunday, weekdayConfig("10:00", "12:00", 60), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 || slots[0].Label != "10:00" || slots[1].Label != "11:00" {
		t.Errorf("expected weekday slots [10:00 11:00] on Sunday, got %v", slots)
	}
}

func TestGenerateSlots_BookedSubsetMarking(t *testing.T) {
	cfg := weekdayConfig("09:00", "12:00", 30)
	booked := BookedSet([]string{"09:30", "11:00"})

	slots, err := GenerateSlots(wednesday, cfg, booked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range slots {
		_, isBooked := booked[s.Label]
		if s.Available == isBooked {
			t.Errorf("slot %s: available=%v with booked=%v", s.Label, s.Available, isBooked)
		}
	}
}

func TestGenerateSlots_EmptyOutcomes(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		cfg  model.ScheduleConfig
	}{
		{"weekday start equals end", wednesday, weekdayConfig("09:00", "09:00", 30)},
		{"weekday start after end", wednesday, weekdayConfig("18:00", "09:00", 30)},
		{"weekend zero quota", friday, weekendConfig(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(tt.date, tt.cfg, nil)
			if err != nil {
				t.Fatalf("empty schedule must not be an error, got: %v", err)
			}
			if len(slots) != 0 {
				t.Errorf("expected no slots, got %d", len(slots))
			}
		})
	}
}

func TestGenerateSlots_Idempotent(t *testing.T) {
	cfg := weekdayConfig("09:30", "19:30", 30)
	booked := BookedSet([]string{"10:00", "17:30"})

	first, err := GenerateSlots(wednesday, cfg, booked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GenerateSlots(wednesday, cfg, booked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical output")
	}
}

func TestGenerateSlots_MalformedClock(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"garbage start", "morning", "18:00"},
		{"garbage end", "09:00", "closing"},
		{"out of range hour", "25:00", "26:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateSlots(wednesday, weekdayConfig(tt.start, tt.end, 30), nil)
			if err == nil {
				t.Error("expected error for malformed clock string")
			}
		})
	}
}

func TestBookedSet(t *testing.T) {
	set := BookedSet([]string{"09:00", "09:30", "09:00"})
	if len(set) != 2 {
		t.Errorf("expected 2 unique labels, got %d", len(set))
	}
	if _, ok := set["09:00"]; !ok {
		t.Error("expected 09:00 in set")
	}
}
