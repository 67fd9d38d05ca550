package validator

import (
	"strings"
	"testing"

	"barberbook/pkg/logger"
	"barberbook/pkg/model"
)

func validShop() *model.Shop {
	return &model.Shop{
		Name:    "Fade Factory",
		City:    "Haifa",
		Address: "12 Herzl St",
		Phone:   "+972501234567",
		Schedule: model.ScheduleConfig{
			Weekday: model.WeekdayConfig{StartTime: "09:00", EndTime: "19:00", SlotIntervalMin: 30},
			Weekend: model.WeekendConfig{SlotsCount: 20},
		},
		Services: []model.Service{
			{ID: "3e0170dc-66b6-4a0c-8b46-c0363cba108a", Name: "Haircut", DurationMin: 30, PriceCents: 8000},
		},
	}
}

func TestValidate_ValidShop(t *testing.T) {
	v := NewShopValidator(logger.Discard())

	if err := v.Validate(validShop()); err != nil {
		t.Fatalf("expected valid shop to pass, got: %v", err)
	}
}

func TestValidate_ClockTimeFormat(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		valid bool
	}{
		{"zero padded", "09:00", "19:00", true},
		{"midnight window", "00:00", "23:59", true},
		{"missing zero padding", "9:00", "19:00", false},
		{"out of range hour", "25:00", "26:00", false},
		{"out of range minute", "09:61", "19:00", false},
		{"garbage", "morning", "19:00", false},
		{"empty start", "", "19:00", false},
	}

	v := NewShopValidator(logger.Discard())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := validShop()
			shop.Schedule.Weekday.StartTime = tt.start
			shop.Schedule.Weekday.EndTime = tt.end

			err := v.Validate(shop)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_InvertedWeekdayWindow(t *testing.T) {
	v := NewShopValidator(logger.Discard())

	shop := validShop()
	shop.Schedule.Weekday.StartTime = "18:00"
	shop.Schedule.Weekday.EndTime = "09:00"

	err := v.Validate(shop)
	if err == nil {
		t.Fatal("expected validation error for inverted window")
	}
	if !strings.Contains(err.Error(), "end_time must not be before start_time") {
		t.Errorf("expected window message, got: %v", err)
	}
}

func TestValidate_EmptyWindowAllowed(t *testing.T) {
	v := NewShopValidator(logger.Discard())

	// start == end is a closed day, not a configuration error.
	shop := validShop()
	shop.Schedule.Weekday.StartTime = "09:00"
	shop.Schedule.Weekday.EndTime = "09:00"

	if err := v.Validate(shop); err != nil {
		t.Errorf("expected empty window to pass, got: %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Shop)
	}{
		{"missing name", func(s *model.Shop) { s.Name = "" }},
		{"short name", func(s *model.Shop) { s.Name = "X" }},
		{"missing city", func(s *model.Shop) { s.City = "" }},
		{"missing address", func(s *model.Shop) { s.Address = "" }},
		{"bad phone", func(s *model.Shop) { s.Phone = "0501234567" }},
		{"bad shop id", func(s *model.Shop) { s.ID = "not-an-object-id" }},
		{"negative weekend quota", func(s *model.Shop) { s.Schedule.Weekend.SlotsCount = -1 }},
		{"zero interval", func(s *model.Shop) { s.Schedule.Weekday.SlotIntervalMin = 0 }},
		{"bad service id", func(s *model.Shop) { s.Services[0].ID = "1234" }},
		{"service without name", func(s *model.Shop) { s.Services[0].Name = "" }},
	}

	v := NewShopValidator(logger.Discard())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := validShop()
			tt.mutate(shop)
			if err := v.Validate(shop); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_TranslatedMessages(t *testing.T) {
	v := NewShopValidator(logger.Discard())

	shop := validShop()
	shop.Name = ""
	shop.Schedule.Weekday.StartTime = "9am"

	err := v.Validate(shop)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 2 {
		t.Fatalf("expected at least 2 errors, got %d: %v", len(verrs), verrs)
	}
	if !strings.Contains(err.Error(), "Name is required") {
		t.Errorf("expected required message for Name, got: %v", err)
	}
	if !strings.Contains(err.Error(), "HH:MM") {
		t.Errorf("expected clock format message, got: %v", err)
	}
}
