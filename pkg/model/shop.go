package model

import (
	"time"
)

// WeekdayConfig drives interval-based slot generation for Sunday-Thursday.
// StartTime and EndTime are zero-padded 24-hour HH:MM strings.
type WeekdayConfig struct {
	StartTime       string `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime         string `json:"end_time" bson:"end_time" validate:"required,clock_time"`
	SlotIntervalMin int    `json:"slot_interval_min" bson:"slot_interval_min" validate:"required,min=5,max=480"`
}

// WeekendConfig drives quota-based slot generation for Friday-Saturday.
// Slots are anonymous numbered tickets; StartTime is informational only.
type WeekendConfig struct {
	SlotsCount int    `json:"slots_count" bson:"slots_count" validate:"min=0,max=200"`
	StartTime  string `json:"start_time,omitempty" bson:"start_time,omitempty" validate:"omitempty,clock_time"`
}

// ScheduleConfig carries both sub-configurations; the weekday/weekend
// choice is derived from the target date's day of week.
type ScheduleConfig struct {
	Weekday WeekdayConfig `json:"weekday" bson:"weekday" validate:"required"`
	Weekend WeekendConfig `json:"weekend" bson:"weekend"`
}

// Service is immutable reference data owned by a shop. Bookings snapshot
// services at booking time so history survives later catalog edits.
type Service struct {
	ID          string `json:"id" bson:"id" validate:"omitempty,uuid4"`
	Name        string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMin int    `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	PriceCents  int64  `json:"price_cents" bson:"price_cents" validate:"min=0"`
}

type Shop struct {
	ID        string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string         `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City      string         `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Address   string         `json:"address" bson:"address" validate:"required,min=2,max=200"`
	Phone     string         `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Schedule  ScheduleConfig `json:"schedule" bson:"schedule" validate:"required,slot_schedule"`
	Services  []Service      `json:"services" bson:"services" validate:"omitempty,max=100,dive"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ShopUpdate struct {
	Name     string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	City     string          `json:"city,omitempty" validate:"omitempty,min=2,max=50"`
	Address  string          `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	Phone    string          `json:"phone,omitempty" validate:"omitempty,e164"`
	Schedule *ScheduleConfig `json:"schedule,omitempty" validate:"omitempty,slot_schedule"`
}
