package model

import (
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Customer is the contact block collected by the booking wizard.
type Customer struct {
	Name  string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" bson:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
}

// Booking occupies one slot label on one date for one shop. Services are a
// denormalized snapshot taken at booking time. A slot is considered occupied
// by any booking at that date+label whose status is not cancelled.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShopID    string    `json:"shop_id" bson:"shop_id" validate:"required,mongodb"`
	Services  []Service `json:"services" bson:"services" validate:"omitempty,max=20,dive"`
	Date      string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Slot      string    `json:"slot" bson:"slot" validate:"required,min=1,max=40"`
	Customer  Customer  `json:"customer" bson:"customer" validate:"required"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=confirmed completed cancelled"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingUpdate mutates status only; slot, date and customer are fixed at
// creation. Rebooking is a cancel plus a new booking.
type BookingUpdate struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed cancelled"`
}
