package model

import "time"

// SlotLock is a short-lived advisory lock held while a booking for a
// (shop, date, slot) triple is being created. It narrows the window in which
// two commits can race past each other's conflict checks.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
