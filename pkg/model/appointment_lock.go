package model

import "time"

// AppointmentLock is an advisory lock held while a booking is checked and
// written. The id is the lock key, e.g. "slot:2025-07-01:09:00".
type AppointmentLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
