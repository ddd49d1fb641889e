package model

import "time"

// VerificationCode is the single outstanding code of a user. The unique index
// on UserID backs the "one active code per user" rule at the database level.
type VerificationCode struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Code      string    `gorm:"not null;uniqueIndex;size:32"`
	UserID    string    `gorm:"not null;uniqueIndex;size:32"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// Valid reports whether the code can still be used at now
func (c *VerificationCode) Valid(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}
