package models

import "time"

// LoginCode is the durable pending-login record. It captures the email and
// the display name the user chose at request time, before the confirmation
// round-trip completes, so a return via deep link or a fresh tab still knows
// what name to apply. The code itself is stored bcrypt-hashed; LinkToken is
// the magic-link alternative to typing the code.
type LoginCode struct {
	Email     string    `gorm:"primarykey" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
	CodeHash  string    `gorm:"not null" json:"-"`
	LinkToken string    `gorm:"index;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the pending login can no longer be confirmed
func (lc *LoginCode) Expired(now time.Time) bool {
	return now.After(lc.ExpiresAt)
}
