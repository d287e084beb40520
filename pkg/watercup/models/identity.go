package models

import "time"

// Identity maps a login email to the stable opaque user id the rest of the
// system keys off. It belongs to the identity boundary: feature packages
// never read it, they only ever see the user id.
type Identity struct {
	Email     string    `gorm:"primarykey" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
}
