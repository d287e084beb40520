package models

import "time"

// WaterLog is one immutable hydration event. The table is append-only:
// there is no update or delete path anywhere in the codebase, and the model
// deliberately has no UpdatedAt or DeletedAt. All totals are derived from
// these rows and never stored.
type WaterLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	GroupID   string    `gorm:"type:varchar(36);not null;index" json:"group_id"`
	UserID    string    `gorm:"type:varchar(36);not null" json:"user_id"`
	ML        int       `gorm:"not null" json:"ml"`

	// Relationships
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
