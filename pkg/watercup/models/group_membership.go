package models

import "time"

// GroupMembership represents the many-to-many relationship between users
// and groups. The composite unique index is the actual enforcement of the
// "at most one row per (user, group)" invariant: joins race against each
// other and the database, not the application, decides.
type GroupMembership struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_group" json:"user_id"`
	GroupID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_group" json:"group_id"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}
