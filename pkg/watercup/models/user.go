package models

import "time"

// User represents a member as seen by the rest of the system.
// The ID is the stable identifier handed out by the identity provider;
// everything else keys off it and never owns it. Users are never deleted.
type User struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"not null" json:"name"`

	// Relationships
	GroupMemberships []GroupMembership `gorm:"foreignKey:UserID" json:"group_memberships,omitempty"`
}
