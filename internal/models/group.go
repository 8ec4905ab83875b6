package models

import "time"

// MembershipStatus defines the state of a user's membership in a group.
type MembershipStatus string

const (
	MemberPending  MembershipStatus = "pending"
	MemberAccepted MembershipStatus = "accepted"
	MemberRejected MembershipStatus = "rejected"

	// MemberOwner is never stored as a member row; the owner is tracked on the
	// group itself and surfaces with this status when listing a user's groups.
	MemberOwner MembershipStatus = "owner"
)

// Group is a named set of users owned by exactly one of them.
// The owner never appears in the member list.
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;unique;not null"`
	Description string
	OwnerID     uint `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner   User          `gorm:"foreignKey:OwnerID"`
	Members []GroupMember `gorm:"foreignKey:GroupID"`
}

// GroupMember links a user to a group with an acceptance status.
type GroupMember struct {
	GroupID   uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"primaryKey;index"`
	Status    MembershipStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}
