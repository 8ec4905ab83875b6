package models

import "time"

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet answered.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the friend request was accepted, and the users are now friends.
	StatusAccepted FriendshipStatus = "accepted"

	// StatusRejected is never stored: rejecting a request deletes both rows.
	// It exists as a requestable transition value.
	StatusRejected FriendshipStatus = "rejected"
)

// Friendship is one direction of a friend relationship. Every relationship is
// stored as two mirrored rows (A→B and B→A) that are always written inside the
// same transaction. The composite primary key makes a duplicate request from
// either side fail at the database rather than racing to a lost update.
type Friendship struct {
	UserID   uint             `gorm:"primaryKey"`
	FriendID uint             `gorm:"primaryKey"`
	Status   FriendshipStatus `gorm:"type:varchar(20);not null"`

	// Initiator is true on the row belonging to the user who sent the request.
	Initiator bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Friend User `gorm:"foreignKey:FriendID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
