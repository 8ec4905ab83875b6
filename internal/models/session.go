package models

import "time"

// ParticipantStatus defines the state of a user's participation in a session.
type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantAccepted ParticipantStatus = "accepted"
	ParticipantRejected ParticipantStatus = "rejected"
)

// GameSession is a scheduled play session hosted by one user.
// A host has at most one session at a time; the unique index backs the
// application-level check performed inside the creation transaction.
// The host never appears in the participant list.
type GameSession struct {
	ID          uint `gorm:"primaryKey"`
	HostID      uint `gorm:"not null;uniqueIndex"`
	GameID      uint `gorm:"not null;index"`
	ScheduledAt time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Host         User                 `gorm:"foreignKey:HostID"`
	Game         Game                 `gorm:"foreignKey:GameID"`
	Participants []SessionParticipant `gorm:"foreignKey:SessionID"`
}

// SessionParticipant links a user to a session with an acceptance status.
type SessionParticipant struct {
	SessionID uint              `gorm:"primaryKey"`
	UserID    uint              `gorm:"primaryKey;index"`
	Status    ParticipantStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}
