package models

import "gorm.io/gorm"

// Game represents a game that sessions can be scheduled for. Reference data,
// managed by admins.
type Game struct {
	gorm.Model
	Name        string `gorm:"size:255;unique;not null"`
	Description string
	CoverURL    string `gorm:"size:512"`
	Tags        []*Tag `gorm:"many2many:game_tags;"`
}
