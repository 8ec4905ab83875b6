package models

import "gorm.io/gorm"

// Store represents a place where games can be bought or played. Reference
// data, managed by admins.
type Store struct {
	gorm.Model
	Name    string `gorm:"size:255;unique;not null"`
	URL     string `gorm:"size:512"`
	Address string `gorm:"size:512"`
}
