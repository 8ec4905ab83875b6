package models

import "gorm.io/gorm"

// Tag categorizes games (e.g., "Co-op", "Party", "Shooter"). Reference data,
// managed by admins.
type Tag struct {
	gorm.Model
	Name string `gorm:"size:100;unique;not null"`
}
