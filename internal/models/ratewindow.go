package models

import "time"

// RateWindow is one sliding window of counted requests for a rate-limited key
// (e.g. "auth:203.0.113.7"). A single row per key is upserted as the window
// slides forward.
type RateWindow struct {
	Key         string `gorm:"primaryKey;size:255"`
	WindowStart time.Time
	Count       int `gorm:"not null;default:0"`
}
