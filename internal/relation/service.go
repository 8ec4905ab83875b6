// Package relation implements the friend/group/session relationship model:
// the mutation rules for both sides of every relationship, and the cascade
// deletes that keep cross-references consistent.
//
// Every multi-row mutation runs inside a single transaction; there is no API
// for writing only one side of a relationship. Services take an injected
// *gorm.DB so tests can substitute an in-memory database.
package relation

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// usersExist verifies that every ID references an existing user. The first
// missing ID is named in the returned error.
func usersExist(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := tx.Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	for _, id := range ids {
		if !present[id] {
			return notFoundf("user %d not found", id)
		}
	}
	return nil
}

// dedupe removes repeated IDs, preserving first-seen order.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// isDuplicateKey detects unique-constraint violations across drivers. With
// TranslateError enabled gorm reports ErrDuplicatedKey; the message check
// covers drivers that don't translate.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
