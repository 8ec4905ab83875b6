package relation

import (
	"errors"

	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// FriendService implements the friend-request state machine. A relationship
// is two mirrored Friendship rows; all mutations write both rows or neither.
type FriendService struct {
	db *gorm.DB
}

// NewFriendService creates a FriendService on the given database handle.
func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{db: db}
}

// Add sends a friend request from initiator to target. Both mirrored rows are
// created pending; the initiator's row carries the Initiator flag.
func (s *FriendService) Add(initiatorID, targetID uint) error {
	if initiatorID == targetID {
		return conflictf("cannot add yourself as a friend")
	}

	if err := usersExist(s.db, []uint{initiatorID, targetID}); err != nil {
		return err
	}

	var existing models.Friendship
	err := s.db.Where("user_id = ? AND friend_id = ?", initiatorID, targetID).First(&existing).Error
	if err == nil {
		return conflictf("user %d is already on your friend list", targetID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Friendship{
			UserID:    initiatorID,
			FriendID:  targetID,
			Status:    models.StatusPending,
			Initiator: true,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Friendship{
			UserID:    targetID,
			FriendID:  initiatorID,
			Status:    models.StatusPending,
			Initiator: false,
		}).Error
	})
	if err != nil {
		// A concurrent request between the same pair loses on the composite
		// primary key rather than producing a half-written relationship.
		if isDuplicateKey(err) {
			return conflictf("user %d is already on your friend list", targetID)
		}
		return err
	}
	return nil
}

// UpdateStatus transitions the relationship between user and target.
// Accepting sets both mirrored rows to accepted; rejecting deletes both rows,
// which is indistinguishable from unfriending.
func (s *FriendService) UpdateStatus(userID, targetID uint, status models.FriendshipStatus) error {
	switch status {
	case models.StatusAccepted:
		// handled below
	case models.StatusRejected:
		return s.Remove(userID, targetID)
	default:
		return validationf("status %q is not a valid friend transition", status)
	}

	var entry models.Friendship
	err := s.db.Where("user_id = ? AND friend_id = ?", userID, targetID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("no friend entry for user %d", targetID)
	}
	if err != nil {
		return err
	}
	if entry.Initiator && entry.Status == models.StatusPending {
		return forbiddenf("cannot accept a request you sent")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Friendship{}).
			Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
				userID, targetID, targetID, userID).
			Update("status", models.StatusAccepted).Error
	})
}

// Remove deletes the relationship between user and target from both sides.
func (s *FriendService) Remove(userID, targetID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, targetID, targetID, userID).
			Delete(&models.Friendship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFoundf("no friend entry for user %d", targetID)
		}
		return nil
	})
}

// List returns the user's friend entries, optionally filtered by status, with
// the friend's account preloaded.
func (s *FriendService) List(userID uint, status models.FriendshipStatus) ([]models.Friendship, error) {
	query := s.db.Where("user_id = ?", userID).Preload("Friend")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var entries []models.Friendship
	if err := query.Order("created_at").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
