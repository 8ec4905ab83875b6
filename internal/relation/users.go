package relation

import (
	"errors"

	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// userUpdatableFields is the allow-list for profile updates.
var userUpdatableFields = map[string]string{
	"email":      "email",
	"avatar_url": "avatar_url",
}

// UserService implements user lookup, profile updates, and the full cascade
// delete of an account.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService on the given database handle.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get loads a user by ID.
func (s *UserService) Get(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("user %d not found", userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies an allow-listed profile update.
func (s *UserService) Update(userID uint, fields map[string]interface{}) (*models.User, error) {
	if len(fields) == 0 {
		return nil, validationf("no fields to update")
	}
	updates := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		column, ok := userUpdatableFields[key]
		if !ok {
			return nil, validationf("field %q cannot be updated", key)
		}
		str, ok := value.(string)
		if !ok {
			return nil, validationf("field %q must be a string", key)
		}
		updates[column] = str
	}

	if _, err := s.Get(userID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("email is already in use")
		}
		return nil, err
	}
	return s.Get(userID)
}

// Purge deletes the user and scrubs every cross-reference to them in one
// transaction: hosted sessions and owned groups go away entirely (including
// the rows of their participants and members), and the user is removed from
// every session, group and friend list they appear in. Either the whole
// cascade commits or none of it does.
func (s *UserService) Purge(userID uint) error {
	if _, err := s.Get(userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Sessions the user hosts, with all their participant rows.
		var hostedIDs []uint
		if err := tx.Model(&models.GameSession{}).Where("host_id = ?", userID).Pluck("id", &hostedIDs).Error; err != nil {
			return err
		}
		if len(hostedIDs) > 0 {
			if err := tx.Where("session_id IN ?", hostedIDs).Delete(&models.SessionParticipant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", hostedIDs).Delete(&models.GameSession{}).Error; err != nil {
				return err
			}
		}

		// Groups the user owns, with all their member rows.
		var ownedIDs []uint
		if err := tx.Model(&models.Group{}).Where("owner_id = ?", userID).Pluck("id", &ownedIDs).Error; err != nil {
			return err
		}
		if len(ownedIDs) > 0 {
			if err := tx.Where("group_id IN ?", ownedIDs).Delete(&models.GroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ownedIDs).Delete(&models.Group{}).Error; err != nil {
				return err
			}
		}

		// Participation in sessions hosted by others.
		if err := tx.Where("user_id = ?", userID).Delete(&models.SessionParticipant{}).Error; err != nil {
			return err
		}

		// Membership in groups owned by others.
		if err := tx.Where("user_id = ?", userID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}

		// Both directions of every friendship.
		if err := tx.Where("user_id = ? OR friend_id = ?", userID, userID).Delete(&models.Friendship{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}
