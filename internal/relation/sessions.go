package relation

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// ParticipantRef names either a single user or a whole group to include in a
// session. Exactly one of the two must be set; a ref with both or neither is
// invalid before any lookup happens.
type ParticipantRef struct {
	UserID  *uint `json:"user_id,omitempty"`
	GroupID *uint `json:"group_id,omitempty"`
}

func (r ParticipantRef) validate() error {
	if (r.UserID == nil) == (r.GroupID == nil) {
		return validationf("participant ref must set exactly one of user_id or group_id")
	}
	return nil
}

// SessionService implements session participant management. Group refs expand
// to the group's current members plus its owner; the host is always excluded.
type SessionService struct {
	db *gorm.DB
}

// NewSessionService creates a SessionService on the given database handle.
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// SessionEntry pairs a session with the viewing user's participation status.
// Hosted sessions carry the synthetic host status.
type SessionEntry struct {
	Session models.GameSession
	Status  models.ParticipantStatus
}

// ParticipantHost marks hosted sessions in listings. Never stored.
const ParticipantHost models.ParticipantStatus = "host"

// sessionUpdatableFields is the allow-list for session field updates.
var sessionUpdatableFields = map[string]bool{
	"game_id":      true,
	"scheduled_at": true,
	"description":  true,
}

// expand resolves participant refs to a de-duplicated user ID list. Every
// referenced user and group must exist or the whole expansion fails.
func (s *SessionService) expand(refs []ParticipantRef) ([]uint, error) {
	var userIDs []uint
	for _, ref := range refs {
		if err := ref.validate(); err != nil {
			return nil, err
		}
		if ref.UserID != nil {
			userIDs = append(userIDs, *ref.UserID)
			continue
		}
		var group models.Group
		err := s.db.Preload("Members").First(&group, *ref.GroupID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("group %d not found", *ref.GroupID)
		}
		if err != nil {
			return nil, err
		}
		userIDs = append(userIDs, group.OwnerID)
		for _, m := range group.Members {
			userIDs = append(userIDs, m.UserID)
		}
	}
	userIDs = dedupe(userIDs)
	if err := usersExist(s.db, userIDs); err != nil {
		return nil, err
	}
	return userIDs, nil
}

// Create schedules a session hosted by hostID. The one-session-per-host rule
// is checked inside the creation transaction and backed by a unique index, so
// two concurrent creations cannot both commit. The session row and every
// participant row are written together or not at all.
func (s *SessionService) Create(hostID, gameID uint, scheduledAt time.Time, description string, refs []ParticipantRef) (*models.GameSession, error) {
	if err := usersExist(s.db, []uint{hostID}); err != nil {
		return nil, err
	}
	if err := s.db.First(&models.Game{}, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("game %d not found", gameID)
		}
		return nil, err
	}

	participants, err := s.expand(refs)
	if err != nil {
		return nil, err
	}

	session := models.GameSession{
		HostID:      hostID,
		GameID:      gameID,
		ScheduledAt: scheduledAt,
		Description: description,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.GameSession{}).Where("host_id = ?", hostID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflictf("user %d already hosts a session", hostID)
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		for _, userID := range participants {
			if userID == hostID {
				continue
			}
			if err := tx.Create(&models.SessionParticipant{
				SessionID: session.ID,
				UserID:    userID,
				Status:    models.ParticipantPending,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("user %d already hosts a session", hostID)
		}
		return nil, err
	}
	return s.Get(session.ID)
}

// AddParticipants invites more users, named directly or via groups. The same
// all-or-nothing validation as creation applies; already-invited users and
// the host are skipped.
func (s *SessionService) AddParticipants(sessionID, actorID uint, refs []ParticipantRef) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID != actorID {
		return forbiddenf("only the host can add participants")
	}

	expanded, err := s.expand(refs)
	if err != nil {
		return err
	}

	present := make(map[uint]bool, len(session.Participants))
	for _, p := range session.Participants {
		present[p.UserID] = true
	}
	var toAdd []uint
	for _, id := range expanded {
		if id == session.HostID || present[id] {
			continue
		}
		toAdd = append(toAdd, id)
	}
	if len(toAdd) == 0 {
		return validationf("no valid participants to add")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range toAdd {
			if err := tx.Create(&models.SessionParticipant{
				SessionID: sessionID,
				UserID:    id,
				Status:    models.ParticipantPending,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveParticipants drops users from the session; the removed set is the
// intersection of the expanded refs with the current participant list.
func (s *SessionService) RemoveParticipants(sessionID, actorID uint, refs []ParticipantRef) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID != actorID {
		return forbiddenf("only the host can remove participants")
	}

	expanded, err := s.expand(refs)
	if err != nil {
		return err
	}

	present := make(map[uint]bool, len(session.Participants))
	for _, p := range session.Participants {
		present[p.UserID] = true
	}
	var toRemove []uint
	for _, id := range expanded {
		if present[id] {
			toRemove = append(toRemove, id)
		}
	}
	if len(toRemove) == 0 {
		return validationf("no participants to remove")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("session_id = ? AND user_id IN ?", sessionID, toRemove).
			Delete(&models.SessionParticipant{}).Error
	})
}

// Update applies an allow-listed field update to the session. Any field
// outside the allow-list rejects the entire payload.
func (s *SessionService) Update(sessionID, actorID uint, fields map[string]interface{}) (*models.GameSession, error) {
	if len(fields) == 0 {
		return nil, validationf("no fields to update")
	}
	updates := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if !sessionUpdatableFields[key] {
			return nil, validationf("field %q cannot be updated", key)
		}
		switch key {
		case "game_id":
			id, ok := toUint(value)
			if !ok {
				return nil, validationf("field game_id must be a numeric ID")
			}
			if err := s.db.First(&models.Game{}, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, notFoundf("game %d not found", id)
				}
				return nil, err
			}
			updates["game_id"] = id
		case "scheduled_at":
			str, ok := value.(string)
			if !ok {
				return nil, validationf("field scheduled_at must be an RFC 3339 timestamp")
			}
			at, err := time.Parse(time.RFC3339, str)
			if err != nil {
				return nil, validationf("field scheduled_at must be an RFC 3339 timestamp")
			}
			updates["scheduled_at"] = at
		case "description":
			str, ok := value.(string)
			if !ok {
				return nil, validationf("field description must be a string")
			}
			updates["description"] = str
		}
	}

	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != actorID {
		return nil, forbiddenf("only the host can update the session")
	}

	if err := s.db.Model(&models.GameSession{}).Where("id = ?", sessionID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(sessionID)
}

// Respond records the user's answer to a pending session invitation.
func (s *SessionService) Respond(sessionID, userID uint, accept bool) error {
	var participant models.SessionParticipant
	err := s.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("no invitation to session %d", sessionID)
	}
	if err != nil {
		return err
	}
	if participant.Status != models.ParticipantPending {
		return conflictf("invitation to session %d was already answered", sessionID)
	}

	status := models.ParticipantAccepted
	if !accept {
		status = models.ParticipantRejected
	}
	return s.db.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Update("status", status).Error
}

// Delete removes the session and every participant row referencing it in one
// transaction.
func (s *SessionService) Delete(sessionID, actorID uint) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID != actorID {
		return forbiddenf("only the host can delete the session")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.SessionParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.GameSession{}, sessionID).Error
	})
}

// Get loads a session with its host, game and participants.
func (s *SessionService) Get(sessionID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.Preload("Host").Preload("Game").Preload("Participants.User").First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("session %d not found", sessionID)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListForUser returns the session the user hosts (if any) and every session
// they are invited to, with the user's status in each.
func (s *SessionService) ListForUser(userID uint) ([]SessionEntry, error) {
	var hosted []models.GameSession
	if err := s.db.Where("host_id = ?", userID).Preload("Game").Find(&hosted).Error; err != nil {
		return nil, err
	}
	entries := make([]SessionEntry, 0, len(hosted))
	for _, sess := range hosted {
		entries = append(entries, SessionEntry{Session: sess, Status: ParticipantHost})
	}

	var participations []models.SessionParticipant
	if err := s.db.Where("user_id = ?", userID).Order("session_id").Find(&participations).Error; err != nil {
		return nil, err
	}
	for _, p := range participations {
		var sess models.GameSession
		if err := s.db.Preload("Game").First(&sess, p.SessionID).Error; err != nil {
			return nil, err
		}
		entries = append(entries, SessionEntry{Session: sess, Status: p.Status})
	}
	return entries, nil
}

func toUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n != float64(uint(n)) {
			return 0, false
		}
		return uint(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	default:
		return 0, false
	}
}
