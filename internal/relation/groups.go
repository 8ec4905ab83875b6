package relation

import (
	"errors"

	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// groupUpdatableFields is the allow-list for group field updates. A payload
// naming any other field is rejected wholesale.
var groupUpdatableFields = map[string]string{
	"name":        "name",
	"description": "description",
}

// GroupService implements group membership: creation, invitation, removal,
// and the cascade that keeps member back-references consistent on delete.
type GroupService struct {
	db *gorm.DB
}

// NewGroupService creates a GroupService on the given database handle.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

// GroupEntry pairs a group with the viewing user's membership status. Owned
// groups carry the synthetic owner status.
type GroupEntry struct {
	Group  models.Group
	Status models.MembershipStatus
}

// Create makes a new group owned by ownerID with the given users invited as
// pending members. The group row and every member row are written in one
// transaction; if any write fails the group does not exist.
func (s *GroupService) Create(ownerID uint, name, description string, memberIDs []uint) (*models.Group, error) {
	memberIDs = dedupe(memberIDs)
	for _, id := range memberIDs {
		if id == ownerID {
			return nil, conflictf("owner cannot be a member of their own group")
		}
	}

	if err := usersExist(s.db, append([]uint{ownerID}, memberIDs...)); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Group{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictf("group name %q is already taken", name)
	}

	group := models.Group{Name: name, Description: description, OwnerID: ownerID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		for _, id := range memberIDs {
			if err := tx.Create(&models.GroupMember{
				GroupID: group.ID,
				UserID:  id,
				Status:  models.MemberPending,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("group name %q is already taken", name)
		}
		return nil, err
	}
	return s.Get(group.ID)
}

// AddMembers invites users to the group as pending members. Input is
// de-duplicated, the owner and already-present members are skipped, and every
// remaining ID must reference an existing user. Nothing is written unless the
// whole added set validates.
func (s *GroupService) AddMembers(groupID, actorID uint, memberIDs []uint) error {
	group, err := s.Get(groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return forbiddenf("only the owner can add members")
	}

	present := make(map[uint]bool, len(group.Members))
	for _, m := range group.Members {
		present[m.UserID] = true
	}

	var toAdd []uint
	for _, id := range dedupe(memberIDs) {
		if id == group.OwnerID || present[id] {
			continue
		}
		toAdd = append(toAdd, id)
	}
	if len(toAdd) == 0 {
		return validationf("no valid members to add")
	}
	if err := usersExist(s.db, toAdd); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range toAdd {
			if err := tx.Create(&models.GroupMember{
				GroupID: groupID,
				UserID:  id,
				Status:  models.MemberPending,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveMembers removes users from the group. The removed set is the
// intersection of the input with the current member list; an empty removed
// set fails.
func (s *GroupService) RemoveMembers(groupID, actorID uint, memberIDs []uint) error {
	group, err := s.Get(groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return forbiddenf("only the owner can remove members")
	}

	present := make(map[uint]bool, len(group.Members))
	for _, m := range group.Members {
		present[m.UserID] = true
	}
	var toRemove []uint
	for _, id := range dedupe(memberIDs) {
		if present[id] {
			toRemove = append(toRemove, id)
		}
	}
	if len(toRemove) == 0 {
		return validationf("no members to remove")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("group_id = ? AND user_id IN ?", groupID, toRemove).
			Delete(&models.GroupMember{}).Error
	})
}

// Update applies an allow-listed field update to the group. Any field outside
// the allow-list rejects the entire payload.
func (s *GroupService) Update(groupID, actorID uint, fields map[string]interface{}) (*models.Group, error) {
	if len(fields) == 0 {
		return nil, validationf("no fields to update")
	}
	updates := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		column, ok := groupUpdatableFields[key]
		if !ok {
			return nil, validationf("field %q cannot be updated", key)
		}
		str, ok := value.(string)
		if !ok {
			return nil, validationf("field %q must be a string", key)
		}
		updates[column] = str
	}

	group, err := s.Get(groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actorID {
		return nil, forbiddenf("only the owner can update the group")
	}

	if err := s.db.Model(&models.Group{}).Where("id = ?", groupID).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflictf("group name %v is already taken", updates["name"])
		}
		return nil, err
	}
	return s.Get(groupID)
}

// Respond records the user's answer to a pending group invitation. Declined
// memberships are kept with the rejected status; removal is a separate
// operation.
func (s *GroupService) Respond(groupID, userID uint, accept bool) error {
	var member models.GroupMember
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("no invitation to group %d", groupID)
	}
	if err != nil {
		return err
	}
	if member.Status != models.MemberPending {
		return conflictf("invitation to group %d was already answered", groupID)
	}

	status := models.MemberAccepted
	if !accept {
		status = models.MemberRejected
	}
	return s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("status", status).Error
}

// Delete removes the group and every member row referencing it in one
// transaction, so no member is left pointing at a deleted group.
func (s *GroupService) Delete(groupID, actorID uint) error {
	group, err := s.Get(groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return forbiddenf("only the owner can delete the group")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, groupID).Error
	})
}

// Get loads a group with its owner and members.
func (s *GroupService) Get(groupID uint) (*models.Group, error) {
	var group models.Group
	err := s.db.Preload("Owner").Preload("Members.User").First(&group, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("group %d not found", groupID)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListForUser returns every group the user owns or is a member of, with the
// user's status in each.
func (s *GroupService) ListForUser(userID uint) ([]GroupEntry, error) {
	var owned []models.Group
	if err := s.db.Where("owner_id = ?", userID).Order("id").Find(&owned).Error; err != nil {
		return nil, err
	}
	entries := make([]GroupEntry, 0, len(owned))
	for _, g := range owned {
		entries = append(entries, GroupEntry{Group: g, Status: models.MemberOwner})
	}

	var memberships []models.GroupMember
	if err := s.db.Where("user_id = ?", userID).Order("group_id").Find(&memberships).Error; err != nil {
		return nil, err
	}
	for _, m := range memberships {
		var g models.Group
		if err := s.db.First(&g, m.GroupID).Error; err != nil {
			return nil, err
		}
		entries = append(entries, GroupEntry{Group: g, Status: m.Status})
	}
	return entries, nil
}
