package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"squadup/backend/internal/auth"
	"squadup/backend/internal/hub"
	"squadup/backend/internal/models"
	"squadup/backend/internal/relation"
)

// region --- DTOs ---

// CreateGroupInput defines the structure for creating a group.
type CreateGroupInput struct {
	Name        string `json:"name" binding:"required" example:"Weekend Raiders"`
	Description string `json:"description" example:"Friday night raid group"`
	MemberIDs   []uint `json:"member_ids"`
}

// MemberIDsInput names users to add to or remove from a group.
type MemberIDsInput struct {
	MemberIDs []uint `json:"member_ids" binding:"required"`
}

// GroupMemberResponse is one member on a group's roster.
type GroupMemberResponse struct {
	User   UserResponse            `json:"user"`
	Status models.MembershipStatus `json:"status"`
}

// GroupResponse defines the structure for a group with its roster.
type GroupResponse struct {
	ID          uint                  `json:"id" example:"1"`
	Name        string                `json:"name" example:"Weekend Raiders"`
	Description string                `json:"description,omitempty"`
	Owner       UserResponse          `json:"owner"`
	Members     []GroupMemberResponse `json:"members"`
}

// GroupListEntry is one entry on a user's group list.
type GroupListEntry struct {
	ID     uint                    `json:"id" example:"1"`
	Name   string                  `json:"name" example:"Weekend Raiders"`
	Status models.MembershipStatus `json:"status" example:"accepted"`
}

// endregion

// GroupHandler handles group endpoints.
type GroupHandler struct {
	groups *relation.GroupService
	events *hub.Hub
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups *relation.GroupService, events *hub.Hub) *GroupHandler {
	return &GroupHandler{groups: groups, events: events}
}

// Create godoc
// @Summary      Create a group
// @Description  Creates a group owned by the current user, optionally inviting members. All invited members start pending.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateGroupInput true "Group Info"
// @Success      201  {object}  GroupResponse
// @Failure      404  {object}  ErrorResponse "A referenced user does not exist"
// @Failure      409  {object}  ErrorResponse "Name taken or owner listed as member"
// @Router       /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var input CreateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := auth.UserID(c)
	group, err := h.groups.Create(ownerID, input.Name, input.Description, input.MemberIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, member := range group.Members {
		h.events.Notify(member.UserID, hub.Event{
			Type:    hub.EventGroupInvite,
			Payload: gin.H{"group_id": group.ID, "group_name": group.Name},
		})
	}
	c.JSON(http.StatusCreated, buildGroupResponse(group))
}

// Get godoc
// @Summary      Get a group
// @Description  Retrieves a group with its owner and member roster.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      200  {object}  GroupResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	group, err := h.groups.Get(groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildGroupResponse(group))
}

// List godoc
// @Summary      List my groups
// @Description  Lists every group the current user owns or has been invited to, with their status in each.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  GroupListEntry
// @Router       /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	entries, err := h.groups.ListForUser(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]GroupListEntry, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, GroupListEntry{
			ID:     entry.Group.ID,
			Name:   entry.Group.Name,
			Status: entry.Status,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary      Update a group
// @Description  Updates allow-listed group fields (name, description). Owner only; any other field rejects the payload.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int               true "Group ID"
// @Param        input body map[string]string true "Fields to update"
// @Success      200  {object}  GroupResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Field not updatable"
// @Router       /groups/{id} [patch]
func (h *GroupHandler) Update(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.Update(groupID, auth.UserID(c), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildGroupResponse(group))
}

// Delete godoc
// @Summary      Delete a group
// @Description  Deletes the group and every membership referencing it. Owner only.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      200  {object}  map[string]string "{"message": "Group deleted"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.groups.Delete(groupID, auth.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// AddMembers godoc
// @Summary      Invite members
// @Description  Invites users to the group as pending members. Owner only; duplicates and current members are skipped.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int            true "Group ID"
// @Param        input body MemberIDsInput true "User IDs to invite"
// @Success      200  {object}  map[string]string "{"message": "Members invited"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "A referenced user does not exist"
// @Failure      422  {object}  ErrorResponse "No valid members to add"
// @Router       /groups/{id}/members [post]
func (h *GroupHandler) AddMembers(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input MemberIDsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.AddMembers(groupID, auth.UserID(c), input.MemberIDs); err != nil {
		respondError(c, err)
		return
	}

	h.events.NotifyAll(input.MemberIDs, hub.Event{
		Type:    hub.EventGroupInvite,
		Payload: gin.H{"group_id": groupID},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Members invited"})
}

// RemoveMembers godoc
// @Summary      Remove members
// @Description  Removes users from the group. Owner only; only current members are affected.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int            true "Group ID"
// @Param        input body MemberIDsInput true "User IDs to remove"
// @Success      200  {object}  map[string]string "{"message": "Members removed"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "No members to remove"
// @Router       /groups/{id}/members [delete]
func (h *GroupHandler) RemoveMembers(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input MemberIDsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.RemoveMembers(groupID, auth.UserID(c), input.MemberIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Members removed"})
}

// Accept godoc
// @Summary      Accept a group invitation
// @Description  Accepts the current user's pending invitation to the group.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      200  {object}  map[string]string "{"message": "Invitation accepted"}"
// @Failure      404  {object}  ErrorResponse "No invitation"
// @Failure      409  {object}  ErrorResponse "Already answered"
// @Router       /groups/{id}/accept [post]
func (h *GroupHandler) Accept(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.groups.Respond(groupID, auth.UserID(c), true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

// Decline godoc
// @Summary      Decline a group invitation
// @Description  Declines the current user's pending invitation to the group.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      200  {object}  map[string]string "{"message": "Invitation declined"}"
// @Failure      404  {object}  ErrorResponse "No invitation"
// @Failure      409  {object}  ErrorResponse "Already answered"
// @Router       /groups/{id}/decline [post]
func (h *GroupHandler) Decline(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.groups.Respond(groupID, auth.UserID(c), false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}

func buildGroupResponse(group *models.Group) GroupResponse {
	members := make([]GroupMemberResponse, 0, len(group.Members))
	for _, m := range group.Members {
		members = append(members, GroupMemberResponse{
			User: UserResponse{
				ID:        m.User.ID,
				Username:  m.User.Username,
				AvatarURL: m.User.AvatarURL,
			},
			Status: m.Status,
		})
	}
	return GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Owner: UserResponse{
			ID:        group.Owner.ID,
			Username:  group.Owner.Username,
			AvatarURL: group.Owner.AvatarURL,
		},
		Members: members,
	}
}
