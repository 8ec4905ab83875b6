package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"squadup/backend/internal/auth"
	"squadup/backend/internal/hub"
	"squadup/backend/internal/models"
	"squadup/backend/internal/relation"
)

// FriendEntryResponse is one entry on a user's friend list.
type FriendEntryResponse struct {
	User      UserResponse            `json:"user"`
	Status    models.FriendshipStatus `json:"status"`
	Initiator bool                    `json:"initiator"`
}

// FriendHandler handles friend-request endpoints.
type FriendHandler struct {
	friends *relation.FriendService
	events  *hub.Hub
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(friends *relation.FriendService, events *hub.Hub) *FriendHandler {
	return &FriendHandler{friends: friends, events: events}
}

// SendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user. Both sides of the relationship are created pending.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Request sent"}"
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Already added or self-reference"
// @Router       /users/{id}/request [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	viewerID := auth.UserID(c)
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.friends.Add(viewerID, targetID); err != nil {
		respondError(c, err)
		return
	}

	h.events.Notify(targetID, hub.Event{
		Type:    hub.EventFriendRequest,
		Payload: gin.H{"from_user_id": viewerID},
	})
	c.JSON(http.StatusCreated, gin.H{"message": "Request sent"})
}

// AcceptRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request; both sides converge to accepted.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request accepted"}"
// @Failure      403  {object}  ErrorResponse "Cannot accept an own request"
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /users/{id}/accept [post]
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	viewerID := auth.UserID(c)
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.friends.UpdateStatus(viewerID, targetID, models.StatusAccepted); err != nil {
		respondError(c, err)
		return
	}

	h.events.Notify(targetID, hub.Event{
		Type:    hub.EventFriendAccepted,
		Payload: gin.H{"by_user_id": viewerID},
	})
	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// DeclineRequest godoc
// @Summary      Decline friend request
// @Description  Declines a pending friend request. The relationship is removed from both sides.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request declined"}"
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /users/{id}/decline [post]
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	viewerID := auth.UserID(c)
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.friends.UpdateStatus(viewerID, targetID, models.StatusRejected); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request declined"})
}

// Remove godoc
// @Summary      Remove friend
// @Description  Cancels a sent request or unfriends a user. Both sides are removed.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend removed"}"
// @Failure      404  {object}  ErrorResponse "Relation not found"
// @Router       /users/{id}/remove [post]
func (h *FriendHandler) Remove(c *gin.Context) {
	viewerID := auth.UserID(c)
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.friends.Remove(viewerID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// List godoc
// @Summary      List friends
// @Description  Lists the current user's friend entries, optionally filtered by status.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status (pending, accepted)"
// @Success      200  {array}  FriendEntryResponse
// @Router       /users/me/friends [get]
func (h *FriendHandler) List(c *gin.Context) {
	viewerID := auth.UserID(c)
	status := models.FriendshipStatus(c.Query("status"))

	entries, err := h.friends.List(viewerID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]FriendEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, FriendEntryResponse{
			User: UserResponse{
				ID:        entry.Friend.ID,
				Username:  entry.Friend.Username,
				AvatarURL: entry.Friend.AvatarURL,
			},
			Status:    entry.Status,
			Initiator: entry.Initiator,
		})
	}
	c.JSON(http.StatusOK, responses)
}
