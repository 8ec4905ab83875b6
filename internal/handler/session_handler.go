package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"squadup/backend/internal/auth"
	"squadup/backend/internal/hub"
	"squadup/backend/internal/models"
	"squadup/backend/internal/relation"
)

// region --- DTOs ---

// CreateSessionInput defines the structure for scheduling a session.
type CreateSessionInput struct {
	GameID       uint                     `json:"game_id" binding:"required" example:"1"`
	ScheduledAt  time.Time                `json:"scheduled_at" binding:"required" example:"2026-09-05T20:00:00Z"`
	Description  string                   `json:"description" example:"Casual run, mics optional"`
	Participants []relation.ParticipantRef `json:"participants"`
}

// ParticipantRefsInput names users or groups to add to or remove from a session.
type ParticipantRefsInput struct {
	Participants []relation.ParticipantRef `json:"participants" binding:"required"`
}

// SessionParticipantResponse is one participant on a session's roster.
type SessionParticipantResponse struct {
	User   UserResponse             `json:"user"`
	Status models.ParticipantStatus `json:"status"`
}

// SessionResponse defines the structure for a session with its roster.
type SessionResponse struct {
	ID           uint                         `json:"id" example:"1"`
	Host         UserResponse                 `json:"host"`
	GameID       uint                         `json:"game_id" example:"1"`
	GameName     string                       `json:"game_name" example:"Deep Rock Galactic"`
	ScheduledAt  time.Time                    `json:"scheduled_at"`
	Description  string                       `json:"description,omitempty"`
	Participants []SessionParticipantResponse `json:"participants"`
}

// SessionListEntry is one entry on a user's session list.
type SessionListEntry struct {
	ID          uint                     `json:"id" example:"1"`
	GameName    string                   `json:"game_name" example:"Deep Rock Galactic"`
	ScheduledAt time.Time                `json:"scheduled_at"`
	Status      models.ParticipantStatus `json:"status" example:"accepted"`
}

// endregion

// SessionHandler handles game-session endpoints.
type SessionHandler struct {
	sessions *relation.SessionService
	events   *hub.Hub
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *relation.SessionService, events *hub.Hub) *SessionHandler {
	return &SessionHandler{sessions: sessions, events: events}
}

// Create godoc
// @Summary      Schedule a session
// @Description  Schedules a session hosted by the current user. Participants may be named directly or as whole groups; group refs expand to the group's members and owner. A user hosts at most one session at a time.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateSessionInput true "Session Info"
// @Success      201  {object}  SessionResponse
// @Failure      404  {object}  ErrorResponse "A referenced user, group or game does not exist"
// @Failure      409  {object}  ErrorResponse "Host already has a session"
// @Failure      422  {object}  ErrorResponse "Malformed participant ref"
// @Router       /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hostID := auth.UserID(c)
	session, err := h.sessions.Create(hostID, input.GameID, input.ScheduledAt, input.Description, input.Participants)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, p := range session.Participants {
		h.events.Notify(p.UserID, hub.Event{
			Type:    hub.EventSessionInvite,
			Payload: gin.H{"session_id": session.ID, "game_id": session.GameID},
		})
	}
	c.JSON(http.StatusCreated, buildSessionResponse(session))
}

// Get godoc
// @Summary      Get a session
// @Description  Retrieves a session with its host, game and participant roster.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session ID"
// @Success      200  {object}  SessionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildSessionResponse(session))
}

// List godoc
// @Summary      List my sessions
// @Description  Lists the session the current user hosts and every session they are invited to, with their status in each.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  SessionListEntry
// @Router       /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	entries, err := h.sessions.ListForUser(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]SessionListEntry, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, SessionListEntry{
			ID:          entry.Session.ID,
			GameName:    entry.Session.Game.Name,
			ScheduledAt: entry.Session.ScheduledAt,
			Status:      entry.Status,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary      Update a session
// @Description  Updates allow-listed session fields (game_id, scheduled_at, description). Host only; any other field rejects the payload.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                    true "Session ID"
// @Param        input body map[string]interface{} true "Fields to update"
// @Success      200  {object}  SessionResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Field not updatable"
// @Router       /sessions/{id} [patch]
func (h *SessionHandler) Update(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Update(sessionID, auth.UserID(c), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildSessionResponse(session))
}

// Delete godoc
// @Summary      Cancel a session
// @Description  Deletes the session and every participation referencing it. Host only.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session ID"
// @Success      200  {object}  map[string]string "{"message": "Session cancelled"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.sessions.Delete(sessionID, auth.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session cancelled"})
}

// AddParticipants godoc
// @Summary      Invite participants
// @Description  Invites more users to the session, named directly or as groups. Host only; the host and already-invited users are skipped.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                  true "Session ID"
// @Param        input body ParticipantRefsInput true "Participant refs"
// @Success      200  {object}  map[string]string "{"message": "Participants invited"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "A referenced user or group does not exist"
// @Failure      422  {object}  ErrorResponse "No valid participants to add"
// @Router       /sessions/{id}/participants [post]
func (h *SessionHandler) AddParticipants(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input ParticipantRefsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.AddParticipants(sessionID, auth.UserID(c), input.Participants); err != nil {
		respondError(c, err)
		return
	}

	session, err := h.sessions.Get(sessionID)
	if err == nil {
		for _, p := range session.Participants {
			if p.Status == models.ParticipantPending {
				h.events.Notify(p.UserID, hub.Event{
					Type:    hub.EventSessionInvite,
					Payload: gin.H{"session_id": session.ID, "game_id": session.GameID},
				})
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participants invited"})
}

// RemoveParticipants godoc
// @Summary      Remove participants
// @Description  Removes users from the session, named directly or as groups. Host only; only current participants are affected.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                  true "Session ID"
// @Param        input body ParticipantRefsInput true "Participant refs"
// @Success      200  {object}  map[string]string "{"message": "Participants removed"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "No participants to remove"
// @Router       /sessions/{id}/participants [delete]
func (h *SessionHandler) RemoveParticipants(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input ParticipantRefsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.RemoveParticipants(sessionID, auth.UserID(c), input.Participants); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participants removed"})
}

// Accept godoc
// @Summary      Accept a session invitation
// @Description  Accepts the current user's pending invitation to the session.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session ID"
// @Success      200  {object}  map[string]string "{"message": "Invitation accepted"}"
// @Failure      404  {object}  ErrorResponse "No invitation"
// @Failure      409  {object}  ErrorResponse "Already answered"
// @Router       /sessions/{id}/accept [post]
func (h *SessionHandler) Accept(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.sessions.Respond(sessionID, auth.UserID(c), true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

// Decline godoc
// @Summary      Decline a session invitation
// @Description  Declines the current user's pending invitation to the session.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Session ID"
// @Success      200  {object}  map[string]string "{"message": "Invitation declined"}"
// @Failure      404  {object}  ErrorResponse "No invitation"
// @Failure      409  {object}  ErrorResponse "Already answered"
// @Router       /sessions/{id}/decline [post]
func (h *SessionHandler) Decline(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.sessions.Respond(sessionID, auth.UserID(c), false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}

func buildSessionResponse(session *models.GameSession) SessionResponse {
	participants := make([]SessionParticipantResponse, 0, len(session.Participants))
	for _, p := range session.Participants {
		participants = append(participants, SessionParticipantResponse{
			User: UserResponse{
				ID:        p.User.ID,
				Username:  p.User.Username,
				AvatarURL: p.User.AvatarURL,
			},
			Status: p.Status,
		})
	}
	return SessionResponse{
		ID:           session.ID,
		Host:         UserResponse{ID: session.Host.ID, Username: session.Host.Username, AvatarURL: session.Host.AvatarURL},
		GameID:       session.GameID,
		GameName:     session.Game.Name,
		ScheduledAt:  session.ScheduledAt,
		Description:  session.Description,
		Participants: participants,
	}
}
