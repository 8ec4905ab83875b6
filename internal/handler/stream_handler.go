package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"squadup/backend/internal/hub"
	"squadup/backend/pkg/jwt"
)

// StreamHandler handles the real-time event stream endpoint.
type StreamHandler struct {
	events    *hub.Hub
	jwtSecret string
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(events *hub.Hub, jwtSecret string) *StreamHandler {
	return &StreamHandler{events: events, jwtSecret: jwtSecret}
}

// Stream godoc
// @Summary      Subscribe to relationship events
// @Description  Streams server-sent events (friend requests, invitations) to the authenticated user. EventSource cannot set headers, so the token is passed as a query parameter.
// @Tags         events
// @Produce      text/event-stream
// @Param        token query string true "JWT token"
// @Success      200 {string} string "event stream"
// @Failure      401 {object} ErrorResponse
// @Router       /events [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := jwt.ParseToken(tokenStr, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	userID := claims.UserID

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := make(hub.Client, 16)
	h.events.Subscribe(userID, client)
	defer h.events.Unsubscribe(userID, client)

	// Send initial connected event.
	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: message\ndata: %s\n\n", msg)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
