package realtime

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/watercup/backend/pkg/watercup/auth"
	"github.com/watercup/backend/pkg/watercup/groups"
	"gorm.io/gorm"
)

// heartbeatInterval keeps idle SSE connections from being reaped by proxies
const heartbeatInterval = 30 * time.Second

// Handler exposes group change signals to browsers over SSE
type Handler struct {
	db       *gorm.DB
	notifier Notifier
}

// NewHandler creates a new realtime handler
func NewHandler(db *gorm.DB, notifier Notifier) *Handler {
	return &Handler{db: db, notifier: notifier}
}

// Stream delivers "changed" events for a group over SSE
// @Summary Stream group changes
// @Description Server-sent events: one "changed" event whenever a hydration event lands in the group. Events carry no payload; refetch the leaderboard on each. The subscription is released when the client disconnects.
// @Tags realtime
// @Produce text/event-stream
// @Param id path string true "Group ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id}/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if !groups.IsMember(h.db, userID, groupID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	ctx := c.Request.Context()
	signals, cancel, err := h.notifier.Subscribe(ctx, groupID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Change channel unavailable"})
		return
	}
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case _, ok := <-signals:
			if !ok {
				return false
			}
			c.SSEvent("changed", gin.H{"group_id": groupID})
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", nil)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// RegisterRoutes registers realtime routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/stream", h.Stream)
}
