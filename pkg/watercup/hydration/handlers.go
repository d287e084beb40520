package hydration

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/watercup/backend/pkg/watercup/auth"
	"github.com/watercup/backend/pkg/watercup/groups"
	"github.com/watercup/backend/pkg/watercup/models"
	"github.com/watercup/backend/pkg/watercup/realtime"
	"gorm.io/gorm"
)

// Handler handles hydration event requests. This is the only mutation
// path for volume data: events are never updated or deleted.
type Handler struct {
	db       *gorm.DB
	notifier realtime.Notifier
}

// NewHandler creates a new hydration handler
func NewHandler(db *gorm.DB, notifier realtime.Notifier) *Handler {
	return &Handler{db: db, notifier: notifier}
}

// RecordRequest represents a hydration event to record
type RecordRequest struct {
	ML int `json:"ml" binding:"required"`
}

// LogResponse represents a recorded hydration event
type LogResponse struct {
	ID        uint      `json:"id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	ML        int       `json:"ml"`
	CreatedAt time.Time `json:"created_at"`
}

// Record appends a hydration event for the current user in a group
// @Summary Record a hydration event
// @Description Append an immutable hydration event. The caller must be a member and the volume must be positive. Subscribers of the group receive a change signal once the write is durable.
// @Tags hydration
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body RecordRequest true "Volume in milliliters"
// @Success 201 {object} LogResponse
// @Failure 400 {object} map[string]string "Invalid volume"
// @Failure 403 {object} map[string]string "Not a member of this group"
// @Security BearerAuth
// @Router /groups/{id}/logs [post]
func (h *Handler) Record(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid volume"})
		return
	}
	if req.ML <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Volume must be a positive number of milliliters"})
		return
	}

	if !groups.IsMember(h.db, userID, groupID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this group"})
		return
	}

	entry := models.WaterLog{
		GroupID: groupID,
		UserID:  userID,
		ML:      req.ML,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		// A failed write must surface; the client rolls back any
		// speculative UI update.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record hydration event"})
		return
	}

	// Signal after the durable insert. A lost signal is tolerable: the
	// leaderboard GET is the pull-based fallback.
	if err := h.notifier.Publish(c.Request.Context(), groupID); err != nil {
		log.Printf("publish change signal for group %s: %v", groupID, err)
	}

	c.JSON(http.StatusCreated, LogResponse{
		ID:        entry.ID,
		GroupID:   entry.GroupID,
		UserID:    entry.UserID,
		ML:        entry.ML,
		CreatedAt: entry.CreatedAt,
	})
}

// RegisterRoutes registers hydration routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/logs", h.Record)
}
