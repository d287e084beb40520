package leaderboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/watercup/backend/pkg/watercup/auth"
	"github.com/watercup/backend/pkg/watercup/groups"
	"gorm.io/gorm"
)

// Handler handles leaderboard requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new leaderboard handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// LeaderboardResponse represents a computed weekly leaderboard
type LeaderboardResponse struct {
	GroupID   string    `json:"group_id"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Rows      []Row     `json:"rows"`
}

// Get returns the weekly leaderboard for a group
// @Summary Get the weekly leaderboard
// @Description Compute the ranked weekly totals for a group. Every current member appears, zero totals included; an empty week is a valid result, not a failure.
// @Tags leaderboard
// @Produce json
// @Param id path string true "Group ID"
// @Param as_of query string false "Compute the week containing this RFC 3339 time instead of now"
// @Success 200 {object} LeaderboardResponse
// @Failure 400 {object} map[string]string "Invalid as_of"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id}/leaderboard [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if !groups.IsMember(h.db, userID, groupID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be RFC 3339"})
			return
		}
		asOf = parsed.In(time.Local)
	}

	rows, err := ComputeWeekly(h.db, groupID, asOf)
	if err != nil {
		// The client keeps its last known ranking and retries; this is
		// never a "the leaderboard is empty" answer.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute leaderboard"})
		return
	}

	start, end := WeekOf(asOf)
	c.JSON(http.StatusOK, LeaderboardResponse{
		GroupID:   groupID,
		WeekStart: start,
		WeekEnd:   end,
		Rows:      rows,
	})
}

// RegisterRoutes registers leaderboard routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/leaderboard", h.Get)
}
