package groups

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/watercup/backend/pkg/watercup/auth"
	"github.com/watercup/backend/pkg/watercup/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberResponse represents a group member in API responses
type MemberResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JoinByCodeRequest represents a join-by-code request
type JoinByCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// Join records a membership for (user, group). It is idempotent: the
// insert carries ON CONFLICT DO NOTHING on the (user, group) unique index,
// so two racing joins produce one row and neither caller sees an error.
// The membership row, pre-existing or fresh, is returned.
func Join(db *gorm.DB, userID, groupID string) (*models.GroupMembership, error) {
	membership := models.GroupMembership{UserID: userID, GroupID: groupID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
		DoNothing: true,
	}).Create(&membership).Error
	if err != nil {
		return nil, err
	}

	// On conflict the insert was a no-op and membership.ID is unset;
	// read back the canonical row either way.
	var out models.GroupMembership
	if err := db.Where("user_id = ? AND group_id = ?", userID, groupID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// IsMember reports whether the user belongs to the group
func IsMember(db *gorm.DB, userID, groupID string) bool {
	var count int64
	db.Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count)
	return count > 0
}

// JoinGroup joins the current user to a group by id
// @Summary Join a group
// @Description Join a group by id. Joining a group you already belong to is a no-op, not an error.
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id}/join [post]
func (h *Handler) JoinGroup(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	var group models.Group
	if err := h.db.First(&group, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if _, err := Join(h.db, userID, group.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join group"})
		return
	}

	c.JSON(http.StatusOK, groupResponse(group))
}

// JoinByCode joins the current user to the group with the given join code
// @Summary Join a group by code
// @Description Join the group matching the join code (exact, case-insensitive)
// @Tags groups
// @Accept json
// @Produce json
// @Param request body JoinByCodeRequest true "Join code"
// @Success 200 {object} GroupResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "No group with this code"
// @Security BearerAuth
// @Router /groups/join [post]
func (h *Handler) JoinByCode(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var group models.Group
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := h.db.Where("upper(code) = ?", code).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No group with this code"})
		return
	}

	if _, err := Join(h.db, userID, group.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join group"})
		return
	}

	c.JSON(http.StatusOK, groupResponse(group))
}

// ListMembers returns all members of a group
// @Summary List group members
// @Description Get all members of a group the current user belongs to
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {array} MemberResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if !IsMember(h.db, userID, groupID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var memberships []models.GroupMembership
	if err := h.db.Preload("User").Where("group_id = ?", groupID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	members := make([]MemberResponse, len(memberships))
	for i, m := range memberships {
		members[i] = MemberResponse{ID: m.User.ID, Name: m.User.Name}
	}

	c.JSON(http.StatusOK, members)
}

// Leave removes the current user's membership
// @Summary Leave a group
// @Description Remove the current user from a group. Past hydration events are kept; only the membership row goes away.
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} map[string]string "Left group"
// @Failure 404 {object} map[string]string "Not a member"
// @Security BearerAuth
// @Router /groups/{id}/members/me [delete]
func (h *Handler) Leave(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	result := h.db.Where("user_id = ? AND group_id = ?", userID, groupID).Delete(&models.GroupMembership{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave group"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not a member of this group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left group"})
}

// RegisterMemberRoutes registers membership routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.POST("/join", h.JoinByCode)
	rg.POST("/:id/join", h.JoinGroup)
	rg.GET("/:id/members", h.ListMembers)
	rg.DELETE("/:id/members/me", h.Leave)
}
