package groups

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/watercup/backend/pkg/watercup/auth"
	"github.com/watercup/backend/pkg/watercup/models"
	"gorm.io/gorm"
)

// searchLimit caps name-search results to avoid unbounded scans
const searchLimit = 10

// Handler handles group-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	MemberCount int    `json:"member_count,omitempty"`
}

func groupResponse(g models.Group) GroupResponse {
	return GroupResponse{ID: g.ID, Name: g.Name, Code: g.Code}
}

// List returns all groups the current user is a member of
// @Summary List my groups
// @Description Get all groups the current user is a member of
// @Tags groups
// @Produce json
// @Success 200 {array} GroupResponse
// @Security BearerAuth
// @Router /groups [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var memberships []models.GroupMembership
	if err := h.db.Preload("Group").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	groups := make([]GroupResponse, len(memberships))
	for i, m := range memberships {
		groups[i] = groupResponse(m.Group)
	}

	c.JSON(http.StatusOK, groups)
}

// Create creates a new group and joins the creator to it
// @Summary Create a group
// @Description Create a group with a fresh join code; the creator becomes a member immediately
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group name"
// @Success 201 {object} GroupResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Could not allocate a unique join code"
// @Security BearerAuth
// @Router /groups [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
		return
	}

	// The unique index on groups.code is the uniqueness authority. A
	// collision surfaces as a duplicate-key error on insert; regenerate
	// and retry a bounded number of times before giving up.
	var group models.Group
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate join code"})
			return
		}

		group = models.Group{Name: name, Code: code}
		lastErr = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			_, err := Join(tx, userID, group.ID)
			return err
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
			return
		}
	}
	if lastErr != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not allocate a unique join code"})
		return
	}

	resp := groupResponse(group)
	resp.MemberCount = 1
	c.JSON(http.StatusCreated, resp)
}

// Get returns a specific group
// @Summary Get a group
// @Description Get details of a group the current user belongs to
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if !IsMember(h.db, userID, groupID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var group models.Group
	if err := h.db.First(&group, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var memberCount int64
	h.db.Model(&models.GroupMembership{}).Where("group_id = ?", groupID).Count(&memberCount)

	resp := groupResponse(group)
	resp.MemberCount = int(memberCount)
	c.JSON(http.StatusOK, resp)
}

// Search resolves a query string to groups. The exact join-code match runs
// first; the fuzzy name search only runs when no code matched, so a pasted
// code never drowns in substring hits.
// @Summary Search groups
// @Description Resolve a join code (exact, case-insensitive) or search group names (substring, capped)
// @Tags groups
// @Produce json
// @Param q query string true "Join code or name fragment"
// @Success 200 {array} GroupResponse
// @Failure 400 {object} map[string]string "Missing query"
// @Security BearerAuth
// @Router /groups/search [get]
func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	var matches []models.Group
	if err := h.db.Where("upper(code) = ?", strings.ToUpper(q)).Find(&matches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	if len(matches) == 0 {
		err := h.db.
			Where("lower(name) LIKE ?", "%"+strings.ToLower(q)+"%").
			Order("created_at, id").
			Limit(searchLimit).
			Find(&matches).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}
	}

	groups := make([]GroupResponse, len(matches))
	for i, g := range matches {
		groups[i] = groupResponse(g)
	}
	c.JSON(http.StatusOK, groups)
}

// RegisterRoutes registers group routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/search", h.Search)
	rg.GET("/:id", h.Get)
}
