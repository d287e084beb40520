package auth

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/watercup/backend/pkg/watercup/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CodeSender delivers a one-time code and magic-link token to an email
// address. Production wires an email provider; development logs the code.
type CodeSender interface {
	SendLoginCode(email, code, linkToken string) error
}

// LogSender writes login codes to the server log instead of sending email
type LogSender struct{}

// SendLoginCode logs the code for local development
func (LogSender) SendLoginCode(email, code, linkToken string) error {
	log.Printf("login code for %s: %s (link token %s)", email, code, linkToken)
	return nil
}

// Handler handles authentication requests
type Handler struct {
	db      *gorm.DB
	sender  CodeSender
	codeTTL time.Duration
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB, sender CodeSender, codeTTL time.Duration) *Handler {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	return &Handler{db: db, sender: sender, codeTTL: codeTTL}
}

// RequestCodeRequest represents the login-request body
type RequestCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// VerifyRequest represents the code-confirmation body
type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// LinkRequest represents the magic-link confirmation body
type LinkRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateMeRequest represents a display-name change
type UpdateMeRequest struct {
	Name string `json:"name" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RequestCode starts a passwordless login
// @Summary Request a login code
// @Description Capture email and display name, then email a one-time code and magic link. The pending record is durable so the chosen name survives until either confirmation path completes.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RequestCodeRequest true "Email and display name"
// @Success 200 {object} map[string]string "Code sent"
// @Failure 400 {object} map[string]string "Validation error"
// @Router /auth/code [post]
func (h *Handler) RequestCode(c *gin.Context) {
	var req RequestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	code, err := GenerateCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate code"})
		return
	}
	linkToken, err := GenerateLinkToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate link token"})
		return
	}
	codeHash, err := HashCode(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process code"})
		return
	}

	// The pending record is written before anything is sent: if the user
	// comes back through the magic link in a fresh tab, the name they chose
	// here is still applied.
	pending := models.LoginCode{
		Email:     email,
		Name:      name,
		CodeHash:  codeHash,
		LinkToken: linkToken,
		ExpiresAt: time.Now().Add(h.codeTTL),
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		UpdateAll: true,
	}).Create(&pending).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store login request"})
		return
	}

	if err := h.sender.SendLoginCode(email, code, linkToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code sent"})
}

// Verify confirms a login with the emailed one-time code
// @Summary Verify a login code
// @Description Confirm a pending login with the one-time code and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Email and code"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "No pending login or invalid code"
// @Router /auth/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var pending models.LoginCode
	if err := h.db.Where("email = ?", email).First(&pending).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No pending login for this email"})
		return
	}
	if pending.Expired(time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code has expired, request a new one"})
		return
	}
	if !CheckCode(strings.TrimSpace(req.Code), pending.CodeHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid code"})
		return
	}

	h.completeSignIn(c, &pending)
}

// Link confirms a login through the magic-link token
// @Summary Confirm a magic link
// @Description Confirm a pending login with the token from the emailed link and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LinkRequest true "Link token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown or expired link"
// @Router /auth/link [post]
func (h *Handler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var pending models.LoginCode
	if err := h.db.Where("link_token = ?", req.Token).First(&pending).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown link"})
		return
	}
	if pending.Expired(time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Link has expired, request a new code"})
		return
	}

	h.completeSignIn(c, &pending)
}

// completeSignIn is shared by both confirmation paths: resolve the stable
// user id for the email, apply the pending display name, clear the pending
// record and issue a session.
func (h *Handler) completeSignIn(c *gin.Context, pending *models.LoginCode) {
	var user models.User
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var identity models.Identity
		if err := tx.Where("email = ?", pending.Email).First(&identity).Error; err != nil {
			identity = models.Identity{Email: pending.Email, UserID: uuid.NewString()}
			if err := tx.Create(&identity).Error; err != nil {
				return err
			}
		}

		// Upsert keyed by user id: the write succeeds whether or not a
		// user row already exists.
		user = models.User{ID: identity.UserID, Name: pending.Name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(&user).Error; err != nil {
			return err
		}

		return tx.Delete(&models.LoginCode{}, "email = ?", pending.Email).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	token, err := GenerateToken(user.ID, pending.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  UserResponse{ID: user.ID, Name: user.Name},
	})
}

// Anonymous issues a throwaway session for unauthenticated deep links
// @Summary Create an anonymous session
// @Description Issue an anonymous session token. Anonymous sessions cannot persist state; every protected endpoint refuses them.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Anonymous token"
// @Router /auth/anonymous [post]
func (h *Handler) Anonymous(c *gin.Context) {
	token, err := GenerateAnonymousToken(uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, exists := GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Name: user.Name})
}

// UpdateMe overwrites the current user's display name
// @Summary Update display name
// @Description Overwrite the display name shown on leaderboards. The write is an upsert keyed by user id.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body UpdateMeRequest true "New display name"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /auth/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, exists := GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{ID: userID, Name: strings.TrimSpace(req.Name)}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update name"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Name: user.Name})
}

// Logout handles user logout (client-side token invalidation)
// @Summary Logout
// @Description Logout the current user (client-side token invalidation)
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out successfully"
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/code", h.RequestCode)
	rg.POST("/verify", h.Verify)
	rg.POST("/link", h.Link)
	rg.POST("/anonymous", h.Anonymous)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", AuthMiddleware(), h.Me)
	rg.PUT("/me", AuthMiddleware(), h.UpdateMe)
}
