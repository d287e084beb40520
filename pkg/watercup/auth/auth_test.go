package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/watercup/backend/pkg/watercup/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

// captureSender records the last code and link token instead of emailing
type captureSender struct {
	email     string
	code      string
	linkToken string
}

func (s *captureSender) SendLoginCode(email, code, linkToken string) error {
	s.email = email
	s.code = code
	s.linkToken = linkToken
	return nil
}

func setupTestRouter(db *gorm.DB, sender CodeSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, sender, 10*time.Minute)
	auth := r.Group("/auth")
	handler.RegisterRoutes(auth)
	return r
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCodeHashing(t *testing.T) {
	code, err := GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	if len(code) != CodeDigits {
		t.Errorf("Expected %d digits, got %q", CodeDigits, code)
	}

	hash, err := HashCode(code)
	if err != nil {
		t.Fatalf("HashCode failed: %v", err)
	}
	if hash == code {
		t.Error("Hash should not equal plain code")
	}
	if !CheckCode(code, hash) {
		t.Error("CheckCode should return true for correct code")
	}
	if CheckCode("000000", hash) && code != "000000" {
		t.Error("CheckCode should return false for incorrect code")
	}
}

func TestJWTToken(t *testing.T) {
	token, err := GenerateToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("Expected user ID 'user-1', got %s", claims.UserID)
	}
	if claims.Anonymous {
		t.Error("Expected a non-anonymous session")
	}

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestRequestAndVerifyCode(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	router := setupTestRouter(db, sender)

	resp := postJSON(t, router, "/auth/code", RequestCodeRequest{Email: "Ana@Example.com", Name: "Ana"}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if sender.email != "ana@example.com" {
		t.Errorf("Expected normalized email, got %s", sender.email)
	}
	if sender.code == "" {
		t.Fatal("Expected a code to be sent")
	}

	// The pending record must be durable before confirmation
	var pending models.LoginCode
	if err := db.First(&pending, "email = ?", "ana@example.com").Error; err != nil {
		t.Fatalf("Expected a pending login record: %v", err)
	}
	if pending.Name != "Ana" {
		t.Errorf("Expected pending name 'Ana', got %s", pending.Name)
	}

	resp = postJSON(t, router, "/auth/verify", VerifyRequest{Email: "ana@example.com", Code: sender.code}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var authResp AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &authResp)
	if authResp.Token == "" {
		t.Error("Expected a session token")
	}
	if authResp.User.Name != "Ana" {
		t.Errorf("Expected display name 'Ana', got %s", authResp.User.Name)
	}

	// Pending record is cleared once applied
	if err := db.First(&models.LoginCode{}, "email = ?", "ana@example.com").Error; err == nil {
		t.Error("Expected pending login record to be cleared")
	}

	// A second verify has nothing pending to confirm
	resp = postJSON(t, router, "/auth/verify", VerifyRequest{Email: "ana@example.com", Code: sender.code}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for replayed code, got %d", resp.Code)
	}
}

func TestVerifyWrongCode(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	router := setupTestRouter(db, sender)

	postJSON(t, router, "/auth/code", RequestCodeRequest{Email: "ana@example.com", Name: "Ana"}, "")

	if sender.code == "999999" {
		t.Skip("generated code collided with the deliberately wrong one")
	}

	resp := postJSON(t, router, "/auth/verify", VerifyRequest{Email: "ana@example.com", Code: "999999"}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for wrong code, got %d: %s", resp.Code, resp.Body.String())
	}

	// The right code still works afterwards
	resp = postJSON(t, router, "/auth/verify", VerifyRequest{Email: "ana@example.com", Code: sender.code}, "")
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMagicLinkConfirmation(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	router := setupTestRouter(db, sender)

	postJSON(t, router, "/auth/code", RequestCodeRequest{Email: "bruno@example.com", Name: "Bruno"}, "")

	// Confirm through the link instead of typing the code; the chosen
	// name is applied all the same.
	resp := postJSON(t, router, "/auth/link", LinkRequest{Token: sender.linkToken}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var authResp AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &authResp)
	if authResp.User.Name != "Bruno" {
		t.Errorf("Expected display name 'Bruno', got %s", authResp.User.Name)
	}

	if err := db.First(&models.LoginCode{}, "email = ?", "bruno@example.com").Error; err == nil {
		t.Error("Expected pending login record to be cleared after link confirmation")
	}
}

func TestStableUserIDAcrossLogins(t *testing.T) {
	db := setupTestDB(t)
	sender := &captureSender{}
	router := setupTestRouter(db, sender)

	postJSON(t, router, "/auth/code", RequestCodeRequest{Email: "ana@example.com", Name: "Ana"}, "")
	resp := postJSON(t, router, "/auth/verify", VerifyRequest{Email: "ana@example.com", Code: sender.code}, "")
	var first AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &first)

	postJSON(t, router, "/auth/code", RequestCodeRequest{Email: "ana@example.com", Name: "Ana Clara"}, "")
	resp = postJSON(t, router, "/auth/verify", VerifyRequest{Email: "ana@example.com", Code: sender.code}, "")
	var second AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &second)

	if first.User.ID != second.User.ID {
		t.Errorf("Expected the same user id across logins, got %s and %s", first.User.ID, second.User.ID)
	}
	if second.User.Name != "Ana Clara" {
		t.Errorf("Expected the new pending name to be applied, got %s", second.User.Name)
	}
}

func TestAnonymousSessionRejected(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db, &captureSender{})

	resp := postJSON(t, router, "/auth/anonymous", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)

	// Anonymous sessions cannot reach any protected endpoint
	req, _ := http.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+body["token"])
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for anonymous session, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateMeUpsert(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db, &captureSender{})

	// A valid session whose user row does not exist yet: the name write
	// must still succeed (upsert keyed by user id).
	userID := uuid.NewString()
	token, _ := GenerateToken(userID, "carla@example.com")

	jsonBody, _ := json.Marshal(UpdateMeRequest{Name: "Carla"})
	req, _ := http.NewRequest("PUT", "/auth/me", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("Expected user row to exist after upsert: %v", err)
	}
	if user.Name != "Carla" {
		t.Errorf("Expected name 'Carla', got %s", user.Name)
	}

	// Overwrite works on the now-existing row too
	jsonBody, _ = json.Marshal(UpdateMeRequest{Name: "Carla M."})
	req, _ = http.NewRequest("PUT", "/auth/me", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	db.First(&user, "id = ?", userID)
	if user.Name != "Carla M." {
		t.Errorf("Expected name 'Carla M.', got %s", user.Name)
	}
}
