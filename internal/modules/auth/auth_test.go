package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Maulik-008/clock-software-sub000/internal/config"
	"github.com/Maulik-008/clock-software-sub000/internal/middleware"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func newTestEngine(t *testing.T, adminPassword string) *gin.Engine {
	t.Helper()

	cfg := &config.AppConfig{}
	if adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		cfg.AdminPassword = string(hash)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v2")
	NewHandler(cfg).RegisterRoutes(api)

	protected := api.Group("/protected", middleware.Auth())
	protected.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": middleware.CurrentSubject(c)})
	})
	return engine
}

func login(engine *gin.Engine, password string) *httptest.ResponseRecorder {
	body := bytes.NewBufferString(`{"password": "` + password + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesValidToken(t *testing.T) {
	engine := newTestEngine(t, "open sesame")

	w := login(engine, "open sesame")
	if w.Code != http.StatusOK {
		t.Fatalf("login: code=%d body=%s", w.Code, w.Body.String())
	}
	var payload struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Token == "" || payload.ExpiresIn <= 0 {
		t.Fatalf("payload = %+v", payload)
	}

	claims, err := jwt.Parse(payload.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != "admin" {
		t.Fatalf("subject = %q", claims.Subject)
	}

	// And the token opens the protected group.
	req := httptest.NewRequest(http.MethodGet, "/api/v2/protected", nil)
	req.Header.Set("Authorization", "Bearer "+payload.Token)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("protected: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	engine := newTestEngine(t, "open sesame")

	if w := login(engine, "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginWithoutConfiguredPassword(t *testing.T) {
	engine := newTestEngine(t, "")

	if w := login(engine, "anything"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no password is configured, got %d", w.Code)
	}
}

func TestProtectedGroupRejectsBadTokens(t *testing.T) {
	engine := newTestEngine(t, "open sesame")

	req := httptest.NewRequest(http.MethodGet, "/api/v2/protected", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: code=%d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v2/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: code=%d", w.Code)
	}
}
