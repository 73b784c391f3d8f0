package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vihanga-02/EcoLife/internal/auth"
	"github.com/Vihanga-02/EcoLife/internal/config"
	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// setupTest wires a router against a per-test in-memory database to avoid
// cross-test interference. The cache is disabled in tests.
func setupTest(t *testing.T) (*gin.Engine, *Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := store.InitDB(dsn)
	require.NoError(t, err)
	store.SetDB(db)

	cfg := &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	h := New(cfg, nil)
	r := gin.New()
	h.RegisterRoutes(r)
	return r, h
}

func httpDo(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// makeUser persists an account and mints a token for it.
func makeUser(t *testing.T, h *Handlers, name string, role models.Role) (models.User, string) {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "irrelevant",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, store.GetDB().Create(&u).Error)
	token, err := auth.GenerateToken(h.cfg.JWTSecret, h.cfg.TokenTTL, u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func reloadUser(t *testing.T, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, store.GetDB().First(&u, id).Error)
	return u
}
