package api

import (
	"encoding/hex"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkcardapp/linkcard-server/internal/auth"
	"github.com/linkcardapp/linkcard-server/internal/config"
	"github.com/linkcardapp/linkcard-server/internal/media/audio"
	"github.com/linkcardapp/linkcard-server/internal/media/uploads"
	"github.com/linkcardapp/linkcard-server/internal/search"
	"github.com/linkcardapp/linkcard-server/internal/service"
	"github.com/linkcardapp/linkcard-server/internal/sse"
	"github.com/linkcardapp/linkcard-server/internal/store"
	"github.com/linkcardapp/linkcard-server/internal/store/sqlite"
	"github.com/linkcardapp/linkcard-server/internal/templates"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   map[string]any `json:"error"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api      humatest.TestAPI
	analytics *service.AnalyticsService
	cleanup  func()
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "linkcard-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(filepath.Join(tmpDir, "drafts.db"), logger)
	require.NoError(t, err)

	profiles, err := sqlite.Open(filepath.Join(tmpDir, "profiles.db"), logger)
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)

	registry, err := templates.NewRegistry("", logger)
	require.NoError(t, err)

	keyHex := hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	tokenService, err := auth.NewTokenService(keyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sseManager := sse.NewManager(logger)

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, logger)
	cardService := service.NewCardService(st, profiles, index, registry, sseManager,
		"https://cards.example.com", 20*time.Millisecond, logger)
	analyticsService := service.NewAnalyticsService(profiles, 64, logger)
	analyticsService.Start()

	storage, err := uploads.NewStorage(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)
	uploadService := service.NewUploadService(
		uploads.NewProcessor(storage, logger),
		storage,
		audio.NewProber(logger),
		logger,
	)
	importService := service.NewImportService(cardService, uploads.NewFetcher(storage, logger), logger)
	domainService := service.NewDomainService(cardService, "", "", "", logger)

	services := &Services{
		Auth:      authService,
		Session:   sessionService,
		Card:      cardService,
		Analytics: analyticsService,
		Upload:    uploadService,
		Import:    importService,
		Domain:    domainService,
		Search:    index,
		Templates: registry,
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:        "Test Server",
			PublicURL:   "https://cards.example.com",
			CORSOrigins: []string{"*"},
		},
	}

	s := NewServer(cfg, st, profiles, services, sseManager, logger)

	cleanup := func() {
		cardService.Close()
		analyticsService.Close()
		_ = index.Close()
		_ = profiles.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:    s,
		api:       humatest.Wrap(t, s.api),
		analytics: analyticsService,
		cleanup:   cleanup,
	}
}

// registerUser creates an account and returns the access token.
func (ts *testServer) registerUser(t *testing.T, email string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "correct-horse-battery",
		"display_name": "Jamie Rivera",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	return envelope.Data.AccessToken, envelope.Data.User.ID
}

func authHeader(token string) string {
	return "Authorization: Bearer " + token
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.V)
	assert.True(t, envelope.Success)
	assert.Contains(t, []string{"healthy", "degraded"}, envelope.Data.Status)
	assert.Contains(t, envelope.Data.Components, "drafts")
	assert.Contains(t, envelope.Data.Components, "profiles")
}

func TestEnvelopeShape(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/templates")
	require.Equal(t, http.StatusOK, resp.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.Equal(t, float64(1), raw["v"])
	assert.Equal(t, true, raw["success"])
	assert.Contains(t, raw, "data")
	assert.NotContains(t, raw, "error")
}

func TestErrorEnvelope(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/cards/no-such-handle")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.V)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Error["code"])
}

func TestAuthFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, userID := ts.registerUser(t, "jamie@example.com")
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, userID)

	// Authenticated whoami.
	resp := ts.api.Get("/api/v1/users/me", authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var me testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, "jamie@example.com", me.Data.Email)
	assert.Equal(t, "Jamie Rivera", me.Data.DisplayName)

	// Unauthenticated whoami is rejected.
	resp = ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Login works.
	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "jamie@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	// Wrong password is a 401.
	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "jamie@example.com",
		"password": "wrong-password-here",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "casey@example.com",
		"password":     "correct-horse-battery",
		"display_name": "Casey",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	// Rotate tokens.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": envelope.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var rotated testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rotated))
	assert.NotEqual(t, envelope.Data.RefreshToken, rotated.Data.RefreshToken)

	// Old refresh token is dead.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": envelope.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Logout kills the session.
	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"session_id": rotated.Data.SessionID,
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": rotated.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "not-an-email",
		"password":     "correct-horse-battery",
		"display_name": "Jamie",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "short@example.com",
		"password":     "short",
		"display_name": "Jamie",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSessionManagement(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "sessions@example.com")

	resp := ts.api.Get("/api/v1/users/me/sessions", authHeader(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[struct {
		Sessions []SessionInfo `json:"sessions"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Sessions, 1)

	sessionID := envelope.Data.Sessions[0].ID
	resp = ts.api.Delete("/api/v1/users/me/sessions/"+sessionID, authHeader(token))
	assert.Equal(t, http.StatusOK, resp.Code)

	// Revoking someone else's (unknown) session is a 404.
	resp = ts.api.Delete("/api/v1/users/me/sessions/session-unknown", authHeader(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
