package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/repository/memstore"
	"cityconnect/internal/security"
	"cityconnect/internal/service"
	"cityconnect/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
	auth   *service.AuthService
}

type apiOption func(*Deps, *memstore.Store)

func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	store := memstore.New()

	tokens, err := security.NewTokenManager([]string{"test:handler-secret"}, time.Hour)
	require.NoError(t, err)
	images, err := storage.NewLocalStore(afero.NewMemMapFs())
	require.NoError(t, err)

	auth := service.NewAuthService(store.Users(), tokens, log)
	deps := Deps{
		Services: Services{
			Auth:          auth,
			Posts:         service.NewPostService(store.Posts(), nil, log),
			Complaints:    service.NewComplaintService(store.Complaints(), log),
			Reviews:       service.NewReviewService(store.Reviews(), log),
			Announcements: service.NewAnnouncementService(store.Announcements(), log),
			Groups:        service.NewGroupService(store.Groups(), store.Users(), nil, log),
			Moderation:    service.NewModerationService(store.Moderation()),
			Uploads:       service.NewUploadService(images, 5*1024*1024, log),
		},
		Tokens:      tokens,
		Environment: "test",
	}
	for _, opt := range opts {
		opt(&deps, store)
	}

	router := gin.New()
	NewHandlerSet(log, deps).Register(router.Group("/api"))
	return &testAPI{t: t, router: router, store: store, auth: auth}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the API and returns its token.
func (a *testAPI) register(name, email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/register", "", gin.H{"name": name, "email": email, "password": "password123"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp authResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

// registerAdmin promotes the account the way the CLI does and logs in
// again so the token carries the new role.
func (a *testAPI) registerAdmin(name, email string) string {
	a.t.Helper()
	a.register(name, email)
	require.NoError(a.t, a.auth.SetRole(context.Background(), email, "admin"))
	rec := a.do(http.MethodPost, "/api/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp authResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(a.t, "admin", resp.User.Role)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
