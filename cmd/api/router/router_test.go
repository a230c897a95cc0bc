package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marlang/agent"
	"marlang/cmd/api/auth"
	"marlang/cmd/api/dto"
	"marlang/cmd/api/router"
	"marlang/memstore"
	"marlang/models"
	"marlang/storage"
)

type fakeRunner struct {
	res      agent.Result
	err      error
	triggers []agent.Trigger
}

func (f *fakeRunner) Run(ctx context.Context, trigger agent.Trigger) (agent.Result, error) {
	f.triggers = append(f.triggers, trigger)
	return f.res, f.err
}

type testServer struct {
	engine *gin.Engine
	store  *memstore.Store
	images *storage.MemoryStorage
	runner *fakeRunner
	jwt    *auth.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "router-test-secret")
	t.Setenv("JWT_ISSUER", "")

	jwtManager, err := auth.NewJWTManagerFromEnv()
	require.NoError(t, err)

	ts := &testServer{
		store:  memstore.New(),
		images: storage.NewMemoryStorage("http://localhost:8080"),
		runner: &fakeRunner{},
		jwt:    jwtManager,
	}
	ts.engine = router.New(router.Deps{
		Store:   ts.store,
		Runner:  ts.runner,
		Images:  ts.images,
		Tokens:  jwtManager,
		AgentID: "main",
	})
	return ts
}

func (ts *testServer) token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := ts.jwt.Sign(sub, role)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seedPost(t *testing.T, title, slug string, status models.PostStatus, tags []string, at time.Time) string {
	t.Helper()
	id, err := ts.store.CreatePost(context.Background(), &models.Post{
		Title:       title,
		Slug:        slug,
		Content:     "<p>" + title + "</p>",
		Tags:        tags,
		Thumbnails:  []string{"https://cdn.test/" + slug + ".png"},
		Status:      status,
		PublishedAt: at,
		CreatedAt:   at,
		UpdatedAt:   at,
		Author:      "Marlang",
	})
	require.NoError(t, err)
	return id
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestPublicPostsHideDrafts(t *testing.T) {
	ts := newTestServer(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	ts.seedPost(t, "Older", "older", models.PostStatusPublished, []string{"yarn"}, base.Add(-time.Hour))
	ts.seedPost(t, "Newer", "newer", models.PostStatusPublished, []string{"space"}, base)
	draftID := ts.seedPost(t, "Hidden", "hidden", models.PostStatusDraft, []string{"yarn"}, base.Add(time.Hour))

	rec := ts.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[dto.Pagination[dto.PostDTO]](t, rec)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Newer", page.Data[0].Title)
	assert.Equal(t, "https://cdn.test/newer.png", page.Data[0].CoverImage)

	rec = ts.do(t, http.MethodGet, "/api/v1/posts?tag=yarn", "", nil)
	page = decode[dto.Pagination[dto.PostDTO]](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Older", page.Data[0].Title)

	rec = ts.do(t, http.MethodGet, "/api/v1/posts/"+draftID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/posts/slug/newer", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Newer", decode[dto.PostDTO](t, rec).Title)

	rec = ts.do(t, http.MethodGet, "/api/v1/posts/slug/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImagesRoute(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.images.Upload(context.Background(), []byte("png-bytes"), "k1.png", "image/png")
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/v1/images/k1.png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/images/nope.png", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/posts", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken := ts.token(t, "u-1", auth.RoleUser)
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/posts", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, ts.store.PutAdmin(context.Background(), models.Admin{UID: "u-1", Email: "u1@example.com"}))
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/posts", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/posts", ts.token(t, "root", auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAgentReplaceAndPatch(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "root", auth.RoleAdmin)

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/agent", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/agent", tok, map[string]any{"bio": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/agent", tok, map[string]any{
		"name": "Marlang",
		"bio":  "an AI cat",
		"scheduledPosting": map[string]any{
			"enabled":  true,
			"schedule": 9,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cfg := decode[models.AgentConfig](t, rec)
	assert.Equal(t, "main", cfg.ID)
	assert.Equal(t, "Marlang", cfg.Name)

	rec = ts.do(t, http.MethodPatch, "/api/v1/admin/agent", tok, map[string]any{
		"scheduledPosting": map[string]any{"enabled": false},
		"personality.tone": "sleepy",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cfg = decode[models.AgentConfig](t, rec)
	assert.False(t, cfg.ScheduledPosting.Enabled)
	assert.Equal(t, float64(9), cfg.ScheduledPosting.Schedule)
	assert.Equal(t, "sleepy", cfg.Personality.Tone)
	assert.Equal(t, "an AI cat", cfg.Bio)

	rec = ts.do(t, http.MethodPatch, "/api/v1/admin/agent", tok, map[string]any{
		"scheduledPosting.lastRun": "2025-03-14T08:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, err := ts.store.GetAgent(context.Background(), "main")
	require.NoError(t, err)
	require.NotNil(t, stored.ScheduledPosting.LastRun)
	assert.True(t, stored.ScheduledPosting.LastRun.Equal(time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)))

	rec = ts.do(t, http.MethodPatch, "/api/v1/admin/agent", tok, map[string]any{"id": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRunStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		res    agent.Result
		err    error
		status int
	}{
		{"success", agent.Result{Success: true, PostID: "p1"}, nil, http.StatusOK},
		{"skipped", agent.Result{Reason: agent.ReasonCooldown, Skipped: true}, nil, http.StatusConflict},
		{"failed", agent.Result{Reason: agent.ReasonNoImages}, nil, http.StatusBadGateway},
		{"error", agent.Result{Reason: agent.ReasonPersistFailed}, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.runner.res = tc.res
			ts.runner.err = tc.err

			rec := ts.do(t, http.MethodPost, "/api/v1/admin/agent/run", ts.token(t, "root", auth.RoleAdmin), nil)
			assert.Equal(t, tc.status, rec.Code)
			out := decode[dto.RunResultDTO](t, rec)
			assert.Equal(t, tc.res.Success, out.Success)
			assert.Equal(t, tc.res.Reason, out.Reason)
			assert.Equal(t, []agent.Trigger{agent.TriggerManual}, ts.runner.triggers)
		})
	}
}

func TestAdminPostsUpdateAndDelete(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "root", auth.RoleAdmin)
	id := ts.seedPost(t, "Draft", "draft", models.PostStatusDraft, []string{"yarn"}, time.Now().UTC())

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/posts?status=draft", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[dto.Pagination[dto.AdminPostDTO]](t, rec).Total)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/posts?status=archived", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/posts/"+id, tok, map[string]any{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/posts/"+id, tok, map[string]any{
		"status": "published",
		"tags":   []string{"space", "lasers"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[dto.AdminPostDTO](t, rec)
	assert.Equal(t, "published", updated.Status)
	assert.Equal(t, []string{"space", "lasers"}, updated.Tags)
	assert.Equal(t, []string{"space", "lasers"}, updated.Metadata.Keywords)

	rec = ts.do(t, http.MethodGet, "/api/v1/posts/"+id, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/posts/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/posts/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodPut, "/api/v1/admin/posts/"+id, tok, map[string]any{"title": "gone"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRegistry(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "root", auth.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/admins", tok, map[string]any{"uid": "u-2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/admins", tok, map[string]any{"uid": "u-2", "email": "U2@Example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[dto.AdminDTO](t, rec)
	assert.Equal(t, "u2@example.com", added.Email)
	assert.Equal(t, "root", added.AddedBy)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/admins", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.AdminDTO](t, rec), 1)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/admins/root", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/admins/u-2", tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/admins/u-2", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
