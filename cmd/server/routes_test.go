package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webeat/weve/internal/config"
	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
	"github.com/webeat/weve/internal/testing/helpers"
	"github.com/webeat/weve/internal/testing/testdb"
	"github.com/webeat/weve/pkg/jwt"
)

func TestRouter_RequiresSession(t *testing.T) {
	cfg := config.Defaults()
	mux := newRouter(routerDeps{cfg: cfg, registry: prometheus.NewRegistry()})

	for _, path := range []string{"/api/events", "/api/couple", "/api/dashboard", "/api/community/posts", "/api/auth/user"} {
		rec := helpers.NewRequest(t, http.MethodGet, path).Do(mux)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := helpers.NewRequest(t, http.MethodGet, "/api/events").
		WithHeader("Authorization", "Token abc").
		Do(mux)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)
	mux := newRouter(routerDeps{cfg: config.Defaults(), registry: registry})
	h := metrics.Middleware(mux)

	helpers.NewRequest(t, http.MethodGet, "/api/events").Do(h)

	rec := helpers.NewRequest(t, http.MethodGet, "/metrics").Do(h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_PublicRoutesAreRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})
	defer limiter.Stop()
	mux := newRouter(routerDeps{cfg: config.Defaults(), registry: prometheus.NewRegistry(), rateLimiter: limiter})

	var last int
	for i := 0; i < 3; i++ {
		// An empty body fails decoding before any service is reached
		rec := helpers.NewRequest(t, http.MethodPost, "/api/auth/register").Do(mux)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

// ============================================================================
// End-to-end against SurrealDB
// ============================================================================

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	tdb := testdb.New(t)
	t.Cleanup(tdb.Close)

	cfg := config.Defaults()
	cfg.Media.Dir = t.TempDir()

	blobs, err := media.NewLocalStore(cfg.Media.Dir)
	require.NoError(t, err)
	flows, err := jwt.NewEphemeralService("weve-test", 10*time.Minute)
	require.NoError(t, err)
	hub := service.NewEventHub(time.Hour)
	t.Cleanup(hub.Close)

	deps, err := buildDeps(context.Background(), cfg, tdb.DB, blobs, flows, hub)
	require.NoError(t, err)
	deps.registry = prometheus.NewRegistry()
	deps.idempotency = middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})
	t.Cleanup(deps.idempotency.Stop)
	return newRouter(deps)
}

func register(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := helpers.NewRequest(t, http.MethodPost, "/api/auth/register").
		WithBody(model.RegisterRequest{Email: email, Password: "correct horse"}).
		Do(h)
	helpers.AssertStatus(t, rec, http.StatusCreated)

	var auth model.AuthResponse
	helpers.DecodeData(t, rec, &auth)
	require.NotEmpty(t, auth.Token)
	return auth.Token
}

func TestRouter_LinkedCoupleSharesRowsPerMode(t *testing.T) {
	h := newTestServer(t)

	alice := register(t, h, "alice@example.com")
	bob := register(t, h, "bob@example.com")

	// Link the couple
	rec := helpers.NewRequest(t, http.MethodPost, "/api/couple/invite").WithSession(alice).Do(h)
	helpers.AssertStatus(t, rec, http.StatusOK)
	var invite model.CoupleInvite
	helpers.DecodeData(t, rec, &invite)

	rec = helpers.NewRequest(t, http.MethodPost, "/api/couple/accept").
		WithSession(bob).
		WithBody(model.AcceptInviteRequest{Code: invite.Code}).
		Do(h)
	helpers.AssertStatus(t, rec, http.StatusOK)
	var status model.CoupleStatus
	helpers.DecodeData(t, rec, &status)
	assert.True(t, status.Linked)

	// Alice plans a date
	rec = helpers.NewRequest(t, http.MethodPost, "/api/events").
		WithSession(alice).
		WithMode(model.ModeDating).
		WithBody(map[string]any{"title": "Picnic", "date": helpers.Today()}).
		Do(h)
	helpers.AssertStatus(t, rec, http.StatusCreated)

	// Bob sees it in dating mode only
	rec = helpers.NewRequest(t, http.MethodGet, "/api/events").WithSession(bob).WithMode(model.ModeDating).Do(h)
	helpers.AssertStatus(t, rec, http.StatusOK)
	var dating []model.Event
	helpers.DecodeData(t, rec, &dating)
	require.Len(t, dating, 1)
	assert.Equal(t, "Picnic", dating[0].Title)

	rec = helpers.NewRequest(t, http.MethodGet, "/api/events").WithSession(bob).WithMode(model.ModeWedding).Do(h)
	var wedding []model.Event
	helpers.DecodeData(t, rec, &wedding)
	assert.Empty(t, wedding)

	// A bad date is rejected on the field
	rec = helpers.NewRequest(t, http.MethodPost, "/api/events").
		WithSession(bob).
		WithBody(map[string]any{"title": "Movie", "date": "tomorrow"}).
		Do(h)
	helpers.AssertValidationError(t, rec, "date")
}

func TestRouter_RetriedPostIsReplayed(t *testing.T) {
	h := newTestServer(t)
	alice := register(t, h, "alice@example.com")

	post := func(title string) *httptest.ResponseRecorder {
		return helpers.NewRequest(t, http.MethodPost, "/api/todos").
			WithSession(alice).
			WithHeader(middleware.IdempotencyHeader, "retry-1").
			WithBody(map[string]any{"title": title}).
			Do(h)
	}

	first := post("Book the venue")
	helpers.AssertStatus(t, first, http.StatusCreated)
	retry := post("Book the venue")
	helpers.AssertStatus(t, retry, http.StatusCreated)
	assert.Equal(t, "true", retry.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), retry.Body.String())

	helpers.AssertStatus(t, post("Something else"), http.StatusConflict)

	// Same body in another mode is a different request
	rec := helpers.NewRequest(t, http.MethodPost, "/api/todos?mode=wedding").
		WithSession(alice).
		WithHeader(middleware.IdempotencyHeader, "retry-1").
		WithBody(map[string]any{"title": "Book the venue"}).
		Do(h)
	helpers.AssertStatus(t, rec, http.StatusConflict)

	rec = helpers.NewRequest(t, http.MethodGet, "/api/todos").WithSession(alice).Do(h)
	var todos []model.Todo
	helpers.DecodeData(t, rec, &todos)
	assert.Len(t, todos, 1)
}
