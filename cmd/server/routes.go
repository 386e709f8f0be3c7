package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webeat/weve/internal/config"
	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/handler"
	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/service"
)

type routerDeps struct {
	cfg         *config.Config
	db          database.Database
	sessions    *service.SessionService
	rateLimiter *middleware.RateLimiter
	idempotency *middleware.IdempotencyStore
	registry    *prometheus.Registry
	eventHub    *service.EventHub
	blobs       media.Store

	auth        *service.AuthService
	oauth       *service.OAuthService
	couples     *service.CoupleService
	events      *service.EventService
	todos       *service.TodoService
	travels     *service.TravelService
	albums      *service.AlbumService
	photos      *service.PhotoService
	weddingInfo *service.WeddingInfoService
	expenses    *service.ExpenseService
	checklist   *service.ChecklistService
	guests      *service.GuestService
	vendors     *service.VendorService
	community   *service.CommunityService
	settings    *service.SettingsService
	dashboard   *service.DashboardService
	assistant   *service.AIService
	billing     *service.BillingService
}

// newRouter registers every route. Three wrappers cover the API:
// public (rate limit only), authed (session required) and scoped
// (session plus the couple/mode scope). Authenticated POSTs honour
// Idempotency-Key when a store is configured.
func newRouter(d routerDeps) *http.ServeMux {
	cookieName := d.cfg.Session.CookieName

	limit := func(next http.Handler) http.Handler { return next }
	if d.rateLimiter != nil {
		limit = middleware.RateLimit(d.rateLimiter)
	}
	idem := func(next http.Handler) http.Handler { return next }
	if d.idempotency != nil {
		idem = middleware.Idempotency(d.idempotency)
	}
	auth := middleware.Auth(d.sessions, cookieName)

	public := limit
	authed := func(next http.Handler) http.Handler {
		return auth(limit(idem(next)))
	}
	scoped := func(next http.Handler) http.Handler {
		return auth(limit(idem(middleware.Scope(next))))
	}

	mux := http.NewServeMux()

	// Operational endpoints
	handler.NewHealthHandler(d.db, version).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	// Accounts and login
	handler.NewAuthHandler(d.auth, d.sessions, d.oauth, handler.CookieConfig{
		Session: cookieName,
		Secure:  d.cfg.IsProduction(),
	}).RegisterRoutes(mux, public, authed)
	handler.NewSettingsHandler(d.settings).RegisterRoutes(mux, authed)
	handler.NewAdminUsersHandler(d.auth).RegisterRoutes(mux, authed)

	// Couple linking
	handler.NewCoupleHandler(d.couples).RegisterRoutes(mux, authed)
	handler.NewStreamHandler(d.eventHub).RegisterRoutes(mux, authed)

	// Couple-scoped collections
	for _, h := range handler.NewCollectionHandlers(handler.CollectionServices{
		Events:    d.events,
		Todos:     d.todos,
		Albums:    d.albums,
		Photos:    d.photos,
		Expenses:  d.expenses,
		Checklist: d.checklist,
		Travels:   d.travels,
		Guests:    d.guests,
		Vendors:   d.vendors,
	}) {
		h.RegisterRoutes(mux, scoped)
	}
	handler.NewWeddingHandler(handler.WeddingServices{
		Info:      d.weddingInfo,
		Expenses:  d.expenses,
		Guests:    d.guests,
		Checklist: d.checklist,
	}).RegisterRoutes(mux, scoped)
	handler.NewMediaHandler(d.photos, d.blobs, int64(d.cfg.Media.MaxUploadMB)<<20).RegisterRoutes(mux, scoped)
	handler.NewDashboardHandler(d.dashboard).RegisterRoutes(mux, scoped)

	// Community, AI and membership
	handler.NewCommunityHandler(d.community).RegisterRoutes(mux, scoped)
	handler.NewAIHandler(d.assistant).RegisterRoutes(mux, scoped)
	handler.NewBillingHandler(d.billing).RegisterRoutes(mux, public, authed)

	return mux
}
