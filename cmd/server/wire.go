package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/webeat/weve/internal/ai"
	"github.com/webeat/weve/internal/billing"
	"github.com/webeat/weve/internal/config"
	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/repository"
	"github.com/webeat/weve/internal/service"
	"github.com/webeat/weve/pkg/jwt"
)

// buildDeps wires repositories and services over db. The rate limiter and
// metrics registry are left for the caller.
func buildDeps(ctx context.Context, cfg *config.Config, db database.Database, blobs media.Store, flows *jwt.Service, eventHub *service.EventHub) (routerDeps, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	eventRepo := repository.NewEventRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	travelRepo := repository.NewTravelRepository(db)
	weddingInfoRepo := repository.NewWeddingInfoRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// Initialize services
	sessionService := service.NewSessionService(service.SessionServiceConfig{
		SessionRepo: sessionRepo,
		UserRepo:    userRepo,
		TTL:         cfg.Session.TTL,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:       userRepo,
		SessionService: sessionService,
		Events:         eventHub,
		PasswordLogin:  cfg.Session.PasswordLogin,
	})

	oauthService := service.NewOAuthService(service.OAuthServiceConfig{
		Config: service.OIDCConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			AuthURL:      cfg.OIDC.AuthURL,
			TokenURL:     cfg.OIDC.TokenURL,
			UserInfoURL:  cfg.OIDC.UserInfoURL,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Scopes:       cfg.OIDC.Scopes,
		},
		Flows:          flows,
		UserRepo:       userRepo,
		SessionService: sessionService,
		HTTPClient:     &http.Client{Timeout: 10 * time.Second},
	})

	coupleService := service.NewCoupleService(service.CoupleServiceConfig{
		UserRepo:   userRepo,
		InviteRepo: inviteRepo,
		Events:     eventHub,
	})

	eventService := service.NewEventService(eventRepo, eventHub)
	todoService := service.NewTodoService(todoRepo, eventHub)
	travelService := service.NewTravelService(travelRepo, eventHub)
	albumService := service.NewAlbumService(albumRepo, photoRepo, eventHub)
	photoService := service.NewPhotoService(photoRepo, albumRepo, blobs, service.PhotoServiceConfig{
		MediaBaseURL: cfg.Media.BaseURL,
		MaxBytes:     int64(cfg.Media.MaxUploadMB) << 20,
	}, eventHub)
	weddingInfoService := service.NewWeddingInfoService(weddingInfoRepo, eventHub)
	expenseService := service.NewExpenseService(expenseRepo, weddingInfoService, eventHub)
	checklistService := service.NewChecklistService(checklistRepo, eventHub)
	guestService := service.NewGuestService(guestRepo, eventHub)
	vendorService := service.NewVendorService(vendorRepo, eventHub)
	communityService := service.NewCommunityService(communityRepo)
	settingsService := service.NewSettingsService(settingsRepo)

	dashboardService := service.NewDashboardService(service.DashboardSources{
		Users:  userRepo,
		Events: eventService,
		Todos:  todoService,
		Photos: photoService,
		Budget: expenseService,
	})

	var generator ai.Generator
	if cfg.AI.APIKey != "" {
		gemini, err := ai.NewGemini(ctx, ai.Config{
			APIKey:          cfg.AI.APIKey,
			Model:           cfg.AI.Model,
			MaxOutputTokens: cfg.AI.MaxOutputTokens,
		})
		if err != nil {
			return routerDeps{}, fmt.Errorf("initialize AI client: %w", err)
		}
		generator = gemini
	} else {
		slog.Warn("GEMINI_API_KEY not set, AI endpoints disabled")
	}
	aiService := service.NewAIService(service.AIServiceConfig{
		Generator:         generator,
		SubscriptionRepo:  subscriptionRepo,
		// Nobody can hold a membership without billing
		RequireMembership: cfg.AI.RequireMembership && cfg.Billing.IsConfigured(),
	})

	var gateway billing.Gateway
	if cfg.Billing.IsConfigured() {
		gateway = billing.NewStripe(billing.Config{
			SecretKey:     cfg.Billing.SecretKey,
			WebhookSecret: cfg.Billing.WebhookSecret,
		})
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, billing disabled")
	}
	billingService := service.NewBillingService(service.BillingServiceConfig{
		Gateway:          gateway,
		SubscriptionRepo: subscriptionRepo,
		MonthlyPriceID:   cfg.Billing.MonthlyPriceID,
		YearlyPriceID:    cfg.Billing.YearlyPriceID,
		AppURL:           cfg.Server.AppURL,
	})

	return routerDeps{
		cfg:         cfg,
		db:          db,
		sessions:    sessionService,
		eventHub:    eventHub,
		blobs:       blobs,
		auth:        authService,
		oauth:       oauthService,
		couples:     coupleService,
		events:      eventService,
		todos:       todoService,
		travels:     travelService,
		albums:      albumService,
		photos:      photoService,
		weddingInfo: weddingInfoService,
		expenses:    expenseService,
		checklist:   checklistService,
		guests:      guestService,
		vendors:     vendorService,
		community:   communityService,
		settings:    settingsService,
		dashboard:   dashboardService,
		assistant:   aiService,
		billing:     billingService,
	}, nil
}
