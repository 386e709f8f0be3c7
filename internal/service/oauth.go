package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/pkg/jwt"
	"golang.org/x/oauth2"
)

// FlowSigner signs and verifies the short-lived login flow cookie
type FlowSigner interface {
	Sign(claims jwt.Claims) (string, error)
	Validate(token string) (*jwt.Claims, error)
}

// OIDCConfig holds identity provider endpoints and client credentials
type OIDCConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// OAuthService runs the OIDC authorization code flow with PKCE
type OAuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
	flows       FlowSigner
	users       UserRepository
	sessions    *SessionService
	httpClient  *http.Client
}

// OAuthServiceConfig holds configuration for the OAuth service
type OAuthServiceConfig struct {
	Config         OIDCConfig
	Flows          FlowSigner
	UserRepo       UserRepository
	SessionService *SessionService
	// HTTPClient is used for token and userinfo requests (defaults to http.DefaultClient)
	HTTPClient *http.Client
}

// NewOAuthService creates a new OAuth service. It is disabled when no
// client id is configured.
func NewOAuthService(cfg OAuthServiceConfig) *OAuthService {
	s := &OAuthService{
		userInfoURL: cfg.Config.UserInfoURL,
		flows:       cfg.Flows,
		users:       cfg.UserRepo,
		sessions:    cfg.SessionService,
		httpClient:  cfg.HTTPClient,
	}
	if cfg.Config.ClientID != "" {
		s.oauth = &oauth2.Config{
			ClientID:     cfg.Config.ClientID,
			ClientSecret: cfg.Config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.Config.AuthURL,
				TokenURL: cfg.Config.TokenURL,
			},
			RedirectURL: cfg.Config.RedirectURL,
			Scopes:      cfg.Config.Scopes,
		}
	}
	return s
}

// Enabled reports whether single sign-on is configured
func (s *OAuthService) Enabled() bool {
	return s.oauth != nil && s.flows != nil
}

// LoginStart is the result of beginning a login
type LoginStart struct {
	// RedirectURL is the provider authorization URL
	RedirectURL string
	// FlowToken must be returned on the callback, usually via cookie
	FlowToken string
}

// Begin creates PKCE and state parameters for a new login
func (s *OAuthService) Begin(returnTo string) (*LoginStart, error) {
	if !s.Enabled() {
		return nil, ErrOIDCDisabled
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	flow, err := s.flows.Sign(jwt.Claims{
		State:    state,
		Verifier: verifier,
		ReturnTo: SafeReturnTo(returnTo),
	})
	if err != nil {
		return nil, fmt.Errorf("sign flow state: %w", err)
	}

	return &LoginStart{
		RedirectURL: s.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		FlowToken:   flow,
	}, nil
}

// LoginResult is a completed login
type LoginResult struct {
	Auth     *model.AuthResponse
	ReturnTo string
}

// Complete verifies the callback against the flow token, exchanges the
// code and signs the user in, creating the account on first login.
func (s *OAuthService) Complete(ctx context.Context, flowToken, state, code string) (*LoginResult, error) {
	if !s.Enabled() {
		return nil, ErrOIDCDisabled
	}
	if flowToken == "" || state == "" || code == "" {
		return nil, ErrInvalidFlowState
	}

	flow, err := s.flows.Validate(flowToken)
	if err != nil {
		return nil, ErrInvalidFlowState
	}
	if subtle.ConstantTimeCompare([]byte(flow.State), []byte(state)) != 1 {
		return nil, ErrInvalidFlowState
	}

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(flow.Verifier))
	if err != nil {
		slog.Warn("oidc code exchange failed", slog.String("error", err.Error()))
		return nil, ErrProviderError
	}

	identity, err := s.identity(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.upsertUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	auth, err := s.sessions.Start(ctx, user, map[string]interface{}{
		"provider": "oidc",
		"sub":      identity.Subject,
		"email":    identity.Email,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Auth: auth, ReturnTo: SafeReturnTo(flow.ReturnTo)}, nil
}

// identity reads the ID token claims, falling back to the userinfo
// endpoint when the token is absent or carries no email.
func (s *OAuthService) identity(ctx context.Context, token *oauth2.Token) (*jwt.Identity, error) {
	var identity *jwt.Identity
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		parsed, err := jwt.ParseIdentity(raw)
		if err != nil {
			return nil, ErrInvalidIDToken
		}
		identity = parsed
	}

	if (identity == nil || identity.Email == "") && s.userInfoURL != "" {
		info, err := s.fetchUserInfo(ctx, token)
		if err != nil {
			return nil, err
		}
		if identity == nil {
			identity = info
		} else if identity.Subject == info.Subject {
			identity.Email = info.Email
			identity.EmailVerified = info.EmailVerified
			if identity.Name == "" {
				identity.Name = info.Name
			}
			if identity.Picture == "" {
				identity.Picture = info.Picture
			}
		}
	}

	if identity == nil || identity.Subject == "" {
		return nil, ErrInvalidIDToken
	}
	if identity.Email == "" {
		return nil, ErrMissingEmail
	}
	return identity, nil
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*jwt.Identity, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		slog.Warn("oidc userinfo request failed", slog.String("error", err.Error()))
		return nil, ErrProviderError
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("oidc userinfo returned error", slog.Int("status", resp.StatusCode))
		return nil, ErrProviderError
	}

	var info jwt.Identity
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, ErrProviderError
	}
	return &info, nil
}

// upsertUser finds the account by provider subject, then by email, and
// creates one if neither matches. A subject seen for the first time must
// come with a verified email, since it either claims an existing account
// by that email or reserves the email for a new one.
func (s *OAuthService) upsertUser(ctx context.Context, id *jwt.Identity) (*model.User, error) {
	user, err := s.users.GetByOIDCSubject(ctx, id.Subject)
	if err != nil {
		return nil, err
	}

	if user == nil && !id.EmailVerified {
		slog.Warn("oidc login with unverified email refused", slog.String("subject", id.Subject))
		return nil, ErrEmailNotVerified
	}

	if user == nil {
		user, err = s.users.GetByEmail(ctx, normalizeEmail(id.Email))
		if err != nil {
			return nil, err
		}
		if user != nil {
			sub := id.Subject
			user.OIDCSubject = &sub
			fillProfile(user, id)
			if err := s.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	if user == nil {
		sub := id.Subject
		user = &model.User{
			Email:       normalizeEmail(id.Email),
			OIDCSubject: &sub,
		}
		fillProfile(user, id)
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if err := s.users.UpdateLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func fillProfile(user *model.User, id *jwt.Identity) {
	if user.Name == nil && id.Name != "" {
		name := id.Name
		user.Name = &name
	}
	if user.ProfileImageURL == nil && id.Picture != "" {
		pic := id.Picture
		user.ProfileImageURL = &pic
	}
}

// SafeReturnTo keeps post-login redirects on this site. Anything other
// than an absolute path becomes "/".
func SafeReturnTo(returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") ||
		strings.HasPrefix(returnTo, "//") ||
		strings.ContainsAny(returnTo, "\\\r\n") {
		return "/"
	}
	return returnTo
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
