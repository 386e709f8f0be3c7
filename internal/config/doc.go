// Package config manages application configuration for the WE:VE API.
//
// Values come from three layers, each overriding the last: built-in
// defaults, an optional YAML file named by WEVE_CONFIG, and environment
// variables.
//
//	cfg, err := config.Load()
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: port, timeouts, CORS origins, web client URL
//   - DatabaseConfig: SurrealDB connection settings
//   - SessionConfig: session cookie and lifetime, password login toggle
//   - OIDCConfig: identity provider endpoints and client credentials
//   - JWTConfig: key used to sign the OIDC flow cookie
//   - BillingConfig: Stripe keys and price ids
//   - AIConfig: text generation model and membership gate
//   - MediaConfig: photo storage directory and upload limit
//   - RateLimitConfig: per-client token bucket
//
// Optional integrations (OIDC, billing, AI) are switched off when their
// credentials are empty.
package config
