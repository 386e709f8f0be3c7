// Package jwt signs and verifies the RS256 tokens used by the WE:VE API.
//
// The API keeps login sessions in the database, so JWTs only carry
// short-lived state: the OIDC flow cookie that binds the PKCE verifier and
// state parameter to the browser between the redirect and the callback.
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    Issuer:         "api.weve.app",
//	    ExpirationMins: 10,
//	})
//	token, err := svc.Sign(jwt.Claims{State: state, Verifier: verifier})
//	claims, err := svc.Validate(token)
//
// ParseIdentity reads the claims of an ID token returned by the provider's
// token endpoint.
package jwt
