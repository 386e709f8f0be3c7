// Package service implements the business logic layer for the WE:VE API.
//
// Services sit between HTTP handlers and repositories. They enforce the
// couple scope, validate state transitions and publish change events to
// the SSE hub.
//
// # Service Pattern
//
//   - Constructors take a config struct or the repositories directly
//   - Each service declares the narrow repository interface it needs
//   - Errors are package-level sentinels that handlers map to HTTP status
//   - Every operation takes a context.Context
//
// # Error Handling
//
//	var (
//	    ErrUserNotFound  = errors.New("user not found")
//	    ErrAlreadyLinked = errors.New("already linked to a partner")
//	)
//
// # Example Usage
//
//	couples := NewCoupleService(CoupleServiceConfig{
//	    UserRepo:   userRepository,
//	    InviteRepo: inviteRepository,
//	    Events:     eventHub,
//	})
//	invite, err := couples.Invite(ctx, userID)
package service
