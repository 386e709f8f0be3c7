package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/webeat/weve/internal/ai"
	"github.com/webeat/weve/internal/model"
)

// SubscriptionRepository defines the interface for membership storage
type SubscriptionRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Subscription, error)
	GetByCustomer(ctx context.Context, customerID string) (*model.Subscription, error)
	Upsert(ctx context.Context, sub *model.Subscription) (*model.Subscription, error)
}

// AIService runs copywriting and chat requests for members
type AIService struct {
	gen               ai.Generator
	subs              SubscriptionRepository
	requireMembership bool
	now               func() time.Time
}

// AIServiceConfig holds configuration for the AI service
type AIServiceConfig struct {
	// Generator may be nil, which disables the endpoints
	Generator         ai.Generator
	SubscriptionRepo  SubscriptionRepository
	RequireMembership bool
}

// NewAIService creates a new AI service
func NewAIService(cfg AIServiceConfig) *AIService {
	return &AIService{
		gen:               cfg.Generator,
		subs:              cfg.SubscriptionRepo,
		requireMembership: cfg.RequireMembership,
		now:               time.Now,
	}
}

// Copy writes a piece of text of the requested kind
func (s *AIService) Copy(ctx context.Context, userID string, mode model.Mode, req *model.CopyRequest) (*model.GeneratedText, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}
	system, prompt := ai.CopyPrompt(mode, req)
	return s.generate(ctx, system, []model.ChatMessage{{Role: "user", Content: prompt}})
}

// Chat answers the last user message of a conversation
func (s *AIService) Chat(ctx context.Context, userID string, mode model.Mode, req *model.ChatRequest) (*model.GeneratedText, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}
	return s.generate(ctx, ai.ChatPrompt(mode), req.Messages)
}

func (s *AIService) authorize(ctx context.Context, userID string) error {
	if s.gen == nil {
		return ErrAIUnavailable
	}
	if !s.requireMembership {
		return nil
	}
	sub, err := s.subs.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if !sub.Active(s.now()) {
		return ErrMembershipRequired
	}
	return nil
}

func (s *AIService) generate(ctx context.Context, system string, turns []model.ChatMessage) (*model.GeneratedText, error) {
	text, err := s.gen.Generate(ctx, system, turns)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		slog.Warn("text generation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrAIProvider, err)
	}
	return &model.GeneratedText{Text: text}, nil
}
