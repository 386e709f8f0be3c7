package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/webeat/weve/internal/model"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("model returned no text")

// Generator produces text from a system instruction and a conversation
type Generator interface {
	Generate(ctx context.Context, system string, turns []model.ChatMessage) (string, error)
}

// Config holds Gemini client settings
type Config struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	// BaseURL overrides the API endpoint (tests point it at httptest)
	BaseURL string
}

// Gemini generates text with Google's Gemini API
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGemini creates a Gemini generator
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

// Generate sends the conversation and returns the model's reply
func (g *Gemini) Generate(ctx context.Context, system string, turns []model.ChatMessage) (string, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.8),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
