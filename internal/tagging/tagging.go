// Package tagging asks an LLM for product tags and collection categories.
//
// Calls never fail from the caller's point of view: GenerateTags returns a
// one-element sentinel slice and ClassifyProduct returns "" when no provider
// could answer.
package tagging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/models"
)

const (
	SentinelAPIKeyMissing = "api_key_missing"
	SentinelError         = "error_generating_tags"

	// DefaultBatchSize is used when a batch call is given a non-positive size.
	DefaultBatchSize = 50

	maxTags = 10
)

// provider is one LLM backend that turns a prompt into text.
type provider interface {
	Name() string
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

type Service struct {
	primary  provider
	fallback provider
}

// NewService builds the tagger for a config snapshot. The Anthropic provider is
// primary; Gemini is added as a fallback when GEMINI_API_KEY is set.
func NewService(cfg *config.Config) *Service {
	s := &Service{}
	if cfg.AnthropicAPIKey != "" {
		s.primary = &anthropicProvider{
			apiURL:  cfg.AnthropicAPIURL,
			apiKey:  cfg.AnthropicAPIKey,
			model:   cfg.AnthropicModel,
			version: cfg.AnthropicVersion,
			client:  &http.Client{Timeout: cfg.AITimeout},
		}
	}
	if cfg.GeminiAPIKey != "" {
		gp, err := newGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("gemini fallback disabled", "error", err)
		} else {
			s.fallback = gp
		}
	}
	return s
}

// IsConfigured reports whether the tagging credential is present. Only the
// Anthropic key counts; the Gemini provider is a fallback, not a substitute.
func (s *Service) IsConfigured() bool {
	return s != nil && s.primary != nil
}

// GenerateTags returns up to ten lower-case tags for p, or a sentinel.
func (s *Service) GenerateTags(ctx context.Context, p *models.Product) []string {
	if !s.IsConfigured() {
		return []string{SentinelAPIKeyMissing}
	}
	text, err := s.complete(ctx, tagSystemPrompt, tagPrompt(p), 256)
	if err != nil {
		slog.Error("tag generation failed", "product_id", p.ID, "error", err)
		return []string{SentinelError}
	}
	tags := ParseTags(text)
	if len(tags) == 0 {
		slog.Warn("tag generation returned nothing usable", "product_id", p.ID)
		return []string{SentinelError}
	}
	return tags
}

// ClassifyProduct returns a single category for p, or "" when the model has
// none to offer or could not be reached.
func (s *Service) ClassifyProduct(ctx context.Context, p *models.Product) string {
	if !s.IsConfigured() {
		return ""
	}
	text, err := s.complete(ctx, categorySystemPrompt, categoryPrompt(p), 32)
	if err != nil {
		slog.Error("product classification failed", "product_id", p.ID, "error", err)
		return ""
	}
	return ParseCategory(text)
}

func (s *Service) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	text, err := s.primary.Complete(ctx, system, prompt, maxTokens)
	if err == nil {
		return text, nil
	}
	if s.fallback == nil || ctx.Err() != nil {
		return "", err
	}
	slog.Warn(s.primary.Name()+" failed, trying "+s.fallback.Name(), "error", err)

	text, fbErr := s.fallback.Complete(ctx, system, prompt, maxTokens)
	if fbErr != nil {
		return "", fmt.Errorf("all LLM providers failed: %w", fbErr)
	}
	return text, nil
}

// IsSentinel reports whether tags is one of the failure markers rather than
// real tags.
func IsSentinel(tags []string) bool {
	if len(tags) != 1 {
		return false
	}
	return tags[0] == SentinelAPIKeyMissing || tags[0] == SentinelError
}
