// Package anthropic generates card content with Claude models.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/provider"
)

const (
	defaultModel = "claude-sonnet-4-5"
	maxTokens    = 2048
)

// Provider calls the Messages API. The API key is sent per request.
type Provider struct {
	client anthropic.Client
	model  string
	log    *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL selects the public endpoint.
func NewProvider(model, baseURL string, timeout time.Duration, logger *slog.Logger) *Provider {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Provider{
		client: anthropic.NewClient(opts...),
		model:  model,
		log:    logger.With("adapter", "anthropic"),
	}
}

// DefineWord asks the model for a vocabulary card.
func (p *Provider) DefineWord(ctx context.Context, text, apiKey string) (*domain.VocabularyCard, error) {
	reply, err := p.complete(ctx, provider.WordPrompt(text), apiKey)
	if err != nil {
		return nil, err
	}
	r, err := provider.ParseWord(extractJSON(reply))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return r.ToDomain(), nil
}

// DefineGrammar asks the model for a grammar card.
func (p *Provider) DefineGrammar(ctx context.Context, text, apiKey string) (*domain.GrammarCard, error) {
	reply, err := p.complete(ctx, provider.GrammarPrompt(text), apiKey)
	if err != nil {
		return nil, err
	}
	r, err := provider.ParseGrammar(extractJSON(reply))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return r.ToDomain(), nil
}

func (p *Provider) complete(ctx context.Context, prompt, apiKey string) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}, option.WithAPIKey(apiKey))
	if err != nil {
		p.log.ErrorContext(ctx, "anthropic request failed",
			slog.String("model", p.model),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("anthropic: messages: %w", err)
	}

	if len(msg.Content) == 0 {
		return "", fmt.Errorf("anthropic: %w", provider.ErrEmptyReply)
	}
	return msg.Content[0].Text, nil
}

// extractJSON keeps the span between the first { and the last }.
// Replies without an object are returned as is for the parser to reject.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}
