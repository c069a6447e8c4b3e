// Package gemini generates card content with Google's Gemini models.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/provider"
)

const defaultModel = "gemini-2.0-flash"

// Provider calls the Gemini generateContent API. The API key is supplied per
// call; one client is kept per key.
type Provider struct {
	model      string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewProvider creates a Provider. An empty model selects gemini-2.0-flash and
// an empty baseURL the public endpoint.
func NewProvider(model, baseURL string, timeout time.Duration, logger *slog.Logger) *Provider {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Provider{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "gemini"),
		clients:    make(map[string]*genai.Client),
	}
}

// DefineWord asks the model for a vocabulary card.
func (p *Provider) DefineWord(ctx context.Context, text, apiKey string) (*domain.VocabularyCard, error) {
	reply, err := p.generate(ctx, provider.WordPrompt(text), apiKey)
	if err != nil {
		return nil, err
	}
	r, err := provider.ParseWord(reply)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return r.ToDomain(), nil
}

// DefineGrammar asks the model for a grammar card.
func (p *Provider) DefineGrammar(ctx context.Context, text, apiKey string) (*domain.GrammarCard, error) {
	reply, err := p.generate(ctx, provider.GrammarPrompt(text), apiKey)
	if err != nil {
		return nil, err
	}
	r, err := provider.ParseGrammar(reply)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return r.ToDomain(), nil
}

func (p *Provider) generate(ctx context.Context, prompt, apiKey string) (string, error) {
	client, err := p.client(ctx, apiKey)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		p.log.ErrorContext(ctx, "gemini request failed",
			slog.String("model", p.model),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	p.log.DebugContext(ctx, "gemini response",
		slog.String("model", p.model),
		slog.Duration("duration", time.Since(start)),
	)
	return resp.Text(), nil
}

func (p *Provider) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[apiKey]; ok {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	p.clients[apiKey] = c
	return c, nil
}
