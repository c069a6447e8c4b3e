// Package google synthesizes speech with the Google Cloud Text-to-Speech REST API.
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://texttospeech.googleapis.com"
	synthesizePath  = "/v1beta1/text:synthesize"
	defaultLanguage = "ja-JP"
	defaultVoice    = "ja-JP-Neural2-D"
)

// Synthesizer turns text into MP3 audio.
type Synthesizer struct {
	baseURL    string
	language   string
	voice      string
	httpClient *http.Client
	log        *slog.Logger
	retryDelay time.Duration
}

// Config selects the endpoint and voice. Zero values fall back to the
// public endpoint and the ja-JP Neural2-D voice.
type Config struct {
	BaseURL      string
	LanguageCode string
	VoiceName    string
	Timeout      time.Duration
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(cfg Config, logger *slog.Logger) *Synthesizer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = defaultLanguage
	}
	if cfg.VoiceName == "" {
		cfg.VoiceName = defaultVoice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Synthesizer{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.LanguageCode,
		voice:      cfg.VoiceName,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "google_tts"),
		retryDelay: 500 * time.Millisecond,
	}
}

type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type audioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// errorResponse is Google's error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Synthesize returns MP3 bytes for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text, apiKey string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("google tts: empty text")
	}

	payload, err := json.Marshal(synthesizeRequest{
		Input:       synthesisInput{Text: text},
		Voice:       voiceSelection{LanguageCode: s.language, Name: s.voice},
		AudioConfig: audioConfig{AudioEncoding: "MP3"},
	})
	if err != nil {
		return nil, fmt.Errorf("google tts: marshal request: %w", err)
	}

	s.log.DebugContext(ctx, "tts request", slog.String("text", text), slog.String("voice", s.voice))

	resp, err := s.doWithRetry(ctx, payload, apiKey)
	if err != nil {
		s.log.ErrorContext(ctx, "tts request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("google tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google tts: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("google tts: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("google tts: unexpected status %d", resp.StatusCode)
	}

	var out synthesizeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("google tts: decode json: %w", err)
	}
	if out.AudioContent == "" {
		return nil, errors.New("google tts: audio content not found")
	}

	audio, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out.AudioContent))
	if err != nil {
		return nil, fmt.Errorf("google tts: decode audio: %w", err)
	}

	s.log.DebugContext(ctx, "tts response", slog.Int("bytes", len(audio)))
	return audio, nil
}

func (s *Synthesizer) newRequest(ctx context.Context, payload []byte, apiKey string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+synthesizePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Goog-Api-Key", strings.TrimSpace(apiKey))
	return req, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (s *Synthesizer) doWithRetry(ctx context.Context, payload []byte, apiKey string) (*http.Response, error) {
	req, err := s.newRequest(ctx, payload, apiKey)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	s.log.WarnContext(ctx, "tts retry", slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.retryDelay):
	}

	req, err = s.newRequest(ctx, payload, apiKey)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return s.httpClient.Do(req)
}
