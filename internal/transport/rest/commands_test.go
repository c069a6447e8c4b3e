package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/japanese-cards/internal/adapter/notify"
	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/service/card"
	"github.com/heartmarshall/japanese-cards/pkg/ctxutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer routes a registry through the same patterns the app uses.
func newTestServer(t *testing.T, reg *card.Registry) *httptest.Server {
	t.Helper()
	h := NewCommandHandler(reg, discardLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /commands", h.List)
	mux.HandleFunc("POST /commands/{name}", h.Run)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestCommandHandler_List(t *testing.T) {
	t.Parallel()

	reg := card.NewRegistry()
	reg.MustRegister(card.CommandVocabulary, func(context.Context) (*card.Result, error) { return nil, nil })
	reg.MustRegister(card.CommandGrammarPage, func(context.Context) (*card.Result, error) { return nil, nil })
	srv := newTestServer(t, reg)

	resp, err := http.Get(srv.URL + "/commands")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []commandInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []commandInfo{
		{Name: "Generate Vocabulary Card", Slug: "generate-vocabulary-card"},
		{Name: "Generate Grammar Card for Page", Slug: "generate-grammar-card-for-page"},
	}, got)
}

func TestCommandHandler_Run_PassesIDsAndNotifications(t *testing.T) {
	t.Parallel()

	entryID, pageID, cardID := uuid.New(), uuid.New(), uuid.New()
	notifier := notify.NewNotifier("", 0, discardLogger())

	reg := card.NewRegistry()
	reg.MustRegister(card.CommandVocabulary, func(ctx context.Context) (*card.Result, error) {
		gotEntry, ok := ctxutil.EntryIDFromCtx(ctx)
		assert.True(t, ok)
		assert.Equal(t, entryID, gotEntry)
		gotPage, ok := ctxutil.PageIDFromCtx(ctx)
		assert.True(t, ok)
		assert.Equal(t, pageID, gotPage)

		notifier.Notify(ctx, "card ready")
		return &card.Result{Command: card.CommandVocabulary, EntryID: entryID, PageID: pageID, CardID: &cardID}, nil
	})
	srv := newTestServer(t, reg)

	body := `{"entry_id":"` + entryID.String() + `","page_id":"` + pageID.String() + `"}`
	resp, out := post(t, srv, "/commands/generate-vocabulary-card", body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Generate Vocabulary Card", out["command"])
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, cardID.String(), out["card_id"])
	assert.Equal(t, entryID.String(), out["entry_id"])
	assert.Equal(t, []any{"card ready"}, out["notifications"])
}

func TestCommandHandler_Run_Batch(t *testing.T) {
	t.Parallel()

	e1 := uuid.New()
	reg := card.NewRegistry()
	reg.MustRegister(card.CommandGrammarPage, func(ctx context.Context) (*card.Result, error) {
		return &card.Result{
			Command: card.CommandGrammarPage,
			Batch: &card.BatchResult{
				Total: 2, Processed: 1, Skipped: 1,
				Entries: []card.EntryReport{
					{EntryID: e1, Text: "〜ながら", State: card.EntryInserted},
					{EntryID: uuid.New(), Text: "x #card", State: card.EntrySkipped},
				},
			},
		}, nil
	})
	srv := newTestServer(t, reg)

	resp, out := post(t, srv, "/commands/"+card.Slug(card.CommandGrammarPage), `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	batch, ok := out["batch"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, batch["total"])
	assert.EqualValues(t, 1, batch["processed"])
	assert.Equal(t, "Grammar cards: 1 generated, 1 skipped, 0 failed", batch["summary"])
	entries := batch["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "inserted", entries[0].(map[string]any)["state"])
	assert.Equal(t, []any{}, out["notifications"])
}

func TestCommandHandler_Run_EmptyBody(t *testing.T) {
	t.Parallel()

	reg := card.NewRegistry()
	reg.MustRegister(card.CommandTranslate, func(ctx context.Context) (*card.Result, error) {
		_, ok := ctxutil.EntryIDFromCtx(ctx)
		assert.False(t, ok)
		return &card.Result{Command: card.CommandTranslate}, nil
	})
	srv := newTestServer(t, reg)

	resp, err := http.Post(srv.URL+"/commands/translate-entry", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCommandHandler_Run_Errors(t *testing.T) {
	t.Parallel()

	notifier := notify.NewNotifier("", 0, discardLogger())
	failWith := func(err error, message string) card.Handler {
		return func(ctx context.Context) (*card.Result, error) {
			if message != "" {
				notifier.Notify(ctx, message)
			}
			return nil, err
		}
	}

	reg := card.NewRegistry()
	reg.MustRegister("Missing Key", failWith(&domain.CredentialError{Key: "gemini_ai_api_key", Label: "Gemini AI API Key"}, "Please set the Gemini AI API Key first"))
	reg.MustRegister("Generation Fails", failWith(domain.NewGenerationError("define word", io.ErrUnexpectedEOF), "Failed to generate vocabulary card. boom"))
	reg.MustRegister("Audio Fails", failWith(domain.NewAudioError("synthesize", io.ErrUnexpectedEOF), ""))
	reg.MustRegister("Already Card", failWith(domain.ErrAlreadyExists, ""))
	reg.MustRegister("Entry Missing", failWith(domain.ErrNotFound, ""))
	reg.MustRegister("Blank Entry", failWith(domain.NewValidationError("text", "entry is empty"), ""))
	reg.MustRegister("Asset Rejected", failWith(domain.NewMutationError("save asset", domain.NewValidationError("key", "invalid asset key")), ""))
	reg.MustRegister("Crash", failWith(io.ErrClosedPipe, ""))
	srv := newTestServer(t, reg)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantError  string
		wantNotes  []any
	}{
		{"unknown command", "/commands/nope", `{}`, http.StatusNotFound, `command "nope": not found`, nil},
		{"bad json", "/commands/crash", `{`, http.StatusBadRequest, "validation failed", nil},
		{"bad entry id", "/commands/crash", `{"entry_id":"x"}`, http.StatusBadRequest, "validation failed", nil},
		{"missing credential", "/commands/missing-key", `{}`, http.StatusPreconditionFailed, "missing credential: gemini_ai_api_key", []any{"Please set the Gemini AI API Key first"}},
		{"generation failure", "/commands/generation-fails", `{}`, http.StatusUnprocessableEntity, "define word: unexpected EOF", []any{"Failed to generate vocabulary card. boom"}},
		{"audio failure", "/commands/audio-fails", `{}`, http.StatusUnprocessableEntity, "synthesize: unexpected EOF", nil},
		{"already a card", "/commands/already-card", `{}`, http.StatusConflict, "already exists", nil},
		{"entry not found", "/commands/entry-missing", `{}`, http.StatusNotFound, "not found", nil},
		{"store rejects asset", "/commands/asset-rejected", `{}`, http.StatusUnprocessableEntity, "save asset: validation: key: invalid asset key", nil},
		{"blank entry", "/commands/blank-entry", `{}`, http.StatusBadRequest, "validation failed", nil},
		{"internal", "/commands/crash", `{}`, http.StatusInternalServerError, "internal server error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, out := post(t, srv, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, out["error"])
			if tt.wantNotes != nil {
				assert.Equal(t, tt.wantNotes, out["notifications"])
			} else {
				assert.NotContains(t, out, "notifications")
			}
		})
	}
}

func TestCommandHandler_Run_FieldErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, card.NewRegistry())

	resp, out := post(t, srv, "/commands/anything", `{"entry_id":"x","page_id":"y"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []any{
		map[string]any{"field": "entry_id", "message": "must be a UUID"},
		map[string]any{"field": "page_id", "message": "must be a UUID"},
	}, out["fields"])
}

func TestCommandHandler_Run_CancelledBatchReportsProgress(t *testing.T) {
	t.Parallel()

	reg := card.NewRegistry()
	reg.MustRegister(card.CommandGrammarPage, func(ctx context.Context) (*card.Result, error) {
		return &card.Result{
			Command: card.CommandGrammarPage,
			Batch:   &card.BatchResult{Total: 3, Processed: 1},
		}, context.Canceled
	})
	srv := newTestServer(t, reg)

	resp, out := post(t, srv, "/commands/generate-grammar-card-for-page", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "cancelled", out["status"])
	assert.NotNil(t, out["batch"])
}
