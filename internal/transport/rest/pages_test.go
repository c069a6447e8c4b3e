package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/service/page"
)

type pageReaderMock struct {
	PageEntriesFunc func(ctx context.Context, pageID uuid.UUID) ([]domain.SourceEntry, error)
}

func (m *pageReaderMock) PageEntries(ctx context.Context, pageID uuid.UUID) ([]domain.SourceEntry, error) {
	return m.PageEntriesFunc(ctx, pageID)
}

func servePage(t *testing.T, reader pageReader, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /pages/{id}/entries", NewPageHandler(reader, nil, discardLogger()).Entries)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPageHandler_Entries(t *testing.T) {
	t.Parallel()

	pageID := uuid.New()
	a, b := uuid.New(), uuid.New()
	reader := &pageReaderMock{PageEntriesFunc: func(_ context.Context, id uuid.UUID) ([]domain.SourceEntry, error) {
		assert.Equal(t, pageID, id)
		return []domain.SourceEntry{
			{ID: a, PageID: pageID, Position: 0, Text: "猫", Properties: domain.Properties{"heading": "3"}},
			{ID: b, PageID: pageID, Position: 1, Text: "〜ながら"},
		}, nil
	}}

	rec := servePage(t, reader, "/pages/"+pageID.String()+"/entries")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []entryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []entryResponse{
		{ID: a, Position: 0, Text: "猫", Properties: map[string]string{"heading": "3"}},
		{ID: b, Position: 1, Text: "〜ながら", Properties: map[string]string{}},
	}, got)
}

func TestPageHandler_Entries_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{"bad id", "/pages/nope/entries", nil, http.StatusBadRequest},
		{"store failure", "/pages/" + uuid.NewString() + "/entries", fmt.Errorf("list blocks: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"unexpected", "/pages/" + uuid.NewString() + "/entries", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader := &pageReaderMock{PageEntriesFunc: func(context.Context, uuid.UUID) ([]domain.SourceEntry, error) {
				return nil, tt.err
			}}
			rec := servePage(t, reader, tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

type outlinerMock struct {
	ImportFunc func(ctx context.Context, r io.Reader) (*page.ImportResult, error)
	ExportFunc func(ctx context.Context, w io.Writer, pageID uuid.UUID) error
}

func (m *outlinerMock) Import(ctx context.Context, r io.Reader) (*page.ImportResult, error) {
	return m.ImportFunc(ctx, r)
}

func (m *outlinerMock) Export(ctx context.Context, w io.Writer, pageID uuid.UUID) error {
	return m.ExportFunc(ctx, w, pageID)
}

func serveOutline(t *testing.T, o outliner, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	h := NewPageHandler(nil, o, discardLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /pages", h.Import)
	mux.HandleFunc("GET /pages/{id}", h.Export)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPageHandler_Import(t *testing.T) {
	t.Parallel()

	pageID := uuid.New()
	o := &outlinerMock{ImportFunc: func(_ context.Context, r io.Reader) (*page.ImportResult, error) {
		body, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "- 猫\n", string(body))
		return &page.ImportResult{PageID: pageID, Blocks: 1}, nil
	}}

	rec := serveOutline(t, o, httptest.NewRequest(http.MethodPost, "/pages", strings.NewReader("- 猫\n")))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got importResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, importResponse{PageID: pageID, Blocks: 1}, got)
}

func TestPageHandler_Import_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid outline", func(t *testing.T) {
		t.Parallel()
		o := &outlinerMock{ImportFunc: func(context.Context, io.Reader) (*page.ImportResult, error) {
			return nil, domain.NewValidationError("outline", "line 1: text before the first block")
		}}
		rec := serveOutline(t, o, httptest.NewRequest(http.MethodPost, "/pages", strings.NewReader("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "outline")
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()
		o := &outlinerMock{ImportFunc: func(_ context.Context, r io.Reader) (*page.ImportResult, error) {
			_, err := io.ReadAll(r)
			return nil, err
		}}
		body := strings.NewReader(strings.Repeat("x", maxOutlineBytes+1))
		rec := serveOutline(t, o, httptest.NewRequest(http.MethodPost, "/pages", body))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestPageHandler_Export(t *testing.T) {
	t.Parallel()

	pageID := uuid.New()
	o := &outlinerMock{ExportFunc: func(_ context.Context, w io.Writer, id uuid.UUID) error {
		assert.Equal(t, pageID, id)
		_, err := io.WriteString(w, "- 猫\n\t- ねこ\n")
		return err
	}}

	rec := serveOutline(t, o, httptest.NewRequest(http.MethodGet, "/pages/"+pageID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "- 猫\n\t- ねこ\n", rec.Body.String())
}

func TestPageHandler_Export_NotFound(t *testing.T) {
	t.Parallel()

	o := &outlinerMock{ExportFunc: func(context.Context, io.Writer, uuid.UUID) error {
		return fmt.Errorf("page: %w", domain.ErrNotFound)
	}}

	rec := serveOutline(t, o, httptest.NewRequest(http.MethodGet, "/pages/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
