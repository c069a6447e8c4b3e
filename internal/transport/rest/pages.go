package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/service/page"
)

const maxOutlineBytes = 1 << 20

type pageReader interface {
	PageEntries(ctx context.Context, pageID uuid.UUID) ([]domain.SourceEntry, error)
}

type outliner interface {
	Import(ctx context.Context, r io.Reader) (*page.ImportResult, error)
	Export(ctx context.Context, w io.Writer, pageID uuid.UUID) error
}

// PageHandler lets hosts browse the entries commands can target and move
// whole pages in and out as markdown outlines.
type PageHandler struct {
	pages    pageReader
	outlines outliner
	log      *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(pages pageReader, outlines outliner, logger *slog.Logger) *PageHandler {
	return &PageHandler{pages: pages, outlines: outlines, log: logger.With("handler", "pages")}
}

type importResponse struct {
	PageID uuid.UUID `json:"page_id"`
	Blocks int       `json:"blocks"`
}

// Import handles POST /pages: the body is a markdown outline stored as a new page.
func (h *PageHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxOutlineBytes)
	res, err := h.outlines.Import(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "outline too large")
			return
		}
		status := statusFor(err)
		writeJSON(w, status, errorBody(r.Context(), h.log, status, err))
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{PageID: res.PageID, Blocks: res.Blocks})
}

// Export handles GET /pages/{id}: the whole page as a markdown outline.
func (h *PageHandler) Export(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.outlines.Export(r.Context(), &buf, pageID); err != nil {
		status := statusFor(err)
		writeJSON(w, status, errorBody(r.Context(), h.log, status, err))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) pageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	pageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		err := domain.NewValidationError("id", "must be a UUID")
		writeJSON(w, http.StatusBadRequest, errorBody(r.Context(), h.log, http.StatusBadRequest, err))
		return uuid.Nil, false
	}
	return pageID, true
}

type entryResponse struct {
	ID         uuid.UUID         `json:"id"`
	Position   int               `json:"position"`
	Text       string            `json:"text"`
	Properties map[string]string `json:"properties"`
}

// Entries handles GET /pages/{id}/entries: the page's top-level entries in
// document order.
func (h *PageHandler) Entries(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.pageID(w, r)
	if !ok {
		return
	}

	entries, err := h.pages.PageEntries(r.Context(), pageID)
	if err != nil {
		status := statusFor(err)
		writeJSON(w, status, errorBody(r.Context(), h.log, status, err))
		return
	}

	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		props := e.Properties
		if props == nil {
			props = domain.Properties{}
		}
		out[i] = entryResponse{ID: e.ID, Position: e.Position, Text: e.Text, Properties: props}
	}
	writeJSON(w, http.StatusOK, out)
}
