package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/japanese-cards/internal/adapter/notify"
	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/service/card"
	"github.com/heartmarshall/japanese-cards/pkg/ctxutil"
)

const maxBodyBytes = 1 << 16

// commandRegistry is the set of commands the API can trigger.
type commandRegistry interface {
	Commands() []card.Command
	Run(ctx context.Context, nameOrSlug string) (*card.Result, error)
}

// CommandHandler serves the command endpoints.
type CommandHandler struct {
	registry commandRegistry
	log      *slog.Logger
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(registry commandRegistry, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{registry: registry, log: logger.With("handler", "commands")}
}

type commandInfo struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type runRequest struct {
	EntryID string `json:"entry_id"`
	PageID  string `json:"page_id"`
}

type runResponse struct {
	Command       string         `json:"command"`
	Status        string         `json:"status"`
	EntryID       *uuid.UUID     `json:"entry_id,omitempty"`
	PageID        *uuid.UUID     `json:"page_id,omitempty"`
	CardID        *uuid.UUID     `json:"card_id,omitempty"`
	AssetKey      string         `json:"asset_key,omitempty"`
	Batch         *batchResponse `json:"batch,omitempty"`
	Notifications []string       `json:"notifications"`
}

type batchResponse struct {
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Summary   string       `json:"summary"`
	Entries   []batchEntry `json:"entries"`
}

type batchEntry struct {
	EntryID uuid.UUID  `json:"entry_id"`
	Text    string     `json:"text"`
	State   string     `json:"state"`
	CardID  *uuid.UUID `json:"card_id,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// List handles GET /commands.
func (h *CommandHandler) List(w http.ResponseWriter, r *http.Request) {
	cmds := h.registry.Commands()
	out := make([]commandInfo, len(cmds))
	for i, c := range cmds {
		out[i] = commandInfo{Name: c.Name, Slug: c.Slug}
	}
	writeJSON(w, http.StatusOK, out)
}

// Run handles POST /commands/{name}. The body names the entry and page the
// command acts on; notifications raised while it runs are returned with the
// result.
func (h *CommandHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	req, err := decodeRunRequest(r)
	if err != nil {
		writeJSON(w, statusFor(err), errorBody(r.Context(), h.log, statusFor(err), err))
		return
	}

	ctx, collector := notify.WithCollector(r.Context())
	if req.entryID != uuid.Nil {
		ctx = ctxutil.WithEntryID(ctx, req.entryID)
	}
	if req.pageID != uuid.Nil {
		ctx = ctxutil.WithPageID(ctx, req.pageID)
	}

	res, err := h.registry.Run(ctx, name)
	if err != nil {
		status := statusFor(err)
		body := errorBody(r.Context(), h.log, status, err)
		body.Notifications = collector.Messages()
		if res != nil && res.Batch != nil {
			// a cancelled batch still reports what it did
			writeJSON(w, status, toRunResponse(res, "cancelled", collector.Messages()))
			return
		}
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(res, "ok", collector.Messages()))
}

type parsedRunRequest struct {
	entryID uuid.UUID
	pageID  uuid.UUID
}

func decodeRunRequest(r *http.Request) (parsedRunRequest, error) {
	var (
		raw runRequest
		out parsedRunRequest
	)

	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return out, domain.NewValidationError("body", "invalid JSON")
	}

	var fields []domain.FieldError
	if raw.EntryID != "" {
		if out.entryID, err = uuid.Parse(raw.EntryID); err != nil {
			fields = append(fields, domain.FieldError{Field: "entry_id", Message: "must be a UUID"})
		}
	}
	if raw.PageID != "" {
		if out.pageID, err = uuid.Parse(raw.PageID); err != nil {
			fields = append(fields, domain.FieldError{Field: "page_id", Message: "must be a UUID"})
		}
	}
	if len(fields) > 0 {
		return out, domain.NewValidationErrors(fields)
	}
	return out, nil
}

func toRunResponse(res *card.Result, status string, notifications []string) runResponse {
	if notifications == nil {
		notifications = []string{}
	}
	out := runResponse{
		Command:       res.Command,
		Status:        status,
		CardID:        res.CardID,
		AssetKey:      res.AssetKey,
		Notifications: notifications,
	}
	if res.EntryID != uuid.Nil {
		out.EntryID = &res.EntryID
	}
	if res.PageID != uuid.Nil {
		out.PageID = &res.PageID
	}
	if b := res.Batch; b != nil {
		out.Batch = &batchResponse{
			Total:     b.Total,
			Processed: b.Processed,
			Skipped:   b.Skipped,
			Failed:    b.Failed,
			Summary:   b.Summary(),
			Entries:   make([]batchEntry, len(b.Entries)),
		}
		for i, e := range b.Entries {
			out.Batch.Entries[i] = batchEntry{
				EntryID: e.EntryID,
				Text:    e.Text,
				State:   string(e.State),
				CardID:  e.CardID,
				Error:   e.Error,
			}
		}
	}
	return out
}
