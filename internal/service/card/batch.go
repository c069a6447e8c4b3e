package card

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/heartmarshall/japanese-cards/internal/config"
	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/pkg/ctxutil"
)

// GenerateGrammarCardsForPage converts every eligible top-level entry of the
// current page into a grammar card, one entry at a time. A failed entry is
// rolled back and the batch moves on. Cancellation is honoured between
// entries only.
func (s *Service) GenerateGrammarCardsForPage(ctx context.Context) (*Result, error) {
	if err := s.checkCredentials(ctx, s.policy.GenerationKey, config.KeyGoogleTTSAPIKey); err != nil {
		return nil, err
	}

	pageID, err := s.currentPage(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.docs.PageEntries(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("page entries: %w", err)
	}

	batch := &BatchResult{Total: len(entries)}
	res := &Result{Command: CommandGrammarPage, PageID: pageID, Batch: batch}

	for i := range entries {
		if err := ctx.Err(); err != nil {
			s.log.WarnContext(ctx, "batch interrupted",
				slog.String("page_id", pageID.String()),
				slog.Int("done", len(batch.Entries)),
				slog.Int("total", batch.Total),
			)
			s.notify.Notify(ctx, batch.Summary())
			return res, err
		}
		batch.record(s.processEntry(ctx, &entries[i]))
	}

	s.log.InfoContext(ctx, "batch finished",
		slog.String("page_id", pageID.String()),
		slog.Int("processed", batch.Processed),
		slog.Int("skipped", batch.Skipped),
		slog.Int("failed", batch.Failed),
	)
	s.notify.Notify(ctx, batch.Summary())
	return res, nil
}

// processEntry drives one entry through its state machine. Batch mode
// always inserts the card as a sibling and removes the source afterwards.
func (s *Service) processEntry(ctx context.Context, entry *domain.SourceEntry) EntryReport {
	rep := EntryReport{EntryID: entry.ID, Text: entry.Text, State: EntryPending}

	if skip(entry.Text, s.policy.GrammarTag) {
		rep.State = EntrySkipped
		return rep
	}

	rep.State = EntryLoading
	cardID, err := s.convert(ctx, entry, domain.CardKindGrammar, domain.StrategySiblingBefore)
	if err != nil {
		s.log.ErrorContext(ctx, "batch entry failed",
			slog.String("entry_id", entry.ID.String()),
			slog.String("error", err.Error()),
		)
		rep.State = EntryRolledBack
		rep.Error = err.Error()
		return rep
	}

	rep.State = EntryInserted
	rep.CardID = cardID
	return rep
}

// skip reports whether a batch must leave the entry alone.
func skip(text, tag string) bool {
	return strings.TrimSpace(text) == "" || domain.ContainsMarker(text, tag)
}

func (s *Service) currentPage(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctxutil.PageIDFromCtx(ctx); ok {
		return id, nil
	}
	entry, err := s.docs.CurrentEntry(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("current entry: %w", err)
	}
	return entry.PageID, nil
}

func formatSummary(processed, skipped, failed int) string {
	return fmt.Sprintf("Grammar cards: %d generated, %d skipped, %d failed", processed, skipped, failed)
}
