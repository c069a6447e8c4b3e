package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/heartmarshall/japanese-cards/internal/config"
	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// ---------------------------------------------------------------------------
// Single-entry commands
// ---------------------------------------------------------------------------

// GenerateVocabularyCard converts the current entry into a vocabulary card.
func (s *Service) GenerateVocabularyCard(ctx context.Context) (*Result, error) {
	return s.generateCard(ctx, CommandVocabulary, domain.CardKindVocabulary)
}

// GenerateGrammarCard converts the current entry into a grammar card.
func (s *Service) GenerateGrammarCard(ctx context.Context) (*Result, error) {
	return s.generateCard(ctx, CommandGrammar, domain.CardKindGrammar)
}

func (s *Service) generateCard(ctx context.Context, command string, kind domain.CardKind) (*Result, error) {
	if err := s.checkCredentials(ctx, s.policy.GenerationKey, config.KeyGoogleTTSAPIKey); err != nil {
		return nil, err
	}

	entry, err := s.docs.CurrentEntry(ctx)
	if err != nil {
		return nil, fmt.Errorf("current entry: %w", err)
	}

	res := &Result{Command: command, EntryID: entry.ID, PageID: entry.PageID}

	if strings.TrimSpace(entry.Text) == "" {
		return res, domain.NewValidationError("text", "entry is empty")
	}
	if domain.ContainsMarker(entry.Text, s.policy.tagFor(kind)) {
		return res, fmt.Errorf("entry %s is already a card: %w", entry.ID, domain.ErrAlreadyExists)
	}

	cardID, err := s.convert(ctx, entry, kind, s.policy.Strategy)
	if err != nil {
		s.reportFailure(ctx, kind, entry, err)
		return res, err
	}

	res.CardID = cardID
	s.log.InfoContext(ctx, "card generated",
		slog.String("kind", string(kind)),
		slog.String("entry_id", entry.ID.String()),
		slog.String("card_id", cardID.String()),
	)
	return res, nil
}

// ---------------------------------------------------------------------------
// Shared conversion pipeline
// ---------------------------------------------------------------------------

// convert runs mark-loading, assemble, mutate and (for sibling inserts)
// source removal for one entry. On any failure every block it created is
// discarded and the entry text is restored to exactly what it was.
func (s *Service) convert(ctx context.Context, entry *domain.SourceEntry, kind domain.CardKind, strategy domain.Strategy) (*uuid.UUID, error) {
	props, err := s.docs.EntryProperties(ctx, entry.ID)
	if err != nil {
		return nil, domain.NewMutationError("read properties", err)
	}

	original := entry.Text
	if err := s.docs.UpdateEntry(ctx, entry.ID, original+s.policy.LoadingSuffix); err != nil {
		return nil, domain.NewMutationError("mark loading", err)
	}

	plan, err := s.assembler.Assemble(ctx, AssembleInput{
		Kind:          kind,
		Text:          domain.Sanitize(original, domain.SanitizeContent),
		Tag:           s.policy.tagFor(kind),
		Properties:    props,
		GenerationKey: s.gate.Value(s.policy.GenerationKey),
		SpeechKey:     s.gate.Value(config.KeyGoogleTTSAPIKey),
	})
	if err != nil {
		s.restore(ctx, entry.ID, original)
		return nil, err
	}

	out := s.mutator.Apply(ctx, entry, plan, strategy)
	if !out.Success {
		s.rollback(ctx, entry.ID, original, out)
		return nil, out.Err
	}

	if strategy == domain.StrategySiblingBefore {
		if err := s.docs.RemoveEntry(ctx, entry.ID); err != nil {
			s.rollback(ctx, entry.ID, original, out)
			return nil, domain.NewMutationError("remove source entry", err)
		}
	}

	return out.RootID, nil
}

// rollback discards a partially or fully written card and restores the source.
func (s *Service) rollback(ctx context.Context, entryID uuid.UUID, original string, out domain.MutationOutcome) {
	if err := s.mutator.Discard(context.WithoutCancel(ctx), out); err != nil {
		s.log.ErrorContext(ctx, "discard card blocks",
			slog.String("entry_id", entryID.String()),
			slog.String("error", err.Error()),
		)
	}
	s.restore(ctx, entryID, original)
}

// restore writes the original text back. It runs even when ctx is done.
func (s *Service) restore(ctx context.Context, entryID uuid.UUID, original string) {
	if err := s.docs.UpdateEntry(context.WithoutCancel(ctx), entryID, original); err != nil {
		s.log.ErrorContext(ctx, "restore entry text",
			slog.String("entry_id", entryID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// checkCredentials runs the gate and tells the user which setting is missing.
func (s *Service) checkCredentials(ctx context.Context, keys ...string) error {
	err := s.gate.Check(keys...)
	if err == nil {
		return nil
	}
	var ce *domain.CredentialError
	if errors.As(err, &ce) {
		s.notify.Notify(ctx, credentialMessage(ce))
	}
	return err
}

func (s *Service) reportFailure(ctx context.Context, kind domain.CardKind, entry *domain.SourceEntry, err error) {
	s.log.ErrorContext(ctx, "card generation failed",
		slog.String("kind", string(kind)),
		slog.String("entry_id", entry.ID.String()),
		slog.String("error", err.Error()),
	)
	s.notify.Notify(ctx, failureMessage(kind, err))
}

func failureMessage(kind domain.CardKind, err error) string {
	return fmt.Sprintf("Failed to generate %s card. %v", kind, err)
}
