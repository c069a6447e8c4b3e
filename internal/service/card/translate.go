package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/japanese-cards/internal/config"
	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// TranslateEntry reads the current entry aloud: it synthesizes the entry
// text, stores the clip and appends a reference to it as a child. The entry
// text is restored whether or not this succeeds.
func (s *Service) TranslateEntry(ctx context.Context) (*Result, error) {
	if err := s.checkCredentials(ctx, config.KeyGoogleTTSAPIKey); err != nil {
		return nil, err
	}

	entry, err := s.docs.CurrentEntry(ctx)
	if err != nil {
		return nil, fmt.Errorf("current entry: %w", err)
	}

	res := &Result{Command: CommandTranslate, EntryID: entry.ID, PageID: entry.PageID}

	if strings.TrimSpace(entry.Text) == "" {
		return res, domain.NewValidationError("text", "entry is empty")
	}

	original := entry.Text
	if err := s.docs.UpdateEntry(ctx, entry.ID, original+s.policy.LoadingSuffix); err != nil {
		return res, domain.NewMutationError("mark loading", err)
	}
	defer s.restore(ctx, entry.ID, original)

	asset, err := s.assembler.audio(ctx, original, s.gate.Value(config.KeyGoogleTTSAPIKey))
	if err == nil && asset == nil {
		err = domain.NewValidationError("text", "nothing to synthesize")
	}
	if err != nil {
		s.failTranslate(ctx, entry.ID.String(), err)
		return res, err
	}

	if _, err := s.docs.InsertEntry(ctx, entry.ID, s.assembler.assetLink(asset), domain.InsertOptions{}); err != nil {
		err = domain.NewMutationError("insert entry", err)
		s.failTranslate(ctx, entry.ID.String(), err)
		return res, err
	}

	res.AssetKey = asset.Key
	s.log.InfoContext(ctx, "entry translated",
		slog.String("entry_id", entry.ID.String()),
		slog.String("asset", asset.FileName()),
	)
	return res, nil
}

func (s *Service) failTranslate(ctx context.Context, entryID string, err error) {
	s.log.ErrorContext(ctx, "translate failed",
		slog.String("entry_id", entryID),
		slog.String("error", err.Error()),
	)
	msg := "Failed to translate entry. " + err.Error()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg = "Nothing to translate in this entry"
	}
	s.notify.Notify(ctx, msg)
}
