// Package page imports and exports whole pages as markdown outlines.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/outline"
)

type pageStore interface {
	CreatePage(ctx context.Context, nodes []domain.BlockNode) (uuid.UUID, error)
	PageTree(ctx context.Context, pageID uuid.UUID) ([]domain.BlockNode, error)
}

// MaxBlocks caps the size of an imported page.
const MaxBlocks = 5000

// ImportResult describes a stored page.
type ImportResult struct {
	PageID uuid.UUID
	Blocks int
}

// Service moves pages between the block store and outline text.
type Service struct {
	log   *slog.Logger
	pages pageStore
}

// NewService creates a page Service.
func NewService(logger *slog.Logger, pages pageStore) *Service {
	return &Service{log: logger.With("service", "page"), pages: pages}
}

// Import parses an outline and stores it as a new page.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	nodes, err := outline.Parse(r)
	if err != nil {
		var syn *outline.SyntaxError
		if errors.As(err, &syn) {
			return nil, domain.NewValidationError("outline", syn.Error())
		}
		return nil, err
	}

	count := domain.CountNodes(nodes)
	switch {
	case count == 0:
		return nil, domain.NewValidationError("outline", "no blocks")
	case count > MaxBlocks:
		return nil, domain.NewValidationError("outline", fmt.Sprintf("too many blocks: %d > %d", count, MaxBlocks))
	}

	pageID, err := s.pages.CreatePage(ctx, nodes)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	s.log.InfoContext(ctx, "page imported", slog.String("page_id", pageID.String()), slog.Int("blocks", count))
	return &ImportResult{PageID: pageID, Blocks: count}, nil
}

// Tree returns the stored page as a block tree.
func (s *Service) Tree(ctx context.Context, pageID uuid.UUID) ([]domain.BlockNode, error) {
	if pageID == uuid.Nil {
		return nil, domain.NewValidationError("page_id", "required")
	}
	return s.pages.PageTree(ctx, pageID)
}

// Export writes the stored page to w as an outline.
func (s *Service) Export(ctx context.Context, w io.Writer, pageID uuid.UUID) error {
	nodes, err := s.Tree(ctx, pageID)
	if err != nil {
		return err
	}
	if err := outline.Render(w, nodes); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
