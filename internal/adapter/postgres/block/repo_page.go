package block

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

const insertBlockSQL = `INSERT INTO blocks (id, page_id, parent_id, position, content, properties)
	 VALUES ($1, $2, $3, $4, $5, $6)`

// CreatePage stores a forest of blocks as a new page and returns its id.
// Ids are assigned here; parents are queued before their children.
func (r *Repo) CreatePage(ctx context.Context, nodes []domain.BlockNode) (uuid.UUID, error) {
	if len(nodes) == 0 {
		return uuid.Nil, domain.NewValidationError("blocks", "page must have at least one block")
	}

	pageID := uuid.New()
	batch := &pgx.Batch{}
	if err := queueNodes(batch, pageID, nil, nodes); err != nil {
		return uuid.Nil, err
	}

	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := r.sendBatchExec(ctx, batch)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return pageID, nil
}

func queueNodes(batch *pgx.Batch, pageID uuid.UUID, parentID *uuid.UUID, nodes []domain.BlockNode) error {
	for i, n := range nodes {
		props, err := encodeProperties(n.Properties)
		if err != nil {
			return err
		}
		id := uuid.New()
		batch.Queue(insertBlockSQL, id, pageID, parentID, i, n.Text, props)
		if err := queueNodes(batch, pageID, &id, n.Children); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	results := r.q(ctx).SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// PageTree returns every block of a page assembled into its tree, siblings in
// position order. An unknown page yields ErrNotFound.
func (r *Repo) PageTree(ctx context.Context, pageID uuid.UUID) ([]domain.BlockNode, error) {
	sql, args, err := psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"page_id": pageID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("page tree: %w", err)
	}
	defer rows.Close()

	var entries []domain.SourceEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("page tree: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("page %s: %w", pageID, domain.ErrNotFound)
	}
	return buildTree(entries), nil
}

// buildTree nests entries under their parents. Input must already be sorted
// by position; the relative order is kept within each sibling group.
func buildTree(entries []domain.SourceEntry) []domain.BlockNode {
	byParent := make(map[uuid.UUID][]domain.SourceEntry, len(entries))
	var roots []domain.SourceEntry
	for _, e := range entries {
		if e.ParentID == nil {
			roots = append(roots, e)
			continue
		}
		byParent[*e.ParentID] = append(byParent[*e.ParentID], e)
	}

	var build func([]domain.SourceEntry) []domain.BlockNode
	build = func(level []domain.SourceEntry) []domain.BlockNode {
		nodes := make([]domain.BlockNode, 0, len(level))
		for _, e := range level {
			nodes = append(nodes, domain.BlockNode{
				ID:         e.ID,
				Text:       e.Text,
				Properties: e.Properties,
				Children:   build(byParent[e.ID]),
			})
		}
		return nodes
	}
	return build(roots)
}
