// Package block stores the document tree: pages of ordered, nested blocks.
package block

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/japanese-cards/internal/adapter/postgres"
	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/pkg/ctxutil"
)

const (
	table  = "blocks"
	entity = "block"
)

var columns = []string{
	"id", "page_id", "parent_id", "position", "content", "properties", "created_at", "updated_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides block persistence backed by PostgreSQL. Siblings are kept
// densely numbered from 0 by position.
type Repo struct {
	db postgres.DB
	tx *postgres.TxManager
}

// New creates a block repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db, tx: postgres.NewTxManager(db)}
}

func (r *Repo) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, r.db)
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// CurrentEntry returns the block whose id is carried by ctx.
func (r *Repo) CurrentEntry(ctx context.Context) (*domain.SourceEntry, error) {
	id, ok := ctxutil.EntryIDFromCtx(ctx)
	if !ok {
		return nil, domain.NewValidationError("entry_id", "required")
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a block by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SourceEntry, error) {
	sql, args, err := psql.Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	e, err := scanEntry(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return e, nil
}

// PageEntries returns the top-level blocks of a page in document order.
// Nested blocks are not included.
func (r *Repo) PageEntries(ctx context.Context, pageID uuid.UUID) ([]domain.SourceEntry, error) {
	return r.list(ctx, squirrel.Eq{"page_id": pageID, "parent_id": nil})
}

// Children returns the direct children of a block in order.
func (r *Repo) Children(ctx context.Context, parentID uuid.UUID) ([]domain.SourceEntry, error) {
	return r.list(ctx, squirrel.Eq{"parent_id": parentID})
}

func (r *Repo) list(ctx context.Context, where squirrel.Eq) ([]domain.SourceEntry, error) {
	sql, args, err := psql.Select(columns...).From(table).Where(where).OrderBy("position ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	entries := []domain.SourceEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return entries, nil
}

// EntryProperties returns the properties of a block.
func (r *Repo) EntryProperties(ctx context.Context, id uuid.UUID) (domain.Properties, error) {
	sql, args, err := psql.Select("properties").From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var raw []byte
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return decodeProperties(raw)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// UpdateEntry replaces the text of a block.
func (r *Repo) UpdateEntry(ctx context.Context, id uuid.UUID, text string) error {
	sql, args, err := psql.Update(table).
		Set("content", text).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// InsertEntry creates a block relative to targetID and returns its id.
// As a child it is appended after the target's last child; as a sibling it
// takes the target's slot (Before) or the next one, shifting later siblings.
func (r *Repo) InsertEntry(ctx context.Context, targetID uuid.UUID, text string, opts domain.InsertOptions) (uuid.UUID, error) {
	props, err := encodeProperties(opts.Properties)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		target, err := r.lock(ctx, targetID)
		if err != nil {
			return err
		}

		var (
			parentID *uuid.UUID
			position int
		)
		if opts.AsSibling {
			parentID = target.ParentID
			position = target.Position
			if !opts.Before {
				position++
			}
			if err := r.shift(ctx, target.PageID, parentID, position, 1); err != nil {
				return err
			}
		} else {
			parentID = &target.ID
			if position, err = r.nextChildPosition(ctx, target.ID); err != nil {
				return err
			}
		}

		sql, args, err := psql.Insert(table).
			Columns("id", "page_id", "parent_id", "position", "content", "properties").
			Values(id, target.PageID, parentID, position, text, props).
			ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
			return postgres.MapError(err, entity, id)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// RemoveEntry deletes a block and its whole subtree, closing the gap
// among its siblings.
func (r *Repo) RemoveEntry(ctx context.Context, id uuid.UUID) error {
	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		target, err := r.lock(ctx, id)
		if err != nil {
			return err
		}

		sql, args, err := psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
			return postgres.MapError(err, entity, id)
		}

		return r.shift(ctx, target.PageID, target.ParentID, target.Position+1, -1)
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// lock reads a block's placement and locks its row for the transaction.
func (r *Repo) lock(ctx context.Context, id uuid.UUID) (*domain.SourceEntry, error) {
	sql, args, err := psql.Select("id", "page_id", "parent_id", "position").
		From(table).
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e domain.SourceEntry
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&e.ID, &e.PageID, &e.ParentID, &e.Position); err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &e, nil
}

// shift moves every sibling at or after from by delta.
func (r *Repo) shift(ctx context.Context, pageID uuid.UUID, parentID *uuid.UUID, from, delta int) error {
	sql, args, err := psql.Update(table).
		Set("position", squirrel.Expr("position + ?", delta)).
		Where(siblingsOf(pageID, parentID)).
		Where(squirrel.GtOrEq{"position": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("shift siblings: %w", err)
	}
	return nil
}

func (r *Repo) nextChildPosition(ctx context.Context, parentID uuid.UUID) (int, error) {
	sql, args, err := psql.Select("COALESCE(MAX(position) + 1, 0)").
		From(table).
		Where(squirrel.Eq{"parent_id": parentID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var pos int
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&pos); err != nil {
		return 0, fmt.Errorf("next child position: %w", err)
	}
	return pos, nil
}

func siblingsOf(pageID uuid.UUID, parentID *uuid.UUID) squirrel.Eq {
	if parentID == nil {
		return squirrel.Eq{"page_id": pageID, "parent_id": nil}
	}
	return squirrel.Eq{"page_id": pageID, "parent_id": *parentID}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.SourceEntry, error) {
	var (
		e   domain.SourceEntry
		raw []byte
	)
	if err := row.Scan(&e.ID, &e.PageID, &e.ParentID, &e.Position, &e.Text, &raw, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	props, err := decodeProperties(raw)
	if err != nil {
		return nil, err
	}
	e.Properties = props
	return &e, nil
}

func decodeProperties(raw []byte) (domain.Properties, error) {
	props := domain.Properties{}
	if len(raw) == 0 {
		return props, nil
	}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return props, nil
}

func encodeProperties(p domain.Properties) ([]byte, error) {
	if p == nil {
		p = domain.Properties{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	return raw, nil
}
