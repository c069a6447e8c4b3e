package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedPage creates a page with one top-level block per text, in order.
// It returns the page id and the block ids.
func SeedPage(t *testing.T, pool *pgxpool.Pool, texts ...string) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	pageID := uuid.New()
	ids := make([]uuid.UUID, len(texts))
	for i, text := range texts {
		ids[i] = uuid.New()
		_, err := pool.Exec(ctx,
			`INSERT INTO blocks (id, page_id, parent_id, position, content, properties)
			 VALUES ($1, $2, NULL, $3, $4, '{}'::jsonb)`,
			ids[i], pageID, i, text,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedPage insert block: %v", err)
		}
	}
	return pageID, ids
}

// SetProperties overwrites the properties of a block.
func SetProperties(t *testing.T, pool *pgxpool.Pool, id uuid.UUID, propsJSON string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`UPDATE blocks SET properties = $1::jsonb WHERE id = $2`, propsJSON, id)
	if err != nil {
		t.Fatalf("testhelper: SetProperties: %v", err)
	}
}
