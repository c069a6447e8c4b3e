package page

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

func newTestService(store *pageStoreMock) *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), store)
}

func TestImport(t *testing.T) {
	t.Parallel()

	pageID := uuid.New()
	store := &pageStoreMock{
		CreatePageFunc: func(_ context.Context, _ []domain.BlockNode) (uuid.UUID, error) { return pageID, nil },
	}
	svc := newTestService(store)

	res, err := svc.Import(context.Background(), strings.NewReader("- 猫\n\t- ねこ\n- 犬\n"))
	require.NoError(t, err)
	assert.Equal(t, pageID, res.PageID)
	assert.Equal(t, 3, res.Blocks)

	calls := store.CreatePageCalls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, "ねこ", calls[0][0].Children[0].Text)
}

func TestImport_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "empty", src: "\n"},
		{name: "malformed", src: "no bullet"},
		{name: "too many blocks", src: strings.Repeat("- x\n", MaxBlocks+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &pageStoreMock{}
			_, err := newTestService(store).Import(context.Background(), strings.NewReader(tt.src))
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, store.CreatePageCalls())
		})
	}
}

func TestImport_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	store := &pageStoreMock{
		CreatePageFunc: func(context.Context, []domain.BlockNode) (uuid.UUID, error) { return uuid.Nil, boom },
	}
	_, err := newTestService(store).Import(context.Background(), strings.NewReader("- a"))
	assert.ErrorIs(t, err, boom)
}

func TestExport(t *testing.T) {
	t.Parallel()

	store := &pageStoreMock{
		PageTreeFunc: func(context.Context, uuid.UUID) ([]domain.BlockNode, error) {
			return []domain.BlockNode{{Text: "猫", Children: []domain.BlockNode{{Text: "ねこ"}}}}, nil
		},
	}

	var buf bytes.Buffer
	require.NoError(t, newTestService(store).Export(context.Background(), &buf, uuid.New()))
	assert.Equal(t, "- 猫\n\t- ねこ\n", buf.String())
}

func TestExport_Errors(t *testing.T) {
	t.Parallel()

	store := &pageStoreMock{
		PageTreeFunc: func(context.Context, uuid.UUID) ([]domain.BlockNode, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(store)

	err := svc.Export(context.Background(), io.Discard, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.Export(context.Background(), io.Discard, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
