package page

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

var _ pageStore = &pageStoreMock{}

type pageStoreMock struct {
	CreatePageFunc func(ctx context.Context, nodes []domain.BlockNode) (uuid.UUID, error)
	PageTreeFunc   func(ctx context.Context, pageID uuid.UUID) ([]domain.BlockNode, error)

	calls struct {
		CreatePage [][]domain.BlockNode
		PageTree   []uuid.UUID
	}
	lock sync.RWMutex
}

func (mock *pageStoreMock) CreatePage(ctx context.Context, nodes []domain.BlockNode) (uuid.UUID, error) {
	if mock.CreatePageFunc == nil {
		panic("pageStoreMock.CreatePageFunc: method is nil but pageStore.CreatePage was just called")
	}
	mock.lock.Lock()
	mock.calls.CreatePage = append(mock.calls.CreatePage, nodes)
	mock.lock.Unlock()
	return mock.CreatePageFunc(ctx, nodes)
}

func (mock *pageStoreMock) CreatePageCalls() [][]domain.BlockNode {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.CreatePage
}

func (mock *pageStoreMock) PageTree(ctx context.Context, pageID uuid.UUID) ([]domain.BlockNode, error) {
	if mock.PageTreeFunc == nil {
		panic("pageStoreMock.PageTreeFunc: method is nil but pageStore.PageTree was just called")
	}
	mock.lock.Lock()
	mock.calls.PageTree = append(mock.calls.PageTree, pageID)
	mock.lock.Unlock()
	return mock.PageTreeFunc(ctx, pageID)
}
