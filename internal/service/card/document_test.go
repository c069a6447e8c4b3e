package card

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/japanese-cards/internal/domain"
)

var _ documentStore = &memDocument{}

type memBlock struct {
	id       uuid.UUID
	parent   *uuid.UUID
	text     string
	props    domain.Properties
	children []uuid.UUID
}

// memDocument is an in-memory block tree of a single page. Failures are
// injected per operation.
type memDocument struct {
	mu      sync.Mutex
	page    uuid.UUID
	current uuid.UUID
	blocks  map[uuid.UUID]*memBlock
	top     []uuid.UUID

	// failInsertAt fails the n-th InsertEntry call (1-based); 0 disables.
	failInsertAt int
	removeErr    map[uuid.UUID]error
	propsErr     error

	inserts int
	updates []string
	removed []uuid.UUID
}

// newMemDocument creates a page with one top-level block per text. The
// first block is the current entry.
func newMemDocument(texts ...string) *memDocument {
	d := &memDocument{
		page:      uuid.New(),
		blocks:    make(map[uuid.UUID]*memBlock),
		removeErr: make(map[uuid.UUID]error),
	}
	for _, t := range texts {
		id := uuid.New()
		d.blocks[id] = &memBlock{id: id, text: t, props: domain.Properties{}}
		d.top = append(d.top, id)
	}
	if len(d.top) > 0 {
		d.current = d.top[0]
	}
	return d
}

func (d *memDocument) entry(b *memBlock, pos int) domain.SourceEntry {
	return domain.SourceEntry{
		ID:         b.id,
		PageID:     d.page,
		ParentID:   b.parent,
		Position:   pos,
		Text:       b.text,
		Properties: b.props.Clone(),
	}
}

func (d *memDocument) CurrentEntry(_ context.Context) (*domain.SourceEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.blocks[d.current]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e := d.entry(b, slices.Index(d.siblings(b), b.id))
	return &e, nil
}

func (d *memDocument) PageEntries(_ context.Context, pageID uuid.UUID) ([]domain.SourceEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pageID != d.page {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.SourceEntry, 0, len(d.top))
	for i, id := range d.top {
		out = append(out, d.entry(d.blocks[id], i))
	}
	return out, nil
}

func (d *memDocument) UpdateEntry(_ context.Context, id uuid.UUID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.blocks[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.text = text
	d.updates = append(d.updates, text)
	return nil
}

func (d *memDocument) InsertEntry(_ context.Context, targetID uuid.UUID, text string, opts domain.InsertOptions) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.inserts++
	if d.failInsertAt > 0 && d.inserts == d.failInsertAt {
		return uuid.Nil, errors.New("insert refused")
	}

	target, ok := d.blocks[targetID]
	if !ok {
		return uuid.Nil, domain.ErrNotFound
	}

	id := uuid.New()
	b := &memBlock{id: id, text: text, props: opts.Properties.Clone()}

	if !opts.AsSibling {
		parent := targetID
		b.parent = &parent
		target.children = append(target.children, id)
		d.blocks[id] = b
		return id, nil
	}

	b.parent = target.parent
	list := d.siblings(target)
	at := slices.Index(list, targetID)
	if !opts.Before {
		at++
	}
	d.setSiblings(target, slices.Insert(list, at, id))
	d.blocks[id] = b
	return id, nil
}

func (d *memDocument) RemoveEntry(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.removeErr[id]; err != nil {
		return err
	}
	b, ok := d.blocks[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.setSiblings(b, slices.DeleteFunc(d.siblings(b), func(x uuid.UUID) bool { return x == id }))
	d.drop(b)
	d.removed = append(d.removed, id)
	return nil
}

func (d *memDocument) EntryProperties(_ context.Context, id uuid.UUID) (domain.Properties, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.propsErr != nil {
		return nil, d.propsErr
	}
	b, ok := d.blocks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.props.Clone(), nil
}

func (d *memDocument) drop(b *memBlock) {
	for _, c := range b.children {
		d.drop(d.blocks[c])
	}
	delete(d.blocks, b.id)
}

func (d *memDocument) siblings(b *memBlock) []uuid.UUID {
	if b.parent == nil {
		return d.top
	}
	return d.blocks[*b.parent].children
}

func (d *memDocument) setSiblings(b *memBlock, list []uuid.UUID) {
	if b.parent == nil {
		d.top = list
		return
	}
	d.blocks[*b.parent].children = list
}

// render prints the page as an indented outline, two spaces per level.
func (d *memDocument) render() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	var walk func(ids []uuid.UUID, depth int)
	walk = func(ids []uuid.UUID, depth int) {
		for _, id := range ids {
			b := d.blocks[id]
			out = append(out, strings.Repeat("  ", depth)+b.text)
			walk(b.children, depth+1)
		}
	}
	walk(d.top, 0)
	return out
}

func (d *memDocument) block(id uuid.UUID) *memBlock {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.blocks[id]
}

func (d *memDocument) topAt(i int) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.top) {
		panic(fmt.Sprintf("no top-level block %d", i))
	}
	return d.top[i]
}

func (d *memDocument) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.blocks)
}
