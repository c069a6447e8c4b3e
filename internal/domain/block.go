package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// SourceEntry is one block of a page: an atomic line of text in the document tree.
type SourceEntry struct {
	ID         uuid.UUID
	PageID     uuid.UUID
	ParentID   *uuid.UUID
	Position   int
	Text       string
	Properties Properties
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Properties are the block-level attributes a document keeps next to the text
// (heading level, background colour, highlighting and so on).
type Properties map[string]string

// Merge returns a new map holding p overlaid with overrides. Neither input is modified.
func (p Properties) Merge(overrides Properties) Properties {
	out := make(Properties, len(p)+len(overrides))
	maps.Copy(out, p)
	maps.Copy(out, overrides)
	return out
}

// Clone returns an independent copy; a nil receiver yields an empty map.
func (p Properties) Clone() Properties {
	return p.Merge(nil)
}

// InsertOptions controls where DocumentStore.InsertEntry places a new block
// relative to its target.
//
//   - AsSibling=false: appended as the last child of the target.
//   - AsSibling=true, Before=true: placed immediately before the target.
//   - AsSibling=true, Before=false: placed immediately after the target.
type InsertOptions struct {
	Before     bool
	AsSibling  bool
	Properties Properties
}

// BlockNode is a block together with its subtree, used to import and export
// whole pages. ID is zero for nodes that have not been stored yet.
type BlockNode struct {
	ID         uuid.UUID
	Text       string
	Properties Properties
	Children   []BlockNode
}

// CountNodes returns the number of blocks in nodes and all their descendants.
func CountNodes(nodes []BlockNode) int {
	n := len(nodes)
	for _, c := range nodes {
		n += CountNodes(c.Children)
	}
	return n
}
