package domain

import "github.com/google/uuid"

// CardMarker is the tag every generated card root carries. An entry whose
// text already contains it is never converted again.
const CardMarker = "#card"

// PlanNode is one block of a card before it is written to the document.
type PlanNode struct {
	Text       string
	Properties Properties
	Children   []PlanNode
}

// Leaf builds a childless node.
func Leaf(text string) PlanNode {
	return PlanNode{Text: text}
}

// BlockPlan is the complete in-memory description of a card.
// Building one never touches the document.
type BlockPlan struct {
	Kind  CardKind
	Root  PlanNode
	Audio *AudioAsset
}

// Count returns the number of nodes in the plan, root included.
func (p BlockPlan) Count() int {
	return countNodes(p.Root)
}

func countNodes(n PlanNode) int {
	total := 1
	for _, c := range n.Children {
		total += countNodes(c)
	}
	return total
}

// MutationOutcome is the result of applying a BlockPlan.
// Created lists every block the mutator inserted, in insertion order, so a
// caller can discard a partially built card.
type MutationOutcome struct {
	Success bool
	RootID  *uuid.UUID
	Created []uuid.UUID
	Err     error
}

// Strategy selects how the card root is materialized.
type Strategy string

const (
	// StrategyReplace rewrites the source entry in place.
	StrategyReplace Strategy = "replace"
	// StrategySiblingBefore creates the card immediately before the source entry.
	StrategySiblingBefore Strategy = "sibling"
)

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	return s == StrategyReplace || s == StrategySiblingBefore
}
