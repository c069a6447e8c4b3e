package card

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// Mutator writes a BlockPlan into the document.
type Mutator struct {
	docs documentStore
}

// NewMutator creates a Mutator over docs.
func NewMutator(docs documentStore) *Mutator {
	return &Mutator{docs: docs}
}

// Apply materializes plan relative to source.
//
// With StrategyReplace the source entry becomes the root: its text is
// rewritten and the children are appended under it. Property preservation is
// best-effort since the store only rewrites text.
//
// With StrategySiblingBefore a new root carrying the merged properties is
// inserted immediately before the source, which is left untouched. Removing
// the source is up to the caller.
//
// The first failed write stops the rest. Blocks already created stay in
// place and are listed in the outcome.
func (m *Mutator) Apply(ctx context.Context, source *domain.SourceEntry, plan *domain.BlockPlan, strategy domain.Strategy) domain.MutationOutcome {
	var out domain.MutationOutcome

	var rootID uuid.UUID
	switch strategy {
	case domain.StrategyReplace:
		if err := m.docs.UpdateEntry(ctx, source.ID, plan.Root.Text); err != nil {
			out.Err = domain.NewMutationError("update entry", err)
			return out
		}
		rootID = source.ID

	case domain.StrategySiblingBefore:
		id, err := m.docs.InsertEntry(ctx, source.ID, plan.Root.Text, domain.InsertOptions{
			Before:     true,
			AsSibling:  true,
			Properties: plan.Root.Properties,
		})
		if err != nil {
			out.Err = domain.NewMutationError("insert entry", err)
			return out
		}
		rootID = id
		out.Created = append(out.Created, id)

	default:
		out.Err = domain.NewMutationError("apply plan", fmt.Errorf("unknown strategy %q", strategy))
		return out
	}
	out.RootID = &rootID

	if err := m.insertChildren(ctx, rootID, plan.Root.Children, &out.Created); err != nil {
		out.Err = domain.NewMutationError("insert entry", err)
		return out
	}

	out.Success = true
	return out
}

func (m *Mutator) insertChildren(ctx context.Context, parentID uuid.UUID, nodes []domain.PlanNode, created *[]uuid.UUID) error {
	for _, n := range nodes {
		id, err := m.docs.InsertEntry(ctx, parentID, n.Text, domain.InsertOptions{Properties: n.Properties})
		if err != nil {
			return err
		}
		*created = append(*created, id)

		if err := m.insertChildren(ctx, id, n.Children, created); err != nil {
			return err
		}
	}
	return nil
}

// Discard removes the blocks listed in out.Created, newest first. Blocks
// already gone with an ancestor are ignored.
func (m *Mutator) Discard(ctx context.Context, out domain.MutationOutcome) error {
	var errs []error
	for i := len(out.Created) - 1; i >= 0; i-- {
		err := m.docs.RemoveEntry(ctx, out.Created[i])
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, fmt.Errorf("remove %s: %w", out.Created[i], err))
		}
	}
	return errors.Join(errs...)
}
