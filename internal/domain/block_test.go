package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProperties_Merge(t *testing.T) {
	t.Parallel()

	original := Properties{"highlight": "yellow", "heading": "1"}
	merged := original.Merge(Properties{"heading": "3", "backgroundColor": "pink"})

	assert.Equal(t, Properties{"highlight": "yellow", "heading": "3", "backgroundColor": "pink"}, merged)
	assert.Equal(t, "1", original["heading"], "original must not change")
}

func TestProperties_CloneNil(t *testing.T) {
	t.Parallel()

	var p Properties
	c := p.Clone()
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

func TestBlockPlan_Count(t *testing.T) {
	t.Parallel()

	plan := BlockPlan{Root: PlanNode{
		Text: "root",
		Children: []PlanNode{
			Leaf("a"),
			{Text: "b", Children: []PlanNode{Leaf("c"), Leaf("d")}},
		},
	}}
	assert.Equal(t, 5, plan.Count())
}

func TestCountNodes(t *testing.T) {
	t.Parallel()

	nodes := []BlockNode{
		{Text: "a", Children: []BlockNode{{Text: "a1"}, {Text: "a2", Children: []BlockNode{{Text: "a2x"}}}}},
		{Text: "b"},
	}
	assert.Equal(t, 5, CountNodes(nodes))
	assert.Equal(t, 0, CountNodes(nil))
}
