package aggregates

import (
	"encoding/json"
	"testing"

	"namethatpage-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []Node) []valueobjects.ArticleTitle {
	out := make([]valueobjects.ArticleTitle, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

// chainGraph: X is visited before Y, and Y's removal leaves X with one edge.
//
//	X -> Y, Z -> X, Z -> W, W -> Z
func chainGraph() *Graph {
	g := NewGraph("X")
	g.AddNode("Y")
	g.AddNode("Z")
	g.AddNode("W")
	g.AddEdge("X", "Y")
	g.AddEdge("Z", "X")
	g.AddEdge("Z", "W")
	g.AddEdge("W", "Z")
	return g
}

func TestGraph_AddNodeFirstSeenWins(t *testing.T) {
	g := NewGraph("Dog")

	assert.True(t, g.AddNode("Cat"))
	assert.False(t, g.AddNode("Cat"))
	assert.False(t, g.AddNode("Dog"))
	assert.Equal(t, []valueobjects.ArticleTitle{"Dog", "Cat"}, ids(g.Nodes()))

	node, ok := g.Node("Cat")
	require.True(t, ok)
	assert.Equal(t, "Cat", node.Name)
}

func TestGraph_PruneSinglePassKeepsStaleNeighbor(t *testing.T) {
	g := chainGraph()
	require.Equal(t, 2, g.Degree("X"))

	removed := g.Prune(PruneSinglePass)

	assert.Equal(t, []valueobjects.ArticleTitle{"Y"}, removed)
	assert.True(t, g.HasNode("X"), "X was evaluated with 2 edges before Y was removed")
	assert.Equal(t, 1, g.Degree("X"), "single pass does not re-check X after Y's removal")
	assert.Equal(t, []valueobjects.ArticleTitle{"X", "Z", "W"}, ids(g.Nodes()))
	for _, e := range g.Edges() {
		assert.False(t, e.Touches("Y"))
	}
}

func TestGraph_PruneFixedPoint(t *testing.T) {
	g := chainGraph()

	removed := g.Prune(PruneFixedPoint)

	assert.Equal(t, []valueobjects.ArticleTitle{"Y", "X"}, removed)
	assert.Equal(t, []valueobjects.ArticleTitle{"Z", "W"}, ids(g.Nodes()))
	for _, n := range g.Nodes() {
		assert.GreaterOrEqual(t, g.Degree(n.ID), MinIncidentEdges)
	}
}

func TestGraph_PruneCenterNotExemptByDefault(t *testing.T) {
	g := NewGraph("Dog")
	g.AddNode("Cat")
	g.AddEdge("Cat", "Dog")

	g.Prune(PruneSinglePass)

	assert.False(t, g.HasNode("Dog"))
	assert.Empty(t, g.Edges())
}

func TestGraph_PruneKeep(t *testing.T) {
	g := NewGraph("Dog")
	g.AddNode("Cat")
	g.AddEdge("Cat", "Dog")

	removed := g.Prune(PruneSinglePass, "Dog")

	assert.Equal(t, []valueobjects.ArticleTitle{"Cat"}, removed)
	assert.True(t, g.HasNode("Dog"))
}

func TestGraph_SelfLoopCountsOnce(t *testing.T) {
	g := NewGraph("Loop")
	g.AddEdge("Loop", "Loop")

	assert.Equal(t, 1, g.Degree("Loop"))
}

func TestGraph_CenterDecorations(t *testing.T) {
	g := NewGraph("Elephant")

	g.ObscureCenter()
	g.HighlightCenter()

	node, ok := g.Node("Elephant")
	require.True(t, ok)
	assert.Equal(t, "E_______", node.Name)
	assert.Equal(t, HighlightColor, node.Color)
}

func TestGraph_MarshalJSON(t *testing.T) {
	g := NewGraph("New_York")
	g.AddNode("Boston")
	g.AddEdge("Boston", "New_York")

	data, err := json.Marshal(g)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"nodes": [{"id": "New_York", "name": "New York"}, {"id": "Boston", "name": "Boston"}],
		"links": [{"source": "Boston", "target": "New_York", "color": "rgb(56,139,253)"}]
	}`, string(data))
}
