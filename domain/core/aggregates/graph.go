package aggregates

import (
	"encoding/json"

	"namethatpage-backend/domain/core/valueobjects"
)

const (
	// LinkColor is the color of every edge.
	LinkColor = "rgb(56,139,253)"
	// HighlightColor marks the center node when the answer is revealed.
	HighlightColor = LinkColor
	// MinIncidentEdges is the pruning threshold.
	MinIncidentEdges = 2
)

// PruneStrategy selects how sparse nodes are removed
type PruneStrategy string

const (
	// PruneSinglePass visits every node once in insertion order. Removing a
	// node can leave an earlier-visited neighbor below the threshold; that
	// neighbor is kept.
	PruneSinglePass PruneStrategy = "single_pass"
	// PruneFixedPoint repeats single passes until nothing is removed.
	PruneFixedPoint PruneStrategy = "fixed_point"
)

// Node is a graph vertex as the visualization consumes it
type Node struct {
	ID    valueobjects.ArticleTitle `json:"id"`
	Name  string                    `json:"name"`
	Color string                    `json:"color,omitempty"`
}

// Edge is a directed navigation between two articles
type Edge struct {
	Source valueobjects.ArticleTitle `json:"source"`
	Target valueobjects.ArticleTitle `json:"target"`
	Color  string                    `json:"color"`
}

// Touches reports whether the edge is incident to id
func (e Edge) Touches(id valueobjects.ArticleTitle) bool {
	return e.Source == id || e.Target == id
}

// Graph is the navigation graph around one center article.
// Nodes keep insertion order and are unique by ID; edges form a multiset.
type Graph struct {
	center valueobjects.ArticleTitle
	nodes  []Node
	index  map[valueobjects.ArticleTitle]int
	edges  []Edge
}

// NewGraph creates a graph holding only the center node
func NewGraph(center valueobjects.ArticleTitle) *Graph {
	g := &Graph{
		center: center,
		index:  make(map[valueobjects.ArticleTitle]int),
	}
	g.AddNode(center)
	return g
}

// Center returns the center article
func (g *Graph) Center() valueobjects.ArticleTitle {
	return g.center
}

// AddNode adds a node for title unless one exists. It returns true when added.
func (g *Graph) AddNode(title valueobjects.ArticleTitle) bool {
	if _, exists := g.index[title]; exists {
		return false
	}
	g.index[title] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: title, Name: title.DisplayName()})
	return true
}

// HasNode checks node membership
func (g *Graph) HasNode(title valueobjects.ArticleTitle) bool {
	_, exists := g.index[title]
	return exists
}

// AddEdge appends a directed edge. Endpoints are not required to be nodes yet.
func (g *Graph) AddEdge(source, target valueobjects.ArticleTitle) {
	g.edges = append(g.edges, Edge{Source: source, Target: target, Color: LinkColor})
}

// Nodes returns a copy of the nodes in insertion order
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of the edges
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Node looks up a node by id
func (g *Graph) Node(id valueobjects.ArticleTitle) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Degree counts edges incident to id; a self-loop counts once.
func (g *Graph) Degree(id valueobjects.ArticleTitle) int {
	count := 0
	for _, e := range g.edges {
		if e.Touches(id) {
			count++
		}
	}
	return count
}

// Prune removes nodes with fewer than MinIncidentEdges incident edges
// together with their edges, and returns the removed ids.
// keep lists ids that are never removed.
func (g *Graph) Prune(strategy PruneStrategy, keep ...valueobjects.ArticleTitle) []valueobjects.ArticleTitle {
	exempt := make(map[valueobjects.ArticleTitle]struct{}, len(keep))
	for _, id := range keep {
		exempt[id] = struct{}{}
	}

	var removed []valueobjects.ArticleTitle
	for {
		pass := g.prunePass(exempt)
		removed = append(removed, pass...)
		if strategy != PruneFixedPoint || len(pass) == 0 {
			return removed
		}
	}
}

// prunePass evaluates each node once against the edge set as it stands when
// that node is reached.
func (g *Graph) prunePass(exempt map[valueobjects.ArticleTitle]struct{}) []valueobjects.ArticleTitle {
	snapshot := make([]valueobjects.ArticleTitle, len(g.nodes))
	for i, n := range g.nodes {
		snapshot[i] = n.ID
	}

	var removed []valueobjects.ArticleTitle
	for _, id := range snapshot {
		if _, ok := exempt[id]; ok {
			continue
		}
		if g.Degree(id) >= MinIncidentEdges {
			continue
		}
		g.removeNode(id)
		removed = append(removed, id)
	}
	return removed
}

func (g *Graph) removeNode(id valueobjects.ArticleTitle) {
	kept := g.edges[:0]
	for _, e := range g.edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	g.edges = kept

	i, ok := g.index[id]
	if !ok {
		return
	}
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
	delete(g.index, id)
	for j := i; j < len(g.nodes); j++ {
		g.index[g.nodes[j].ID] = j
	}
}

// ObscureCenter hides the center's name behind its first character
func (g *Graph) ObscureCenter() {
	if i, ok := g.index[g.center]; ok {
		g.nodes[i].Name = g.center.Obscured()
	}
}

// HighlightCenter tags the center node with HighlightColor
func (g *Graph) HighlightCenter() {
	if i, ok := g.index[g.center]; ok {
		g.nodes[i].Color = HighlightColor
	}
}

// GraphView is the JSON shape handed to the force-graph consumer
type GraphView struct {
	Nodes []Node `json:"nodes"`
	Links []Edge `json:"links"`
}

// View returns the serializable form of the graph
func (g *Graph) View() GraphView {
	return GraphView{Nodes: g.Nodes(), Links: g.Edges()}
}

// MarshalJSON renders the graph as its View
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.View())
}
