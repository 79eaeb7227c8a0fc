package record

import (
	"fmt"
	"slices"
)

// Edge is one allowed move of a transition graph. Stamp names the timestamp
// written when the edge is taken; Clears lists timestamps removed by it.
type Edge[S Status] struct {
	From   S
	To     S
	Stamp  string
	Clears []string
}

type edgeKey[S Status] struct {
	from, to S
}

// Graph is the fixed lifecycle of a domain.
type Graph[S Status] struct {
	initial S
	states  []S
	edges   []Edge[S]
	index   map[edgeKey[S]]int
}

// NewGraph validates and builds a transition graph. Every edge endpoint and the
// initial status must be declared states; self edges and duplicates are rejected.
func NewGraph[S Status](initial S, states []S, edges ...Edge[S]) (*Graph[S], error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("graph has no states")
	}
	for i, s := range states {
		if slices.Contains(states[:i], s) {
			return nil, fmt.Errorf("state %q declared twice", s)
		}
	}
	if !slices.Contains(states, initial) {
		return nil, fmt.Errorf("initial state %q is not declared", initial)
	}

	g := &Graph[S]{
		initial: initial,
		states:  slices.Clone(states),
		index:   make(map[edgeKey[S]]int, len(edges)),
	}
	for _, e := range edges {
		if !slices.Contains(states, e.From) || !slices.Contains(states, e.To) {
			return nil, fmt.Errorf("edge %s->%s uses an undeclared state", e.From, e.To)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("self edge on %q", e.From)
		}
		k := edgeKey[S]{e.From, e.To}
		if _, dup := g.index[k]; dup {
			return nil, fmt.Errorf("edge %s->%s declared twice", e.From, e.To)
		}
		e.Clears = slices.Clone(e.Clears)
		g.index[k] = len(g.edges)
		g.edges = append(g.edges, e)
	}
	return g, nil
}

// MustGraph is NewGraph for package-level lifecycle tables; it panics on an
// invalid table.
func MustGraph[S Status](initial S, states []S, edges ...Edge[S]) *Graph[S] {
	g, err := NewGraph(initial, states, edges...)
	if err != nil {
		panic(fmt.Errorf("record graph: %w", err))
	}
	return g
}

// Initial returns the status every new record starts in.
func (g *Graph[S]) Initial() S { return g.initial }

// States returns the declared statuses in declaration order.
func (g *Graph[S]) States() []S { return slices.Clone(g.states) }

// Valid reports whether s is a declared status.
func (g *Graph[S]) Valid(s S) bool { return slices.Contains(g.states, s) }

// Edge looks up the move from -> to.
func (g *Graph[S]) Edge(from, to S) (Edge[S], bool) {
	i, ok := g.index[edgeKey[S]{from, to}]
	if !ok {
		return Edge[S]{}, false
	}
	return g.edges[i], true
}

// Next lists the statuses reachable in one move from s, in declaration order.
func (g *Graph[S]) Next(from S) []S {
	var out []S
	for _, e := range g.edges {
		if e.From == from {
			out = append(out, e.To)
		}
	}
	return out
}

// Terminal reports whether s has no outgoing edges.
func (g *Graph[S]) Terminal(s S) bool {
	for _, e := range g.edges {
		if e.From == s {
			return false
		}
	}
	return true
}
