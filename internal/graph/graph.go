// Package graph builds the dependency graph of an installed snapshot and
// answers structural questions about it (ancestors, orphans, consistency).
//
// Nodes live in a single map keyed by package uid. Children and parents are
// stored as uid lists resolved through that map; parents are derived from
// children in one pass after all children are known.
package graph

import (
	"fmt"
	"slices"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

// SoftEdgePolicy decides whether soft depends edges become graph edges.
type SoftEdgePolicy int

const (
	// SoftEdgesExclude leaves soft edges out of the graph and marks the build
	// inconsistent, since a provider search would be needed to place them.
	SoftEdgesExclude SoftEdgePolicy = iota
	// SoftEdgesInclude treats a soft edge to an installed target like a hard one.
	SoftEdgesInclude
)

func (p SoftEdgePolicy) String() string {
	switch p {
	case SoftEdgesInclude:
		return "Include"
	default:
		return "Exclude"
	}
}

// ParseSoftEdgePolicy accepts "Include"/"Exclude" (case-sensitive); empty means Exclude.
func ParseSoftEdgePolicy(raw string) (SoftEdgePolicy, error) {
	switch raw {
	case "", "Exclude":
		return SoftEdgesExclude, nil
	case "Include":
		return SoftEdgesInclude, nil
	}
	return SoftEdgesExclude, fmt.Errorf("graph: unknown soft edge policy %q", raw)
}

type Options struct {
	SoftEdges SoftEdgePolicy
}

// Node is one installed package.
type Node struct {
	UID     mod.PackageID
	Version mod.VersionRef
	// Hard is true when the user asked for the package explicitly.
	Hard     bool
	Children []mod.PackageID
	Parents  []mod.PackageID
}

// Problem records why a build is not fully consistent.
type Problem struct {
	UID    mod.PackageID
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.UID, p.Reason)
}

// Graph is an immutable dependency graph for one installed snapshot.
type Graph struct {
	nodes    map[mod.PackageID]*Node
	order    []mod.PackageID
	problems []Problem
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// UIDs returns node uids in snapshot order.
func (g *Graph) UIDs() []mod.PackageID {
	return slices.Clone(g.order)
}

// Node returns a copy of the node for uid.
func (g *Graph) Node(uid mod.PackageID) (Node, bool) {
	n, ok := g.nodes[uid]
	if !ok {
		return Node{}, false
	}
	out := *n
	out.Children = slices.Clone(n.Children)
	out.Parents = slices.Clone(n.Parents)
	return out, true
}

// Problems lists every inconsistency found while building.
func (g *Graph) Problems() []Problem {
	return slices.Clone(g.problems)
}
