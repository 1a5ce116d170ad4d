package graph

import (
	"fmt"

	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/mod"
)

// Build constructs the graph for snapshot.
//
// It never fails outright: every inconsistency is recorded in Problems and
// reported through ok=false, and the best-effort graph is always returned.
// Callers must check ok before using the graph for destructive decisions.
func Build(snapshot mod.Snapshot, idx catalog.Index, opts Options) (*Graph, bool) {
	g := &Graph{nodes: make(map[mod.PackageID]*Node)}

	// First pass: one node per installed uid.
	for _, entry := range snapshot.Installed() {
		if _, dup := g.nodes[entry.UID]; dup {
			g.problem(entry.UID, "duplicate installed entry ignored")
			continue
		}
		node := &Node{UID: entry.UID, Hard: !entry.AsDependency}
		if entry.Version.IsValid() {
			node.Version = entry.Version
		} else {
			g.problem(entry.UID, "installed without a resolvable version")
		}
		g.nodes[entry.UID] = node
		g.order = append(g.order, entry.UID)
	}

	// Second pass: children from the resolved version's depends edges.
	for _, uid := range g.order {
		node := g.nodes[uid]
		if !node.Version.IsValid() {
			continue
		}
		version, found := idx.Version(node.Version)
		if !found {
			g.problem(uid, fmt.Sprintf("version %s not found in index", node.Version.Tag))
			continue
		}
		for _, dep := range version.Depends() {
			if dep.Soft && opts.SoftEdges == SoftEdgesExclude {
				g.problem(uid, fmt.Sprintf("soft dependency on %s not materialized", dep.UID))
				continue
			}
			if _, present := g.nodes[dep.UID]; !present {
				g.problem(uid, fmt.Sprintf("dependency %s is not installed", dep.UID))
				continue
			}
			if !containsUID(node.Children, dep.UID) {
				node.Children = append(node.Children, dep.UID)
			}
		}
	}

	// Third pass: parents mirror children.
	for _, uid := range g.order {
		for _, child := range g.nodes[uid].Children {
			c := g.nodes[child]
			c.Parents = append(c.Parents, uid)
		}
	}

	return g, len(g.problems) == 0
}

// HasResolveError rebuilds the graph for snapshot and reports whether the build was inconsistent.
func HasResolveError(snapshot mod.Snapshot, idx catalog.Index, opts Options) bool {
	_, ok := Build(snapshot, idx, opts)
	return !ok
}

func (g *Graph) problem(uid mod.PackageID, reason string) {
	g.problems = append(g.problems, Problem{UID: uid, Reason: reason})
}

func containsUID(list []mod.PackageID, uid mod.PackageID) bool {
	for _, u := range list {
		if u == uid {
			return true
		}
	}
	return false
}
