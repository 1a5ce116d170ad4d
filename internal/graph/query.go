package graph

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

// Ancestors returns the seeds plus every package that transitively depends on one of them.
func (g *Graph) Ancestors(seeds ...mod.PackageID) (sets.Set[mod.PackageID], error) {
	out := sets.New[mod.PackageID]()
	queue := make([]mod.PackageID, 0, len(seeds))
	for _, uid := range seeds {
		if _, ok := g.nodes[uid]; !ok {
			return nil, &MissingNodeError{UID: uid}
		}
		if !out.Has(uid) {
			out.Insert(uid)
			queue = append(queue, uid)
		}
	}
	for len(queue) > 0 {
		uid := queue[0]
		queue = queue[1:]
		for _, parent := range g.nodes[uid].Parents {
			if out.Has(parent) {
				continue
			}
			out.Insert(parent)
			queue = append(queue, parent)
		}
	}
	return out, nil
}

// HasHardAncestor reports whether uid is hard or any of its ancestors is.
func (g *Graph) HasHardAncestor(uid mod.PackageID) (bool, error) {
	ancestors, err := g.Ancestors(uid)
	if err != nil {
		return false, err
	}
	for a := range ancestors {
		if g.nodes[a].Hard {
			return true, nil
		}
	}
	return false, nil
}

// Orphans lists, in snapshot order, the installed packages with no hard ancestor.
//
// Every snapshot entry must have a node in g; a missing one is a
// MissingNodeError and the caller must not act on a partial answer.
func Orphans(snapshot mod.Snapshot, g *Graph) ([]mod.PackageID, error) {
	var out []mod.PackageID
	seen := sets.New[mod.PackageID]()
	for _, entry := range snapshot.Installed() {
		if seen.Has(entry.UID) {
			continue
		}
		seen.Insert(entry.UID)
		hard, err := g.HasHardAncestor(entry.UID)
		if err != nil {
			return nil, err
		}
		if !hard {
			out = append(out, entry.UID)
		}
	}
	return out, nil
}
