package resolver

import (
	"sort"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

// Plan is the outcome of a successful Resolve.
type Plan struct {
	Selection   Selection
	Diagnostics Diagnostics
}

// Selection maps each package to the version chosen for it.
type Selection map[mod.PackageID]*mod.Version

// Refs returns the selected refs ordered by uid.
func (s Selection) Refs() []mod.VersionRef {
	out := make([]mod.VersionRef, 0, len(s))
	for _, v := range s {
		out = append(out, v.Ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// Diagnostics captures recoverable problems met during resolution.
type Diagnostics struct {
	Unresolved []UnresolvedDependency
	// Provided lists dependencies satisfied by an already-present package
	// rather than by selecting the declared target.
	Provided []ProvidedDependency
}

type UnresolvedDependency struct {
	From       mod.VersionRef
	To         mod.PackageID
	Constraint string
	Reason     string
}

type ProvidedDependency struct {
	From mod.VersionRef
	To   mod.PackageID
	By   mod.VersionRef
}
