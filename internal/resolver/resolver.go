package resolver

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

// Resolver answers the three questions asked about an installed snapshot:
// which versions a request needs, what depends on a package, and which
// packages are no longer needed.
//
// Resolve may block inside the version selector; run it off any
// interactive goroutine and cancel through ctx.
type Resolver interface {
	Resolve(ctx context.Context, requested []mod.PackageID) (Plan, error)
	AncestorsOf(uids []mod.PackageID) (sets.Set[mod.PackageID], error)
	OrphanPackages() ([]mod.PackageID, error)
	HasUnresolvedState() bool
}
