package resolver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/graph"
	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/selector"
)

func installedFixture() (*DefaultResolver, mod.InstalledList) {
	idx := index(
		version("app", "1.0", dep("lib", "")),
		version("lib", "1.0", dep("core", "")),
		version("core", "1.0"),
		version("stale", "1.0", dep("core", "")),
	)
	installed := mod.InstalledList{
		{UID: "app", Version: ref("app", "1.0")},
		{UID: "lib", Version: ref("lib", "1.0"), AsDependency: true},
		{UID: "core", Version: ref("core", "1.0"), AsDependency: true},
		{UID: "stale", Version: ref("stale", "1.0"), AsDependency: true},
	}
	r, _ := newResolver(idx, selector.Highest{Index: idx}, installed)
	return r, installed
}

func TestAncestorsOf(t *testing.T) {
	r, _ := installedFixture()

	got, err := r.AncestorsOf(ids("core"))
	if err != nil {
		t.Fatalf("AncestorsOf: %v", err)
	}
	want := sets.New[mod.PackageID]("core", "lib", "app", "stale")
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", sets.List(want), sets.List(got))
	}

	if _, err := r.AncestorsOf(ids("nope")); !errors.Is(err, graph.ErrMissingNode) {
		t.Fatalf("expected ErrMissingNode, got %v", err)
	}
}

func TestOrphanPackages(t *testing.T) {
	r, _ := installedFixture()

	if r.HasUnresolvedState() {
		t.Fatalf("fixture should be consistent")
	}
	got, err := r.OrphanPackages()
	if err != nil {
		t.Fatalf("OrphanPackages: %v", err)
	}
	if diff := cmp.Diff([]mod.PackageID{"stale"}, got); diff != "" {
		t.Fatalf("orphans mismatch (-want +got):\n%s", diff)
	}
}

func TestHasUnresolvedState_MissingDependency(t *testing.T) {
	r, installed := installedFixture()
	r.Installed = append(installed, mod.InstalledEntry{UID: "extra", Version: ref("extra", "1.0")})

	if !r.HasUnresolvedState() {
		t.Fatalf("expected unresolved state for an entry without a version record")
	}
}

// lookupCounter counts version record lookups made against an index.
type lookupCounter struct {
	catalog.Index
	lookups int
}

func (c *lookupCounter) Version(ref mod.VersionRef) (*mod.Version, bool) {
	c.lookups++
	return c.Index.Version(ref)
}

func TestInstalledGraph_OneBuildAnswersEveryQuery(t *testing.T) {
	r, installed := installedFixture()
	counter := &lookupCounter{Index: r.Index}
	r.Index = counter

	g, ok := r.InstalledGraph()
	if !ok {
		t.Fatalf("fixture should be consistent: %v", g.Problems())
	}
	orphans, err := r.OrphansIn(g)
	if err != nil {
		t.Fatalf("OrphansIn: %v", err)
	}
	if diff := cmp.Diff([]mod.PackageID{"stale"}, orphans); diff != "" {
		t.Fatalf("orphans mismatch (-want +got):\n%s", diff)
	}
	if _, err := g.Ancestors("core"); err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	if len(g.Problems()) != 0 {
		t.Fatalf("unexpected problems %v", g.Problems())
	}
	if counter.lookups != len(installed) {
		t.Fatalf("expected one lookup per installed entry, got %d for %d entries", counter.lookups, len(installed))
	}
}
