package graph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/mod"
)

func ref(uid, tag string) mod.VersionRef {
	return mod.VersionRef{UID: mod.PackageID(uid), Tag: mod.VersionTag(tag)}
}

func dep(uid string) mod.Reference {
	return mod.Reference{Kind: mod.RefDepends, UID: mod.PackageID(uid)}
}

func softDep(uid string) mod.Reference {
	return mod.Reference{Kind: mod.RefDepends, UID: mod.PackageID(uid), Soft: true}
}

func version(uid, tag string, refs ...mod.Reference) *mod.Version {
	return &mod.Version{Ref: ref(uid, tag), References: refs}
}

func hard(uid, tag string) mod.InstalledEntry {
	return mod.InstalledEntry{UID: mod.PackageID(uid), Version: ref(uid, tag)}
}

func asDep(uid, tag string) mod.InstalledEntry {
	return mod.InstalledEntry{UID: mod.PackageID(uid), Version: ref(uid, tag), AsDependency: true}
}

func index(versions ...*mod.Version) *catalog.Catalog {
	c := catalog.New()
	for _, v := range versions {
		c.AddVersion(v)
	}
	return c
}

func TestBuild_HardParentKeepsDependency(t *testing.T) {
	idx := index(version("A", "1", dep("B")), version("B", "1"))
	snapshot := mod.InstalledList{hard("A", "1"), asDep("B", "1")}

	g, ok := Build(snapshot, idx, Options{})
	if !ok {
		t.Fatalf("expected consistent build, problems: %v", g.Problems())
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.Len())
	}
	a, _ := g.Node("A")
	b, _ := g.Node("B")
	if diff := cmp.Diff([]mod.PackageID{"B"}, a.Children); diff != "" {
		t.Fatalf("A children mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]mod.PackageID{"A"}, b.Parents); diff != "" {
		t.Fatalf("B parents mismatch (-want +got):\n%s", diff)
	}
	if !a.Hard || b.Hard {
		t.Fatalf("expected A hard and B dependency-only, got A=%v B=%v", a.Hard, b.Hard)
	}

	orphans, err := Orphans(snapshot, g)
	if err != nil {
		t.Fatalf("Orphans: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected no orphans, got %v", orphans)
	}
}

func TestOrphans_DependencyOnlyRootIsOrphan(t *testing.T) {
	idx := index(version("A", "1"), version("B", "1"))
	snapshot := mod.InstalledList{asDep("A", "1"), hard("B", "1")}

	g, ok := Build(snapshot, idx, Options{})
	if !ok {
		t.Fatalf("expected consistent build, problems: %v", g.Problems())
	}
	orphans, err := Orphans(snapshot, g)
	if err != nil {
		t.Fatalf("Orphans: %v", err)
	}
	if diff := cmp.Diff([]mod.PackageID{"A"}, orphans); diff != "" {
		t.Fatalf("orphans mismatch (-want +got):\n%s", diff)
	}
}

func TestOrphans_ChainWithoutHardRoot(t *testing.T) {
	// X -> Y -> Z, none requested; H is hard and unrelated.
	idx := index(
		version("X", "1", dep("Y")),
		version("Y", "1", dep("Z")),
		version("Z", "1"),
		version("H", "1"),
	)
	snapshot := mod.InstalledList{asDep("X", "1"), asDep("Y", "1"), asDep("Z", "1"), hard("H", "1")}

	g, _ := Build(snapshot, idx, Options{})
	orphans, err := Orphans(snapshot, g)
	if err != nil {
		t.Fatalf("Orphans: %v", err)
	}
	if diff := cmp.Diff([]mod.PackageID{"X", "Y", "Z"}, orphans); diff != "" {
		t.Fatalf("orphans mismatch (-want +got):\n%s", diff)
	}
}

func TestOrphans_CycleTerminates(t *testing.T) {
	idx := index(
		version("P", "1", dep("Q")),
		version("Q", "1", dep("P")),
		version("R", "1", dep("Q")),
	)
	snapshot := mod.InstalledList{asDep("P", "1"), asDep("Q", "1"), asDep("R", "1")}

	g, ok := Build(snapshot, idx, Options{})
	if !ok {
		t.Fatalf("expected consistent build, problems: %v", g.Problems())
	}
	orphans, err := Orphans(snapshot, g)
	if err != nil {
		t.Fatalf("Orphans: %v", err)
	}
	if len(orphans) != 3 {
		t.Fatalf("expected all three packages orphaned, got %v", orphans)
	}

	withHard := mod.InstalledList{asDep("P", "1"), asDep("Q", "1"), hard("R", "1")}
	g, _ = Build(withHard, idx, Options{})
	orphans, _ = Orphans(withHard, g)
	if len(orphans) != 0 {
		t.Fatalf("expected hard R to keep the cycle alive, got %v", orphans)
	}
}

func TestAncestors_TransitiveWithSeeds(t *testing.T) {
	// A -> B -> D, C -> D, E unrelated.
	idx := index(
		version("A", "1", dep("B")),
		version("B", "1", dep("D")),
		version("C", "1", dep("D")),
		version("D", "1"),
		version("E", "1"),
	)
	snapshot := mod.InstalledList{hard("A", "1"), asDep("B", "1"), hard("C", "1"), asDep("D", "1"), hard("E", "1")}
	g, _ := Build(snapshot, idx, Options{})

	got, err := g.Ancestors("D")
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	want := sets.New[mod.PackageID]("A", "B", "C", "D")
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", sets.List(want), sets.List(got))
	}

	got, _ = g.Ancestors("B", "E")
	if !got.Equal(sets.New[mod.PackageID]("A", "B", "E")) {
		t.Fatalf("unexpected ancestors for B,E: %v", sets.List(got))
	}
}

func TestAncestors_UnknownSeed(t *testing.T) {
	g, _ := Build(mod.InstalledList{}, index(), Options{})
	_, err := g.Ancestors("ghost")
	if !errors.Is(err, ErrMissingNode) {
		t.Fatalf("expected ErrMissingNode, got %v", err)
	}
	var missing *MissingNodeError
	if !errors.As(err, &missing) || missing.UID != "ghost" {
		t.Fatalf("expected MissingNodeError for ghost, got %v", err)
	}
}

func TestOrphans_SnapshotEntryMissingFromGraph(t *testing.T) {
	idx := index(version("A", "1"))
	g, _ := Build(mod.InstalledList{hard("A", "1")}, idx, Options{})

	_, err := Orphans(mod.InstalledList{hard("A", "1"), hard("B", "1")}, g)
	if !errors.Is(err, ErrMissingNode) {
		t.Fatalf("expected ErrMissingNode, got %v", err)
	}
}

func TestBuild_MissingTargetIsInconsistent(t *testing.T) {
	idx := index(version("A", "1", dep("B"), dep("C")), version("C", "1"))
	snapshot := mod.InstalledList{hard("A", "1"), asDep("C", "1")}

	g, ok := Build(snapshot, idx, Options{})
	if ok {
		t.Fatalf("expected inconsistent build")
	}
	a, _ := g.Node("A")
	if diff := cmp.Diff([]mod.PackageID{"C"}, a.Children); diff != "" {
		t.Fatalf("expected partial graph to keep C (-want +got):\n%s", diff)
	}
	if !HasResolveError(snapshot, idx, Options{}) {
		t.Fatalf("expected HasResolveError for the same snapshot")
	}
}

func TestBuild_InvalidOrUnknownVersion(t *testing.T) {
	idx := index(version("A", "1"))
	snapshot := mod.InstalledList{
		{UID: "A"},
		hard("B", "2"),
	}

	g, ok := Build(snapshot, idx, Options{})
	if ok {
		t.Fatalf("expected inconsistent build")
	}
	if g.Len() != 2 {
		t.Fatalf("expected construction to continue for every entry, got %d nodes", g.Len())
	}
	if len(g.Problems()) != 2 {
		t.Fatalf("expected two problems, got %v", g.Problems())
	}
	a, _ := g.Node("A")
	if a.Version.IsValid() {
		t.Fatalf("expected A to keep an invalid version")
	}
}

func TestBuild_SoftEdgesPolicy(t *testing.T) {
	idx := index(version("A", "1", softDep("B")), version("B", "1"))
	snapshot := mod.InstalledList{hard("A", "1"), asDep("B", "1")}

	g, ok := Build(snapshot, idx, Options{SoftEdges: SoftEdgesExclude})
	if ok {
		t.Fatalf("expected soft edge to make the default build inconsistent")
	}
	if a, _ := g.Node("A"); len(a.Children) != 0 {
		t.Fatalf("expected soft edge to stay out of the graph, got %v", a.Children)
	}

	g, ok = Build(snapshot, idx, Options{SoftEdges: SoftEdgesInclude})
	if !ok {
		t.Fatalf("expected consistent build with soft edges included, problems: %v", g.Problems())
	}
	orphans, _ := Orphans(snapshot, g)
	if len(orphans) != 0 {
		t.Fatalf("expected B kept alive by soft edge, got %v", orphans)
	}
}

func TestBuild_DuplicateEntryFirstWins(t *testing.T) {
	idx := index(version("A", "1"), version("A", "2"))
	snapshot := mod.InstalledList{asDep("A", "1"), hard("A", "2")}

	g, ok := Build(snapshot, idx, Options{})
	if ok {
		t.Fatalf("expected duplicate to mark the build inconsistent")
	}
	a, _ := g.Node("A")
	if a.Version.Tag != "1" || a.Hard {
		t.Fatalf("expected first entry to win, got %+v", a)
	}
}

func TestParseSoftEdgePolicy(t *testing.T) {
	if p, err := ParseSoftEdgePolicy(""); err != nil || p != SoftEdgesExclude {
		t.Fatalf("expected default Exclude, got %v (%v)", p, err)
	}
	if p, err := ParseSoftEdgePolicy("Include"); err != nil || p != SoftEdgesInclude {
		t.Fatalf("expected Include, got %v (%v)", p, err)
	}
	if _, err := ParseSoftEdgePolicy("sometimes"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
