package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/semver"
)

func testIndex() *catalog.Catalog {
	c := catalog.New()
	for _, tag := range []string{"1.0.0", "1.5.0", "2.0.0"} {
		c.AddVersion(&mod.Version{
			Ref:    mod.VersionRef{UID: "lib", Tag: mod.VersionTag(tag)},
			Compat: []string{"1.7.10"},
		})
	}
	c.AddVersion(&mod.Version{Ref: mod.VersionRef{UID: "lib", Tag: "3.0.0"}, Compat: []string{"1.8"}})
	return c
}

func constraint(raw string) *semver.Constraint {
	c := semver.MustParseConstraint(raw)
	return &c
}

func TestHighest_UnconstrainedPicksHighestCompatible(t *testing.T) {
	h := Highest{Index: testIndex(), Compat: "1.7.10"}

	ref, err := h.Choose(context.Background(), "lib", nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if ref.Tag != "2.0.0" {
		t.Fatalf("expected 2.0.0, got %s", ref.Tag)
	}
}

func TestHighest_Constrained(t *testing.T) {
	h := Highest{Index: testIndex(), Compat: "1.7.10"}

	ref, err := h.Choose(context.Background(), "lib", constraint("<2.0.0"))
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if ref.Tag != "1.5.0" {
		t.Fatalf("expected 1.5.0, got %s", ref.Tag)
	}
}

func TestHighest_NoCandidates(t *testing.T) {
	h := Highest{Index: testIndex(), Compat: "1.7.10"}

	if _, err := h.Choose(context.Background(), "lib", constraint(">=3.0.0")); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if _, err := h.Choose(context.Background(), "unknown", nil); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates for unknown package, got %v", err)
	}
}

func TestHighest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Highest{Index: testIndex()}.Choose(ctx, "lib", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPinned_PinWinsWhenSatisfying(t *testing.T) {
	p := Pinned{
		Pins:     map[mod.PackageID]mod.VersionTag{"lib": "1.0.0"},
		Fallback: Highest{Index: testIndex(), Compat: "1.7.10"},
	}

	ref, err := p.Choose(context.Background(), "lib", nil)
	if err != nil || ref.Tag != "1.0.0" {
		t.Fatalf("expected pinned 1.0.0, got %s (%v)", ref.Tag, err)
	}

	ref, err = p.Choose(context.Background(), "lib", constraint(">=1.5.0"))
	if err != nil || ref.Tag != "2.0.0" {
		t.Fatalf("expected fallback 2.0.0 when pin does not satisfy, got %s (%v)", ref.Tag, err)
	}
}

func TestPinned_NoFallback(t *testing.T) {
	p := Pinned{Pins: map[mod.PackageID]mod.VersionTag{}}
	if _, err := p.Choose(context.Background(), "lib", nil); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestFunc(t *testing.T) {
	var f Selector = Func(func(ctx context.Context, uid mod.PackageID, c *semver.Constraint) (mod.VersionRef, error) {
		return mod.VersionRef{}, ErrDeclined
	})
	if _, err := f.Choose(context.Background(), "x", nil); !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}
