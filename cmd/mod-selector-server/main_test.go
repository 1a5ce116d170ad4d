package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

func TestParsePins(t *testing.T) {
	got, err := parsePins(" forge=10.13.4 , jei=build-2,")
	if err != nil {
		t.Fatalf("parsePins: %v", err)
	}
	want := map[mod.PackageID]mod.VersionTag{"forge": "10.13.4", "jei": "build-2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pins mismatch (-want +got):\n%s", diff)
	}

	if _, err := parsePins("forge"); err == nil {
		t.Fatalf("expected error for pin without version")
	}
}
