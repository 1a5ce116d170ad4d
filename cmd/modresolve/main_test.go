package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bayleafwalker/modbinder/internal/resolver"
)

const coreYAML = `
uid: codechickencore
repo: main
versions:
- version: 1.0.4
  compat: ["1.7.10"]
- version: 1.0.10
  compat: ["1.7.10"]
  references:
  - type: provides
    uid: chickenapi
    version: 1.0.0
`

const neiYAML = `
uid: notenoughitems
repo: main
versions:
- version: 1.0.3
  references:
  - type: depends
    uid: codechickencore
    version: ">=1.0.4"
  - type: depends
    uid: chickenapi
    isSoft: true
`

const instanceYAML = `
apiVersion: mods.bindery.platform/v1alpha1
kind: ModInstance
metadata:
  name: pack
spec:
  gameVersion: "1.7.10"
  requested: [notenoughitems]
  installed:
  - uid: codechickencore
    version: 1.0.4
    asDependency: true
`

func writeFixtures(t *testing.T, instance string) options {
	t.Helper()
	dir := t.TempDir()
	catalogDir := filepath.Join(dir, "catalog")
	if err := os.Mkdir(catalogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(catalogDir, "core.yaml"): coreYAML,
		filepath.Join(catalogDir, "nei.yaml"):  neiYAML,
		filepath.Join(dir, "instance.yaml"):    instance,
	}
	for path, body := range files {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return options{catalogDir: catalogDir, instancePath: filepath.Join(dir, "instance.yaml")}
}

func TestRun_Report(t *testing.T) {
	o := writeFixtures(t, instanceYAML)
	o.remove = "codechickencore"

	var out bytes.Buffer
	if err := run(context.Background(), o, nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	report := out.String()
	for _, want := range []string{
		"codechickencore  1.0.10",
		"notenoughitems   1.0.3",
		"orphans: codechickencore",
		"update available: codechickencore 1.0.4 -> 1.0.10",
		"removing codechickencore also removes: codechickencore",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "UNRESOLVED") {
		t.Fatalf("soft dependency should be satisfied by the provider:\n%s", report)
	}
}

func TestRun_UnresolvableRequest(t *testing.T) {
	o := writeFixtures(t, strings.Replace(instanceYAML, "requested: [notenoughitems]", "requested: [missing]", 1))

	err := run(context.Background(), o, nil, &bytes.Buffer{})
	if !errors.Is(err, resolver.ErrUnresolvableRequest) {
		t.Fatalf("expected ErrUnresolvableRequest, got %v", err)
	}
}

func TestRun_RejectsUnknownInstanceFields(t *testing.T) {
	o := writeFixtures(t, instanceYAML+"  bogus: true\n")

	if err := run(context.Background(), o, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected strict parse error")
	}
}
