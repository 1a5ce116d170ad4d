// Package mod holds the data model shared by the catalog, graph and resolver
// packages: package identities, version references and version records.
package mod

import (
	"fmt"

	"github.com/bayleafwalker/modbinder/internal/semver"
)

// PackageID is the stable identifier ("uid") of a package across all of its versions.
type PackageID string

// VersionTag is a package-scoped version label.
//
// Tags are ordered with semver.CompareTags, never lexically.
type VersionTag string

// Compare orders t against other: -1, 0 or 1.
func (t VersionTag) Compare(other VersionTag) int {
	return semver.CompareTags(string(t), string(other))
}

// VersionRef points at one concrete version of a package.
//
// The zero value is "unset".
type VersionRef struct {
	UID PackageID  `json:"uid"`
	Tag VersionTag `json:"version"`
}

func (r VersionRef) IsValid() bool {
	return r.UID != "" && r.Tag != ""
}

func (r VersionRef) String() string {
	if !r.IsValid() {
		return string(r.UID) + "@<unset>"
	}
	return fmt.Sprintf("%s@%s", r.UID, r.Tag)
}

type RefKind string

const (
	RefDepends    RefKind = "depends"
	RefRecommends RefKind = "recommends"
	RefSuggests   RefKind = "suggests"
	RefConflicts  RefKind = "conflicts"
	RefProvides   RefKind = "provides"
)

// ParseRefKind validates a reference type as written in package files.
func ParseRefKind(raw string) (RefKind, error) {
	switch k := RefKind(raw); k {
	case RefDepends, RefRecommends, RefSuggests, RefConflicts, RefProvides:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRefKind, raw)
}

// Reference is one outgoing edge of a version.
type Reference struct {
	Kind RefKind
	UID  PackageID
	// Constraint is the declared version constraint; empty means any version.
	Constraint string
	// Soft marks a depends edge that any already-present provider may satisfy.
	Soft bool
}

// Metadata is the descriptive record a repository publishes for a package.
type Metadata struct {
	UID         PackageID
	Repo        string
	Name        string
	Description string
	Tags        []string
}

// InstalledEntry is one package in an installed snapshot.
type InstalledEntry struct {
	UID     PackageID
	Version VersionRef
	// AsDependency is true when the package was pulled in only to satisfy
	// another package, false when the user asked for it.
	AsDependency bool
}

// Snapshot is an ordered, restartable view of the installed packages.
type Snapshot interface {
	Installed() []InstalledEntry
}

// InstalledList is a Snapshot backed by a slice.
type InstalledList []InstalledEntry

func (l InstalledList) Installed() []InstalledEntry {
	return l
}
