// Package catalog is the read-only index of known packages and their
// versions that the resolver consults.
package catalog

import (
	"sort"
	"sync"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

// Index answers "what exists" for a package uid.
type Index interface {
	// Metadata returns every repository's metadata record for uid. May be empty.
	Metadata(uid mod.PackageID) []mod.Metadata
	// Version returns the record for ref, if known.
	Version(ref mod.VersionRef) (*mod.Version, bool)
	// Versions lists the versions of uid compatible with compat, highest first.
	// An empty compat matches every version.
	Versions(uid mod.PackageID, compat string) []mod.VersionRef
	// Providers lists versions of any package that declare a provides edge to uid.
	Providers(uid mod.PackageID) []mod.VersionRef
}

// Catalog is an in-memory Index.
//
// It is safe for concurrent readers; writers (Add*) take an exclusive lock.
type Catalog struct {
	mu        sync.RWMutex
	metadata  map[mod.PackageID][]mod.Metadata
	versions  map[mod.PackageID]map[mod.VersionTag]*mod.Version
	providers map[mod.PackageID][]mod.VersionRef
}

var _ Index = (*Catalog)(nil)

func New() *Catalog {
	return &Catalog{
		metadata:  make(map[mod.PackageID][]mod.Metadata),
		versions:  make(map[mod.PackageID]map[mod.VersionTag]*mod.Version),
		providers: make(map[mod.PackageID][]mod.VersionRef),
	}
}

// AddMetadata registers metadata; a record for the same (uid, repo) is replaced.
func (c *Catalog) AddMetadata(md mod.Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.metadata[md.UID]
	for i := range existing {
		if existing[i].Repo == md.Repo {
			existing[i] = md
			return
		}
	}
	c.metadata[md.UID] = append(existing, md)
}

// AddVersion registers a version record; the same ref is replaced.
func (c *Catalog) AddVersion(v *mod.Version) {
	if v == nil || !v.Ref.IsValid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byTag := c.versions[v.Ref.UID]
	if byTag == nil {
		byTag = make(map[mod.VersionTag]*mod.Version)
		c.versions[v.Ref.UID] = byTag
	}
	if _, replaced := byTag[v.Ref.Tag]; replaced {
		c.dropProvider(v.Ref)
	}
	byTag[v.Ref.Tag] = v
	for _, p := range v.Provides() {
		c.providers[p.UID] = append(c.providers[p.UID], v.Ref)
	}
}

func (c *Catalog) dropProvider(ref mod.VersionRef) {
	for uid, refs := range c.providers {
		kept := refs[:0]
		for _, r := range refs {
			if r != ref {
				kept = append(kept, r)
			}
		}
		c.providers[uid] = kept
	}
}

func (c *Catalog) Metadata(uid mod.PackageID) []mod.Metadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]mod.Metadata(nil), c.metadata[uid]...)
}

func (c *Catalog) Version(ref mod.VersionRef) (*mod.Version, bool) {
	if !ref.IsValid() {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.versions[ref.UID][ref.Tag]
	return v, ok
}

func (c *Catalog) Versions(uid mod.PackageID, compat string) []mod.VersionRef {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]mod.VersionRef, 0, len(c.versions[uid]))
	for _, v := range c.versions[uid] {
		if v.SupportsCompat(compat) {
			out = append(out, v.Ref)
		}
	}
	sortDescending(out)
	return out
}

func (c *Catalog) Providers(uid mod.PackageID) []mod.VersionRef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]mod.VersionRef(nil), c.providers[uid]...)
}

// UIDs returns every package uid that has metadata or versions, sorted.
func (c *Catalog) UIDs() []mod.PackageID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[mod.PackageID]struct{}, len(c.metadata)+len(c.versions))
	for uid := range c.metadata {
		seen[uid] = struct{}{}
	}
	for uid := range c.versions {
		seen[uid] = struct{}{}
	}
	out := make([]mod.PackageID, 0, len(seen))
	for uid := range seen {
		out = append(out, uid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sortDescending orders refs highest tag first; equal tags keep a stable uid order.
func sortDescending(refs []mod.VersionRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if c := refs[i].Tag.Compare(refs[j].Tag); c != 0 {
			return c > 0
		}
		return refs[i].Tag > refs[j].Tag
	})
}
