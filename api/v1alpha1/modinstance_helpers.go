package v1alpha1

import (
	"github.com/bayleafwalker/modbinder/internal/mod"
)

// Snapshot converts the installed list into the resolver's snapshot form.
// An empty version leaves the entry without a resolvable version.
func (s *ModInstanceSpec) Snapshot() mod.InstalledList {
	out := make(mod.InstalledList, 0, len(s.Installed))
	for _, p := range s.Installed {
		entry := mod.InstalledEntry{UID: mod.PackageID(p.UID), AsDependency: p.AsDependency}
		if p.Version != "" {
			entry.Version = mod.VersionRef{UID: mod.PackageID(p.UID), Tag: mod.VersionTag(p.Version)}
		}
		out = append(out, entry)
	}
	return out
}

func (s *ModInstanceSpec) RequestedIDs() []mod.PackageID {
	out := make([]mod.PackageID, 0, len(s.Requested))
	for _, uid := range s.Requested {
		out = append(out, mod.PackageID(uid))
	}
	return out
}

func (s *ModInstanceSpec) PinnedTags() map[mod.PackageID]mod.VersionTag {
	if len(s.Pins) == 0 {
		return nil
	}
	out := make(map[mod.PackageID]mod.VersionTag, len(s.Pins))
	for uid, tag := range s.Pins {
		out[mod.PackageID(uid)] = mod.VersionTag(tag)
	}
	return out
}
