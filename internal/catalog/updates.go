package catalog

import "github.com/bayleafwalker/modbinder/internal/mod"

// Update describes an installed package with a newer compatible version.
type Update struct {
	UID       mod.PackageID
	Installed mod.VersionTag
	Latest    mod.VersionTag
}

// UpdatesFor lists installed packages for which idx knows a strictly newer
// version compatible with compat. Entries without a valid version are skipped.
func UpdatesFor(idx Index, snapshot mod.Snapshot, compat string) []Update {
	var out []Update
	for _, entry := range snapshot.Installed() {
		if !entry.Version.IsValid() {
			continue
		}
		versions := idx.Versions(entry.UID, compat)
		if len(versions) == 0 {
			continue
		}
		latest := versions[0]
		if latest.Tag.Compare(entry.Version.Tag) > 0 {
			out = append(out, Update{UID: entry.UID, Installed: entry.Version.Tag, Latest: latest.Tag})
		}
	}
	return out
}
