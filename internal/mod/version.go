package mod

import (
	"fmt"
	"sort"
)

type DownloadType string

const (
	DownloadDirect     DownloadType = "direct"
	DownloadParallel   DownloadType = "parallel"
	DownloadSequential DownloadType = "sequential"
	DownloadEncoded    DownloadType = "encoded"
)

func ParseDownloadType(raw string) (DownloadType, error) {
	if raw == "" {
		return DownloadParallel, nil
	}
	switch t := DownloadType(raw); t {
	case DownloadDirect, DownloadParallel, DownloadSequential, DownloadEncoded:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDownloadType, raw)
}

// InstallType tells the installer how to materialize a version. The resolver never interprets it.
type InstallType string

const (
	InstallForgeMod      InstallType = "forgeMod"
	InstallForgeCoreMod  InstallType = "forgeCoreMod"
	InstallLiteloaderMod InstallType = "liteloaderMod"
	InstallExtract       InstallType = "extract"
	InstallConfigPack    InstallType = "configPack"
	InstallGroup         InstallType = "group"
)

func ParseInstallType(raw string) (InstallType, error) {
	if raw == "" {
		return InstallForgeMod, nil
	}
	switch t := InstallType(raw); t {
	case InstallForgeMod, InstallForgeCoreMod, InstallLiteloaderMod, InstallExtract, InstallConfigPack, InstallGroup:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInstallType, raw)
}

type Download struct {
	URL      string
	Priority int
	Type     DownloadType
	Hint     string
	Group    string
}

type Library struct {
	Name string
	Repo string
}

// Version is a concrete, resolved version record.
type Version struct {
	Ref         VersionRef
	Name        string
	Type        string
	SHA1        string
	Compat      []string
	InstallType InstallType
	Downloads   []Download
	References  []Reference
	Libraries   []Library
}

// SortDownloads orders downloads by ascending priority, keeping declaration order for ties.
func (v *Version) SortDownloads() {
	sort.SliceStable(v.Downloads, func(i, j int) bool {
		return v.Downloads[i].Priority < v.Downloads[j].Priority
	})
}

// References of the given kind, in declared order.
func (v *Version) ReferencesOf(kind RefKind) []Reference {
	if v == nil {
		return nil
	}
	var out []Reference
	for _, ref := range v.References {
		if ref.Kind == kind {
			out = append(out, ref)
		}
	}
	return out
}

func (v *Version) Depends() []Reference { return v.ReferencesOf(RefDepends) }

func (v *Version) Provides() []Reference { return v.ReferencesOf(RefProvides) }

// HighestPriorityDownload returns the preferred download.
func (v *Version) HighestPriorityDownload() (Download, error) {
	if v == nil || len(v.Downloads) == 0 {
		return Download{}, ErrNoDownloads
	}
	return v.Downloads[0], nil
}

// FileName is the cache file name for the version's artifact.
func (v *Version) FileName() string {
	return fmt.Sprintf("%s-%s%s", v.Ref.UID, v.DisplayName(), fileEnding(v.InstallType))
}

// DisplayName falls back to the tag when no display name was declared.
func (v *Version) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	return string(v.Ref.Tag)
}

func (v *Version) SupportsCompat(compat string) bool {
	if compat == "" || len(v.Compat) == 0 {
		return true
	}
	for _, c := range v.Compat {
		if c == compat {
			return true
		}
	}
	return false
}

func fileEnding(t InstallType) string {
	switch t {
	case InstallForgeMod, InstallForgeCoreMod:
		return ".jar"
	case InstallLiteloaderMod:
		return ".litemod"
	case InstallExtract, InstallConfigPack:
		return ".zip"
	}
	return ""
}
