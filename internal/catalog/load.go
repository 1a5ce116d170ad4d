package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/yaml"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

const defaultLibraryRepo = "https://repo1.maven.org/maven2/"

// packageFile is the on-disk QuickMod-style document: one package, many versions.
type packageFile struct {
	UID         string        `json:"uid"`
	Repo        string        `json:"repo,omitempty"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Versions    []versionFile `json:"versions,omitempty"`
}

type versionFile struct {
	Name        string          `json:"name,omitempty"`
	Version     string          `json:"version,omitempty"`
	Type        string          `json:"type,omitempty"`
	SHA1        string          `json:"sha1,omitempty"`
	Compat      []string        `json:"compat,omitempty"`
	InstallType string          `json:"installType,omitempty"`
	References  []referenceFile `json:"references,omitempty"`
	Libraries   []libraryFile   `json:"libraries,omitempty"`
	URLs        []downloadFile  `json:"urls,omitempty"`
}

type referenceFile struct {
	Type    string `json:"type"`
	UID     string `json:"uid"`
	Version string `json:"version,omitempty"`
	IsSoft  bool   `json:"isSoft,omitempty"`
}

type libraryFile struct {
	Name string `json:"name"`
	Repo string `json:"repo,omitempty"`
}

type downloadFile struct {
	URL          string `json:"url"`
	Priority     int    `json:"priority,omitempty"`
	DownloadType string `json:"downloadType,omitempty"`
	Hint         string `json:"hint,omitempty"`
	Group        string `json:"group,omitempty"`
}

// LoadDir reads every .json/.yaml/.yml file in dir (non-recursive) into a new Catalog.
//
// Files that fail to parse are reported together; the returned catalog still
// holds everything that loaded.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: read dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	c := New()
	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("catalog: read %s: %w", path, err))
			continue
		}
		if err := c.Load(data); err != nil {
			errs = append(errs, fmt.Errorf("catalog: %s: %w", path, err))
		}
	}
	return c, utilerrors.NewAggregate(errs)
}

// Load parses a single package document (JSON or YAML) into the catalog.
// Nothing is added when the document is invalid.
func (c *Catalog) Load(data []byte) error {
	var pf packageFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("decode package: %w", err)
	}
	md, versions, err := pf.convert()
	if err != nil {
		return err
	}
	c.AddMetadata(md)
	for _, v := range versions {
		c.AddVersion(v)
	}
	return nil
}

func (pf packageFile) convert() (mod.Metadata, []*mod.Version, error) {
	if strings.TrimSpace(pf.UID) == "" {
		return mod.Metadata{}, nil, ErrMissingUID
	}
	uid := mod.PackageID(pf.UID)
	md := mod.Metadata{
		UID:         uid,
		Repo:        pf.Repo,
		Name:        pf.Name,
		Description: pf.Description,
		Tags:        pf.Tags,
	}

	versions := make([]*mod.Version, 0, len(pf.Versions))
	for i, vf := range pf.Versions {
		v, err := vf.convert(uid)
		if err != nil {
			return mod.Metadata{}, nil, fmt.Errorf("version[%d]: %w", i, err)
		}
		versions = append(versions, v)
	}
	return md, versions, nil
}

func (vf versionFile) convert(uid mod.PackageID) (*mod.Version, error) {
	tag := vf.Version
	if tag == "" {
		tag = vf.Name
	}
	if tag == "" {
		return nil, ErrMissingVersion
	}
	installType, err := mod.ParseInstallType(vf.InstallType)
	if err != nil {
		return nil, err
	}
	v := &mod.Version{
		Ref:         mod.VersionRef{UID: uid, Tag: mod.VersionTag(tag)},
		Name:        vf.Name,
		Type:        vf.Type,
		SHA1:        vf.SHA1,
		Compat:      vf.Compat,
		InstallType: installType,
	}
	if v.Type == "" {
		v.Type = "Release"
	}
	for _, rf := range vf.References {
		kind, err := mod.ParseRefKind(rf.Type)
		if err != nil {
			return nil, err
		}
		if rf.UID == "" {
			return nil, fmt.Errorf("%s reference: %w", kind, ErrMissingUID)
		}
		v.References = append(v.References, mod.Reference{
			Kind:       kind,
			UID:        mod.PackageID(rf.UID),
			Constraint: rf.Version,
			// soft only means something on depends edges
			Soft: kind == mod.RefDepends && rf.IsSoft,
		})
	}
	for _, lf := range vf.Libraries {
		repo := lf.Repo
		if repo == "" {
			repo = defaultLibraryRepo
		}
		v.Libraries = append(v.Libraries, mod.Library{Name: lf.Name, Repo: repo})
	}
	for _, df := range vf.URLs {
		dt, err := mod.ParseDownloadType(df.DownloadType)
		if err != nil {
			return nil, err
		}
		v.Downloads = append(v.Downloads, mod.Download{
			URL:      df.URL,
			Priority: df.Priority,
			Type:     dt,
			Hint:     df.Hint,
			Group:    df.Group,
		})
	}
	v.SortDownloads()
	return v, nil
}
