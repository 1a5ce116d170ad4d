package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/graph"
	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/selector"
	"github.com/bayleafwalker/modbinder/internal/semver"
)

// DefaultResolver resolves against a catalog index and an installed snapshot.
// It holds no state between calls; every Resolve starts from an empty selection.
type DefaultResolver struct {
	Index     catalog.Index
	Selector  selector.Selector
	Installed mod.Snapshot
	// Events may be nil.
	Events EventSink
	Graph  graph.Options
}

func NewDefault(idx catalog.Index, sel selector.Selector, installed mod.Snapshot) *DefaultResolver {
	return &DefaultResolver{Index: idx, Selector: sel, Installed: installed}
}

var _ Resolver = (*DefaultResolver)(nil)

// Resolve picks a version for every requested package and, recursively, for
// each of their depends edges. A package reached more than once keeps the
// highest version any path selected.
//
// A requested package with no selectable version fails the whole call and
// no partial selection is returned. Problems on dependency edges are
// reported as warning events and recorded in the plan diagnostics.
func (r *DefaultResolver) Resolve(ctx context.Context, requested []mod.PackageID) (Plan, error) {
	run := &resolution{
		r:         r,
		ctx:       ctx,
		log:       logr.FromContextOrDiscard(ctx).WithName("resolver"),
		events:    r.Events,
		selection: Selection{},
	}
	if run.events == nil {
		run.events = discardSink{}
	}

	for _, uid := range requested {
		v, err := run.choose(uid, nil)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Plan{}, fmt.Errorf("resolve cancelled: %w", ctxErr)
			}
			run.emit(Event{
				Kind:    EventError,
				Reason:  ReasonVersionNotSelected,
				Message: fmt.Sprintf("didn't select a version for %s", uid),
				To:      uid,
			})
			return Plan{}, &UnresolvableRequestError{UID: uid, Err: err}
		}
		if err := run.expand(v); err != nil {
			return Plan{}, err
		}
	}

	return Plan{Selection: run.selection, Diagnostics: run.diag}, nil
}

func (r *DefaultResolver) snapshot() mod.Snapshot {
	if r.Installed == nil {
		return mod.InstalledList{}
	}
	return r.Installed
}

// InstalledGraph builds the graph of the installed snapshot once; ok is
// false when it is inconsistent. A caller asking several questions in one
// pass should query this graph rather than the single-shot helpers below.
func (r *DefaultResolver) InstalledGraph() (*graph.Graph, bool) {
	return graph.Build(r.snapshot(), r.Index, r.Graph)
}

// OrphansIn returns the installed packages that g no longer needs.
func (r *DefaultResolver) OrphansIn(g *graph.Graph) ([]mod.PackageID, error) {
	return graph.Orphans(r.snapshot(), g)
}

// AncestorsOf returns every installed package that transitively depends on
// any of uids, uids included.
func (r *DefaultResolver) AncestorsOf(uids []mod.PackageID) (sets.Set[mod.PackageID], error) {
	g, _ := r.InstalledGraph()
	return g.Ancestors(uids...)
}

// OrphanPackages returns the installed packages that are no longer needed.
// Callers should check HasUnresolvedState first; an inconsistent graph can
// make a needed package look orphaned.
func (r *DefaultResolver) OrphanPackages() ([]mod.PackageID, error) {
	g, _ := r.InstalledGraph()
	return r.OrphansIn(g)
}

// GraphProblems lists why the installed graph is inconsistent, if it is.
func (r *DefaultResolver) GraphProblems() []graph.Problem {
	g, _ := r.InstalledGraph()
	return g.Problems()
}

func (r *DefaultResolver) HasUnresolvedState() bool {
	return graph.HasResolveError(r.snapshot(), r.Index, r.Graph)
}

// resolution is the state of one Resolve call.
type resolution struct {
	r         *DefaultResolver
	ctx       context.Context
	log       logr.Logger
	events    EventSink
	selection Selection
	diag      Diagnostics
}

func (s *resolution) emit(e Event) {
	s.events.Emit(s.ctx, e)
}

// choose asks the selector for a version of uid and looks up its record.
func (s *resolution) choose(uid mod.PackageID, c *semver.Constraint) (*mod.Version, error) {
	ref, err := s.r.Selector.Choose(s.ctx, uid, c)
	if err != nil {
		return nil, err
	}
	v, ok := s.r.Index.Version(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, ref)
	}
	return v, nil
}

// expand records v in the selection and walks its depends edges.
//
// The selection for a package only ever moves up, so each (uid, tag) pair is
// expanded at most once. That is what keeps dependency cycles finite.
func (s *resolution) expand(v *mod.Version) error {
	if v == nil || !v.Ref.IsValid() {
		return nil
	}
	if cur, ok := s.selection[v.Ref.UID]; ok && cur.Ref.Tag.Compare(v.Ref.Tag) >= 0 {
		return nil
	}
	s.selection[v.Ref.UID] = v
	s.log.V(1).Info("selected version", "version", v.Ref.String())

	for _, edge := range v.Depends() {
		if err := s.ctx.Err(); err != nil {
			return fmt.Errorf("resolve cancelled: %w", err)
		}
		if edge.Soft {
			if by, ok := s.present(edge); ok {
				s.provided(v, edge, by)
				continue
			}
		}

		if len(s.r.Index.Metadata(edge.UID)) == 0 {
			if by, ok := s.present(edge); ok {
				s.provided(v, edge, by)
				continue
			}
			s.unresolved(v, edge, "no metadata and no installed or selected provider")
			continue
		}

		dep, err := s.choose(edge.UID, parseConstraint(edge.Constraint))
		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return fmt.Errorf("resolve cancelled: %w", ctxErr)
			}
			s.unresolved(v, edge, err.Error())
			continue
		}

		s.emit(Event{
			Kind:    EventInfo,
			Reason:  ReasonDependencyResolved,
			Message: fmt.Sprintf("resolved dependency from %s to %s", v.Ref, dep.Ref),
			From:    refOf(v),
			To:      edge.UID,
		})
		if err := s.expand(dep); err != nil {
			return err
		}
	}
	return nil
}

func (s *resolution) provided(from *mod.Version, edge mod.Reference, by mod.VersionRef) {
	s.diag.Provided = append(s.diag.Provided, ProvidedDependency{From: from.Ref, To: edge.UID, By: by})
	s.emit(Event{
		Kind:    EventInfo,
		Reason:  ReasonDependencyProvided,
		Message: fmt.Sprintf("dependency %s of %s already satisfied by %s", edge.UID, from.Ref, by),
		From:    refOf(from),
		To:      edge.UID,
	})
}

func (s *resolution) unresolved(from *mod.Version, edge mod.Reference, reason string) {
	s.diag.Unresolved = append(s.diag.Unresolved, UnresolvedDependency{
		From:       from.Ref,
		To:         edge.UID,
		Constraint: edge.Constraint,
		Reason:     reason,
	})
	s.emit(Event{
		Kind:    EventWarning,
		Reason:  ReasonDependencyUnresolved,
		Message: fmt.Sprintf("didn't resolve dependency from %s to %s: %s", from.Ref, edge.UID, reason),
		From:    refOf(from),
		To:      edge.UID,
	})
}

// refOf copies v's ref so sinks never alias the catalog record.
func refOf(v *mod.Version) *mod.VersionRef {
	ref := v.Ref
	return &ref
}

// present looks for something already satisfying edge without making a new
// selection: the target itself or a provider, first among the versions picked
// so far, then in the installed snapshot.
func (s *resolution) present(edge mod.Reference) (mod.VersionRef, bool) {
	uids := make([]mod.PackageID, 0, len(s.selection))
	for uid := range s.selection {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	candidates := make([]*mod.Version, 0, len(uids))
	for _, uid := range uids {
		candidates = append(candidates, s.selection[uid])
	}
	for _, e := range s.r.snapshot().Installed() {
		if v, ok := s.r.Index.Version(e.Version); ok {
			candidates = append(candidates, v)
		}
	}

	for _, v := range candidates {
		if v.Ref.UID == edge.UID && tagSatisfies(string(v.Ref.Tag), edge.Constraint) {
			return v.Ref, true
		}
		for _, p := range v.Provides() {
			if p.UID == edge.UID && tagSatisfies(p.Constraint, edge.Constraint) {
				return v.Ref, true
			}
		}
	}
	return mod.VersionRef{}, false
}

// parseConstraint returns nil for an empty or wildcard constraint. Anything
// that is not a semver range matches the literal tag only.
func parseConstraint(raw string) *semver.Constraint {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return nil
	}
	c := semver.ParseTagConstraint(raw)
	return &c
}

// tagSatisfies reports whether a present version tag meets a declared
// constraint. A provider that declares no version satisfies anything.
func tagSatisfies(tag, constraint string) bool {
	if tag == "" {
		return true
	}
	c := parseConstraint(constraint)
	if c == nil {
		return true
	}
	return semver.SatisfiesTag(tag, *c)
}
