// Package selector decides which concrete version of a package to use when
// the resolver cannot infer one from context.
package selector

import (
	"context"
	"fmt"

	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/semver"
)

// Selector chooses a version of uid, optionally restricted by constraint.
//
// Choose may block (a prompt, a remote call); it must return ctx.Err() once
// ctx is done. A nil constraint means any version.
type Selector interface {
	Choose(ctx context.Context, uid mod.PackageID, constraint *semver.Constraint) (mod.VersionRef, error)
}

// Func adapts a function to Selector.
type Func func(ctx context.Context, uid mod.PackageID, constraint *semver.Constraint) (mod.VersionRef, error)

func (f Func) Choose(ctx context.Context, uid mod.PackageID, constraint *semver.Constraint) (mod.VersionRef, error) {
	return f(ctx, uid, constraint)
}

// Highest picks the highest version compatible with Compat that satisfies the constraint.
type Highest struct {
	Index  catalog.Index
	Compat string
}

func (h Highest) Choose(ctx context.Context, uid mod.PackageID, constraint *semver.Constraint) (mod.VersionRef, error) {
	if err := ctx.Err(); err != nil {
		return mod.VersionRef{}, err
	}
	// Versions are ordered highest first.
	for _, ref := range h.Index.Versions(uid, h.Compat) {
		if constraint == nil || semver.SatisfiesTag(string(ref.Tag), *constraint) {
			return ref, nil
		}
	}
	return mod.VersionRef{}, noCandidates(uid, constraint)
}

// Pinned returns the pinned tag for a package when it satisfies the
// constraint and defers to Fallback otherwise.
type Pinned struct {
	Pins     map[mod.PackageID]mod.VersionTag
	Fallback Selector
}

func (p Pinned) Choose(ctx context.Context, uid mod.PackageID, constraint *semver.Constraint) (mod.VersionRef, error) {
	if err := ctx.Err(); err != nil {
		return mod.VersionRef{}, err
	}
	if tag, ok := p.Pins[uid]; ok {
		if constraint == nil || semver.SatisfiesTag(string(tag), *constraint) {
			return mod.VersionRef{UID: uid, Tag: tag}, nil
		}
	}
	if p.Fallback == nil {
		return mod.VersionRef{}, noCandidates(uid, constraint)
	}
	return p.Fallback.Choose(ctx, uid, constraint)
}

func noCandidates(uid mod.PackageID, constraint *semver.Constraint) error {
	if constraint == nil {
		return fmt.Errorf("%w for %s", ErrNoCandidates, uid)
	}
	return fmt.Errorf("%w for %s matching %q", ErrNoCandidates, uid, constraint.String())
}
