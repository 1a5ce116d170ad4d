package graph

import (
	"errors"
	"fmt"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

// ErrMissingNode matches every MissingNodeError.
var ErrMissingNode = errors.New("graph: node missing")

// MissingNodeError reports a query about a package the graph does not contain.
type MissingNodeError struct {
	UID mod.PackageID
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("graph: no node for package %q", e.UID)
}

func (e *MissingNodeError) Is(target error) bool {
	return target == ErrMissingNode
}
