package resolver

import (
	"errors"
	"fmt"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

var (
	// ErrUnresolvableRequest matches every UnresolvableRequestError.
	ErrUnresolvableRequest = errors.New("resolver: requested package cannot be resolved")
	// ErrUnknownVersion means a selector returned a ref the index has no record for.
	ErrUnknownVersion = errors.New("resolver: selected version is not in the index")
)

// UnresolvableRequestError reports an explicitly requested package for which
// no version could be chosen. It aborts the whole Resolve call.
type UnresolvableRequestError struct {
	UID mod.PackageID
	Err error
}

func (e *UnresolvableRequestError) Error() string {
	return fmt.Sprintf("resolver: no version selected for %s: %v", e.UID, e.Err)
}

func (e *UnresolvableRequestError) Unwrap() error {
	return e.Err
}

func (e *UnresolvableRequestError) Is(target error) bool {
	return target == ErrUnresolvableRequest
}
