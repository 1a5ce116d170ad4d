package catalog

import "errors"

var (
	ErrMissingUID     = errors.New("uid is required")
	ErrMissingVersion = errors.New("version or name is required")
)
