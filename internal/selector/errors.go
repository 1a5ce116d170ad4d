package selector

import "errors"

var (
	// ErrNoCandidates means no known version satisfies the request.
	ErrNoCandidates = errors.New("selector: no candidate version")
	// ErrDeclined means the selector (or the user behind it) refused to choose.
	ErrDeclined = errors.New("selector: declined to choose")
)
