package outreach

import "errors"

var (
	// ErrGenerationUnavailable reports that no model produced a message and templates were used instead.
	ErrGenerationUnavailable = errors.New("outreach generation unavailable")
	// ErrInvalidRequest reports an outreach request that cannot be composed.
	ErrInvalidRequest = errors.New("invalid outreach request")
)
