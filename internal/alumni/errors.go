package alumni

import "errors"

var (
	// ErrMalformedCandidate marks a candidate record that cannot take part in scoring.
	ErrMalformedCandidate = errors.New("malformed candidate")
	// ErrInvalidCorpus is returned when a corpus file does not hold a list of alumni records.
	ErrInvalidCorpus = errors.New("invalid corpus file")
)
