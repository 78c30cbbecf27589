package similarity

import "errors"

var (
	// ErrRetrievalUnavailable is returned when the query itself cannot be vectorized.
	ErrRetrievalUnavailable = errors.New("similarity retrieval unavailable")
	// ErrEmptyQuery is returned for a blank query text.
	ErrEmptyQuery = errors.New("empty similarity query")
)
