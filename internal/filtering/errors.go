package filtering

import "errors"

// ErrInvalidFilter marks a filter value that could not be interpreted. The dimension is ignored.
var ErrInvalidFilter = errors.New("invalid filter")
