package referral

import "errors"

// ErrInvalidInput reports an analysis request without an alumnus.
var ErrInvalidInput = errors.New("invalid referral input")
