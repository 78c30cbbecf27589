package search

import "errors"

// ErrNoStores is returned when a service is built without any store.
var ErrNoStores = errors.New("search needs a corpus store or a profile store")
