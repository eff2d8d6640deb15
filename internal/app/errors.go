package service

import "errors"

// ErrNotStarted is returned by Recompute before Start.
var ErrNotStarted = errors.New("service not started")
