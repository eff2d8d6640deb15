package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrNoGatherer = errors.New("metrics registry cannot be gathered")
	ErrWriteText  = errors.New("metrics text encoding failed")
)
