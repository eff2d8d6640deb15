package fixture

import "errors"

// Sentinel kinds for snapshot file errors.
var (
	ErrReadFile        = errors.New("read snapshot file")
	ErrWriteFile       = errors.New("write snapshot file")
	ErrInvalidDocument = errors.New("invalid snapshot document")
	ErrInvalidGenerate = errors.New("invalid generator settings")
)
