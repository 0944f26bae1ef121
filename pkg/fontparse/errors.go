package fontparse

import "errors"

// Parse errors. All are file-level: a failed parse excludes one file from
// grouping but never blocks other files in a batch.
var (
	ErrTooShort            = errors.New("font data too short")
	ErrUnknownFormat       = errors.New("unrecognized font format")
	ErrCorruptFont         = errors.New("corrupt font data")
	ErrCompressedContainer = errors.New("compressed webfont container not supported")
)
