package tensor

import "errors"

// Matrix errors.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrEmptyInput    = errors.New("empty input")
	ErrOutOfBounds   = errors.New("index out of bounds")
)
