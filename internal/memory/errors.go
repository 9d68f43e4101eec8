package memory

import (
	"errors"
	"fmt"
)

// Allocation errors.
var (
	ErrInvalidAlignment  = errors.New("invalid alignment")
	ErrAllocationFailure = errors.New("allocation failure")
	ErrOutOfMemory       = errors.New("arena out of memory")
)

func errNegativeSize(size int) error {
	return fmt.Errorf("%w: negative size %d", ErrAllocationFailure, size)
}
