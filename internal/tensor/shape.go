package tensor

import "fmt"

// Shape holds the dimensions of a matrix as {rows, cols}.
type Shape []int

// NumElements returns the total number of elements described by the shape.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape is two-dimensional with non-negative dimensions.
func (s Shape) Validate() error {
	if len(s) != 2 {
		return fmt.Errorf("%w: expected 2 dimensions, got %d", ErrShapeMismatch, len(s))
	}
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: invalid dimension at index %d: %d (must be >= 0)", ErrShapeMismatch, i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as [rows×cols].
func (s Shape) String() string {
	if len(s) == 2 {
		return fmt.Sprintf("[%d×%d]", s[0], s[1])
	}
	return fmt.Sprint([]int(s))
}
