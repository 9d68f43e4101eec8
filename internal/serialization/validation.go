package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxMatrixCount   = 100_000           // Maximum number of matrices in a file
	MaxMatrixNameLen = 4096              // Maximum matrix name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict checks names, shapes, offsets and bounds (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and shapes only.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateMatrixMeta checks that an entry is a float32 2D matrix whose byte
// size agrees with its shape.
func ValidateMatrixMeta(m MatrixMeta) error {
	if m.DType != DTypeFloat32 {
		return &ValidationError{
			Type:    "unsupported_dtype",
			Matrix:  m.Name,
			Details: fmt.Sprintf("dtype %q, only %q is supported", m.DType, DTypeFloat32),
		}
	}
	if len(m.Shape) != 2 || m.Shape[0] < 0 || m.Shape[1] < 0 {
		return &ValidationError{
			Type:    "invalid_shape",
			Matrix:  m.Name,
			Details: fmt.Sprintf("shape %v, want [rows, cols]", m.Shape),
		}
	}
	if want := int64(m.Shape[0]) * int64(m.Shape[1]) * 4; m.Size != want {
		return &ValidationError{
			Type:    "size_mismatch",
			Matrix:  m.Name,
			Details: fmt.Sprintf("size %d bytes, shape %v needs %d", m.Size, m.Shape, want),
		}
	}
	return nil
}

// ValidateMatrixOffsets checks for overlapping regions and reads past the data section.
func ValidateMatrixOffsets(matrices []MatrixMeta, dataSize int64) error {
	if len(matrices) > MaxMatrixCount {
		return &ValidationError{
			Type:    "too_many_matrices",
			Details: fmt.Sprintf("got %d, max %d", len(matrices), MaxMatrixCount),
		}
	}

	sorted := make([]MatrixMeta, len(matrices))
	copy(sorted, matrices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, m := range sorted {
		if m.Offset < 0 || m.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Matrix:  m.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", m.Offset, m.Size),
			}
		}

		if m.Offset+m.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Matrix:  m.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", m.Offset, m.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if m.Offset+m.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Matrix:  m.Name,
					Matrix2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						m.Offset, m.Offset+m.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateMatrixName rejects empty, oversized or path-like names.
func ValidateMatrixName(name string) error {
	if name == "" {
		return &ValidationError{Type: "invalid_name", Details: "empty name"}
	}
	if len(name) > MaxMatrixNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Matrix:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxMatrixNameLen),
		}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Matrix:  name,
			Details: "contains '..'",
		}
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Matrix:  name,
			Details: "contains a path separator or null byte",
		}
	}
	return nil
}

// ValidateHeader validates every entry of h against a data section of dataSize bytes.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Matrices) > MaxMatrixCount {
		return &ValidationError{
			Type:    "too_many_matrices",
			Details: fmt.Sprintf("got %d, max %d", len(h.Matrices), MaxMatrixCount),
		}
	}

	seen := make(map[string]struct{}, len(h.Matrices))
	for _, m := range h.Matrices {
		if err := ValidateMatrixName(m.Name); err != nil {
			return err
		}
		if _, dup := seen[m.Name]; dup {
			return &ValidationError{Type: "duplicate_name", Matrix: m.Name, Details: "name appears twice"}
		}
		seen[m.Name] = struct{}{}

		if err := ValidateMatrixMeta(m); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		if err := ValidateMatrixOffsets(h.Matrices, dataSize); err != nil {
			return err
		}
	}

	return nil
}
