package tensor

import "fmt"

// FromSlice creates a rows×cols matrix holding a copy of values in row-major order.
func FromSlice(rows, cols int, values []float32) (*Matrix, error) {
	if rows*cols != len(values) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrShapeMismatch, Shape{rows, cols}, rows*cols, len(values))
	}
	m, err := NewMatrix(rows, cols)
	if err != nil {
		return nil, err
	}
	copy(m.data, values)
	return m, nil
}

// FromRows creates a matrix from equally sized rows.
func FromRows(rows [][]float32) (*Matrix, error) {
	if len(rows) == 0 {
		return NewMatrix(0, 0)
	}
	cols := len(rows[0])
	m, err := NewMatrix(len(rows), cols)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, expected %d", ErrShapeMismatch, i, len(r), cols)
		}
		copy(m.Row(i), r)
	}
	return m, nil
}

// Full creates a rows×cols matrix filled with value.
func Full(rows, cols int, value float32) (*Matrix, error) {
	m, err := NewMatrix(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := range m.data {
		m.data[i] = value
	}
	return m, nil
}
