package nn

import "errors"

var (
	// ErrPrecededForwardRequired is returned by Backward when no Forward call
	// has populated the layer cache.
	ErrPrecededForwardRequired = errors.New("nn: backward requires a preceding forward")

	// ErrLabelOutOfRange is returned when a label is not smaller than the class count.
	ErrLabelOutOfRange = errors.New("nn: label out of range")

	// ErrLabelCountMismatch is returned when the number of labels differs from the batch rows.
	ErrLabelCountMismatch = errors.New("nn: label count does not match batch size")

	// ErrEmptyBatch is returned by TrainStep for batches with zero rows or columns.
	ErrEmptyBatch = errors.New("nn: empty batch")
)
