package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 2    // v2: fixed header with SHA-256 checksum
	HeaderAlignment = 64   // Matrix data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// DTypeFloat32 is the only element type stored in the container.
const DTypeFloat32 = "float32"

// Flags for the .born format.
const (
	FlagHasMetadata   uint32 = 1 << 2 // bit 2: custom metadata included
	FlagHasCheckpoint uint32 = 1 << 3 // bit 3: training state included
)

// Header is the JSON header of a .born file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	LogosVersion   string            `json:"logos_version"`        // Version of the writer
	ModelType      string            `json:"model_type"`           // e.g. "Sequential"
	CreatedAt      time.Time         `json:"created_at"`           // Set by the writer
	Matrices       []MatrixMeta      `json:"matrices"`             // Filled in by the writer
	Metadata       map[string]string `json:"metadata"`             // Custom metadata
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"` // Training state (optional)
}

// CheckpointMeta records where in training a checkpoint was taken.
type CheckpointMeta struct {
	Epoch        int            `json:"epoch"`         // Completed epochs
	Step         int64          `json:"step"`          // Completed training steps
	Loss         float64        `json:"loss"`          // Mean loss of the last epoch
	LearningRate float64        `json:"learning_rate"` // Rate for the next epoch
	Decay        float64        `json:"decay"`         // Per-epoch rate multiplier
	TrainingMeta map[string]any `json:"training_meta,omitempty"`
}

// MatrixMeta describes one matrix in the data section.
type MatrixMeta struct {
	Name   string `json:"name"`   // State dict key (e.g. "0.weight")
	DType  string `json:"dtype"`  // Always "float32"
	Shape  []int  `json:"shape"`  // [rows, cols]
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// dataOffset returns where the data section starts for a JSON header of headerSize bytes.
func dataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	padding := (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
	return pos + padding
}
