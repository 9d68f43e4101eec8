package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/born-ml/logos/internal/tensor"
)

const logosVersion = "0.1.0" // Current writer version

// Encode writes stateDict and header to w in .born v2 format.
//
// Matrices are stored in name order. FormatVersion, LogosVersion, CreatedAt
// and Matrices in header are filled in by Encode.
func Encode(w io.Writer, stateDict map[string]*tensor.Matrix, header Header) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateMatrixName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	slices.Sort(names)

	header.FormatVersion = FormatVersion
	header.LogosVersion = logosVersion
	header.CreatedAt = time.Now().UTC()
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Lay out matrices back to back and encode them as little-endian float32.
	header.Matrices = make([]MatrixMeta, 0, len(names))
	var data []byte
	for _, name := range names {
		m := stateDict[name]
		size := int64(m.Len()) * 4

		header.Matrices = append(header.Matrices, MatrixMeta{
			Name:   name,
			DType:  DTypeFloat32,
			Shape:  []int(m.Shape()),
			Offset: int64(len(data)),
			Size:   size,
		})
		for _, v := range m.Data() {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}
	}

	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	fixedHeader := make([]byte, FixedHeaderSize)

	// 0x00-0x03: Magic bytes "BORN"
	copy(fixedHeader[0:4], MagicBytes)

	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))

	// 0x08-0x0B: Flags
	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil {
		flags |= FlagHasCheckpoint
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)

	// 0x0C-0x0F: Reserved (0)

	// 0x10-0x17: Header size
	binary.LittleEndian.PutUint64(fixedHeader[16:24], uint64(len(headerJSON)))

	// 0x18-0x1F: Data size
	binary.LittleEndian.PutUint64(fixedHeader[24:32], uint64(len(data)))

	// 0x20-0x3F: SHA-256 checksum
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixedHeader); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	padding := dataOffset(int64(len(headerJSON))) - int64(FixedHeaderSize+len(headerJSON))
	if padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write matrix data: %w", err)
	}
	return nil
}

// Save writes stateDict to path. The file is written next to path and renamed
// into place, so an interrupted save never leaves a truncated checkpoint.
func Save(path string, stateDict map[string]*tensor.Matrix, header Header) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := Encode(tmp, stateDict, header); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
