package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/logos/internal/tensor"
)

// SafeTensorHeader represents a matrix in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes stateDict to w in SafeTensors format so trained
// weights can be loaded by other frameworks.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [matrix data: little-endian F32]
//
// Matrices are written in alphabetical order by name.
func WriteSafeTensors(w io.Writer, stateDict map[string]*tensor.Matrix, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	var currentOffset int64
	for _, name := range names {
		m := stateDict[name]
		size := int64(m.Len()) * 4
		header[name] = SafeTensorHeader{
			DType:       "F32",
			Shape:       []int64{int64(m.Rows()), int64(m.Cols())},
			DataOffsets: [2]int64{currentOffset, currentOffset + size},
		}
		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var word [4]byte
	for _, name := range names {
		for _, v := range stateDict[name].Data() {
			binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
			if _, err := bw.Write(word[:]); err != nil {
				return fmt.Errorf("failed to write matrix %s: %w", name, err)
			}
		}
	}
	return bw.Flush()
}

// SaveSafeTensors writes stateDict to a SafeTensors file at path.
func SaveSafeTensors(path string, stateDict map[string]*tensor.Matrix, metadata map[string]string) error {
	//nolint:gosec // G304: export path comes from the user
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteSafeTensors(file, stateDict, metadata); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
