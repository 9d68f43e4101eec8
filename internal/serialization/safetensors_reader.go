package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/logos/internal/tensor"
)

// safeTensorsHeader is the parsed SafeTensors JSON header.
type safeTensorsHeader struct {
	Metadata map[string]string
	Matrices map[string]SafeTensorHeader
}

// UnmarshalJSON splits the flat SafeTensors header into metadata and entries.
func (h *safeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		delete(rawMap, "__metadata__")
	}

	h.Matrices = make(map[string]SafeTensorHeader, len(rawMap))
	for key, value := range rawMap {
		var info SafeTensorHeader
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Matrices[key] = info
	}
	return nil
}

// ReadSafeTensors reads F32 tensors of rank 1 or 2 from a SafeTensors stream.
// Rank-1 tensors become 1×n matrices, matching how biases are stored.
func ReadSafeTensors(r io.Reader) (map[string]*tensor.Matrix, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header safeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	metas := make([]MatrixMeta, 0, len(header.Matrices))
	var dataSize int64
	for name, info := range header.Matrices {
		meta, err := safeTensorMeta(name, info)
		if err != nil {
			return nil, nil, err
		}
		metas = append(metas, meta)
		dataSize = max(dataSize, info.DataOffsets[1])
	}
	if err := ValidateMatrixOffsets(metas, dataSize); err != nil {
		return nil, nil, err
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	stateDict := make(map[string]*tensor.Matrix, len(metas))
	for _, meta := range metas {
		m, err := decodeMatrix(meta, data[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, nil, err
		}
		stateDict[meta.Name] = m
	}
	return stateDict, header.Metadata, nil
}

// LoadSafeTensors reads a SafeTensors file from path.
func LoadSafeTensors(path string) (map[string]*tensor.Matrix, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	return ReadSafeTensors(file)
}

func safeTensorMeta(name string, info SafeTensorHeader) (MatrixMeta, error) {
	if info.DType != "F32" {
		return MatrixMeta{}, &ValidationError{
			Type:    "unsupported_dtype",
			Matrix:  name,
			Details: fmt.Sprintf("dtype %q, only F32 is supported", info.DType),
		}
	}

	var rows, cols int64
	switch len(info.Shape) {
	case 1:
		rows, cols = 1, info.Shape[0]
	case 2:
		rows, cols = info.Shape[0], info.Shape[1]
	default:
		return MatrixMeta{}, &ValidationError{
			Type:    "invalid_shape",
			Matrix:  name,
			Details: fmt.Sprintf("rank %d, want 1 or 2", len(info.Shape)),
		}
	}

	meta := MatrixMeta{
		Name:   name,
		DType:  DTypeFloat32,
		Shape:  []int{int(rows), int(cols)},
		Offset: info.DataOffsets[0],
		Size:   info.DataOffsets[1] - info.DataOffsets[0],
	}
	if err := ValidateMatrixName(name); err != nil {
		return MatrixMeta{}, err
	}
	return meta, ValidateMatrixMeta(meta)
}
