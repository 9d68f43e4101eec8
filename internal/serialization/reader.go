package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/logos/internal/tensor"
)

// Reader reads matrices from a .born file.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	dataOffset int64 // Offset where matrix data starts
	dataSize   int64 // Size of the data section
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// fixedHeader is the decoded 64-byte prefix of a .born file.
type fixedHeader struct {
	flags      uint32
	headerSize uint64
	dataSize   uint64
	checksum   [32]byte
}

func parseFixedHeader(buf []byte) (fixedHeader, error) {
	var fh fixedHeader

	if string(buf[0:4]) != MagicBytes {
		return fh, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, buf[0:4], MagicBytes)
	}
	if version := binary.LittleEndian.Uint32(buf[4:8]); version != FormatVersion {
		return fh, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	fh.flags = binary.LittleEndian.Uint32(buf[8:12])
	fh.headerSize = binary.LittleEndian.Uint64(buf[16:24])
	fh.dataSize = binary.LittleEndian.Uint64(buf[24:32])
	copy(fh.checksum[:], buf[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if fh.headerSize > MaxHeaderSize {
		return fh, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, fh.headerSize)
	}
	if fh.dataSize > math.MaxInt64 {
		return fh, fmt.Errorf("invalid data size: %d", fh.dataSize)
	}
	return fh, nil
}

// Open opens a .born file with strict validation and checksum verification.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// OpenWithOptions opens a .born file with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: loading a model from a user-supplied path is the point
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file, opts: opts}
	if err := r.parseHeader(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if err := ValidateHeader(&r.header, r.dataSize, opts.ValidationLevel); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return r, nil
}

func (r *Reader) parseHeader() error {
	buf := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.file, buf); err != nil {
		return fmt.Errorf("failed to read fixed header: %w", err)
	}
	fh, err := parseFixedHeader(buf)
	if err != nil {
		return err
	}
	r.flags = fh.flags

	headerBytes := make([]byte, fh.headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = dataOffset(int64(fh.headerSize))
	r.dataSize = int64(fh.dataSize)

	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if available := info.Size() - r.dataOffset; available < r.dataSize {
		return fmt.Errorf("%w: data section is %d bytes, header declares %d",
			io.ErrUnexpectedEOF, max(available, 0), r.dataSize)
	}

	if r.opts.SkipChecksumValidation {
		return nil
	}

	// Hash the data section in place instead of buffering it.
	section := io.NewSectionReader(r.file, r.dataOffset, r.dataSize)
	computed, err := ComputeChecksumReader(section)
	if err != nil {
		return fmt.Errorf("failed to read matrix data for checksum: %w", err)
	}
	return ValidateChecksum(computed, fh.checksum)
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Flags returns the flags word of the fixed header.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// MatrixNames returns the names of all matrices in file order.
func (r *Reader) MatrixNames() []string {
	names := make([]string, len(r.header.Matrices))
	for i, meta := range r.header.Matrices {
		names[i] = meta.Name
	}
	return names
}

// MatrixInfo returns the metadata of a single matrix.
func (r *Reader) MatrixInfo(name string) (*MatrixMeta, error) {
	for i := range r.header.Matrices {
		if r.header.Matrices[i].Name == name {
			meta := r.header.Matrices[i]
			return &meta, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ReadMatrix loads a single matrix from the file.
func (r *Reader) ReadMatrix(name string) (*tensor.Matrix, error) {
	if r.closed {
		return nil, ErrClosed
	}

	meta, err := r.MatrixInfo(name)
	if err != nil {
		return nil, err
	}

	data := make([]byte, meta.Size)
	if _, err := r.file.ReadAt(data, r.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read matrix %s: %w", name, err)
	}
	return decodeMatrix(*meta, data)
}

// ReadStateDict reads every matrix into a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.Matrix, error) {
	if r.closed {
		return nil, ErrClosed
	}

	stateDict := make(map[string]*tensor.Matrix, len(r.header.Matrices))
	for _, meta := range r.header.Matrices {
		m, err := r.ReadMatrix(meta.Name)
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = m
	}
	return stateDict, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Load reads the state dictionary and header stored at path.
func Load(path string) (map[string]*tensor.Matrix, Header, error) {
	r, err := Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer r.Close() //nolint:errcheck // read-only file

	stateDict, err := r.ReadStateDict()
	if err != nil {
		return nil, Header{}, err
	}
	return stateDict, r.header, nil
}

// Decode reads a complete .born stream from reader, verifying its checksum
// and validating the header strictly. It is the streaming counterpart of Load
// for buffers and network connections.
func Decode(reader io.Reader) (map[string]*tensor.Matrix, Header, error) {
	buf := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read fixed header: %w", err)
	}
	fh, err := parseFixedHeader(buf)
	if err != nil {
		return nil, Header{}, err
	}

	headerBytes := make([]byte, fh.headerSize)
	if _, err := io.ReadFull(reader, headerBytes); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	padding := dataOffset(int64(fh.headerSize)) - FixedHeaderSize - int64(fh.headerSize)
	if _, err := io.CopyN(io.Discard, reader, padding); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read padding: %w", err)
	}

	if err := ValidateHeader(&header, int64(fh.dataSize), ValidationStrict); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	var data bytes.Buffer
	if _, err := io.CopyN(&data, reader, int64(fh.dataSize)); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read matrix data: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(data.Bytes()), fh.checksum); err != nil {
		return nil, Header{}, err
	}

	stateDict := make(map[string]*tensor.Matrix, len(header.Matrices))
	for _, meta := range header.Matrices {
		m, err := decodeMatrix(meta, data.Bytes()[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, Header{}, err
		}
		stateDict[meta.Name] = m
	}
	return stateDict, header, nil
}

// decodeMatrix converts little-endian float32 bytes into a matrix of meta's shape.
func decodeMatrix(meta MatrixMeta, data []byte) (*tensor.Matrix, error) {
	if err := ValidateMatrixMeta(meta); err != nil {
		return nil, err
	}
	m, err := tensor.NewMatrix(meta.Shape[0], meta.Shape[1])
	if err != nil {
		return nil, fmt.Errorf("failed to allocate matrix %s: %w", meta.Name, err)
	}
	values := m.Data()
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return m, nil
}
