package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/logos/internal/tensor"
)

func testStateDict(t *testing.T) map[string]*tensor.Matrix {
	t.Helper()
	w, err := tensor.FromSlice(2, 3, []float32{1, -2, 3.5, 0, 1e-7, -1e6})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	b, err := tensor.FromSlice(1, 3, []float32{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return map[string]*tensor.Matrix{"0.weight": w, "0.bias": b}
}

func assertSameMatrices(t *testing.T, want, got map[string]*tensor.Matrix) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d matrices, got %d", len(want), len(got))
	}
	for name, w := range want {
		g, ok := got[name]
		if !ok {
			t.Fatalf("matrix %q missing", name)
		}
		if !g.SameShape(w) {
			t.Fatalf("matrix %q: shape %v, want %v", name, g.Shape(), w.Shape())
		}
		for i, v := range w.Data() {
			if g.Data()[i] != v {
				t.Errorf("matrix %q element %d: got %v, want %v", name, i, g.Data()[i], v)
			}
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.born")
	stateDict := testStateDict(t)

	err := Save(path, stateDict, Header{
		ModelType: "Sequential",
		Metadata:  map[string]string{"dataset": "mnist"},
		CheckpointMeta: &CheckpointMeta{
			Epoch:        3,
			Step:         2811,
			Loss:         0.12,
			LearningRate: 0.04286875,
			Decay:        0.95,
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, header, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameMatrices(t, stateDict, loaded)

	if header.FormatVersion != FormatVersion {
		t.Errorf("format version %d, want %d", header.FormatVersion, FormatVersion)
	}
	if header.ModelType != "Sequential" {
		t.Errorf("model type %q", header.ModelType)
	}
	if header.Metadata["dataset"] != "mnist" {
		t.Errorf("metadata lost: %v", header.Metadata)
	}
	if header.CheckpointMeta == nil || header.CheckpointMeta.Epoch != 3 || header.CheckpointMeta.Step != 2811 {
		t.Errorf("checkpoint meta lost: %+v", header.CheckpointMeta)
	}
	if header.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	// Matrices are laid out in name order.
	if header.Matrices[0].Name != "0.bias" || header.Matrices[1].Name != "0.weight" {
		t.Errorf("unexpected order: %v", header.Matrices)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Save(filepath.Join(dir, "m.born"), testStateDict(t), Header{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the saved file, got %d entries", len(entries))
	}
}

func TestEncode_Layout(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testStateDict(t), Header{Metadata: map[string]string{"k": "v"}}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	raw := buf.Bytes()

	if string(raw[0:4]) != MagicBytes {
		t.Errorf("magic %q", raw[0:4])
	}
	if v := binary.LittleEndian.Uint32(raw[4:8]); v != FormatVersion {
		t.Errorf("version %d", v)
	}
	if flags := binary.LittleEndian.Uint32(raw[8:12]); flags&FlagHasMetadata == 0 || flags&FlagHasCheckpoint != 0 {
		t.Errorf("flags %b", flags)
	}

	headerSize := int64(binary.LittleEndian.Uint64(raw[16:24]))
	dataSize := int64(binary.LittleEndian.Uint64(raw[24:32]))
	if dataSize != (6+3)*4 {
		t.Errorf("data size %d, want 36", dataSize)
	}

	start := dataOffset(headerSize)
	if start%HeaderAlignment != 0 {
		t.Errorf("data offset %d not aligned", start)
	}
	if int64(len(raw)) != start+dataSize {
		t.Errorf("file length %d, want %d", len(raw), start+dataSize)
	}

	var stored [32]byte
	copy(stored[:], raw[ChecksumOffset:ChecksumOffset+ChecksumSize])
	if err := ValidateChecksum(ComputeChecksum(raw[start:]), stored); err != nil {
		t.Errorf("checksum: %v", err)
	}
}

func TestEncode_RejectsBadName(t *testing.T) {
	m, _ := tensor.NewMatrix(1, 1)
	err := Encode(&bytes.Buffer{}, map[string]*tensor.Matrix{"../escape": m}, Header{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	stateDict := testStateDict(t)
	var buf bytes.Buffer
	if err := Encode(&buf, stateDict, Header{ModelType: "Sequential"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	loaded, header, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertSameMatrices(t, stateDict, loaded)
	if header.ModelType != "Sequential" {
		t.Errorf("model type %q", header.ModelType)
	}
}

func encodeToFile(t *testing.T) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, testStateDict(t), Header{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return filepath.Join(t.TempDir(), "m.born"), buf.Bytes()
}

func TestOpen_CorruptedData(t *testing.T) {
	path, raw := encodeToFile(t)
	raw[len(raw)-1] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}

	// The corruption goes unnoticed when verification is skipped.
	r, err := OpenWithOptions(path, ReaderOptions{SkipChecksumValidation: true})
	if err != nil {
		t.Fatalf("OpenWithOptions: %v", err)
	}
	defer r.Close()

	if _, _, err := Decode(bytes.NewReader(raw)); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Decode: expected ErrChecksumMismatch, got %v", err)
	}
}

func TestOpen_InvalidMagic(t *testing.T) {
	path, raw := encodeToFile(t)
	copy(raw[0:4], "NOPE")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestOpen_UnsupportedVersion(t *testing.T) {
	path, raw := encodeToFile(t)
	binary.LittleEndian.PutUint32(raw[4:8], 1)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestOpen_HeaderTooLarge(t *testing.T) {
	path, raw := encodeToFile(t)
	binary.LittleEndian.PutUint64(raw[16:24], MaxHeaderSize+1)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrHeaderTooLarge) {
		t.Fatalf("expected ErrHeaderTooLarge, got %v", err)
	}
}

func TestOpen_Truncated(t *testing.T) {
	path, raw := encodeToFile(t)
	if err := os.WriteFile(path, raw[:len(raw)-8], 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestReader_Access(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.born")
	if err := Save(path, testStateDict(t), Header{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	names := r.MatrixNames()
	if len(names) != 2 || names[0] != "0.bias" {
		t.Errorf("names %v", names)
	}

	m, err := r.ReadMatrix("0.weight")
	if err != nil {
		t.Fatalf("ReadMatrix: %v", err)
	}
	if m.At(1, 2) != -1e6 {
		t.Errorf("At(1,2) = %v", m.At(1, 2))
	}

	if _, err := r.ReadMatrix("1.weight"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := r.ReadStateDict(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
