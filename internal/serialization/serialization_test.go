package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/tensor"
)

func rawFloat32(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func testStateDict(t *testing.T) map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"features.0.conv.weight":    rawFloat32(t, tensor.Shape{2, 1, 1, 1}, 0.5, -1.5),
		"features.0.bn.running_var": rawFloat32(t, tensor.Shape{2}, 1, 2),
		"fc.bias":                   rawFloat32(t, tensor.Shape{3}, 1, 2, 3),
	}
}

func encode(t *testing.T, stateDict map[string]*tensor.RawTensor, header Header) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, stateDict, header))
	return buf.Bytes()
}

func TestWriteRead_RoundTrip(t *testing.T) {
	sd := testStateDict(t)
	data := encode(t, sd, Header{Architecture: "ResNet18", Metadata: map[string]string{"run_id": "abc"}})

	r, err := NewReader(bytes.NewReader(data), int64(len(data)), ReaderOptions{})
	require.NoError(t, err)
	defer r.Close()

	header := r.Header()
	assert.Equal(t, FormatVersion, header.FormatVersion)
	assert.Equal(t, "ResNet18", header.Architecture)
	assert.False(t, header.CreatedAt.IsZero())
	assert.Equal(t, "abc", r.Metadata()["run_id"])
	assert.NotZero(t, r.Flags()&FlagHasMetadata)
	assert.Equal(t, []string{"fc.bias", "features.0.bn.running_var", "features.0.conv.weight"}, r.TensorNames())

	got, err := r.ReadStateDict(cpu.New())
	require.NoError(t, err)
	require.Len(t, got, len(sd))
	for name, want := range sd {
		assert.Equal(t, want.Shape(), got[name].Shape(), name)
		assert.Equal(t, want.AsFloat32(), got[name].AsFloat32(), name)
	}

	meta, err := r.TensorInfo("fc.bias")
	require.NoError(t, err)
	assert.Equal(t, int64(12), meta.Size)
	assert.Equal(t, "float32", meta.DType)
	_, err = r.TensorInfo("missing")
	assert.Error(t, err)
}

func TestWrite_DataAlignedAndDeterministic(t *testing.T) {
	sd := testStateDict(t)
	header := Header{Architecture: "MnasNet"}
	a := encode(t, sd, header)
	b := encode(t, sd, header)

	// Checksum covers only the tensor data, which is written in sorted order.
	assert.Equal(t, a[ChecksumOffset:ChecksumOffset+ChecksumSize], b[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerSize := int64(binary.LittleEndian.Uint64(a[headerSizeOffset:]))
	dataSize := int64(binary.LittleEndian.Uint64(a[dataSizeOffset:]))
	offset := alignedHeaderEnd(headerSize)
	assert.Zero(t, offset%HeaderAlignment)
	assert.Equal(t, int64(len(a)), offset+dataSize)
	assert.Equal(t, int64(4*(2+2+3)), dataSize)
}

func TestRead_CorruptedData(t *testing.T) {
	data := encode(t, testStateDict(t), Header{Architecture: "VGG19"})
	data[len(data)-1] ^= 0xFF

	_, err := NewReader(bytes.NewReader(data), int64(len(data)), ReaderOptions{})
	require.ErrorIs(t, err, ErrChecksumMismatch)

	r, err := NewReader(bytes.NewReader(data), int64(len(data)), ReaderOptions{SkipChecksumValidation: true})
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestRead_Malformed(t *testing.T) {
	good := encode(t, testStateDict(t), Header{Architecture: "VGG19"})

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrInvalidMagic},
		{"version", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:], 1); return b }, ErrUnsupportedVersion},
		{"truncated data", func(b []byte) []byte { return b[:len(b)-4] }, ErrTruncated},
		{"truncated header", func(b []byte) []byte { return b[:10] }, ErrTruncated},
		{"huge header", func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[headerSizeOffset:], MaxHeaderSize+1)
			return b
		}, ErrHeaderTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), good...))
			_, err := NewReader(bytes.NewReader(data), int64(len(data)), ReaderOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWrite_InvalidName(t *testing.T) {
	sd := map[string]*tensor.RawTensor{"../escape": rawFloat32(t, tensor.Shape{1}, 1)}
	err := Write(&bytes.Buffer{}, sd, Header{})
	assert.ErrorIs(t, err, ErrInvalidTensorName)
}

func TestValidateTensorName(t *testing.T) {
	assert.NoError(t, ValidateTensorName("layer1.0.downsample.conv.weight"))

	for _, name := range []string{"", "a/b", `a\b`, "a..b", ".a", "a.", "a\x00b"} {
		assert.ErrorIs(t, ValidateTensorName(name), ErrInvalidTensorName, "%q", name)
	}
	assert.ErrorIs(t, ValidateTensorName(strings.Repeat("a", MaxTensorNameLen+1)), ErrTensorNameTooLong)
}

func TestValidateHeader(t *testing.T) {
	meta := func(name string, offset, size int64, shape ...int) TensorMeta {
		return TensorMeta{Name: name, DType: "float32", Shape: shape, Offset: offset, Size: size}
	}

	tests := []struct {
		name    string
		tensors []TensorMeta
		want    error
	}{
		{"ok", []TensorMeta{meta("a", 0, 8, 2), meta("b", 8, 16, 2, 2)}, nil},
		{"overlap", []TensorMeta{meta("a", 0, 8, 2), meta("b", 4, 16, 2, 2)}, ErrOffsetOverlap},
		{"out of bounds", []TensorMeta{meta("a", 24, 8, 2)}, ErrOutOfBounds},
		{"negative", []TensorMeta{meta("a", -8, 8, 2)}, ErrNegativeOffset},
		{"size", []TensorMeta{meta("a", 0, 12, 2)}, ErrSizeMismatch},
		{"duplicate", []TensorMeta{meta("a", 0, 8, 2), meta("a", 8, 8, 2)}, ErrInvalidTensorName},
		{"dtype", []TensorMeta{{Name: "a", DType: "complex64", Shape: []int{1}, Size: 8}}, tensor.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(&Header{Tensors: tt.tensors}, 24, ValidationStrict)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}

	overlap := &Header{Tensors: []TensorMeta{meta("a", 0, 8, 2), meta("b", 4, 8, 2)}}
	assert.NoError(t, ValidateHeader(overlap, 24, ValidationNormal), "offsets are only checked in strict mode")
	assert.NoError(t, ValidateHeader(&Header{Tensors: []TensorMeta{meta("../x", 0, 3, 5)}}, 0, ValidationNone))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SqueezeNet.born")

	require.NoError(t, WriteFile(path, testStateDict(t), Header{Architecture: "SqueezeNet"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file must be renamed away")

	r, err := NewBornReader(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "SqueezeNet", r.Header().Architecture)

	raw, err := r.LoadTensor("features.0.conv.weight", cpu.New())
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1.5}, raw.AsFloat32())

	require.NoError(t, r.Close())
	_, err = r.LoadTensor("fc.bias", cpu.New())
	assert.Error(t, err)
}

func TestNewBornReader_Missing(t *testing.T) {
	_, err := NewBornReader(filepath.Join(t.TempDir(), "nope.born"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestChecksum(t *testing.T) {
	data := []byte("born")
	sum, err := SumData(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Checksum(sha256.Sum256(data)), sum)
	assert.NoError(t, verifyChecksum(sum, sum))

	other, err := SumData(bytes.NewReader([]byte("borm")))
	require.NoError(t, err)
	err = verifyChecksum(sum, other)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	assert.Contains(t, err.Error(), sum.String())
	assert.Contains(t, err.Error(), other.String())
	assert.Len(t, sum.String(), 8)
}
