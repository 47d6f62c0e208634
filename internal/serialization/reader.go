package serialization

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/convnets/internal/tensor"
)

// BornReader reads state dicts from .born data.
type BornReader struct {
	src        io.ReaderAt
	closer     io.Closer // nil for in-memory sources
	header     Header
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   Checksum
	index      map[string]TensorMeta
	closed     bool
}

// ReaderOptions configures the behavior of BornReader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// NewBornReader opens a .born file with strict validation and checksum verification.
func NewBornReader(path string) (*BornReader, error) {
	return NewBornReaderWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// NewBornReaderWithOptions opens a .born file with custom options.
// A missing file yields an error wrapping os.ErrNotExist.
func NewBornReaderWithOptions(path string, opts ReaderOptions) (*BornReader, error) {
	//nolint:gosec // G304: File path comes from the caller, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r, err := NewReader(file, info.Size(), opts)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = file
	return r, nil
}

// NewReader reads .born data of the given total size from src.
func NewReader(src io.ReaderAt, size int64, opts ReaderOptions) (*BornReader, error) {
	r := &BornReader{src: src}
	if err := r.parseHeader(size); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	if err := ValidateHeader(&r.header, r.dataSize, opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !opts.SkipChecksumValidation {
		computed, err := SumData(io.NewSectionReader(src, r.dataOffset, r.dataSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read tensor data for checksum: %w", err)
		}
		if err := verifyChecksum(computed, r.checksum); err != nil {
			return nil, err
		}
	}

	r.index = make(map[string]TensorMeta, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		r.index[meta.Name] = meta
	}
	return r, nil
}

// parseHeader reads the fixed header and the JSON header.
func (r *BornReader) parseHeader(size int64) error {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := r.src.ReadAt(fixedHeader, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrTruncated
		}
		return fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixedHeader[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixedHeader[4:8]); version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	r.flags = binary.LittleEndian.Uint32(fixedHeader[8:12])
	headerSize := binary.LittleEndian.Uint64(fixedHeader[headerSizeOffset : headerSizeOffset+8])
	dataSize := binary.LittleEndian.Uint64(fixedHeader[dataSizeOffset : dataSizeOffset+8])
	copy(r.checksum[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}
	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	r.dataOffset = alignedHeaderEnd(int64(headerSize))
	if dataSize > uint64(size) || r.dataOffset+int64(dataSize) > size {
		return fmt.Errorf("%w: data section of %d bytes at offset %d, file has %d", ErrTruncated, dataSize, r.dataOffset, size)
	}
	r.dataSize = int64(dataSize)

	headerBytes := make([]byte, headerSize)
	if _, err := r.src.ReadAt(headerBytes, FixedHeaderSize); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}
	return nil
}

// Header returns the file header.
func (r *BornReader) Header() Header {
	return r.header
}

// Flags returns the format flags of the fixed header.
func (r *BornReader) Flags() uint32 {
	return r.flags
}

// Metadata returns the metadata map from the header.
func (r *BornReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns the names of all tensors, in file order.
func (r *BornReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *BornReader) TensorInfo(name string) (TensorMeta, error) {
	meta, ok := r.index[name]
	if !ok {
		return TensorMeta{}, fmt.Errorf("tensor %s not found", name)
	}
	return meta, nil
}

// LoadTensor loads a single tensor onto the backend's device.
func (r *BornReader) LoadTensor(name string, backend tensor.Backend) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	if err := ValidateTensorSize(meta); err != nil {
		return nil, err
	}

	dtype, _ := tensor.ParseDataType(meta.DType)
	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, backend.Device())
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor %s: %w", name, err)
	}
	if _, err := r.src.ReadAt(raw.Data(), r.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}
	return raw, nil
}

// ReadStateDict reads all tensors into a state dictionary.
func (r *BornReader) ReadStateDict(backend tensor.Backend) (map[string]*tensor.RawTensor, error) {
	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := r.LoadTensor(meta.Name, backend)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}

// Close closes the underlying file, if any.
func (r *BornReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
