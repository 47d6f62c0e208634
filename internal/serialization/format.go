package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes       = "BORN"
	FormatVersion    = 2    // v2: fixed header with SHA-256 checksum
	HeaderAlignment  = 64   // Tensor data starts on a 64-byte boundary
	FixedHeaderSize  = 64   // 0x40
	ChecksumSize     = 32   // SHA-256
	ChecksumOffset   = 0x20 // Checksum offset in the fixed header
	headerSizeOffset = 0x10
	dataSizeOffset   = 0x18
)

// Flags for the .born format.
const (
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
)

// Header represents the JSON header in a .born file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .born format
	Architecture  string            `json:"architecture"`   // Canonical architecture name, e.g. "ResNet18"
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata, sorted by name
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// TensorMeta describes a tensor in the .born file.
type TensorMeta struct {
	Name   string `json:"name"`   // State dict key (e.g., "layer1.0.conv1.weight")
	DType  string `json:"dtype"`  // Data type (e.g., "float32")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// alignedHeaderEnd returns the offset of the data section for a JSON header of size n.
func alignedHeaderEnd(n int64) int64 {
	end := int64(FixedHeaderSize) + n
	return end + (HeaderAlignment-end%HeaderAlignment)%HeaderAlignment
}
