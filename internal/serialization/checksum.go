package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Checksum is the SHA-256 digest stored after the header. It covers the data
// section only.
type Checksum [ChecksumSize]byte

// String returns the first eight hex digits, enough to tell two sums apart in
// an error message.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:4])
}

// SumData hashes a data section as it streams from r.
func SumData(r io.Reader) (Checksum, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Checksum{}, err
	}
	var sum Checksum
	h.Sum(sum[:0])
	return sum, nil
}

func verifyChecksum(got, want Checksum) error {
	if got == want {
		return nil
	}
	return &ValidationError{
		Err:    ErrChecksumMismatch,
		Detail: fmt.Sprintf("data hashes to %s, header records %s", got, want),
	}
}
