// Package serialization reads and writes state dicts in the .born format.
//
//	Format Structure (v2):
//	  [0x00: Magic "BORN"]
//	  [0x04: Version (uint32 LE) = 2]
//	  [0x08: Flags (uint32 LE)]
//	  [0x0C: Reserved]
//	  [0x10: Header size (uint64 LE)]
//	  [0x18: Data size (uint64 LE)]
//	  [0x20: SHA-256 of the data section (32 bytes)]
//	  [0x40: Header: JSON]
//	  [Tensor data: raw little-endian bytes, 64-byte aligned]
//
// Tensors are laid out in sorted name order, so writing the same state dict
// twice produces the same data section and checksum.
//
// Example usage:
//
//	header := serialization.Header{Architecture: model.Name(), Metadata: meta}
//	if err := serialization.WriteFile("ResNet18.born", model.StateDict(), header); err != nil {
//	    log.Fatal(err)
//	}
//
//	reader, err := serialization.NewBornReader("ResNet18.born")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//	stateDict, err := reader.ReadStateDict(backend)
package serialization
