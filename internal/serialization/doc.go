// Package serialization stores model parameters in the .born v2 container.
//
//	Format Structure:
//	  0x00 [4 bytes: Magic "BORN"]
//	  0x04 [4 bytes: Version = 2 (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: Reserved]
//	  0x10 [8 bytes: Header Size (uint64 LE)]
//	  0x18 [8 bytes: Data Size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of the data section]
//	  0x40 [Header: JSON metadata]
//	       [Padding to a 64-byte boundary]
//	       [Matrix data: float32 LE, row-major, in header order]
//
// Every entry is a float32 matrix. The reader validates names, offsets and
// shapes against the data section and verifies the checksum before any
// matrix is materialized.
//
// Example usage:
//
//	// Save
//	err := serialization.Save("model.born", model.StateDict(), serialization.Header{
//	    ModelType: "Sequential",
//	})
//
//	// Load
//	stateDict, header, err := serialization.Load("model.born")
//	err = model.LoadStateDict(stateDict)
//
// SafeTensors export is available through WriteSafeTensors for interop with
// other tooling.
package serialization
