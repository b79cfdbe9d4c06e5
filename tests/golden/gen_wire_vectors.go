//go:build ignore

// Code generated for golden test vectors (video-edit wire protocol frames).
// DO NOT EDIT MANUALLY.
// Run: go run tests/golden/gen_wire_vectors.go
// Produces the following files in tests/golden/:
//   - wire_get_store.bin                (GetStore, bare tag)
//   - wire_set_store_blob.bin           (SetStore + 8-byte LE length + JSON body)
//   - wire_new_chunk_header.bin         (NewChunk tag + 16-byte clip id + 4-byte LE segment + 8-byte LE length)
//   - wire_composited_clip_length.bin   (CompositedClipLength + 16-byte clip id + 8-byte LE duration-ms)
//
// All integers are little-endian (spec.md §6.2), unlike
// original_source/shared/src/networking.rs's native-endian framing.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func write(path string, data []byte) {
	must(os.WriteFile(path, data, 0o644))
	fmt.Printf("Wrote %-40s size=%d bytes\n", filepath.Base(path), len(data))
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func main() {
	outDir := filepath.Join("tests", "golden")
	must(os.MkdirAll(outDir, 0o755))

	clipID := [16]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	}

	// GetStore: tag 0x00, no payload.
	write(filepath.Join(outDir, "wire_get_store.bin"), []byte{0x00})

	// SetStore: tag 0x01 + 8-byte length + JSON body.
	body := []byte(`{"nodes":{}}`)
	setStore := append([]byte{0x01}, le64(uint64(len(body)))...)
	setStore = append(setStore, body...)
	write(filepath.Join(outDir, "wire_set_store_blob.bin"), setStore)

	// NewChunk: tag 0x07 + 16-byte clip id + 4-byte segment number + 8-byte length.
	newChunk := append([]byte{0x07}, clipID[:]...)
	newChunk = append(newChunk, le32(3)...)
	newChunk = append(newChunk, le64(1024)...)
	write(filepath.Join(outDir, "wire_new_chunk_header.bin"), newChunk)

	// CompositedClipLength: tag 0x0B + 16-byte clip id + 8-byte duration-ms.
	ccl := append([]byte{0x0B}, clipID[:]...)
	ccl = append(ccl, le64(45000)...)
	write(filepath.Join(outDir, "wire_composited_clip_length.bin"), ccl)

	fmt.Println("Wire protocol golden vectors generated in", outDir)
}
