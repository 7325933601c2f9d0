//go:build !cgo

package diagram

import (
	"bytes"
	"compress/zlib"
)

// ReferenceCompatible reports whether Encode produces the same bytes as C
// zlib. Without cgo the stream is valid zlib that every Kroki server
// decodes, but its tokens and cache file names differ from other clients'.
const ReferenceCompatible = false

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, compressionLevel)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
