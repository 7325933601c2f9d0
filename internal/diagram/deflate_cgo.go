//go:build cgo

package diagram

import (
	"io"

	czlib "github.com/4kills/go-zlib"
)

// ReferenceCompatible reports whether Encode produces the same bytes as C
// zlib, and so the same URIs and cache file names as other Kroki clients.
const ReferenceCompatible = true

// emptyStream is C zlib's level 9 output for empty input.
var emptyStream = []byte{0x78, 0xda, 0x03, 0x00, 0x00, 0x00, 0x00, 0x01}

func deflate(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return append([]byte(nil), emptyStream...), nil
	}
	w, err := czlib.NewWriterLevel(io.Discard, compressionLevel)
	if err != nil {
		return nil, err
	}
	defer w.Close()
	return w.WriteBuffer(data, nil)
}
