package diagram

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"errors"
)

// EncodeError reports that diagram source could not be compressed.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "encoding diagram: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsEncodeError checks if an error is an encoding failure.
func IsEncodeError(err error) bool {
	var e *EncodeError
	return errors.As(err, &e)
}

// compressionLevel is zlib's best compression, the level the Ruby and
// JavaScript Kroki clients use.
const compressionLevel = 9

// Encode deflates text at best compression and returns the URL-safe base64
// form of the compressed bytes. Padding is kept. With cgo the stream is
// produced by C zlib and matches other Kroki clients byte for byte.
func Encode(text string) (string, error) {
	raw, err := deflate([]byte(text))
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. Any valid zlib stream is accepted.
func Decode(token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	defer zr.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		return "", &EncodeError{Err: err}
	}
	return out.String(), nil
}
