package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/krokidoc/internal/diagram"
	"github.com/dshills/krokidoc/internal/logging"
	"github.com/dshills/krokidoc/internal/store"
	"github.com/hashicorp/go-hclog"
)

// Fetcher renders a diagram remotely.
type Fetcher interface {
	Fetch(ctx context.Context, d diagram.Diagram) (diagram.Payload, error)
	ServerURL() string
}

// WriteError reports that an artifact could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsWriteError checks if an error is a cache write failure.
func IsWriteError(err error) bool {
	var e *WriteError
	return errors.As(err, &e)
}

// Writer saves rendered diagrams to disk. It is safe for concurrent use.
type Writer struct {
	fetcher Fetcher
	shared  store.Store
	log     hclog.Logger
}

// NewWriter creates a Writer. shared may be nil.
func NewWriter(fetcher Fetcher, shared store.Store, log hclog.Logger) *Writer {
	if log == nil {
		log = logging.Discard()
	}
	return &Writer{fetcher: fetcher, shared: shared, log: log}
}

// Save makes sure the artifact for d exists in the directory chosen by hints
// and returns its entry. An existing file is trusted as is.
func (w *Writer) Save(ctx context.Context, d diagram.Diagram, hints DirHints) (Entry, error) {
	name, err := FileName(w.fetcher.ServerURL(), d)
	if err != nil {
		return Entry{}, err
	}
	dir := hints.Resolve()
	entry := Entry{FileName: name, Path: filepath.Join(dir, name)}

	if info, err := os.Stat(entry.Path); err == nil && !info.IsDir() {
		w.log.Debug("cache hit", "file", name)
		entry.Hit = true
		return entry, nil
	}

	data, fromShared := w.lookupShared(ctx, name)
	if !fromShared {
		payload, err := w.fetcher.Fetch(ctx, d)
		if err != nil {
			return Entry{}, err
		}
		data = payload.Data
	}

	if err := writeAtomic(dir, entry.Path, data); err != nil {
		return Entry{}, err
	}
	w.log.Debug("cached diagram", "file", name, "bytes", len(data), "shared", fromShared)

	if !fromShared && w.shared != nil {
		if err := w.shared.Put(ctx, name, data); err != nil {
			w.log.Warn("could not publish artifact to shared store", "file", name, "error", err)
		}
	}
	return entry, nil
}

func (w *Writer) lookupShared(ctx context.Context, name string) ([]byte, bool) {
	if w.shared == nil {
		return nil, false
	}
	data, ok, err := w.shared.Get(ctx, name)
	if err != nil {
		w.log.Warn("shared store lookup failed, fetching from server", "file", name, "error", err)
		return nil, false
	}
	return data, ok
}

// writeAtomic writes data to path through a temp file in the same directory.
// Concurrent writers of the same artifact produce identical bytes, so the
// last rename wins.
func writeAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, tempPrefix+"*"+tempSuffix)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
