package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/krokidoc/internal/diagram"
)

// Prefix starts every artifact file name.
const Prefix = "diag-"

// Temp files written by writeAtomic before they are renamed into place.
const (
	tempPrefix = "." + Prefix
	tempSuffix = ".tmp"
)

// Entry is a cached artifact.
type Entry struct {
	FileName string `json:"fileName"`
	Path     string `json:"path"`
	// Hit is set when the file already existed and nothing was fetched.
	Hit bool `json:"hit"`
}

// DirHints are the candidate locations for generated images, most specific first.
type DirHints struct {
	ImagesOutDir string
	OutDir       string
	ToDir        string
	BaseDir      string
	ImagesDir    string
}

// Resolve picks the directory artifacts are written to.
func (h DirHints) Resolve() string {
	switch {
	case h.ImagesOutDir != "":
		return h.ImagesOutDir
	case h.OutDir != "":
		return filepath.Join(h.OutDir, h.ImagesDir)
	case h.ToDir != "":
		return filepath.Join(h.ToDir, h.ImagesDir)
	default:
		base := h.BaseDir
		if base == "" {
			base = "."
		}
		return filepath.Join(base, h.ImagesDir)
	}
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// FileName returns the artifact name for d rendered by serverURL.
func FileName(serverURL string, d diagram.Diagram) (string, error) {
	uri, err := d.URI(serverURL)
	if err != nil {
		return "", err
	}
	return Prefix + HashKey(uri) + "." + d.Format, nil
}

// Stats describes the artifacts in a directory.
type Stats struct {
	Dir        string         `json:"dir"`
	Entries    int            `json:"entries"`
	TotalBytes int64          `json:"totalBytes"`
	ByFormat   map[string]int `json:"byFormat"`
}

// GetStats returns information about the artifacts in dir.
func GetStats(dir string) (Stats, error) {
	stats := Stats{Dir: dir, ByFormat: map[string]int{}}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if !isArtifact(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		stats.ByFormat[strings.TrimPrefix(filepath.Ext(e.Name()), ".")]++
	}
	return stats, nil
}

// Clear removes all artifacts from dir, along with temp files left behind by
// interrupted writes, and returns how many were removed. Other files are
// left alone.
func Clear(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if !isArtifact(e) && !isStaleTemp(e) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func isStaleTemp(e os.DirEntry) bool {
	return !e.IsDir() && strings.HasPrefix(e.Name(), tempPrefix) && strings.HasSuffix(e.Name(), tempSuffix)
}

func isArtifact(e os.DirEntry) bool {
	return !e.IsDir() && strings.HasPrefix(e.Name(), Prefix) && filepath.Ext(e.Name()) != ""
}
