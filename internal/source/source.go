// Package source loads diagram source from a local file, an http(s) URL or
// standard input.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Getter fetches a remote document. transport.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, uri string) ([]byte, error)
}

// IsRemote reports whether target is an http or https URL.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Read returns the content of target. "-" or "" reads stdin.
func Read(ctx context.Context, target string, stdin io.Reader, getter Getter) (string, error) {
	switch {
	case target == "" || target == "-":
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case IsRemote(target):
		if getter == nil {
			return "", fmt.Errorf("cannot fetch %s: no http client", target)
		}
		data, err := getter.Get(ctx, target)
		if err != nil {
			return "", fmt.Errorf("fetching diagram source: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(target)
		if err != nil {
			return "", fmt.Errorf("reading diagram source: %w", err)
		}
		return string(data), nil
	}
}
