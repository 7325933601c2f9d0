package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubGetter struct {
	uri  string
	data string
	err  error
}

func (s *stubGetter) Get(ctx context.Context, uri string) ([]byte, error) {
	s.uri = uri
	return []byte(s.data), s.err
}

func TestRead_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.puml")
	if err := os.WriteFile(path, []byte("@startuml\na->b\n@enduml"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Read(context.Background(), path, nil, nil)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != "@startuml\na->b\n@enduml" {
		t.Errorf("Read = %q", got)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(context.Background(), filepath.Join(t.TempDir(), "nope.puml"), nil, nil); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestRead_Stdin(t *testing.T) {
	for _, target := range []string{"", "-"} {
		got, err := Read(context.Background(), target, strings.NewReader("graph {}"), nil)
		if err != nil {
			t.Fatalf("Read(%q) error: %v", target, err)
		}
		if got != "graph {}" {
			t.Errorf("Read(%q) = %q", target, got)
		}
	}
}

func TestRead_Remote(t *testing.T) {
	g := &stubGetter{data: "digraph { a -> b }"}
	got, err := Read(context.Background(), "https://example.com/d.dot", nil, g)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != "digraph { a -> b }" || g.uri != "https://example.com/d.dot" {
		t.Errorf("Read = %q from %q", got, g.uri)
	}

	g = &stubGetter{err: errors.New("status 404")}
	if _, err := Read(context.Background(), "http://example.com/missing", nil, g); err == nil {
		t.Fatal("Expected error from getter")
	}

	if _, err := Read(context.Background(), "http://example.com/x", nil, nil); err == nil {
		t.Fatal("Expected error without getter")
	}
}

func TestIsRemote(t *testing.T) {
	if !IsRemote("http://x") || !IsRemote("https://x") {
		t.Error("Expected http(s) URLs to be remote")
	}
	if IsRemote("diagrams/a.puml") || IsRemote("ftp://x") {
		t.Error("Expected local paths to be local")
	}
}
