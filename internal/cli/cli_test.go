package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dshills/krokidoc/internal/config"
	"github.com/dshills/krokidoc/internal/diagram"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagServerURL = ""
	flagHTTPMethod = ""
	flagMaxURILength = 0
	flagFetch = false
	flagImagesDir = ""
	flagImagesOutDir = ""
	flagOutDir = ""
	flagVerbose = false
	flagOut = ""
	flagOutput = ""
	flagDiagramFormat = ""
	flagDiagramOut = ""
	flagURLOnly = false
	flagCacheDir = ""
	exitCode = ExitSuccess
}

// isolate points config lookups at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, k := range []string{"KROKIDOC_SERVER_URL", "KROKIDOC_HTTP_METHOD", "KROKIDOC_MAX_URI_LENGTH", "KROKIDOC_FETCH", "KROKIDOC_TIMEOUT", "KROKIDOC_REDIS_ADDR"} {
		t.Setenv(k, "")
	}
	return tmpDir
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()
	defer func() { os.Stdout = orig }()
	fn()
	w.Close()
	return <-done
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newKroki starts a fake server that renders graphviz and rejects everything else.
func newKroki(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.HasPrefix(r.URL.Path, "/graphviz/") {
			w.Header().Set("Content-Type", "image/svg+xml")
			io.WriteString(w, `<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Syntax Error? (line: 1)")
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagServerURL = "http://localhost:8000"
	flagHTTPMethod = "post"
	flagMaxURILength = 10
	flagFetch = true
	flagImagesDir = "img"
	flagImagesOutDir = "/tmp/img"
	flagOutput = "json"

	m := buildOverrides()
	want := map[string]string{
		"serverUrl":     "http://localhost:8000",
		"httpMethod":    "post",
		"maxUriLength":  "10",
		"fetch":         "true",
		"images.dir":    "img",
		"images.outDir": "/tmp/img",
		"format":        "json",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("overrides[%q] = %q, want %q", k, m[k], v)
		}
	}
	if len(m) != len(want) {
		t.Errorf("len(overrides) = %d, want %d", len(m), len(want))
	}

	// Every override key must be accepted by the config layer.
	cfg := config.Default()
	for k, v := range m {
		if err := config.SetField(&cfg, k, v); err != nil {
			t.Errorf("SetField(%q) error: %v", k, err)
		}
	}
}

func TestBuildOverrides_ZeroValuesExcluded(t *testing.T) {
	resetFlags()
	flagMaxURILength = 0
	flagFetch = false
	if m := buildOverrides(); len(m) != 0 {
		t.Errorf("zero-valued flags produced overrides %v", m)
	}
}

// --- session tests ---

func TestNewSession_StoreDisabled(t *testing.T) {
	isolate(t)
	s, err := newSession(".", nil)
	if err != nil {
		t.Fatalf("newSession error: %v", err)
	}
	defer s.Close()
	if s.shared != nil {
		t.Error("shared store should be nil when disabled")
	}
	if s.transport.ServerURL() != "https://kroki.io" {
		t.Errorf("ServerURL = %q", s.transport.ServerURL())
	}
}

func TestNewSession_DirsHook(t *testing.T) {
	isolate(t)
	flagOutDir = "site"
	s, err := newSession("docs", nil)
	if err != nil {
		t.Fatalf("newSession error: %v", err)
	}
	defer s.Close()
	if got := s.engine.Options().Dirs.Resolve(); got != filepath.Join("site", "images") {
		t.Errorf("images dir = %q, want site/images", got)
	}
}

// --- command tests ---

func TestVersionCmd_Execute(t *testing.T) {
	out := captureStdout(t, func() {
		if err := versionCmd.Execute(); err != nil {
			t.Errorf("version command returned error: %v", err)
		}
	})
	if !strings.Contains(out, "krokidoc version "+version) {
		t.Errorf("version output = %q", out)
	}
}

func TestEncodeCmd(t *testing.T) {
	tmpDir := isolate(t)
	src := filepath.Join(tmpDir, "seq.puml")
	writeFile(t, src, "Alice -> Bob: hello")

	encodeCmd.SetArgs([]string{src})
	out := captureStdout(t, func() {
		if err := encodeCmd.Execute(); err != nil {
			t.Fatalf("encode returned error: %v", err)
		}
	})

	want, _ := diagram.Encode("Alice -> Bob: hello")
	if strings.TrimSpace(out) != want {
		t.Errorf("encode = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestEncodeCmd_MissingFile(t *testing.T) {
	isolate(t)
	encodeCmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.puml")})
	if err := encodeCmd.Execute(); err != nil {
		t.Fatalf("encode returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

func TestDiagramCmd_URLOnly(t *testing.T) {
	tmpDir := isolate(t)
	src := filepath.Join(tmpDir, "g.dot")
	writeFile(t, src, "digraph { a -> b }")

	diagramCmd.SetArgs([]string{"graphviz", src, "--url"})
	out := captureStdout(t, func() {
		if err := diagramCmd.Execute(); err != nil {
			t.Fatalf("diagram returned error: %v", err)
		}
	})

	token, _ := diagram.Encode("digraph { a -> b }")
	want := "https://kroki.io/graphviz/svg/" + token
	if strings.TrimSpace(out) != want {
		t.Errorf("diagram --url = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestDiagramCmd_OutWritesFile(t *testing.T) {
	tmpDir := isolate(t)
	srv, calls := newKroki(t)
	src := filepath.Join(tmpDir, "g.dot")
	writeFile(t, src, "digraph { a -> b }")
	outPath := filepath.Join(tmpDir, "g.svg")

	diagramCmd.SetArgs([]string{"graphviz", src, "--server-url", srv.URL, "--out", outPath})
	if err := diagramCmd.Execute(); err != nil {
		t.Fatalf("diagram returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d, want 0", exitCode)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("output = %q", data)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestDiagramCmd_ServerRejects(t *testing.T) {
	tmpDir := isolate(t)
	srv, _ := newKroki(t)
	src := filepath.Join(tmpDir, "seq.puml")
	writeFile(t, src, "Alice ->")

	diagramCmd.SetArgs([]string{"plantuml", src, "--server-url", srv.URL, "--fetch"})
	if err := diagramCmd.Execute(); err != nil {
		t.Fatalf("diagram returned error: %v", err)
	}
	if exitCode != ExitDiagramFailed {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitDiagramFailed)
	}
}

func TestRenderCmd_FetchMode(t *testing.T) {
	tmpDir := isolate(t)
	srv, calls := newKroki(t)
	doc := filepath.Join(tmpDir, "doc.md")
	writeFile(t, doc, "# Design\n\n```graphviz\ndigraph { a -> b }\n```\n")
	outPath := filepath.Join(tmpDir, "site", "doc.html")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		t.Fatal(err)
	}

	renderCmd.SetArgs([]string{doc, "--server-url", srv.URL, "--fetch", "--out", outPath})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d, want 0", exitCode)
	}

	images, _ := filepath.Glob(filepath.Join(tmpDir, "site", "images", "diag-*.svg"))
	if len(images) != 1 {
		t.Fatalf("cached images = %v, want 1", images)
	}
	html, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	want := `src="images/` + filepath.Base(images[0]) + `"`
	if !strings.Contains(string(html), want) {
		t.Errorf("HTML missing %s:\n%s", want, html)
	}
	if !strings.Contains(string(html), "<title>Design</title>") {
		t.Error("HTML page should carry the document title")
	}

	// A second run finds the cached file and stays offline.
	resetFlags()
	renderCmd.SetArgs([]string{doc, "--server-url", srv.URL, "--fetch", "--out", outPath})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("second render returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestRenderCmd_DiagramFailureSetsExitCode(t *testing.T) {
	tmpDir := isolate(t)
	srv, _ := newKroki(t)
	doc := filepath.Join(tmpDir, "doc.md")
	writeFile(t, doc, "```graphviz\ndigraph { a }\n```\n\n```plantuml\nAlice ->\n```\n")
	outPath := filepath.Join(tmpDir, "report.json")

	renderCmd.SetArgs([]string{doc, "--server-url", srv.URL, "--fetch", "--output", "json", "--out", outPath})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	if exitCode != ExitDiagramFailed {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitDiagramFailed)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var report struct {
		Total  int `json:"total"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.Total != 2 || report.Failed != 1 {
		t.Errorf("total/failed = %d/%d, want 2/1", report.Total, report.Failed)
	}
}

func TestRenderCmd_MissingDocument(t *testing.T) {
	isolate(t)
	renderCmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.md")})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

func TestDoctorCmd(t *testing.T) {
	isolate(t)
	srv, _ := newKroki(t)

	doctorCmd.SetArgs([]string{"--server-url", srv.URL})
	out := captureStdout(t, func() {
		if err := doctorCmd.Execute(); err != nil {
			t.Fatalf("doctor returned error: %v", err)
		}
	})
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want 0", exitCode)
	}
	if !strings.Contains(out, "OK: "+srv.URL) {
		t.Errorf("doctor output = %q", out)
	}
}

func TestDoctorCmd_ServerDown(t *testing.T) {
	isolate(t)
	srv, _ := newKroki(t)
	srv.Close()

	doctorCmd.SetArgs([]string{"--server-url", srv.URL})
	if err := doctorCmd.Execute(); err != nil {
		t.Fatalf("doctor returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

// --- config command tests ---

func TestConfigInit_CreatesFile(t *testing.T) {
	tmpDir := isolate(t)

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "krokidoc", "config.json"))
	if err != nil {
		t.Fatalf("config init did not create config.json: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if cfg.ServerURL != "https://kroki.io" {
		t.Errorf("serverUrl = %q", cfg.ServerURL)
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "krokidoc", "config.json")
	writeFile(t, path, `{"serverUrl":"http://kroki.internal"}`)

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "kroki.internal") {
		t.Errorf("config init overwrote existing file: %s", data)
	}
}

func TestConfigSet_UpdatesFile(t *testing.T) {
	tmpDir := isolate(t)

	configCmd.SetArgs([]string{"set", "httpMethod", "post"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "krokidoc", "config.json"))
	if err != nil {
		t.Fatalf("cannot read config file: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if cfg.HTTPMethod != "post" {
		t.Errorf("httpMethod = %q, want post", cfg.HTTPMethod)
	}
}

func TestConfigSet_InvalidKey(t *testing.T) {
	isolate(t)
	configCmd.SetArgs([]string{"set", "unknownKey", "value"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config set with invalid key should return error")
	}
}

func TestConfigSet_MissingArgs(t *testing.T) {
	isolate(t)
	configCmd.SetArgs([]string{"set", "serverUrl"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config set with 1 arg should return error (requires 2)")
	}
}

func TestConfigSet_UnknownMethodFallsBack(t *testing.T) {
	tmpDir := isolate(t)
	var stderr bytes.Buffer
	configCmd.SetErr(&stderr)
	t.Cleanup(func() { configCmd.SetErr(nil) })

	configCmd.SetArgs([]string{"set", "httpMethod", "bogus"})
	out := captureStdout(t, func() {
		if err := configCmd.Execute(); err != nil {
			t.Errorf("config set returned error: %v", err)
		}
	})
	if !strings.Contains(out, "Set httpMethod = adaptive") {
		t.Errorf("config set output = %q", out)
	}
	if !strings.Contains(stderr.String(), "proceeding with adaptive") || !strings.Contains(stderr.String(), "bogus") {
		t.Errorf("expected fallback warning, got %q", stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "krokidoc", "config.json"))
	if err != nil {
		t.Fatalf("cannot read config file: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if cfg.HTTPMethod != "adaptive" {
		t.Errorf("httpMethod = %q, want adaptive", cfg.HTTPMethod)
	}
}

func TestConfigSet_MethodNormalized(t *testing.T) {
	isolate(t)
	configCmd.SetArgs([]string{"set", "httpMethod", " GET "})
	out := captureStdout(t, func() {
		if err := configCmd.Execute(); err != nil {
			t.Errorf("config set returned error: %v", err)
		}
	})
	if !strings.Contains(out, "Set httpMethod = get") {
		t.Errorf("config set output = %q", out)
	}
}

func TestConfigSet_NonPositiveMaxURILength(t *testing.T) {
	for _, v := range []string{"0", "-1"} {
		tmpDir := isolate(t)
		configCmd.SetArgs([]string{"set", "maxUriLength", v})
		if err := configCmd.Execute(); err == nil {
			t.Errorf("config set maxUriLength %s should return error", v)
		}
		if _, err := os.Stat(filepath.Join(tmpDir, "krokidoc", "config.json")); !os.IsNotExist(err) {
			t.Errorf("config file written for maxUriLength %s", v)
		}
	}
}

func TestConfigShow_EffectiveTransport(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "krokidoc", "config.json")
	writeFile(t, path, `{"httpMethod":"post","maxUriLength":2000,"retries":2}`)

	configCmd.SetArgs([]string{"show"})
	out := captureStdout(t, func() {
		if err := configCmd.Execute(); err != nil {
			t.Errorf("config show returned error: %v", err)
		}
	})
	for _, want := range []string{
		"Config file: " + path + "\n",
		"server:       https://kroki.io",
		"method:       post",
		"maxUriLength: 2000",
		"retries:      2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_Execute(t *testing.T) {
	isolate(t)
	configCmd.SetArgs([]string{"show"})
	out := captureStdout(t, func() {
		if err := configCmd.Execute(); err != nil {
			t.Errorf("config show returned error: %v", err)
		}
	})
	if !strings.Contains(out, `"maxUriLength": 4096`) {
		t.Errorf("config show output = %s", out)
	}
	if !strings.Contains(out, "(not found, using defaults)") || !strings.Contains(out, "method:       adaptive") {
		t.Errorf("config show output = %s", out)
	}
}

// --- cache command tests ---

func TestCacheShow_Execute(t *testing.T) {
	tmpDir := isolate(t)
	writeFile(t, filepath.Join(tmpDir, "img", "diag-abc.svg"), "<svg/>")

	cacheCmd.SetArgs([]string{"show", "--dir", filepath.Join(tmpDir, "img")})
	out := captureStdout(t, func() {
		if err := cacheCmd.Execute(); err != nil {
			t.Errorf("cache show returned error: %v", err)
		}
	})
	if !strings.Contains(out, `"entries": 1`) {
		t.Errorf("cache show output = %s", out)
	}
}

func TestCacheClear_Execute(t *testing.T) {
	tmpDir := isolate(t)
	dir := filepath.Join(tmpDir, "img")
	writeFile(t, filepath.Join(dir, "diag-abc.svg"), "<svg/>")
	writeFile(t, filepath.Join(dir, "logo.png"), "png")

	cacheCmd.SetArgs([]string{"clear", "--dir", dir})
	if err := cacheCmd.Execute(); err != nil {
		t.Errorf("cache clear returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "diag-abc.svg")); !os.IsNotExist(err) {
		t.Error("cache clear did not remove diag-abc.svg")
	}
	if _, err := os.Stat(filepath.Join(dir, "logo.png")); err != nil {
		t.Error("cache clear removed a file it does not own")
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitDiagramFailed", ExitDiagramFailed, 1},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitRuntimeError", ExitRuntimeError, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestVersionConstant(t *testing.T) {
	if version == "" {
		t.Error("version constant is empty")
	}
}
