package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/krokidoc/internal/cache"
	"github.com/dshills/krokidoc/internal/redact"
	"github.com/dshills/krokidoc/internal/render"
	"github.com/dshills/krokidoc/internal/store"
	"github.com/dshills/krokidoc/internal/transport"
	"github.com/hashicorp/go-hclog"
)

// Config represents the krokidoc configuration.
type Config struct {
	ServerURL       string       `json:"serverUrl"`
	HTTPMethod      string       `json:"httpMethod"`
	MaxURILength    int          `json:"maxUriLength"`
	TimeoutSeconds  int          `json:"timeoutSeconds"`
	Retries         int          `json:"retries"`
	Fetch           bool         `json:"fetch"`
	Format          string       `json:"format"`
	PreferPNG       bool         `json:"preferPng"`
	PlantUMLInclude string       `json:"plantumlInclude,omitempty"`
	Concurrency     int          `json:"concurrency"`
	Images          ImagesConfig `json:"images"`
	Store           StoreConfig  `json:"store"`
}

// ImagesConfig controls where fetched diagrams are written.
type ImagesConfig struct {
	// Dir is the images path relative to the output directory.
	Dir string `json:"dir,omitempty"`
	// OutDir overrides the resolved directory entirely.
	OutDir string `json:"outDir,omitempty"`
}

// StoreConfig controls the shared Redis artifact store.
type StoreConfig struct {
	Enabled    bool   `json:"enabled"`
	Addr       string `json:"addr,omitempty"`
	Password   string `json:"password,omitempty"`
	DB         int    `json:"db"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		ServerURL:      transport.DefaultServerURL,
		HTTPMethod:     "adaptive",
		MaxURILength:   transport.DefaultMaxURILength,
		TimeoutSeconds: int(transport.DefaultTimeout / time.Second),
		Format:         "html",
		Concurrency:    4,
		Images: ImagesConfig{
			Dir: "images",
		},
		Store: StoreConfig{
			Addr:       "localhost:6379",
			TTLSeconds: 86400,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for krokidoc.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "krokidoc"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "krokidoc"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "krokidoc"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "krokidoc"), nil
	default:
		return filepath.Join(home, ".config", "krokidoc"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.ServerURL != "" {
		dst.ServerURL = src.ServerURL
	}
	if src.HTTPMethod != "" {
		dst.HTTPMethod = src.HTTPMethod
	}
	if src.MaxURILength > 0 {
		dst.MaxURILength = src.MaxURILength
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.Retries > 0 {
		dst.Retries = src.Retries
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.PlantUMLInclude != "" {
		dst.PlantUMLInclude = src.PlantUMLInclude
	}
	if src.Concurrency > 0 {
		dst.Concurrency = src.Concurrency
	}
	if src.Images.Dir != "" {
		dst.Images.Dir = src.Images.Dir
	}
	if src.Images.OutDir != "" {
		dst.Images.OutDir = src.Images.OutDir
	}
	if src.Store.Addr != "" {
		dst.Store.Addr = src.Store.Addr
	}
	if src.Store.Password != "" {
		dst.Store.Password = src.Store.Password
	}
	if src.Store.DB > 0 {
		dst.Store.DB = src.Store.DB
	}
	if src.Store.TTLSeconds > 0 {
		dst.Store.TTLSeconds = src.Store.TTLSeconds
	}
	// JSON cannot tell an unset bool from false, so a file can only turn
	// these on.
	dst.Fetch = src.Fetch || dst.Fetch
	dst.PreferPNG = src.PreferPNG || dst.PreferPNG
	dst.Store.Enabled = src.Store.Enabled || dst.Store.Enabled
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("KROKIDOC_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("KROKIDOC_HTTP_METHOD"); v != "" {
		cfg.HTTPMethod = v
	}
	if v := os.Getenv("KROKIDOC_MAX_URI_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxURILength = n
		}
	}
	if v := os.Getenv("KROKIDOC_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("KROKIDOC_FETCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Fetch = b
		}
	}
	if v := os.Getenv("KROKIDOC_REDIS_ADDR"); v != "" {
		cfg.Store.Addr = v
		cfg.Store.Enabled = true
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "serverUrl":
		cfg.ServerURL = value
	case "httpMethod":
		cfg.HTTPMethod = value
	case "maxUriLength":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxUriLength must be an integer: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("maxUriLength must be greater than zero, got %d", n)
		}
		cfg.MaxURILength = n
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("timeoutSeconds must be greater than zero, got %d", n)
		}
		cfg.TimeoutSeconds = n
	case "retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("retries must be an integer: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("retries must not be negative, got %d", n)
		}
		cfg.Retries = n
	case "fetch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("fetch must be a boolean: %w", err)
		}
		cfg.Fetch = b
	case "format":
		cfg.Format = value
	case "preferPng":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("preferPng must be a boolean: %w", err)
		}
		cfg.PreferPNG = b
	case "plantumlInclude":
		cfg.PlantUMLInclude = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("concurrency must be greater than zero, got %d", n)
		}
		cfg.Concurrency = n
	case "images.dir":
		cfg.Images.Dir = value
	case "images.outDir":
		cfg.Images.OutDir = value
	case "store.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("store.enabled must be a boolean: %w", err)
		}
		cfg.Store.Enabled = b
	case "store.addr":
		cfg.Store.Addr = value
	case "store.password":
		cfg.Store.Password = value
	case "store.db":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("store.db must be an integer: %w", err)
		}
		cfg.Store.DB = n
	case "store.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("store.ttlSeconds must be an integer: %w", err)
		}
		cfg.Store.TTLSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// TransportConfig returns the transport settings. An unknown HTTP method is
// reported through log and replaced by adaptive.
func (c Config) TransportConfig(log hclog.Logger) transport.Config {
	return transport.Config{
		ServerURL:    strings.TrimSpace(c.ServerURL),
		Method:       transport.ResolveMethod(c.HTTPMethod, log),
		MaxURILength: c.MaxURILength,
		Timeout:      time.Duration(c.TimeoutSeconds) * time.Second,
		Retries:      c.Retries,
	}
}

// RenderOptions returns the engine options. outDir and baseDir feed the
// image directory resolution.
func (c Config) RenderOptions(outDir, baseDir string) render.Options {
	return render.Options{
		Fetch: c.Fetch,
		Dirs: cache.DirHints{
			ImagesOutDir: c.Images.OutDir,
			OutDir:       outDir,
			BaseDir:      baseDir,
			ImagesDir:    c.Images.Dir,
		},
		PlantUMLInclude: c.PlantUMLInclude,
		PreferPNG:       c.PreferPNG,
		Concurrency:     c.Concurrency,
	}
}

// StoreConfig returns the Redis store settings.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Addr:     c.Store.Addr,
		Password: c.Store.Password,
		DB:       c.Store.DB,
		TTL:      time.Duration(c.Store.TTLSeconds) * time.Second,
	}
}

// Redacted returns a copy of c safe to display.
func (c Config) Redacted() Config {
	c.ServerURL = redact.URL(c.ServerURL)
	c.Store.Password = redact.Value(c.Store.Password)
	return c
}
