package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dshills/krokidoc/internal/config"
	"github.com/dshills/krokidoc/internal/logging"
	"github.com/dshills/krokidoc/internal/render"
	"github.com/dshills/krokidoc/internal/store"
	"github.com/dshills/krokidoc/internal/transport"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// Shared engine flags
var (
	flagServerURL    string
	flagHTTPMethod   string
	flagMaxURILength int
	flagFetch        bool
	flagImagesDir    string
	flagImagesOutDir string
	flagOutDir       string
	flagVerbose      bool
)

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagServerURL, "server-url", "", "Kroki server URL (default https://kroki.io)")
	cmd.Flags().StringVar(&flagHTTPMethod, "http-method", "", "HTTP method policy (get, post, adaptive)")
	cmd.Flags().IntVar(&flagMaxURILength, "max-uri-length", 0, "Longest GET URL before adaptive switches to POST")
	cmd.Flags().BoolVar(&flagFetch, "fetch", false, "Download images into the images directory instead of linking to the server")
	cmd.Flags().StringVar(&flagImagesDir, "images-dir", "", "Images directory relative to the output directory")
	cmd.Flags().StringVar(&flagImagesOutDir, "images-out-dir", "", "Directory fetched images are written to (overrides --images-dir)")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Output directory")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagServerURL != "" {
		m["serverUrl"] = flagServerURL
	}
	if flagHTTPMethod != "" {
		m["httpMethod"] = flagHTTPMethod
	}
	if flagMaxURILength > 0 {
		m["maxUriLength"] = strconv.Itoa(flagMaxURILength)
	}
	if flagFetch {
		m["fetch"] = "true"
	}
	if flagImagesDir != "" {
		m["images.dir"] = flagImagesDir
	}
	if flagImagesOutDir != "" {
		m["images.outDir"] = flagImagesOutDir
	}
	if flagOutput != "" {
		m["format"] = flagOutput
	}
	return m
}

func newLogger() hclog.Logger {
	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	return logging.New(level, os.Stderr)
}

// session holds everything a command needs to render diagrams.
type session struct {
	cfg       config.Config
	log       hclog.Logger
	transport *transport.Transport
	engine    *render.Engine
	shared    *store.RedisStore
}

// newSession loads the effective config and builds the engine. dirs adjusts
// the image directory hints before the engine is created.
func newSession(baseDir string, dirs func(*render.Options)) (*session, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	log := newLogger()
	s := &session{
		cfg:       cfg,
		log:       log,
		transport: transport.New(cfg.TransportConfig(log), nil, log),
	}

	// The engine must see a nil interface, not a nil *RedisStore.
	var shared store.Store
	if cfg.Store.Enabled {
		rs, err := store.NewRedisStore(cfg.StoreConfig())
		if err != nil {
			log.Warn("shared store disabled", "error", err)
		} else {
			s.shared = rs
			shared = rs
		}
	}

	opts := cfg.RenderOptions(flagOutDir, baseDir)
	if dirs != nil {
		dirs(&opts)
	}
	engine, err := render.New(s.transport, shared, opts, log.Named("render"))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating render engine: %w", err)
	}
	s.engine = engine
	return s, nil
}

func (s *session) Close() {
	if s.shared != nil {
		if err := s.shared.Close(); err != nil {
			s.log.Debug("closing shared store", "error", err)
		}
	}
}
