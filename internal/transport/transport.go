package transport

import (
	"context"
	"strings"
	"time"

	"github.com/dshills/krokidoc/internal/diagram"
	"github.com/dshills/krokidoc/internal/logging"
	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultServerURL is the public Kroki instance.
	DefaultServerURL = "https://kroki.io"
	// DefaultMaxURILength is the longest GET URL sent in adaptive mode.
	DefaultMaxURILength = 4096
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// Config holds the transport settings for a render session.
type Config struct {
	ServerURL    string
	Method       Method
	MaxURILength int
	Timeout      time.Duration
	Retries      int
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	return Config{
		ServerURL:    DefaultServerURL,
		Method:       Adaptive,
		MaxURILength: DefaultMaxURILength,
		Timeout:      DefaultTimeout,
	}
}

// Transport sends diagrams to the service using the configured method policy.
type Transport struct {
	cfg    Config
	client Client
	log    hclog.Logger
}

// New creates a Transport. A nil client builds an HTTPClient from cfg; a nil
// logger discards log output.
func New(cfg Config, client Client, log hclog.Logger) *Transport {
	if log == nil {
		log = logging.Discard()
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.MaxURILength <= 0 {
		cfg.MaxURILength = DefaultMaxURILength
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = NewHTTPClient(HTTPOptions{
			Timeout: cfg.Timeout,
			Retries: cfg.Retries,
			Logger:  log.Named("http"),
		})
	}
	return &Transport{cfg: cfg, client: client, log: log}
}

// ServerURL returns the normalized server base URL.
func (t *Transport) ServerURL() string {
	return t.cfg.ServerURL
}

// Config returns the effective configuration.
func (t *Transport) Config() Config {
	return t.cfg
}

// Client returns the underlying request client.
func (t *Transport) Client() Client {
	return t.client
}

// Decide returns the method that will be used for d and its GET URL.
func (t *Transport) Decide(d diagram.Diagram) (Method, string, error) {
	uri, err := d.URI(t.cfg.ServerURL)
	if err != nil {
		return Adaptive, "", err
	}
	return Choose(t.cfg.Method, len(uri), t.cfg.MaxURILength), uri, nil
}

// Fetch renders d on the server and returns the response body.
func (t *Transport) Fetch(ctx context.Context, d diagram.Diagram) (diagram.Payload, error) {
	method, uri, err := t.Decide(d)
	if err != nil {
		return diagram.Payload{}, err
	}

	var data []byte
	switch method {
	case Post:
		t.log.Debug("rendering diagram", "method", "POST", "type", d.Type, "format", d.Format, "uri_length", len(uri))
		data, err = t.client.Post(ctx, d.PostURL(t.cfg.ServerURL), []byte(d.Text))
	default:
		if len(uri) > t.cfg.MaxURILength {
			t.log.Warn("request URI is longer than the maximum length, the server may reject it; consider the adaptive http method",
				"uri_length", len(uri), "max_uri_length", t.cfg.MaxURILength)
		}
		t.log.Debug("rendering diagram", "method", "GET", "type", d.Type, "format", d.Format, "uri_length", len(uri))
		data, err = t.client.Get(ctx, uri)
	}
	if err != nil {
		return diagram.Payload{}, err
	}

	if d.IsText() {
		data = []byte(strings.ToValidUTF8(string(data), "�"))
	}
	return diagram.Payload{Data: data, Text: d.IsText()}, nil
}
