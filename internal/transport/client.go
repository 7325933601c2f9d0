package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
)

// Client performs the two kinds of requests the service accepts.
type Client interface {
	Get(ctx context.Context, uri string) ([]byte, error)
	Post(ctx context.Context, uri string, body []byte) ([]byte, error)
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	Timeout time.Duration
	Retries int
	Logger  hclog.Logger
	// HTTPClient replaces the underlying client, e.g. an httptest client.
	HTTPClient *http.Client
}

// HTTPClient implements Client over go-retryablehttp.
type HTTPClient struct {
	client *retryablehttp.Client
}

// NewHTTPClient creates an HTTPClient. Retries defaults to zero.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	if client.RetryMax < 0 {
		client.RetryMax = 0
	}
	// Hand the final response back so status codes reach the caller.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.HTTPClient != nil {
		// Copy so the timeout below does not leak into the caller's client.
		hc := *opts.HTTPClient
		client.HTTPClient = &hc
	}
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	if opts.Logger != nil {
		client.Logger = opts.Logger
	} else {
		client.Logger = nil
	}
	return &HTTPClient{client: client}
}

func (c *HTTPClient) Get(ctx context.Context, uri string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, uri, nil)
}

func (c *HTTPClient) Post(ctx context.Context, uri string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, uri, body)
}

func (c *HTTPClient) do(ctx context.Context, method, uri string, body []byte) ([]byte, error) {
	var raw interface{}
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, uri, raw)
	if err != nil {
		return nil, &Error{Method: method, URL: uri, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, &Error{Method: method, URL: uri, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, URL: uri, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Method: method, URL: uri, StatusCode: resp.StatusCode, Body: excerpt(data)}
	}
	return data, nil
}
