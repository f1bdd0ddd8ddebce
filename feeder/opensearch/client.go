package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	osv2 "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/redhat/virt-capacity-benchmark/feeder/config"
)

// Client wraps the OpenSearch client with the handful of operations one
// upload run needs
type Client struct {
	es        *osv2.Client
	transport *http.Transport
	url       string
	timeout   time.Duration
}

// NewClient builds a client from the resolved configuration. No network
// traffic happens here; use Ping to verify connectivity.
func NewClient(cfg *config.Config) (*Client, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
	}

	oscfg := osv2.Config{
		Addresses: []string{strings.TrimRight(cfg.URL, "/")},
		Transport: &roundTripper{r: transport},

		// One-shot uploads must not retry on their own; failed runs are
		// rerun by the operator.
		DisableRetry: true,
	}
	// An empty password means an unsecured cluster; sending basic auth
	// anyway makes some proxies reject the request.
	if cfg.Password != "" {
		oscfg.Username = cfg.Username
		oscfg.Password = cfg.Password
	}

	es, err := osv2.NewClient(oscfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create store client: %w", err)
	}

	return &Client{
		es:        es,
		transport: transport,
		url:       cfg.URL,
		timeout:   cfg.HTTPTimeout,
	}, nil
}

// roundTripper forces the newline-delimited content type on bulk requests.
// The client library stamps application/json on any request that carries a
// body and merges per-request headers additively instead of replacing them,
// so the value has to be rewritten below it, in the transport.
type roundTripper struct {
	r http.RoundTripper
}

func (r *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasSuffix(req.URL.Path, "/_bulk") {
		req.Header.Set("Content-Type", "application/x-ndjson")
	}
	return r.r.RoundTrip(req)
}

// opContext bounds a single store request with the configured timeout
func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Ping verifies the store is reachable and the credentials are accepted
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	res, err := opensearchapi.InfoRequest{}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			return fmt.Errorf("authentication rejected (%s)", res.Status())
		}
		return fmt.Errorf("unexpected status %s: %s", res.Status(), readBody(res.Body))
	}

	// Drain so the connection is reused.
	io.Copy(io.Discard, res.Body)
	return nil
}

// Close releases any idle connections held by the client
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// readBody returns a bounded snippet of a response body for error messages
func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 2048))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
