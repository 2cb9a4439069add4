package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Config holds the outbound HTTP client settings.
type Config struct {
	UpstreamTimeout     time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`            // UpstreamTimeout bounds a full upstream exchange.
	MaxIdleConns        int           `env:"UPSTREAM_MAX_IDLE_CONNS" envDefault:"100"`     // MaxIdleConns caps the idle connections kept across all upstreams.
	MaxIdleConnsPerHost int           `env:"UPSTREAM_MAX_IDLE_CONNS_PER_HOST" envDefault:"10"` // MaxIdleConnsPerHost caps idle connections per upstream host.
	IdleConnTimeout     time.Duration `env:"UPSTREAM_IDLE_CONN_TIMEOUT" envDefault:"90s"`  // IdleConnTimeout is how long an idle connection is kept for reuse.
}

// Proxy forwards authenticated requests to tenant upstreams through one
// pooled client shared by all requests.
type Proxy struct {
	client *http.Client
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithClient replaces the pooled client, used by tests.
func WithClient(client *http.Client) Option {
	return func(p *Proxy) {
		if client != nil {
			p.client = client
		}
	}
}

// New creates a proxy with a pooled transport sized from cfg.
func New(cfg Config, opts ...Option) *Proxy {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	p := &Proxy{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.UpstreamTimeout,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Forward sends the inbound request to the upstream and returns the raw
// response; the caller owns the response body. The inbound body streams
// through untouched and the query string is passed verbatim.
//
// Transport-level failures are wrapped with ErrUpstreamUnavailable. Context
// cancellation (client disconnect) passes through unwrapped so the caller
// can drop the request without authoring a 502.
func (p *Proxy) Forward(ctx context.Context, in *http.Request, upstreamBase, path string) (*http.Response, error) {
	url := JoinUpstreamURL(upstreamBase, path)
	if in.URL.RawQuery != "" {
		url += "?" + in.URL.RawQuery
	}

	out, err := http.NewRequestWithContext(ctx, in.Method, url, in.Body)
	if err != nil {
		return nil, errors.Join(ErrUpstreamUnavailable, err)
	}
	out.Header = OutboundHeaders(in.Header)

	resp, err := p.client.Do(out)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Join(ErrUpstreamUnavailable, err)
	}
	return resp, nil
}

// CloseIdleConnections releases pooled upstream connections on shutdown.
func (p *Proxy) CloseIdleConnections() {
	p.client.CloseIdleConnections()
}
