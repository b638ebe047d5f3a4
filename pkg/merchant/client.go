// Package merchant is a client for the merchant payment API. It signs every
// request with the merchant's bearer token, keeps monetary amounts exact
// end to end, and exposes customers and orders as entities that remember
// the Client they were loaded through.
package merchant

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	fastshot "github.com/opus-domini/fast-shot"
)

// Version is reported in the User-Agent header.
const Version = "0.1.0"

const defaultTimeout = 10 * time.Second

// Client issues authenticated requests against one environment and owns
// the customer and order caches. A Client is not safe for concurrent use.
type Client struct {
	env        Environment
	token     string
	timeout   time.Duration
	transport http.RoundTripper
	http      fastshot.ClientHttpMethods
	logger    *log.Logger
	strict    bool

	customers *Cache[*Customer]
	orders    *Cache[*Order]
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithTimeout bounds every request. Zero disables the client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sends requests through h's transport. The client's own
// timeout still applies; set it with WithTimeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil && h.Transport != nil {
			c.transport = h.Transport
		}
	}
}

// WithTransport replaces the round tripper used for every request.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithLogger routes request and response debug output to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseURL points the client at another API root, such as a local
// emulator. The environment's live flag is kept.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.env.BaseURL = withTrailingSlash(u) }
}

// WithStrictSchema controls how unknown field names are handled when
// merging data into an entity: rejected with a SchemaError (the default)
// or logged and skipped.
func WithStrictSchema(strict bool) Option {
	return func(c *Client) { c.strict = strict }
}

// NewClient builds a Client for the named environment ("production" or
// "sandbox") authenticated with accessToken.
func NewClient(accessToken, environment string, opts ...Option) (*Client, error) {
	env, err := ResolveEnvironment(environment)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("%w: access token required", ErrConfiguration)
	}

	c := &Client{
		env:       env,
		token:     accessToken,
		timeout:   defaultTimeout,
		transport: http.DefaultTransport,
		logger:    log.New(io.Discard, "", 0),
		strict:    true,
		customers: NewCache[*Customer](),
		orders:    NewCache[*Order](),
	}
	for _, opt := range opts {
		opt(c)
	}

	base, err := url.Parse(c.env.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url %q: %v", ErrConfiguration, c.env.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrConfiguration, c.env.BaseURL)
	}

	c.http = fastshot.NewClient(base.String()).
		Auth().BearerToken(c.token).
		Header().Add("Accept", "application/json").
		Header().Add("User-Agent", "merchant-client-go/"+Version).
		Config().SetCustomTransport(c.transport).
		Config().SetTimeout(c.timeout).
		Build()
	return c, nil
}

// Environment returns the resolved environment, including any base URL override.
func (c *Client) Environment() Environment {
	return c.env
}

// Live reports whether the client talks to the production API.
func (c *Client) Live() bool {
	return c.env.Live
}

// InvalidateCustomers forgets every cached customer; the next Customers
// call lists them again.
func (c *Client) InvalidateCustomers() {
	c.customers.Invalidate()
}

// InvalidateOrders forgets every cached order.
func (c *Client) InvalidateOrders() {
	c.orders.Invalidate()
}

func requireID(entity, id string) error {
	if id == "" {
		return fmt.Errorf("%s: %w", entity, ErrNotLoaded)
	}
	return nil
}
