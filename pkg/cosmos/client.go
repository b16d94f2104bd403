package cosmos

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Sternrassler/docdb-client/pkg/client"
	"github.com/Sternrassler/docdb-client/pkg/logging"
	"github.com/Sternrassler/docdb-client/pkg/session"
	"github.com/rs/zerolog"
)

// Sender performs one HTTP round trip. *client.Client and *http.Client both
// satisfy it. Implementations own connection handling and retries; the
// request context carries cancellation.
type Sender interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client lists resources of one database account.
type Client struct {
	endpoint *url.URL
	account  string
	sender   Sender
	sessions session.Store
	logger   zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAccount overrides the account name derived from the endpoint host.
func WithAccount(account string) ClientOption {
	return func(c *Client) {
		c.account = account
	}
}

// WithSessionStore shares session tokens through store instead of the
// client's private in-memory store.
func WithSessionStore(store session.Store) ClientOption {
	return func(c *Client) {
		c.sessions = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the account at endpoint that sends requests
// through sender.
func NewClient(endpoint string, sender Sender, opts ...ClientOption) (*Client, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint scheme must be http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint host is required")
	}

	c := &Client{
		endpoint: u,
		account:  accountFromHost(u.Hostname()),
		sender:   sender,
		sessions: session.NewMemoryStore(),
		logger:   logging.NewLogger("docdb-client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewClientFromTransport creates a client that sends requests through the
// retrying transport t.
func NewClientFromTransport(t *client.Client, opts ...ClientOption) (*Client, error) {
	opts = append([]ClientOption{WithAccount(t.Account())}, opts...)
	return NewClient(t.Endpoint().String(), t, opts...)
}

// Account returns the account name that scopes session tokens.
func (c *Client) Account() string {
	return c.account
}

// Database returns a client for the named database.
func (c *Client) Database(name string) *DatabaseClient {
	return &DatabaseClient{client: c, name: name}
}

// DatabaseClient lists resources of one database.
type DatabaseClient struct {
	client *Client
	name   string
}

// Name returns the database id.
func (d *DatabaseClient) Name() string {
	return d.name
}

// Collection returns a client for the named collection.
func (d *DatabaseClient) Collection(name string) *CollectionClient {
	return &CollectionClient{database: d, name: name}
}

// CollectionClient lists documents of one collection.
type CollectionClient struct {
	database *DatabaseClient
	name     string
}

// Name returns the collection id.
func (cc *CollectionClient) Name() string {
	return cc.name
}

// Database returns the parent database client.
func (cc *CollectionClient) Database() *DatabaseClient {
	return cc.database
}

func accountFromHost(host string) string {
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}
