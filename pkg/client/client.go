// Package client talks to the hosted collection service over HTTP: password
// authentication, token refresh and per-collection record CRUD. Successful
// authentication is written to the shared auth store, which notifies its
// observers.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/DeBrosOfficial/contacts/pkg/auth"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

// Client is the remote service handle. It is safe for concurrent use and is
// meant to be created once per process and shared.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authStore  *auth.Store
	logger     *logging.ColoredLogger
}

// NewClient creates a client for config.BaseURL that reads and writes auth state
// through store. A nil store gets a fresh in-memory one.
func NewClient(config *ClientConfig, store *auth.Store) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", config.BaseURL)
	}

	logger := config.Logger
	if logger == nil {
		logger, err = newClientLogger(config.QuietMode)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	if store == nil {
		store, err = auth.NewStore(auth.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create auth store: %w", err)
		}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: httpClient,
		authStore:  store,
		logger:     logger,
	}, nil
}

// BaseURL returns the service endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AuthStore returns the auth state shared with observers.
func (c *Client) AuthStore() *auth.Store {
	return c.authStore
}

// Collection returns a handle bound to the named collection.
func (c *Client) Collection(name string) *RecordService {
	return &RecordService{client: c, collection: name}
}
