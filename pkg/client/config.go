package client

import (
	"net/http"
	"time"

	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

// ClientConfig represents configuration for the remote client
type ClientConfig struct {
	BaseURL    string                 // Service endpoint, e.g. "https://example.com"
	Timeout    time.Duration          // Per-request timeout; ignored when HTTPClient is set
	QuietMode  bool                   // Suppress debug/info logs
	HTTPClient *http.Client           // Optional preconfigured client
	Logger     *logging.ColoredLogger // Optional logger; built from QuietMode when nil
}

// DefaultClientConfig returns a default client configuration for baseURL
func DefaultClientConfig(baseURL string) *ClientConfig {
	return &ClientConfig{
		BaseURL:   baseURL,
		Timeout:   30 * time.Second,
		QuietMode: false,
	}
}
