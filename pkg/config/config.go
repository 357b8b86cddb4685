package config

import (
	"time"
)

// DefaultEndpoint is the hosted collection service the client talks to unless
// overridden.
const DefaultEndpoint = "https://pocketbase-production-2587.up.railway.app"

// Config represents the configuration for the contacts client
type Config struct {
	Endpoint           string        `yaml:"endpoint" env:"ENDPOINT"`                       // Base URL of the collection service
	AuthCollection     string        `yaml:"auth_collection" env:"AUTH_COLLECTION"`         // Collection holding user accounts
	ContactsCollection string        `yaml:"contacts_collection" env:"CONTACTS_COLLECTION"` // Collection holding contact records
	CredentialsPath    string        `yaml:"credentials_path" env:"CREDENTIALS_PATH"`       // Empty disables persistence
	RequestTimeout     time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`         // Per-request HTTP timeout
	Logging            LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
}

// LoggingConfig controls client log output
type LoggingConfig struct {
	Quiet  bool `yaml:"quiet" env:"QUIET"`   // Only warnings and errors
	Colors bool `yaml:"colors" env:"COLORS"` // ANSI colors on console output
}

// DefaultConfig returns a configuration pointing at the hosted service with
// credentials persisted under the user's home directory.
func DefaultConfig() *Config {
	credPath, err := DefaultCredentialsPath()
	if err != nil {
		credPath = ""
	}
	return &Config{
		Endpoint:           DefaultEndpoint,
		AuthCollection:     "users",
		ContactsCollection: "contacts",
		CredentialsPath:    credPath,
		RequestTimeout:     30 * time.Second,
		Logging: LoggingConfig{
			Quiet:  false,
			Colors: true,
		},
	}
}
