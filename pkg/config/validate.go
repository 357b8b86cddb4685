package config

import (
	"fmt"
	"net/url"
	"regexp"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "endpoint"
	Message string // e.g., "must be an absolute http(s) URL"
	Hint    string // e.g., "expected https://host[:port]"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

var collectionNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validate checks the config and returns every problem found, so the caller can
// print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	u, err := url.Parse(c.Endpoint)
	if c.Endpoint == "" || err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Path:    "endpoint",
			Message: "must be an absolute http(s) URL",
			Hint:    "expected https://host[:port]",
		})
	}

	for _, f := range []struct{ path, name string }{
		{"auth_collection", c.AuthCollection},
		{"contacts_collection", c.ContactsCollection},
	} {
		if !collectionNameRe.MatchString(f.name) {
			errs = append(errs, ValidationError{
				Path:    f.path,
				Message: fmt.Sprintf("invalid collection name %q", f.name),
				Hint:    "use letters, digits and underscores",
			})
		}
	}

	if c.RequestTimeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "request_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}
