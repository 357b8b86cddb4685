package client

import (
	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

// newClientLogger creates a logger based on quiet mode preference.
// Quiet mode keeps warnings and errors only; otherwise debug output is colored.
func newClientLogger(quiet bool) (*logging.ColoredLogger, error) {
	if quiet {
		return logging.NewQuietLogger(), nil
	}
	return logging.NewColoredLogger(logging.ComponentClient, true)
}
