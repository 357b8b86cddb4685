//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DeBrosOfficial/contacts/pkg/auth"
	"github.com/DeBrosOfficial/contacts/pkg/client"
	"github.com/DeBrosOfficial/contacts/pkg/config"
	"github.com/DeBrosOfficial/contacts/pkg/contacts"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func requireEnv(t *testing.T, key string) string {
	t.Helper()
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		t.Skipf("%s not set; skipping", key)
	}
	return v
}

// newService connects to the endpoint named by E2E_ENDPOINT (the hosted service
// by default) with credentials kept in a per-test file.
func newService(t *testing.T) (*contacts.Service, *auth.Store) {
	t.Helper()
	endpoint := getenv("E2E_ENDPOINT", config.DefaultEndpoint)
	credsPath := filepath.Join(t.TempDir(), "credentials.json")

	store, err := auth.NewStore(auth.WithPersister(&auth.FilePersister{Path: credsPath, Endpoint: endpoint}))
	if err != nil {
		t.Fatalf("auth store: %v", err)
	}

	cfg := client.DefaultClientConfig(endpoint)
	cfg.Logger = logging.NewQuietLogger()
	remote, err := client.NewClient(cfg, store)
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	svc := contacts.New(remote, store, contacts.Config{Logger: cfg.Logger})
	t.Cleanup(svc.Close)
	return svc, store
}
