package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// Credentials is the persisted auth state for one service endpoint
type Credentials struct {
	Token      string        `json:"token"`
	Record     record.Record `json:"record,omitempty"`
	IssuedAt   time.Time     `json:"issued_at"`
	LastUsedAt time.Time     `json:"last_used_at,omitempty"`
}

// CredentialFile is the on-disk credential store, keyed by endpoint URL
type CredentialFile struct {
	Endpoints map[string]*Credentials `json:"endpoints"`
	Version   string                  `json:"version"`
}

const credentialFileVersion = "1.0"

// LoadCredentialFile reads the credential file at path. A missing file yields an
// empty store.
func LoadCredentialFile(path string) (*CredentialFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &CredentialFile{
			Endpoints: make(map[string]*Credentials),
			Version:   credentialFileVersion,
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var file CredentialFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if file.Endpoints == nil {
		file.Endpoints = make(map[string]*Credentials)
	}
	if file.Version == "" {
		file.Version = credentialFileVersion
	}

	return &file, nil
}

// Save writes the store to path with owner-only permissions.
func (f *CredentialFile) Save(path string) error {
	if f.Version == "" {
		f.Version = credentialFileVersion
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write with restricted permissions (readable only by owner)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// Get returns the credentials stored for endpoint.
func (f *CredentialFile) Get(endpoint string) (*Credentials, bool) {
	creds, exists := f.Endpoints[endpoint]
	if !exists || creds == nil {
		return nil, false
	}
	return creds, true
}

// Set stores credentials for endpoint.
func (f *CredentialFile) Set(endpoint string, creds *Credentials) {
	if f.Endpoints == nil {
		f.Endpoints = make(map[string]*Credentials)
	}
	f.Endpoints[endpoint] = creds
}

// Remove deletes the credentials for endpoint.
func (f *CredentialFile) Remove(endpoint string) {
	if f.Endpoints != nil {
		delete(f.Endpoints, endpoint)
	}
}

// FilePersister keeps one endpoint's credentials in a shared credential file.
type FilePersister struct {
	Path     string
	Endpoint string
}

// Load returns the stored credentials, or nil when none exist.
func (p *FilePersister) Load() (*Credentials, error) {
	file, err := LoadCredentialFile(p.Path)
	if err != nil {
		return nil, err
	}
	creds, ok := file.Get(p.Endpoint)
	if !ok {
		return nil, nil
	}
	return creds, nil
}

// Store replaces the credentials for the endpoint; nil removes them.
func (p *FilePersister) Store(creds *Credentials) error {
	file, err := LoadCredentialFile(p.Path)
	if err != nil {
		return err
	}
	if creds == nil {
		file.Remove(p.Endpoint)
	} else {
		file.Set(p.Endpoint, creds)
	}
	return file.Save(p.Path)
}
