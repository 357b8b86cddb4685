package contacts

import (
	"context"

	"github.com/DeBrosOfficial/contacts/pkg/auth"
	"github.com/DeBrosOfficial/contacts/pkg/client"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// Remote is the part of the remote client the facade forwards to.
// *client.Client implements it.
type Remote interface {
	AuthWithPassword(ctx context.Context, collection, identity, password string) (*client.AuthResponse, error)
	GetFullList(ctx context.Context, collection string, opts client.ListOptions) ([]record.Record, error)
	Create(ctx context.Context, collection string, body map[string]any) (record.Record, error)
	Update(ctx context.Context, collection, id string, body map[string]any) (record.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// AuthState is the remote client's session source: the restored model, change
// notifications, and a local clear. *auth.Store implements it.
type AuthState interface {
	Model() record.Record
	OnChange(fn auth.ChangeFunc) (unsubscribe func())
	Clear()
}

var (
	_ Remote    = (*client.Client)(nil)
	_ AuthState = (*auth.Store)(nil)
)
