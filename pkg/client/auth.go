package client

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

// AuthWithPassword authenticates against an auth collection and, on success,
// saves the returned token and record into the auth store.
func (c *Client) AuthWithPassword(ctx context.Context, collection, identity, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := passwordAuthRequest{Identity: identity, Password: password}
	if err := c.send(ctx, http.MethodPost, collectionPath(collection, "auth-with-password"), nil, body, &resp); err != nil {
		return nil, err
	}

	c.authStore.Save(resp.Token, resp.Record)
	c.logger.ComponentInfo(logging.ComponentClient, "Authenticated",
		zap.String("collection", collection),
		zap.String("user_id", resp.Record.ID()),
	)
	return &resp, nil
}

// AuthRefresh exchanges the current token for a fresh one and saves it. Observers
// of the auth store see the refreshed record without any call on their side.
func (c *Client) AuthRefresh(ctx context.Context, collection string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.send(ctx, http.MethodPost, collectionPath(collection, "auth-refresh"), nil, nil, &resp); err != nil {
		return nil, err
	}

	c.authStore.Save(resp.Token, resp.Record)
	c.logger.ComponentDebug(logging.ComponentClient, "Auth token refreshed",
		zap.String("collection", collection),
	)
	return &resp, nil
}
