package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	cerrors "github.com/DeBrosOfficial/contacts/pkg/errors"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

// recordsPath returns the records endpoint of a collection, optionally for one record.
func recordsPath(collection string, id ...string) string {
	p := "/api/collections/" + url.PathEscape(collection) + "/records"
	if len(id) > 0 {
		p += "/" + url.PathEscape(id[0])
	}
	return p
}

// collectionPath returns a collection-level action endpoint such as auth-refresh.
func collectionPath(collection, action string) string {
	return "/api/collections/" + url.PathEscape(collection) + "/" + action
}

// buildURL joins the base URL, path and query.
func (c *Client) buildURL(path string, query url.Values) string {
	u := strings.TrimSuffix(c.baseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// addAuthHeaders sets the Authorization header from the auth store.
func (c *Client) addAuthHeaders(req *http.Request) {
	if token := c.authStore.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}
}

// send performs one round trip. body is JSON-encoded when non-nil; the response
// is decoded into out when out is non-nil and the service returned content.
// Every failure is a *errors.ResponseError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	reqURL := c.buildURL(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return cerrors.NewResponseError(reqURL, 0, "failed to marshal request", nil, err).Serialization()
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return cerrors.NewResponseError(reqURL, 0, "failed to create request", nil, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.addAuthHeaders(req)

	c.logger.ComponentDebug(logging.ComponentClient, "Sending request",
		zap.String("method", method),
		zap.String("url", reqURL),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		respErr := cerrors.NewResponseError(reqURL, 0, "", nil, err)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			respErr.Aborted()
		}
		return respErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return cerrors.NewResponseError(reqURL, resp.StatusCode, "failed to read response", nil, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &eb); err != nil {
				eb.Message = strings.TrimSpace(string(raw))
			}
		}
		return cerrors.NewResponseError(reqURL, resp.StatusCode, eb.Message, eb.Data, nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return cerrors.NewResponseError(reqURL, resp.StatusCode, "failed to decode response", nil, err).Serialization()
	}
	return nil
}
