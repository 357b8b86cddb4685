package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// GetList fetches one page of records.
func (c *Client) GetList(ctx context.Context, collection string, page, perPage int, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("perPage", strconv.Itoa(perPage))
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.Filter != "" {
		query.Set("filter", opts.Filter)
	}
	if opts.SkipTotal {
		query.Set("skipTotal", "1")
	}

	var result ListResult
	if err := c.send(ctx, http.MethodGet, recordsPath(collection), query, nil, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []record.Record{}
	}
	return &result, nil
}

// GetFullList fetches every matching record, page by page, until the service
// returns a short page. Totals are never requested. The result is never nil.
func (c *Client) GetFullList(ctx context.Context, collection string, opts ListOptions) ([]record.Record, error) {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	opts.SkipTotal = true

	items := []record.Record{}
	for page := 1; ; page++ {
		result, err := c.GetList(ctx, collection, page, batch, opts)
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(result.Items) < batch {
			return items, nil
		}
	}
}

// GetOne fetches a single record by id.
func (c *Client) GetOne(ctx context.Context, collection, id string) (record.Record, error) {
	var rec record.Record
	if err := c.send(ctx, http.MethodGet, recordsPath(collection, id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create creates a record from body and returns it as stored by the service.
func (c *Client) Create(ctx context.Context, collection string, body map[string]any) (record.Record, error) {
	if body == nil {
		body = map[string]any{}
	}
	var rec record.Record
	if err := c.send(ctx, http.MethodPost, recordsPath(collection), nil, body, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies body as a partial update and returns the updated record.
func (c *Client) Update(ctx context.Context, collection, id string, body map[string]any) (record.Record, error) {
	if body == nil {
		body = map[string]any{}
	}
	var rec record.Record
	if err := c.send(ctx, http.MethodPatch, recordsPath(collection, id), nil, body, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.send(ctx, http.MethodDelete, recordsPath(collection, id), nil, nil, nil)
}

// RecordService is a Client bound to one collection
type RecordService struct {
	client     *Client
	collection string
}

// Name returns the collection name.
func (s *RecordService) Name() string {
	return s.collection
}

// AuthWithPassword authenticates against this collection.
func (s *RecordService) AuthWithPassword(ctx context.Context, identity, password string) (*AuthResponse, error) {
	return s.client.AuthWithPassword(ctx, s.collection, identity, password)
}

// AuthRefresh refreshes the current token against this collection.
func (s *RecordService) AuthRefresh(ctx context.Context) (*AuthResponse, error) {
	return s.client.AuthRefresh(ctx, s.collection)
}

// GetList fetches one page of this collection.
func (s *RecordService) GetList(ctx context.Context, page, perPage int, opts ListOptions) (*ListResult, error) {
	return s.client.GetList(ctx, s.collection, page, perPage, opts)
}

// GetFullList fetches every record of this collection.
func (s *RecordService) GetFullList(ctx context.Context, opts ListOptions) ([]record.Record, error) {
	return s.client.GetFullList(ctx, s.collection, opts)
}

// GetOne fetches one record of this collection.
func (s *RecordService) GetOne(ctx context.Context, id string) (record.Record, error) {
	return s.client.GetOne(ctx, s.collection, id)
}

// Create creates a record in this collection.
func (s *RecordService) Create(ctx context.Context, body map[string]any) (record.Record, error) {
	return s.client.Create(ctx, s.collection, body)
}

// Update updates a record in this collection.
func (s *RecordService) Update(ctx context.Context, id string, body map[string]any) (record.Record, error) {
	return s.client.Update(ctx, s.collection, id, body)
}

// Delete deletes a record from this collection.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, s.collection, id)
}
