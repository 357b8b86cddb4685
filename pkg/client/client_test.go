package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/contacts/pkg/auth"
	"github.com/DeBrosOfficial/contacts/pkg/devserver"
	cerrors "github.com/DeBrosOfficial/contacts/pkg/errors"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := DefaultClientConfig(baseURL)
	cfg.Logger = logging.NewNopLogger()
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)
	return c
}

func startDevServer(t *testing.T) (*devserver.Server, *Client) {
	t.Helper()
	srv := devserver.New(devserver.DefaultConfig())
	_, err := srv.AddUser("a@x.com", "secret", map[string]any{"name": "Alice"})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, newTestClient(t, ts.URL)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, nil)
	assert.Error(t, err)

	_, err = NewClient(DefaultClientConfig("not a url"), nil)
	assert.Error(t, err)

	c := newTestClient(t, "http://localhost:8090/")
	assert.Equal(t, "http://localhost:8090", c.BaseURL())
	assert.NotNil(t, c.AuthStore())
	assert.Equal(t, "contacts", c.Collection("contacts").Name())
}

func TestRecordPaths(t *testing.T) {
	assert.Equal(t, "/api/collections/contacts/records", recordsPath("contacts"))
	assert.Equal(t, "/api/collections/contacts/records/abc", recordsPath("contacts", "abc"))
	assert.Equal(t, "/api/collections/a%2Fb/records/x%20y", recordsPath("a/b", "x y"))
	assert.Equal(t, "/api/collections/users/auth-refresh", collectionPath("users", "auth-refresh"))
}

func TestAuthWithPasswordSavesToStore(t *testing.T) {
	_, c := startDevServer(t)
	ctx := context.Background()

	var notified []record.Record
	unsubscribe := c.AuthStore().OnChange(func(token string, model record.Record) {
		notified = append(notified, model)
	})
	defer unsubscribe()

	resp, err := c.AuthWithPassword(ctx, "users", "a@x.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "a@x.com", resp.Record.String("email"))

	assert.Equal(t, resp.Token, c.AuthStore().Token())
	assert.Equal(t, resp.Record.ID(), c.AuthStore().Model().ID())
	assert.True(t, c.AuthStore().IsValid())
	require.Len(t, notified, 1)
	assert.Equal(t, "Alice", notified[0].String("name"))

	t.Run("wrong password leaves store untouched", func(t *testing.T) {
		_, err := c.AuthWithPassword(ctx, "users", "a@x.com", "nope")
		require.Error(t, err)
		assert.True(t, cerrors.IsValidation(err))
		assert.Equal(t, http.StatusBadRequest, cerrors.StatusCode(err))
		assert.Equal(t, resp.Token, c.AuthStore().Token())
		assert.Len(t, notified, 1)
	})
}

func TestAuthRefreshNotifiesObservers(t *testing.T) {
	srv, c := startDevServer(t)
	ctx := context.Background()

	resp, err := c.Collection("users").AuthWithPassword(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	require.NoError(t, srv.UpdateUser(resp.Record.ID(), map[string]any{"name": "Alicia"}))

	var got record.Record
	defer c.AuthStore().OnChange(func(_ string, model record.Record) { got = model })()

	_, err = c.Collection("users").AuthRefresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.String("name"))
	assert.Equal(t, "Alicia", c.AuthStore().Model().String("name"))

	c.AuthStore().Clear()
	_, err = c.AuthRefresh(ctx, "users")
	assert.True(t, cerrors.IsUnauthorized(err))
}

func TestRecordCRUD(t *testing.T) {
	_, c := startDevServer(t)
	ctx := context.Background()
	contacts := c.Collection("contacts")

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		_, err := contacts.GetFullList(ctx, ListOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, cerrors.ErrUnauthorized)
	})

	_, err := c.AuthWithPassword(ctx, "users", "a@x.com", "secret")
	require.NoError(t, err)

	empty, err := contacts.GetFullList(ctx, ListOptions{Sort: "-created"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	bob, err := contacts.Create(ctx, map[string]any{"name": "Bob"})
	require.NoError(t, err)
	assert.NotEmpty(t, bob.ID())
	assert.False(t, bob.Created().IsZero())

	got, err := contacts.GetOne(ctx, bob.ID())
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	updated, err := contacts.Update(ctx, bob.ID(), map[string]any{"phone": "555"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.String("name"))
	assert.Equal(t, "555", updated.String("phone"))

	t.Run("validation errors carry field data", func(t *testing.T) {
		_, err := contacts.Create(ctx, nil)
		require.Error(t, err)
		respErr, ok := cerrors.AsResponse(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, respErr.Status)
		assert.Contains(t, respErr.FieldErrors(), "name")
	})

	require.NoError(t, contacts.Delete(ctx, bob.ID()))

	t.Run("missing records are not found", func(t *testing.T) {
		err := contacts.Delete(ctx, bob.ID())
		require.Error(t, err)
		assert.True(t, cerrors.IsNotFound(err))
		assert.ErrorIs(t, err, cerrors.ErrNotFound)

		_, err = contacts.GetOne(ctx, "missing-id")
		assert.True(t, cerrors.IsNotFound(err))
	})
}

func TestGetFullListBatches(t *testing.T) {
	_, c := startDevServer(t)
	ctx := context.Background()
	_, err := c.AuthWithPassword(ctx, "users", "a@x.com", "secret")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := c.Create(ctx, "contacts", map[string]any{"name": string(rune('a' + i))})
		require.NoError(t, err)
	}

	for _, batch := range []int{1, 2, 5, 7} {
		items, err := c.GetFullList(ctx, "contacts", ListOptions{Sort: "name", BatchSize: batch})
		require.NoError(t, err)
		require.Len(t, items, 5, "batch size %d", batch)
		for i, it := range items {
			assert.Equal(t, string(rune('a'+i)), it.String("name"))
		}
	}

	page, err := c.GetList(ctx, "contacts", 2, 2, ListOptions{Sort: "-name"})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].String("name"))
}

func TestSendHeadersAndErrors(t *testing.T) {
	var (
		mu      sync.Mutex
		headers []http.Header
		calls   atomic.Int32
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		mu.Lock()
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
		switch r.URL.Path {
		case "/api/collections/contacts/records/plain":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		case "/api/collections/contacts/records/garbled":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not json"))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	ctx := context.Background()

	require.NoError(t, c.Delete(ctx, "contacts", "x"))
	c.AuthStore().Save("raw-token", record.Record{"id": "u1"})
	require.NoError(t, c.Delete(ctx, "contacts", "y"))

	mu.Lock()
	assert.Empty(t, headers[0].Get("Authorization"))
	assert.Equal(t, "raw-token", headers[1].Get("Authorization"))
	mu.Unlock()

	_, err := c.GetOne(ctx, "contacts", "plain")
	require.Error(t, err)
	respErr, ok := cerrors.AsResponse(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, respErr.Status)
	assert.Equal(t, "upstream exploded", respErr.Message())
	assert.Equal(t, cerrors.CodeServiceUnavailable, respErr.Code())

	_, err = c.GetOne(ctx, "contacts", "garbled")
	require.Error(t, err)
	assert.Equal(t, http.StatusOK, cerrors.StatusCode(err))
	assert.Equal(t, cerrors.CodeSerializationError, cerrors.GetErrorCode(err))
	assert.Equal(t, int32(4), calls.Load())
}

func TestSendTransportFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		c := newTestClient(t, url)
		_, err := c.GetOne(context.Background(), "contacts", "x")
		require.Error(t, err)
		respErr, ok := cerrors.AsResponse(err)
		require.True(t, ok)
		assert.Equal(t, 0, respErr.Status)
		assert.False(t, respErr.IsAbort)
		assert.Equal(t, cerrors.CodeNetworkError, respErr.Code())
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(release)

		c := newTestClient(t, ts.URL)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := c.GetOne(ctx, "contacts", "x")
		require.Error(t, err)
		assert.True(t, cerrors.IsAbort(err))
		assert.Equal(t, cerrors.CodeCancelled, cerrors.GetErrorCode(err))
	})

	t.Run("undecodable response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		}))
		defer ts.Close()

		c := newTestClient(t, ts.URL)
		_, err := c.GetOne(context.Background(), "contacts", "x")
		require.Error(t, err)
		respErr, ok := cerrors.AsResponse(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusOK, respErr.Status)
		assert.Equal(t, cerrors.CodeSerializationError, respErr.Code())
		assert.False(t, respErr.IsAbort)
	})

	t.Run("unencodable request is never sent", func(t *testing.T) {
		var calls atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer ts.Close()

		c := newTestClient(t, ts.URL)
		_, err := c.Create(context.Background(), "contacts", map[string]any{"name": "Bob", "ch": make(chan int)})
		require.Error(t, err)
		respErr, ok := cerrors.AsResponse(err)
		require.True(t, ok)
		assert.Equal(t, 0, respErr.Status)
		assert.Equal(t, cerrors.CodeSerializationError, respErr.Code())
		assert.NotEqual(t, cerrors.CodeNetworkError, cerrors.GetErrorCode(err))
		assert.Zero(t, calls.Load())
	})
}

func TestGetFullListSkipsTotals(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []url.Values
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query())
		mu.Unlock()

		items := []map[string]any{{"id": "a"}, {"id": "b"}}
		if r.URL.Query().Get("page") != "1" {
			items = items[:1]
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": 1, "perPage": 2, "totalItems": -1, "totalPages": -1, "items": items,
		})
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	items, err := c.GetFullList(context.Background(), "contacts", ListOptions{Sort: "-created", BatchSize: 2})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = c.GetList(context.Background(), "contacts", 1, 2, ListOptions{})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 3)
	for _, q := range queries[:2] {
		assert.Equal(t, "1", q.Get("skipTotal"))
		assert.Equal(t, "-created", q.Get("sort"))
	}
	assert.Empty(t, queries[2].Get("skipTotal"), "single pages keep their totals")
}

func TestSharedStoreAcrossClients(t *testing.T) {
	srv := devserver.New(devserver.DefaultConfig())
	_, err := srv.AddUser("a@x.com", "secret", nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	store, err := auth.NewStore()
	require.NoError(t, err)

	cfg := DefaultClientConfig(ts.URL)
	cfg.Logger = logging.NewNopLogger()
	first, err := NewClient(cfg, store)
	require.NoError(t, err)
	second, err := NewClient(cfg, store)
	require.NoError(t, err)

	_, err = first.AuthWithPassword(context.Background(), "users", "a@x.com", "secret")
	require.NoError(t, err)

	_, err = second.GetFullList(context.Background(), "contacts", ListOptions{})
	assert.NoError(t, err, "second client sends the token saved by the first")
}
