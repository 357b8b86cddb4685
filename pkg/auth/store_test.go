package auth

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/contacts/pkg/record"
)

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"id": "u1", "type": "auth"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type memPersister struct {
	mu       sync.Mutex
	creds    *Credentials
	saves    int
	storeErr error
}

func (m *memPersister) Load() (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *memPersister) Store(c *Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.creds = c
	m.saves++
	return nil
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsTokenExpired("", now))
	assert.True(t, IsTokenExpired("not-a-jwt", now))
	assert.True(t, IsTokenExpired(signToken(t, now.Add(-time.Minute)), now))
	assert.True(t, IsTokenExpired(signToken(t, now), now))
	assert.False(t, IsTokenExpired(signToken(t, now.Add(time.Hour)), now))
	assert.False(t, IsTokenExpired(signToken(t, time.Time{}), now))
}

func TestStoreSaveClearNotify(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s, err := NewStore(WithClock(clock))
	require.NoError(t, err)
	assert.Nil(t, s.Model())
	assert.False(t, s.IsValid())

	var seen []record.Record
	unsubscribe := s.OnChange(func(token string, model record.Record) {
		seen = append(seen, model)
	})

	user := record.Record{"id": "u1", "email": "a@x.com"}
	tok := signToken(t, clock.Now().Add(time.Hour))
	s.Save(tok, user)

	assert.Equal(t, tok, s.Token())
	assert.Equal(t, user, s.Model())
	assert.True(t, s.IsValid())

	clock.Advance(2 * time.Hour)
	assert.False(t, s.IsValid(), "token should expire with the clock")

	s.Clear()
	assert.Equal(t, "", s.Token())
	assert.Nil(t, s.Model())

	require.Len(t, seen, 2)
	assert.Equal(t, user, seen[0])
	assert.Nil(t, seen[1])

	unsubscribe()
	unsubscribe()
	s.Save(tok, user)
	assert.Len(t, seen, 2, "unsubscribed handler must not be called")
}

func TestStoreHandlerOrder(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)

	var order []string
	s.OnChange(func(string, record.Record) { order = append(order, "first") })
	unsub := s.OnChange(func(string, record.Record) { order = append(order, "second") })
	s.OnChange(func(string, record.Record) { order = append(order, "third") })
	unsub()

	s.Clear()
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestStoreRestore(t *testing.T) {
	clock := clockwork.NewFakeClock()

	t.Run("valid_credentials_restored", func(t *testing.T) {
		p := &memPersister{creds: &Credentials{
			Token:  signToken(t, clock.Now().Add(time.Hour)),
			Record: record.Record{"id": "u1"},
		}}
		s, err := NewStore(WithPersister(p), WithClock(clock))
		require.NoError(t, err)
		assert.Equal(t, "u1", s.Model().ID())
		assert.True(t, s.IsValid())
	})

	t.Run("expired_credentials_discarded", func(t *testing.T) {
		p := &memPersister{creds: &Credentials{
			Token:  signToken(t, clock.Now().Add(-time.Hour)),
			Record: record.Record{"id": "u1"},
		}}
		s, err := NewStore(WithPersister(p), WithClock(clock))
		require.NoError(t, err)
		assert.Nil(t, s.Model())
		assert.Nil(t, p.creds, "expired credentials should be removed from persistence")
	})

	t.Run("changes_written_back", func(t *testing.T) {
		p := &memPersister{}
		s, err := NewStore(WithPersister(p), WithClock(clock))
		require.NoError(t, err)

		s.Save("tok", record.Record{"id": "u2"})
		require.NotNil(t, p.creds)
		assert.Equal(t, "tok", p.creds.Token)
		assert.Equal(t, clock.Now(), p.creds.IssuedAt)

		s.Clear()
		assert.Nil(t, p.creds)
		assert.Equal(t, 2, p.saves)
		assert.NoError(t, s.PersistError())
	})

	t.Run("write_failure_reported", func(t *testing.T) {
		p := &memPersister{storeErr: errors.New("disk full")}
		s, err := NewStore(WithPersister(p), WithClock(clock))
		require.NoError(t, err)

		var seen []string
		s.OnChange(func(token string, _ record.Record) { seen = append(seen, token) })

		s.Save("tok", record.Record{"id": "u2"})
		assert.EqualError(t, s.PersistError(), "disk full")
		assert.Equal(t, "tok", s.Token(), "the in-memory state still changes")
		assert.Equal(t, []string{"tok"}, seen)
		assert.Nil(t, p.creds)

		p.mu.Lock()
		p.storeErr = nil
		p.mu.Unlock()
		s.Save("tok2", record.Record{"id": "u2"})
		assert.NoError(t, s.PersistError(), "a later successful write clears the error")
	})

	t.Run("no_persister", func(t *testing.T) {
		s, err := NewStore(WithClock(clock))
		require.NoError(t, err)
		s.Save("tok", nil)
		assert.NoError(t, s.PersistError())
	})

	t.Run("file_round_trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		p := &FilePersister{Path: path, Endpoint: "http://svc"}

		s1, err := NewStore(WithPersister(p), WithClock(clock))
		require.NoError(t, err)
		s1.Save(signToken(t, clock.Now().Add(time.Hour)), record.Record{"id": "u3", "email": "c@x.com"})

		s2, err := NewStore(WithPersister(p), WithClock(clock))
		require.NoError(t, err)
		assert.Equal(t, "u3", s2.Model().ID())
		assert.Equal(t, "c@x.com", s2.Model().String("email"))
	})
}
