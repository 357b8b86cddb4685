// Package auth holds the client-side authentication state: the current token and
// the authenticated user record, change notifications, and credential persistence.
package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/contacts/pkg/logging"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// ChangeFunc is called after every change of the auth state. model is nil once
// the state has been cleared.
type ChangeFunc func(token string, model record.Record)

// Persister loads and stores credentials across process restarts.
type Persister interface {
	Load() (*Credentials, error)
	Store(creds *Credentials) error
}

type handlerEntry struct {
	id string
	fn ChangeFunc
}

// Store is the auth state shared by the remote client and its observers.
// Records handed out by Model must be treated as read-only; the store replaces
// them wholesale on every change.
type Store struct {
	mu       sync.RWMutex
	token    string
	model    record.Record
	handlers []handlerEntry
	// result of the last write to the persister
	persistErr error

	// emitMu serializes Save/Clear so observers see changes in write order.
	emitMu sync.Mutex

	persister Persister
	clock     clockwork.Clock
	logger    *logging.ColoredLogger
}

// Option configures a Store.
type Option func(*Store)

// WithPersister restores state from p at construction and writes every change back.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock sets the clock used for token expiry checks.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the store logger.
func WithLogger(l *logging.ColoredLogger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store and restores any persisted credentials. Restored
// credentials whose token is already expired are discarded, so the store starts
// unauthenticated instead of handing out a session the service will reject.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		clock:  clockwork.NewRealClock(),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.persister == nil {
		return s, nil
	}

	creds, err := s.persister.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return s, nil
	}

	if IsTokenExpired(creds.Token, s.clock.Now()) {
		s.logger.ComponentWarn(logging.ComponentAuth, "Discarding expired persisted session")
		if err := s.persister.Store(nil); err != nil {
			s.logger.ComponentWarn(logging.ComponentAuth, "Failed to remove expired credentials", zap.Error(err))
		}
		return s, nil
	}

	s.token = creds.Token
	s.model = creds.Record
	s.logger.ComponentDebug(logging.ComponentAuth, "Restored persisted session",
		zap.String("user_id", creds.Record.ID()))
	return s, nil
}

// Token returns the current auth token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Model returns the authenticated record, or nil when unauthenticated.
func (s *Store) Model() record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// IsValid reports whether a token is present and not expired.
func (s *Store) IsValid() bool {
	token := s.Token()
	return token != "" && !IsTokenExpired(token, s.clock.Now())
}

// PersistError returns the error from the most recent Save or Clear write to
// the persister, or nil when it succeeded or no persister is configured. The
// in-memory state is updated either way.
func (s *Store) PersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

func (s *Store) setPersistErr(err error) {
	s.mu.Lock()
	s.persistErr = err
	s.mu.Unlock()
}

// Save replaces the auth state and notifies every handler.
func (s *Store) Save(token string, model record.Record) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.token = token
	s.model = model
	handlers := append([]handlerEntry(nil), s.handlers...)
	s.mu.Unlock()

	if s.persister != nil {
		now := s.clock.Now()
		creds := &Credentials{Token: token, Record: model, IssuedAt: now, LastUsedAt: now}
		err := s.persister.Store(creds)
		if err != nil {
			s.logger.ComponentWarn(logging.ComponentAuth, "Failed to persist credentials", zap.Error(err))
		}
		s.setPersistErr(err)
	}

	for _, h := range handlers {
		h.fn(token, model)
	}
}

// Clear drops the auth state and notifies every handler with a nil model.
func (s *Store) Clear() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.model = nil
	handlers := append([]handlerEntry(nil), s.handlers...)
	s.mu.Unlock()

	if s.persister != nil {
		err := s.persister.Store(nil)
		if err != nil {
			s.logger.ComponentWarn(logging.ComponentAuth, "Failed to remove credentials", zap.Error(err))
		}
		s.setPersistErr(err)
	}

	for _, h := range handlers {
		h.fn("", nil)
	}
}

// OnChange registers fn for every subsequent change and returns a function
// that removes it. Handlers run synchronously in registration order and must not
// call Save or Clear.
func (s *Store) OnChange(fn ChangeFunc) (unsubscribe func()) {
	id := uuid.NewString()

	s.mu.Lock()
	s.handlers = append(s.handlers, handlerEntry{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, h := range s.handlers {
				if h.id == id {
					s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// IsTokenExpired reports whether token is unusable at now. The signature is not
// verified; only the exp claim is read. Tokens that cannot be decoded count as
// expired, tokens without exp never expire.
func IsTokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
