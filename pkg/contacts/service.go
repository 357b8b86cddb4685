// Package contacts binds a session cell to the remote client's auth state and
// forwards contact CRUD to the contacts collection.
package contacts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/contacts/pkg/client"
	cerrors "github.com/DeBrosOfficial/contacts/pkg/errors"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
	"github.com/DeBrosOfficial/contacts/pkg/record"
	"github.com/DeBrosOfficial/contacts/pkg/session"
)

const (
	DefaultAuthCollection     = "users"
	DefaultContactsCollection = "contacts"

	// listSort orders contacts newest first.
	listSort = "-created"
)

// Operation names used in failure logs.
const (
	OpLogin  = "login"
	OpList   = "listContacts"
	OpCreate = "createContact"
	OpUpdate = "updateContact"
	OpDelete = "deleteContact"
)

// Config configures a Service. Zero fields take defaults.
type Config struct {
	AuthCollection     string
	ContactsCollection string
	Logger             *logging.ColoredLogger
}

// Service is the session-and-collection facade. It is safe for concurrent use.
type Service struct {
	remote      Remote
	state       AuthState
	authColl    string
	contacts    string
	logger      *logging.ColoredLogger
	cell        *session.Cell[record.Record]
	unsubscribe func()
	closeOnce   sync.Once
}

// New creates the facade. The session cell starts at whatever session state
// already holds and follows every change state reports afterwards.
func New(remote Remote, state AuthState, cfg Config) *Service {
	if cfg.AuthCollection == "" {
		cfg.AuthCollection = DefaultAuthCollection
	}
	if cfg.ContactsCollection == "" {
		cfg.ContactsCollection = DefaultContactsCollection
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	s := &Service{
		remote:   remote,
		state:    state,
		authColl: cfg.AuthCollection,
		contacts: cfg.ContactsCollection,
		logger:   cfg.Logger,
		cell:     session.NewCell(state.Model()),
	}
	s.unsubscribe = state.OnChange(func(_ string, model record.Record) {
		s.cell.Set(model)
	})
	return s
}

// Session returns the reactive session cell. A nil value means signed out.
func (s *Service) Session() *session.Cell[record.Record] {
	return s.cell
}

// Login authenticates with a password. On success the cell is set to the
// auth state's model, which the remote client has just replaced with the
// returned user record. A change that lands on the auth state before Login
// returns wins over the login response.
func (s *Service) Login(ctx context.Context, identity, password string) error {
	_, err := call(s, OpLogin, "Failed to log in", func() (struct{}, error) {
		if _, err := s.remote.AuthWithPassword(ctx, s.authColl, identity, password); err != nil {
			return struct{}{}, err
		}
		model := s.state.Model()
		s.cell.Set(model)
		s.logger.ComponentInfo(logging.ComponentContacts, "Logged in", zap.String("user_id", model.ID()))
		return struct{}{}, nil
	})
	return err
}

// Logout drops the local session. It never contacts the service.
func (s *Service) Logout() {
	s.state.Clear()
	s.cell.Set(nil)
	s.logger.ComponentInfo(logging.ComponentContacts, "Logged out")
}

// ListContacts returns every contact, newest first. The slice is empty, not nil,
// when there are none.
func (s *Service) ListContacts(ctx context.Context) ([]record.Record, error) {
	return call(s, OpList, "Failed to list contacts", func() ([]record.Record, error) {
		items, err := s.remote.GetFullList(ctx, s.contacts, client.ListOptions{Sort: listSort})
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []record.Record{}
		}
		return items, nil
	})
}

// CreateContact creates a contact from fields and returns the stored record.
func (s *Service) CreateContact(ctx context.Context, fields map[string]any) (record.Record, error) {
	return call(s, OpCreate, "Failed to create contact", func() (record.Record, error) {
		return s.remote.Create(ctx, s.contacts, fields)
	})
}

// UpdateContact applies fields to the contact with id.
func (s *Service) UpdateContact(ctx context.Context, id string, fields map[string]any) (record.Record, error) {
	return call(s, OpUpdate, "Failed to update contact", func() (record.Record, error) {
		return s.remote.Update(ctx, s.contacts, id, fields)
	}, zap.String("id", id))
}

// DeleteContact deletes the contact with id.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	_, err := call(s, OpDelete, "Failed to delete contact", func() (struct{}, error) {
		return struct{}{}, s.remote.Delete(ctx, s.contacts, id)
	}, zap.String("id", id))
	return err
}

// Close stops following the auth state. The cell keeps its last value.
func (s *Service) Close() {
	s.closeOnce.Do(s.unsubscribe)
}

// call runs fn and, on failure, logs op with the error before returning that
// same error value.
func call[T any](s *Service, op, msg string, fn func() (T, error), fields ...zap.Field) (T, error) {
	v, err := fn()
	if err != nil {
		fields = append(fields,
			zap.String("operation", op),
			zap.String("code", cerrors.GetErrorCode(err)),
			zap.Error(err),
		)
		s.logger.ComponentError(logging.ComponentContacts, msg, fields...)
		return v, err
	}
	return v, nil
}
