// Package devserver is an in-memory stand-in for the hosted collection service.
// It speaks the same REST dialect as the real service closely enough for the
// client and the contacts facade to run against it in tests and local
// development. Nothing is persisted.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/contacts/pkg/httputil"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// CollectionConfig describes a record collection served by the dev server
type CollectionConfig struct {
	Name        string
	Required    []string // fields that must be present and non-empty
	RequireAuth bool     // every record endpoint needs a valid token
}

// Config configures a Server
type Config struct {
	Secret         []byte        // HMAC key for issued tokens
	TokenTTL       time.Duration // lifetime of issued tokens
	AuthCollection string        // name of the user collection
	Collections    []CollectionConfig
	Clock          clockwork.Clock
	Logger         *logging.ColoredLogger
}

// DefaultConfig serves a users auth collection and a contacts collection that
// requires authentication and a name.
func DefaultConfig() Config {
	return Config{
		Secret:         []byte("devserver-insecure-secret"),
		TokenTTL:       14 * 24 * time.Hour,
		AuthCollection: "users",
		Collections: []CollectionConfig{
			{Name: "contacts", Required: []string{"name"}, RequireAuth: true},
		},
	}
}

type storedRecord struct {
	seq  int64
	data record.Record
}

type user struct {
	record       record.Record
	passwordHash []byte
}

// Server is the in-memory collection service
type Server struct {
	cfg    Config
	clock  clockwork.Clock
	logger *logging.ColoredLogger
	router chi.Router

	mu          sync.RWMutex
	seq         int64
	users       map[string]*user // by id
	emails      map[string]string
	collections map[string]CollectionConfig
	records     map[string]map[string]*storedRecord // collection -> id -> record
}

// New creates a server from cfg. Zero fields of cfg fall back to DefaultConfig.
func New(cfg Config) *Server {
	def := DefaultConfig()
	if len(cfg.Secret) == 0 {
		cfg.Secret = def.Secret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = def.TokenTTL
	}
	if cfg.AuthCollection == "" {
		cfg.AuthCollection = def.AuthCollection
	}
	if cfg.Collections == nil {
		cfg.Collections = def.Collections
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	s := &Server{
		cfg:         cfg,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		users:       make(map[string]*user),
		emails:      make(map[string]string),
		collections: make(map[string]CollectionConfig),
		records:     make(map[string]map[string]*storedRecord),
	}
	for _, c := range cfg.Collections {
		s.collections[c.Name] = c
		s.records[c.Name] = make(map[string]*storedRecord)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"code": 200, "message": "API is healthy.", "data": map[string]any{}})
	})

	r.Route("/api/collections/{collection}", func(r chi.Router) {
		r.Post("/auth-with-password", s.handleAuthWithPassword)
		r.Post("/auth-refresh", s.handleAuthRefresh)
		r.Get("/records", s.handleList)
		r.Post("/records", s.handleCreate)
		r.Get("/records/{id}", s.handleView)
		r.Patch("/records/{id}", s.handleUpdate)
		r.Delete("/records/{id}", s.handleDelete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "The requested resource wasn't found.")
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.ComponentInfo(logging.ComponentDevServer, "Dev server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down dev server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.ComponentDebug(logging.ComponentDevServer, "Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) now() string {
	return record.FormatTime(s.clock.Now())
}

func (s *Server) nextSeq() int64 {
	s.seq++
	return s.seq
}
