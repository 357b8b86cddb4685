package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/DeBrosOfficial/contacts/pkg/httputil"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// AddUser registers an account in the auth collection and returns its public
// record. extra fields are copied onto the record.
func (s *Server) AddUser(email, password string, extra map[string]any) (record.Record, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email]; exists {
		return nil, fmt.Errorf("user %s already exists", email)
	}

	now := s.now()
	rec := record.Record{}
	for k, v := range extra {
		rec[k] = v
	}
	rec["id"] = newID()
	rec["collectionName"] = s.cfg.AuthCollection
	rec["email"] = email
	rec["verified"] = true
	rec["created"] = now
	rec["updated"] = now

	s.users[rec.ID()] = &user{record: rec, passwordHash: hash}
	s.emails[email] = rec.ID()
	return rec.Clone(), nil
}

// IssueToken signs an auth token for the user with id.
func (s *Server) IssueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"id":             userID,
		"type":           "auth",
		"collectionName": s.cfg.AuthCollection,
		"exp":            s.clock.Now().Add(s.cfg.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

// authenticate resolves the Authorization header to a user record. A missing
// header yields (nil, nil); a present but invalid token is an error.
func (s *Server) authenticate(r *http.Request) (record.Record, error) {
	raw := httputil.ExtractBearerToken(r)
	if raw == "" {
		if r.Header.Get("Authorization") != "" {
			return nil, fmt.Errorf("unsupported authorization scheme")
		}
		return nil, nil
	}
	if !httputil.IsJWT(raw) {
		return nil, fmt.Errorf("malformed token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	id, _ := claims["id"].(string)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("unknown user")
	}
	return u.record.Clone(), nil
}

func (s *Server) handleAuthWithPassword(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "collection") != s.cfg.AuthCollection {
		httputil.WriteError(w, http.StatusNotFound, "Missing or invalid auth collection context.")
		return
	}

	var body struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "An error occurred while loading the submitted data.")
		return
	}

	data := map[string]any{}
	if strings.TrimSpace(body.Identity) == "" {
		data["identity"] = httputil.FieldError("validation_required", "Cannot be blank.")
	}
	if body.Password == "" {
		data["password"] = httputil.FieldError("validation_required", "Cannot be blank.")
	}
	if len(data) > 0 {
		httputil.WriteErrorData(w, http.StatusBadRequest, "Failed to authenticate.", data)
		return
	}

	s.mu.RLock()
	var u *user
	if id, ok := s.emails[strings.ToLower(strings.TrimSpace(body.Identity))]; ok {
		u = s.users[id]
	}
	s.mu.RUnlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(body.Password)) != nil {
		s.logger.ComponentDebug(logging.ComponentDevServer, "Rejected password auth", zap.String("identity", body.Identity))
		httputil.WriteError(w, http.StatusBadRequest, "Failed to authenticate.")
		return
	}

	s.writeAuthResponse(w, u.record)
}

func (s *Server) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "collection") != s.cfg.AuthCollection {
		httputil.WriteError(w, http.StatusNotFound, "Missing or invalid auth collection context.")
		return
	}

	rec, err := s.authenticate(r)
	if err != nil || rec == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "The request requires valid record authorization token.")
		return
	}

	s.mu.RLock()
	current := s.users[rec.ID()].record.Clone()
	s.mu.RUnlock()
	s.writeAuthResponse(w, current)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, rec record.Record) {
	token, err := s.IssueToken(rec.ID())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to issue token.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"record": rec,
	})
}

// UpdateUser merges fields into the user record, e.g. to simulate a profile
// change made elsewhere that a later refresh should pick up.
func (s *Server) UpdateUser(id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	next := u.record.Clone()
	for k, v := range fields {
		next[k] = v
	}
	next["updated"] = s.now()
	u.record = next
	return nil
}
