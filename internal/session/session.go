// Package session holds the signed-in user and mirrors it to the session
// store so it survives restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/models"
	"github.com/safar/supershop/internal/store"
	"go.uber.org/zap"
)

var (
	ErrNotSignedIn        = errors.New("not signed in")
	ErrMissingCredentials = errors.New("email and password are required")
)

// API is the part of the storefront client the session needs.
type API interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.Auth, error)
	Register(ctx context.Context, req api.RegisterRequest) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, update api.ProfileUpdate) (*models.User, error)
}

type Session struct {
	api    API
	kv     store.KV
	logger *zap.Logger

	mu       sync.RWMutex
	user     *models.User
	token    string
	onLogout []func()
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(client API, kv store.KV, opts ...Option) *Session {
	s := &Session{
		api:    client,
		kv:     kv,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init restores the session from the store. A missing or unreadable user
// leaves the session signed out; only store failures are returned.
func (s *Session) Init(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, store.KeyUser)
	if errors.Is(err, store.ErrNotFound) {
		s.set(nil, "")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == 0 {
		s.logger.Warn("ignoring malformed stored user", zap.Error(err))
		s.set(nil, "")
		return nil
	}

	token, err := s.kv.Get(ctx, store.KeyToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load session token: %w", err)
	}

	s.set(&user, token)
	s.logger.Debug("session restored", zap.Int64("user_id", user.ID))
	return nil
}

func (s *Session) set(user *models.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0, false
	}
	return s.user.ID, true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsAdmin()
}

// OnLogout registers fn to run after Logout clears the session.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	auth, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, &auth.User, auth.Token); err != nil {
		return nil, err
	}
	s.logger.Info("signed in", zap.Int64("user_id", auth.User.ID), zap.String("role", auth.User.Role))
	return s.User(), nil
}

// Register creates the account and signs it in. The storefront issues no
// token on registration, so a local one is derived from the user id.
func (s *Session) Register(ctx context.Context, req api.RegisterRequest) (*models.User, error) {
	user, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, user, fmt.Sprintf("token-%d", user.ID)); err != nil {
		return nil, err
	}
	s.logger.Info("registered", zap.Int64("user_id", user.ID))
	return s.User(), nil
}

func (s *Session) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*models.User, error) {
	current := s.User()
	if current == nil {
		return nil, ErrNotSignedIn
	}

	updated, err := s.api.UpdateProfile(ctx, current.ID, update)
	if err != nil {
		return nil, err
	}
	if updated.CreatedAt == nil {
		updated.CreatedAt = current.CreatedAt
	}

	if err := s.persist(ctx, updated, s.Token()); err != nil {
		return nil, err
	}
	return s.User(), nil
}

// Logout clears the in-memory and persisted session, then runs the
// OnLogout hooks. Hooks run even when the store delete fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	err := s.kv.Delete(ctx, store.KeyUser, store.KeyToken)
	for _, fn := range hooks {
		fn()
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) persist(ctx context.Context, user *models.User, token string) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Put(ctx, store.KeyUser, string(payload)); err != nil {
		return fmt.Errorf("save session user: %w", err)
	}
	if err := s.kv.Put(ctx, store.KeyToken, token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}

	u := *user
	s.set(&u, token)
	return nil
}
