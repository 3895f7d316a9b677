// ABOUTME: Session manager owning the token/user pair for the whole client
// ABOUTME: Hydrates from the store, runs login/register/logout, and notifies subscribers

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/markalston/cabdesk/internal/client"
	"github.com/rs/zerolog"
)

// Store keys holding the persisted session
const (
	KeyToken = "token"
	KeyUser  = "user"
)

const (
	msgLoginFailed        = "login failed"
	msgRegistrationFailed = "registration failed"
	minPasswordLength     = 6
)

// State is the lifecycle stage of the session
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Snapshot is an immutable view of the session handed to readers
type Snapshot struct {
	State State
	User  *UserProfile
}

// IsAuthenticated reports whether the snapshot carries a logged-in user
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Role returns the user's role, or RoleUnknown when logged out
func (s Snapshot) Role() Role {
	if s.User == nil {
		return RoleUnknown
	}
	return s.User.Role
}

// Store is the persistence the manager needs; store.Store satisfies it
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// AuthService is the remote authentication API; client.Client satisfies it
type AuthService interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) (string, error)
}

// Manager is the single owner of the client's session
type Manager struct {
	store Store
	auth  AuthService
	log   zerolog.Logger

	mu         sync.RWMutex
	session    Session
	state      State
	generation uint64
	subs       map[int]chan Snapshot
	nextSub    int
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for store and lifecycle events
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a manager in the loading state
func NewManager(store Store, auth AuthService, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		auth:  auth,
		log:   zerolog.Nop(),
		state: StateLoading,
		subs:  make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Hydrate restores the session from the store. Only the first call, or the
// first call before any login/logout settles the state, has any effect.
func (m *Manager) Hydrate(ctx context.Context) State {
	m.mu.RLock()
	if m.state != StateLoading {
		s := m.state
		m.mu.RUnlock()
		return s
	}
	m.mu.RUnlock()

	restored := m.readStore(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateLoading {
		return m.state
	}
	m.session = restored
	if restored.Empty() {
		m.state = StateUnauthenticated
	} else {
		m.state = StateAuthenticated
	}
	m.log.Debug().Str("state", m.state.String()).Msg("session hydrated")
	m.publishLocked()
	return m.state
}

func (m *Manager) readStore(ctx context.Context) Session {
	token, okToken, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("reading stored token")
		return Session{}
	}
	raw, okUser, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		m.log.Warn().Err(err).Msg("reading stored user")
		return Session{}
	}
	if !okToken || !okUser || token == "" {
		return Session{}
	}

	var user UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.Warn().Err(err).Msg("stored user is corrupt; starting logged out")
		return Session{}
	}
	if user.Email == "" {
		m.log.Warn().Msg("stored user has no email; starting logged out")
		return Session{}
	}
	if user.Username == "" {
		user.Username = DeriveUsername(user.Email)
	}
	if user.Role == "" {
		user.Role = RoleUnknown
	}
	return Session{Token: token, User: &user}
}

// Login authenticates and replaces the current session on success.
// On any failure the existing session is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	var problems []string
	if email == "" {
		problems = append(problems, "email is required")
	}
	if password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return validationError("login", problems...)
	}

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	resp, err := m.auth.Login(ctx, client.LoginRequest{Email: email, Password: password})
	if err != nil {
		m.log.Info().Err(err).Str("email", email).Msg("login failed")
		return classify("login", msgLoginFailed, err)
	}

	user := NewUserProfile(email, resp.Role)
	payload, err := json.Marshal(user)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: "login", Message: msgLoginFailed, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		m.log.Debug().Str("email", email).Msg("discarding superseded login")
		return ErrSuperseded
	}

	// The auth call may have outlived ctx; persistence must still complete
	storeCtx := context.WithoutCancel(ctx)
	if err := m.persistLocked(storeCtx, resp.Token, string(payload)); err != nil {
		m.log.Error().Err(err).Msg("persisting session")
		m.restoreStoreLocked(storeCtx)
		return &Error{Kind: KindNetwork, Op: "login", Message: "could not save session", Err: err}
	}

	m.session = Session{Token: resp.Token, User: &user}
	m.state = StateAuthenticated
	m.log.Info().Str("email", email).Str("role", user.Role.String()).Msg("logged in")
	m.publishLocked()
	return nil
}

func (m *Manager) persistLocked(ctx context.Context, token, user string) error {
	if err := m.store.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	return m.store.Set(ctx, KeyUser, user)
}

// restoreStoreLocked puts the store back in step with the in-memory session
// after a failed write
func (m *Manager) restoreStoreLocked(ctx context.Context) {
	if m.session.Empty() {
		m.removeKeysLocked(ctx)
		return
	}
	payload, err := json.Marshal(m.session.User)
	if err == nil {
		err = m.persistLocked(ctx, m.session.Token, string(payload))
	}
	if err != nil {
		m.log.Warn().Err(err).Msg("restoring stored session")
	}
}

func (m *Manager) removeKeysLocked(ctx context.Context) {
	for _, key := range []string{KeyToken, KeyUser} {
		if err := m.store.Remove(ctx, key); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("removing stored session key")
		}
	}
}

// Register creates an account and then logs in with the same credentials
func (m *Manager) Register(ctx context.Context, r Registration) error {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)

	var problems []string
	if r.Username == "" {
		problems = append(problems, "username is required")
	}
	if r.Email == "" {
		problems = append(problems, "email is required")
	}
	if len(r.Password) < minPasswordLength {
		problems = append(problems, "password must be at least 6 characters")
	}
	if !r.Role.Known() {
		problems = append(problems, "role must be ADMIN, HR or DRIVER")
	}
	if len(problems) > 0 {
		return validationError("register", problems...)
	}

	_, err := m.auth.Register(ctx, client.RegisterRequest{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role.String(),
	})
	if err != nil {
		m.log.Info().Err(err).Str("email", r.Email).Msg("registration failed")
		return classify("register", msgRegistrationFailed, err)
	}
	m.log.Info().Str("email", r.Email).Str("role", r.Role.String()).Msg("registered")

	if err := m.Login(ctx, r.Email, r.Password); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrRegisteredNotLoggedIn, err)
	}
	return nil
}

// Logout clears the session and the store. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.removeKeysLocked(context.WithoutCancel(ctx))
	m.session = Session{}
	m.state = StateUnauthenticated
	m.log.Info().Msg("logged out")
	m.publishLocked()
}

// State returns the current lifecycle stage
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a user is logged in
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated
}

// CurrentUser returns a copy of the logged-in user, or nil
func (m *Manager) CurrentUser() *UserProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.session.User)
}

// Token returns the current bearer token, or "" when logged out
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// Snapshot returns the current state and user together
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Subscribe delivers the current snapshot and every later change. Slow
// readers only see the latest snapshot. The returned func unsubscribes.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- m.snapshotLocked()
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, User: copyUser(m.session.User)}
}

// publishLocked must be called with mu held for writing
func (m *Manager) publishLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func copyUser(u *UserProfile) *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// classify turns an auth service error into a session Error. The server's
// own message wins; otherwise the generic fallback is used.
func classify(op, fallback string, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return &Error{Kind: KindRejected, Op: op, Message: msg, Err: err}
	}
	return &Error{Kind: KindNetwork, Op: op, Message: fallback, Err: err}
}
