package authclient

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is a snapshot of the client auth state.
type State struct {
	User  *User
	Token string

	// Role-scoped listings; nil until loaded.
	StaffUsers   []User
	ManagerUsers []User
	AdminUsers   []User

	// In-flight flags, true strictly between dispatch and settlement.
	SigningUp       bool
	LoggingIn       bool
	UpdatingProfile bool
}

func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.StaffUsers = cloneUsers(s.StaffUsers)
	out.ManagerUsers = cloneUsers(s.ManagerUsers)
	out.AdminUsers = cloneUsers(s.AdminUsers)
	return out
}

func cloneUsers(users []User) []User {
	if users == nil {
		return nil
	}
	return append(make([]User, 0, len(users)), users...)
}

// defaultLogoutTimeout bounds the server call made by Logout.
const defaultLogoutTimeout = 5 * time.Second

// Store mirrors the outcome of every Gateway call into State and a Mirror.
// Construct one per application and pass it to whatever needs auth state.
type Store struct {
	gateway  Gateway
	mirror   Mirror
	notifier Notifier
	log      zerolog.Logger

	logoutTimeout time.Duration

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithNotifier sets where user-visible messages go. Defaults to a LogNotifier.
func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) { s.notifier = n }
}

// WithLogoutTimeout bounds how long Logout waits for the server before
// clearing local state.
func WithLogoutTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.logoutTimeout = d }
}

// WithLogger sets the logger used for mirror failures.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore builds a Store and seeds the current user and token from mirror.
// A corrupt mirrored user is discarded.
func NewStore(ctx context.Context, gateway Gateway, mirror Mirror, opts ...StoreOption) (*Store, error) {
	s := &Store{
		gateway:       gateway,
		mirror:        mirror,
		log:           zerolog.Nop(),
		logoutTimeout: defaultLogoutTimeout,
		listeners:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Log: s.log}
	}

	raw, ok, err := mirror.Get(ctx, mirrorKeyUser)
	if err != nil {
		return nil, err
	}
	if ok {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.Warn().Err(err).Msg("discarding unreadable mirrored user")
		} else {
			s.state.User = &u
		}
	}

	token, ok, err := mirror.Get(ctx, mirrorKeyToken)
	if err != nil {
		return nil, err
	}
	if ok {
		s.state.Token = token
	}

	return s, nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to run after every state transition and returns a
// function that removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update applies fn under the lock and then notifies listeners with the result.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	s.unlockAndNotify()
}

// unlockAndNotify releases s.mu, which must be held, and runs the listeners
// outside the lock with a snapshot of the state.
func (s *Store) unlockAndNotify() {
	snapshot := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// begin sets the flag selected by pick, or returns ErrInFlight if it is already set.
func (s *Store) begin(pick func(*State) *bool) error {
	s.mu.Lock()
	flag := pick(&s.state)
	if *flag {
		s.mu.Unlock()
		return ErrInFlight
	}
	*flag = true
	s.unlockAndNotify()
	return nil
}

func (s *Store) fail(op string, err error) error {
	opErr := opError(op, err)
	s.log.Debug().Err(err).Str("op", op).Msg("auth operation failed")
	s.notifier.Error(opErr.Message)
	return opErr
}

func signingUp(st *State) *bool       { return &st.SigningUp }
func loggingIn(st *State) *bool       { return &st.LoggingIn }
func updatingProfile(st *State) *bool { return &st.UpdatingProfile }

// Signup creates an account and makes it the current session.
func (s *Store) Signup(ctx context.Context, req SignupRequest) error {
	if err := s.begin(signingUp); err != nil {
		return err
	}

	user, err := s.gateway.Signup(ctx, req)
	if err != nil {
		s.update(func(st *State) { st.SigningUp = false })
		return s.fail(OpSignup, err)
	}

	s.persistSession(ctx, user)
	s.update(func(st *State) {
		st.SigningUp = false
		st.User = user
		st.Token = user.Token
	})
	return nil
}

// Login authenticates and makes the returned user the current session.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.begin(loggingIn); err != nil {
		return err
	}

	user, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		s.update(func(st *State) { st.LoggingIn = false })
		return s.fail(OpLogin, err)
	}

	s.persistSession(ctx, user)
	s.update(func(st *State) {
		st.LoggingIn = false
		st.User = user
		st.Token = user.Token
	})
	return nil
}

// Logout ends the session locally. The server is told on a best-effort basis;
// local state and the mirror are cleared regardless, so Logout never fails.
func (s *Store) Logout(ctx context.Context) error {
	token := s.State().Token
	if token != "" {
		callCtx, cancel := context.WithTimeout(ctx, s.logoutTimeout)
		err := s.gateway.Logout(callCtx, token)
		cancel()
		if err != nil {
			s.log.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}

	for _, key := range []string{mirrorKeyUser, mirrorKeyToken} {
		if err := s.mirror.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to clear mirrored session")
		}
	}

	s.update(func(st *State) {
		st.User = nil
		st.Token = ""
	})
	s.notifier.Success("Successfully logged out!")
	return nil
}

// UpdateProfile replaces the current user's profile picture.
func (s *Store) UpdateProfile(ctx context.Context, profilePic string) error {
	if err := s.begin(updatingProfile); err != nil {
		return err
	}

	current := s.State()
	if current.User == nil || current.Token == "" {
		s.update(func(st *State) { st.UpdatingProfile = false })
		s.notifier.Error(msgNotAuthenticated)
		return &OpError{Op: OpUpdateProfile, Message: msgNotAuthenticated}
	}

	user, err := s.gateway.UpdateProfile(ctx, current.Token, profilePic)
	if err != nil {
		s.update(func(st *State) { st.UpdatingProfile = false })
		return s.fail(OpUpdateProfile, err)
	}

	s.writeMirror(ctx, mirrorKeyUser, user)
	s.update(func(st *State) {
		st.UpdatingProfile = false
		st.User = user
	})
	return nil
}

// LoadStaffUsers refreshes State.StaffUsers.
func (s *Store) LoadStaffUsers(ctx context.Context) error {
	return s.loadUsers(ctx, OpStaffUsers, RoleStaff, func(st *State, users []User) { st.StaffUsers = users })
}

// LoadManagerUsers refreshes State.ManagerUsers.
func (s *Store) LoadManagerUsers(ctx context.Context) error {
	return s.loadUsers(ctx, OpManagerUsers, RoleManager, func(st *State, users []User) { st.ManagerUsers = users })
}

// LoadAdminUsers refreshes State.AdminUsers.
func (s *Store) LoadAdminUsers(ctx context.Context) error {
	return s.loadUsers(ctx, OpAdminUsers, RoleAdmin, func(st *State, users []User) { st.AdminUsers = users })
}

func (s *Store) loadUsers(ctx context.Context, op, role string, apply func(*State, []User)) error {
	users, err := s.gateway.ListUsers(ctx, s.State().Token, role)
	if err != nil {
		return s.fail(op, err)
	}
	if users == nil {
		users = []User{}
	}

	s.update(func(st *State) { apply(st, users) })
	return nil
}

// RemoveUser deletes an account. Loaded role lists are left as they are;
// callers reload them when they need fresh data.
func (s *Store) RemoveUser(ctx context.Context, userID string) error {
	if err := s.gateway.RemoveUser(ctx, s.State().Token, userID); err != nil {
		return s.fail(OpRemoveUser, err)
	}
	return nil
}

func (s *Store) persistSession(ctx context.Context, user *User) {
	s.writeMirror(ctx, mirrorKeyUser, user)
	if err := s.mirror.Set(ctx, mirrorKeyToken, user.Token); err != nil {
		s.log.Warn().Err(err).Msg("failed to mirror token")
	}
}

func (s *Store) writeMirror(ctx context.Context, key string, user *User) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode user for mirror")
		return
	}
	if err := s.mirror.Set(ctx, key, string(raw)); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to mirror user")
	}
}
