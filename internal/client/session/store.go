// Package session holds the process-wide authenticated state: who is signed
// in, the remote session proving it, and the flags the rest of the client
// derives its behaviour from. Exactly one Store exists per running process
// and it is the sole writer of its own fields.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tandahq/tanda/internal/client/domain"
	"github.com/tandahq/tanda/internal/client/store"
	"github.com/tandahq/tanda/pkg/tandasdk"
)

// stateKey is the namespaced record the persisted subset lives under.
const stateKey = "tanda/session-state/v1"

// Provider is the slice of the tanda-api the session store consumes.
// *tandasdk.SDKClient satisfies it; tests substitute fakes.
type Provider interface {
	PasswordGrant(ctx context.Context, email, password, installID string) (*tandasdk.TokenResponse, error)
	CurrentSession(ctx context.Context, accessToken string) (*tandasdk.SessionInfo, error)
	SignOut(ctx context.Context, accessToken string) error
	GetIdentity(ctx context.Context, accessToken, userID string) (*tandasdk.IdentityRecord, error)
	UpdatePinHash(ctx context.Context, accessToken, userID, newHash string) error
}

// Snapshot is an immutable copy of the store state for guard evaluation and
// rendering.
type Snapshot struct {
	User            *domain.Identity
	Session         *domain.Session
	IsAuthenticated bool
	IsLoading       bool
	Err             string
}

// persistedState is the restricted subset that survives restarts. IsLoading
// and Err are deliberately absent: they reset on every cold start.
type persistedState struct {
	User            *domain.Identity `json:"user"`
	Session         *domain.Session  `json:"session"`
	IsAuthenticated bool             `json:"isAuthenticated"`
}

// Store is the session state container. Construct one at wiring time and
// pass it to the components that read it; there is no package singleton.
type Store struct {
	local  store.Store
	api    Provider
	logger *slog.Logger

	mu              sync.RWMutex
	user            *domain.Identity
	session         *domain.Session
	isAuthenticated bool
	isLoading       bool
	errMsg          string

	installID string

	// Operation latches. initStarted makes Initialize a once-per-process
	// operation; logoutInFlight is the explicit idle/inFlight state that
	// stops a double-tapped logout from racing itself.
	initStarted    bool
	logoutInFlight bool

	subMu       sync.Mutex
	subscribers []func()
}

// New creates a Store. IsLoading starts true and stays true until
// Initialize completes, so guarded routes show a loading state rather than
// flashing "unauthenticated" before the first remote check.
func New(local store.Store, api Provider, logger *slog.Logger) *Store {
	return &Store{
		local:     local,
		api:       api,
		logger:    logger,
		isLoading: true,
	}
}

// SetInstallID records the device identifier attached to sign-in requests.
func (s *Store) SetInstallID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installID = id
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		User:            s.user,
		Session:         s.session,
		IsAuthenticated: s.isAuthenticated,
		IsLoading:       s.isLoading,
		Err:             s.errMsg,
	}
}

// Subscribe registers fn to run after every state mutation. Used for
// reactive guard re-evaluation; fn must not call back into the store's
// mutators.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Rehydrate loads the persisted subset from local state. It runs
// synchronously at startup, before Initialize and before any guard
// evaluation. A missing or corrupt record yields a fresh unauthenticated
// state; rehydration never fails the boot.
func (s *Store) Rehydrate(ctx context.Context) {
	raw, err := s.local.Get(ctx, stateKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to read persisted session state", "error", err)
		}
		return
	}

	var ps persistedState
	if err := json.Unmarshal(raw, &ps); err != nil {
		s.logger.Warn("discarding corrupt persisted session state", "error", err)
		return
	}

	s.mu.Lock()
	s.user = ps.User
	s.session = ps.Session
	// Recomputed rather than trusted: the invariant is
	// isAuthenticated == (session != nil) regardless of what was stored.
	s.isAuthenticated = ps.Session != nil
	s.mu.Unlock()

	s.notify()
}

// Initialize confirms any rehydrated session with the provider and fetches
// the identity it belongs to. It runs once per process lifetime; repeat
// calls are no-ops. IsLoading is cleared exactly once on every exit path.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.initStarted {
		s.mu.Unlock()
		return
	}
	s.initStarted = true
	s.isLoading = true
	sess := s.session
	s.mu.Unlock()

	defer s.SetLoading(false)

	if sess == nil {
		return
	}

	if sess.Expired(time.Now()) {
		s.logger.Info("stored session expired, discarding")
		s.clearSession(ctx)
		return
	}

	info, err := s.api.CurrentSession(ctx, sess.AccessToken)
	if err != nil {
		// Transport failure: the provider was unreachable, which says
		// nothing about the session. Keep the cached state so a flaky
		// network never logs anyone out; surface the error instead. The
		// user therefore stays signed in on cached credentials after a
		// failed confirmation; only a definitive rejection clears them.
		s.logger.Warn("session confirmation failed", "error", err)
		s.SetError("could not reach the server to confirm your session")
		return
	}
	if info == nil {
		// Definitive answer: the session is gone.
		s.logger.Info("stored session rejected by provider, discarding")
		s.clearSession(ctx)
		return
	}

	record, err := s.api.GetIdentity(ctx, sess.AccessToken, info.UserID)
	switch {
	case errors.Is(err, tandasdk.ErrNotFound):
		// Authenticated but profile-less. Representable, not fatal; the
		// guard routes this to sign-in rather than crashing.
		s.logger.Warn("identity record missing for confirmed session", "user_id", info.UserID)
		s.SetUser(ctx, nil)
	case err != nil:
		s.logger.Warn("identity fetch failed", "error", err)
		s.SetError("could not load your profile")
	default:
		s.SetUser(ctx, identityFromRecord(record))
	}
}

// SignIn performs the password grant and populates session and identity.
// On failure the state is left untouched apart from Err.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	s.SetLoading(true)
	defer s.SetLoading(false)

	s.mu.RLock()
	installID := s.installID
	s.mu.RUnlock()

	token, err := s.api.PasswordGrant(ctx, email, password, installID)
	if err != nil {
		s.SetError(signInMessage(err))
		return err
	}

	expiresAt, err := tandasdk.TokenExpiry(token.AccessToken)
	if err != nil || expiresAt.IsZero() {
		// Fall back to the advertised lifetime when the token carries no
		// readable expiry claim.
		expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	sess := &domain.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserID:       token.UserID,
		ExpiresAt:    expiresAt,
	}
	s.SetSession(ctx, sess)

	record, err := s.api.GetIdentity(ctx, token.AccessToken, token.UserID)
	switch {
	case errors.Is(err, tandasdk.ErrNotFound):
		s.SetUser(ctx, nil)
	case err != nil:
		s.SetError("could not load your profile")
		return err
	default:
		s.SetUser(ctx, identityFromRecord(record))
	}

	s.SetError("")
	return nil
}

// Logout signs out remotely and, only on confirmed success, clears the
// local state. A failed sign-out keeps the session: silently pretending to
// have left a shared device logged out is worse than reporting the failure.
// Calling Logout when already signed out is a no-op. A second call while
// one is in flight returns immediately.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.logoutInFlight {
		s.mu.Unlock()
		return nil
	}
	if s.session == nil && s.user == nil {
		// Already signed out; idempotent, no error.
		s.mu.Unlock()
		return nil
	}
	s.logoutInFlight = true
	s.isLoading = true
	sess := s.session
	s.mu.Unlock()
	s.notify()

	defer func() {
		s.mu.Lock()
		s.logoutInFlight = false
		s.isLoading = false
		s.mu.Unlock()
		s.notify()
	}()

	if sess != nil {
		if err := s.api.SignOut(ctx, sess.AccessToken); err != nil {
			s.logger.Warn("remote sign-out failed", "error", err)
			s.SetError("sign out failed, you are still signed in")
			return err
		}
	}

	s.mu.Lock()
	s.user = nil
	s.session = nil
	s.isAuthenticated = false
	s.errMsg = ""
	s.mu.Unlock()
	s.persist(ctx)
	s.notify()

	s.logger.Info("signed out")
	return nil
}

// SetupPin hashes the chosen PIN, writes it to the provider, and updates
// the local identity from Pending to Set. hash must come from pincred.Hash;
// this method only owns the remote write and the state transition.
func (s *Store) SetupPin(ctx context.Context, hash string) error {
	s.mu.RLock()
	sess := s.session
	user := s.user
	s.mu.RUnlock()

	if sess == nil || user == nil {
		err := errors.New("session: pin setup requires an authenticated identity")
		s.SetError("you are not signed in")
		return err
	}

	if err := s.api.UpdatePinHash(ctx, sess.AccessToken, user.ID, hash); err != nil {
		s.logger.Warn("pin hash update failed", "error", err)
		s.SetError("could not save your PIN, try again")
		return err
	}

	updated := *user
	updated.Pin = domain.PinSet(hash)
	s.SetUser(ctx, &updated)
	s.SetError("")
	return nil
}

// SetSession assigns the session and recomputes IsAuthenticated from its
// presence. The persisted subset is written as a side effect.
func (s *Store) SetSession(ctx context.Context, sess *domain.Session) {
	s.mu.Lock()
	s.session = sess
	s.isAuthenticated = sess != nil
	s.mu.Unlock()
	s.persist(ctx)
	s.notify()
}

// SetUser assigns the identity. The persisted subset is written as a side
// effect.
func (s *Store) SetUser(ctx context.Context, user *domain.Identity) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.persist(ctx)
	s.notify()
}

// SetError records the last operation's user-facing failure message. An
// empty string clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	s.notify()
}

// SetLoading toggles the transient loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.isLoading = loading
	s.mu.Unlock()
	s.notify()
}

// clearSession drops session and authentication but keeps any cached user
// profile for the sign-in screen to prefill.
func (s *Store) clearSession(ctx context.Context) {
	s.mu.Lock()
	s.session = nil
	s.isAuthenticated = false
	s.mu.Unlock()
	s.persist(ctx)
	s.notify()
}

// persist writes the restricted subset. It only runs after a mutation has
// fully applied, so a crash mid-operation never stores inconsistent state.
func (s *Store) persist(ctx context.Context) {
	s.mu.RLock()
	ps := persistedState{
		User:            s.user,
		Session:         s.session,
		IsAuthenticated: s.isAuthenticated,
	}
	s.mu.RUnlock()

	raw, err := json.Marshal(ps)
	if err != nil {
		s.logger.Error("failed to encode session state", "error", err)
		return
	}
	if err := s.local.Put(ctx, stateKey, raw); err != nil {
		s.logger.Warn("failed to persist session state", "error", err)
	}
}

func identityFromRecord(record *tandasdk.IdentityRecord) *domain.Identity {
	pin := domain.PinNotSet()
	if record.PinHash != nil {
		if *record.PinHash == domain.PinPendingSentinel {
			pin = domain.PinPending()
		} else {
			pin = domain.PinSet(*record.PinHash)
		}
	}
	return &domain.Identity{
		ID:          record.ID,
		Role:        domain.Role(record.Role),
		DisplayName: record.DisplayName,
		AvatarURL:   record.AvatarURL,
		Pin:         pin,
	}
}

func signInMessage(err error) string {
	var apiErr *tandasdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == tandasdk.ErrorCodeInvalidGrant {
		return "invalid email or password"
	}
	return "sign in failed, check your connection and try again"
}
