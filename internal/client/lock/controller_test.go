package lock

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tandahq/tanda/internal/client/domain"
	"github.com/tandahq/tanda/internal/client/session"
	"github.com/tandahq/tanda/internal/client/store"
	"github.com/tandahq/tanda/pkg/idx"
	"github.com/tandahq/tanda/pkg/pincred"
)

type memStore struct {
	records map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.records[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	m.records[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.records, key)
	return nil
}

func (m *memStore) InstallID(context.Context) (idx.ID, error) { return idx.New(), nil }
func (m *memStore) ApplyMigrations() error                    { return nil }
func (m *memStore) Close() error                              { return nil }
func (m *memStore) Ping(context.Context) error                { return nil }

// signOutProvider fails every operation except a scriptable SignOut.
type signOutProvider struct {
	session.Provider
	signOut func(ctx context.Context, accessToken string) error
}

func (p *signOutProvider) SignOut(ctx context.Context, accessToken string) error {
	return p.signOut(ctx, accessToken)
}

func newLockedController(t *testing.T, pin string) (*Controller, *session.Store) {
	t.Helper()

	hash, err := pincred.Hash(pin)
	require.NoError(t, err)

	sessions := session.New(
		&memStore{records: map[string][]byte{}},
		&signOutProvider{signOut: func(context.Context, string) error { return nil }},
		slog.New(slog.DiscardHandler),
	)
	sessions.SetSession(context.Background(), &domain.Session{AccessToken: "at-1", UserID: "u1"})
	sessions.SetUser(context.Background(), &domain.Identity{
		ID:   "u1",
		Role: domain.RoleMember,
		Pin:  domain.PinSet(hash),
	})
	sessions.SetLoading(false)

	return New(sessions, slog.New(slog.DiscardHandler)), sessions
}

func TestLocked_Derivation(t *testing.T) {
	c, sessions := newLockedController(t, "1234")

	require.True(t, c.Locked(), "set pin and cold start means locked")

	// A pending PIN does not lock; setup handles it.
	sessions.SetUser(context.Background(), &domain.Identity{ID: "u1", Role: domain.RoleMember, Pin: domain.PinPending()})
	require.False(t, c.Locked())

	// No PIN configured: never locked.
	sessions.SetUser(context.Background(), &domain.Identity{ID: "u1", Role: domain.RoleMember, Pin: domain.PinNotSet()})
	require.False(t, c.Locked())

	// Signed out: lock state is irrelevant.
	sessions.SetSession(context.Background(), nil)
	require.False(t, c.Locked())
}

func TestAppend_Sanitizes(t *testing.T) {
	c, _ := newLockedController(t, "1234")

	for _, r := range "1a2-3 4x9" {
		c.Append(r)
	}

	// Non-digits dropped silently, capped at four digits.
	require.Equal(t, "1234", c.Input())
	require.True(t, c.CanSubmit())
}

func TestBackspace(t *testing.T) {
	c, _ := newLockedController(t, "1234")

	c.Append('1')
	c.Append('2')
	c.Backspace()
	require.Equal(t, "1", c.Input())
	require.False(t, c.CanSubmit())

	c.Backspace()
	c.Backspace() // empty is fine
	require.Equal(t, "", c.Input())
}

func TestSubmit_WrongThenRightPin(t *testing.T) {
	// End-to-end scenario: wrong PIN shows an inline message and clears the
	// field; the correct PIN then unlocks.
	c, _ := newLockedController(t, "1234")

	for _, r := range "0000" {
		c.Append(r)
	}
	require.False(t, c.Submit())
	require.True(t, c.Locked())
	require.Equal(t, "Incorrect PIN", c.Message())
	require.Equal(t, "", c.Input(), "field clears for retry")
	require.Equal(t, 1, c.Failures())

	for _, r := range "1234" {
		c.Append(r)
	}
	require.True(t, c.Submit())
	require.False(t, c.Locked())
	require.Empty(t, c.Message())
	require.Equal(t, 0, c.Failures())
}

func TestSubmit_RequiresFourDigits(t *testing.T) {
	c, _ := newLockedController(t, "1234")

	c.Append('1')
	c.Append('2')
	require.False(t, c.CanSubmit())
	require.False(t, c.Submit())
	require.True(t, c.Locked())
}

func TestSubmit_CorruptStoredHash(t *testing.T) {
	c, sessions := newLockedController(t, "1234")
	sessions.SetUser(context.Background(), &domain.Identity{
		ID:   "u1",
		Role: domain.RoleMember,
		Pin:  domain.PinSet("$argon2id$v=19$m=19456,t=1,p=1$!!!bad!!!$aGFzaA"),
	})

	for _, r := range "1234" {
		c.Append(r)
	}
	require.False(t, c.Submit())
	require.True(t, c.Locked())
	require.Equal(t, "Error verifying PIN", c.Message())
}

func TestRelock(t *testing.T) {
	c, _ := newLockedController(t, "1234")

	for _, r := range "1234" {
		c.Append(r)
	}
	require.True(t, c.Submit())
	require.False(t, c.Locked())

	// Foreground resume demands the PIN again.
	c.Relock()
	require.True(t, c.Locked())
	require.Equal(t, "", c.Input())
}

func TestLogout_BypassesPin(t *testing.T) {
	c, sessions := newLockedController(t, "1234")

	require.True(t, c.Locked())
	require.NoError(t, c.Logout(context.Background()))

	snap := sessions.Snapshot()
	require.False(t, snap.IsAuthenticated)
	require.Nil(t, snap.User)
	require.False(t, c.Locked())
}
