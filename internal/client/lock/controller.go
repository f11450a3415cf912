// Package lock gates re-entry to an already-authenticated device behind the
// local PIN. Unlock state is deliberately in-memory only: every cold start
// re-demands the PIN, and nothing here touches persistence.
package lock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tandahq/tanda/internal/client/session"
	"github.com/tandahq/tanda/pkg/pincred"
)

// User-visible messages. Crypto failures never surface raw.
const (
	msgIncorrectPin = "Incorrect PIN"
	msgVerifyError  = "Error verifying PIN"
)

// Controller drives the lock screen: it accumulates sanitized PIN input,
// verifies it against the identity's stored hash, and tracks the transient
// unlocked flag for this foreground lifetime.
type Controller struct {
	sessions *session.Store
	logger   *slog.Logger

	mu       sync.Mutex
	unlocked bool
	input    []rune
	message  string
	failures int
}

func New(sessions *session.Store, logger *slog.Logger) *Controller {
	return &Controller{sessions: sessions, logger: logger}
}

// Locked reports whether the device currently demands a PIN: a signed-in
// identity with a concrete (non-pending) hash that has not unlocked in this
// foreground lifetime. Everything else, including PIN-less accounts, is
// not locked.
func (c *Controller) Locked() bool {
	snap := c.sessions.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil || !snap.User.Pin.IsSet() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.unlocked
}

// Append feeds one entered character. Non-digits are silently dropped, not
// rejected with an error, and input caps at the PIN length.
func (c *Controller) Append(r rune) {
	if r < '0' || r > '9' {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.input) >= pincred.PinLength {
		return
	}
	c.input = append(c.input, r)
}

// Backspace removes the last entered digit.
func (c *Controller) Backspace() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.input) > 0 {
		c.input = c.input[:len(c.input)-1]
	}
}

// Input returns the digits entered so far.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.input)
}

// CanSubmit reports whether exactly four digits are present.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.input) == pincred.PinLength
}

// Message returns the currently displayed failure message, if any.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Failures returns how many wrong PINs were entered since the last unlock.
// Display only; nothing throttles on it.
func (c *Controller) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// Submit verifies the entered PIN against the stored hash. On success the
// device unlocks for the rest of this foreground lifetime. On a wrong PIN
// the input clears and an inline message appears, ready for a retry. A
// crypto failure shows a generic message and keeps the device locked.
func (c *Controller) Submit() bool {
	snap := c.sessions.Snapshot()
	if snap.User == nil {
		return false
	}
	hash, ok := snap.User.Pin.Hash()
	if !ok {
		return false
	}

	c.mu.Lock()
	pin := string(c.input)
	c.mu.Unlock()
	if len(pin) != pincred.PinLength {
		return false
	}

	match, err := pincred.Verify(pin, hash)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Warn("pin verification failed", "error", err)
		c.message = msgVerifyError
		return false
	}
	if !match {
		c.failures++
		c.message = msgIncorrectPin
		c.input = c.input[:0]
		return false
	}

	c.unlocked = true
	c.message = ""
	c.failures = 0
	c.input = c.input[:0]
	return true
}

// Relock drops the unlocked flag, called when the app leaves the
// foreground so the next re-entry demands the PIN again.
func (c *Controller) Relock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlocked = false
	c.input = c.input[:0]
	c.message = ""
}

// Logout is the "log out and switch account" escape hatch on the lock
// screen. It routes through the session store and bypasses PIN
// verification entirely; once the session is destroyed the lock state is
// irrelevant.
func (c *Controller) Logout(ctx context.Context) error {
	return c.sessions.Logout(ctx)
}
