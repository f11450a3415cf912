package domain

import (
	"encoding/json"
	"fmt"
)

// Role is assigned at account creation and immutable afterwards.
type Role string

const (
	RoleOrganizer Role = "ORGANIZER"
	RoleMember    Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleMember
}

// PinPendingSentinel is the value the tanda-api stores in pin_hash for a
// user who has authenticated but not yet chosen a PIN. It exists only on
// the wire; in-process code uses PinState.
const PinPendingSentinel = "PENDING"

type pinKind int

const (
	pinNotSet pinKind = iota
	pinPending
	pinSet
)

// PinState is the local-PIN configuration of an identity:
//
//	NotSet  — PIN lock is not configured for this account
//	Pending — the account must choose a PIN before it can be used
//	Set     — a concrete PIN hash exists and gates device re-entry
//
// It serializes to the provider's nullable pin_hash string: null for
// NotSet, the PENDING sentinel for Pending, and the hash itself for Set.
type PinState struct {
	kind pinKind
	hash string
}

func PinNotSet() PinState  { return PinState{kind: pinNotSet} }
func PinPending() PinState { return PinState{kind: pinPending} }

// PinSet wraps a concrete PIN hash. An empty hash degrades to NotSet
// rather than producing a Set state that can never verify.
func PinSet(hash string) PinState {
	if hash == "" {
		return PinNotSet()
	}
	return PinState{kind: pinSet, hash: hash}
}

func (p PinState) IsNotSet() bool  { return p.kind == pinNotSet }
func (p PinState) IsPending() bool { return p.kind == pinPending }
func (p PinState) IsSet() bool     { return p.kind == pinSet }

// Hash returns the stored PIN hash; ok is false unless the state is Set.
func (p PinState) Hash() (hash string, ok bool) {
	if p.kind != pinSet {
		return "", false
	}
	return p.hash, true
}

func (p PinState) String() string {
	switch p.kind {
	case pinPending:
		return "pending"
	case pinSet:
		return "set"
	default:
		return "not-set"
	}
}

// MarshalJSON encodes to the wire representation (nullable pin_hash string).
func (p PinState) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case pinNotSet:
		return []byte("null"), nil
	case pinPending:
		return json.Marshal(PinPendingSentinel)
	default:
		return json.Marshal(p.hash)
	}
}

// UnmarshalJSON decodes the wire representation. Any non-null, non-sentinel
// string is treated as a hash; pincred decides later whether it is usable.
func (p *PinState) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pin state: %w", err)
	}
	switch {
	case raw == nil:
		*p = PinNotSet()
	case *raw == PinPendingSentinel:
		*p = PinPending()
	default:
		*p = PinSet(*raw)
	}
	return nil
}

// Identity is the durable user record as the client sees it. Profile fields
// beyond role and PIN state are opaque to the session core and passed
// through untouched.
type Identity struct {
	ID          string   `json:"id"`
	Role        Role     `json:"role"`
	DisplayName string   `json:"display_name"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Pin         PinState `json:"pin_hash"`
}
