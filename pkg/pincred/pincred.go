// Package pincred hashes and verifies the 4-digit unlock PIN.
//
// The PIN gates local re-entry on an already-authenticated device; it is
// never sent to the tanda-api in plaintext. Hashes use Argon2id encoded in
// PHC format so the salt and parameters travel with the hash.
package pincred

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Tuned for a 4-digit interactive unlock on phone-class
// hardware: tens of milliseconds per call, not the server-side profile.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 1
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// PinLength is the exact number of digits a PIN must have.
const PinLength = 4

// ErrCrypto reports a failure inside the hash or verify primitives: a
// malformed PIN input or a stored hash too corrupt to recompute against.
// Callers map it to a generic user-facing message, never display it raw.
var ErrCrypto = errors.New("pincred: crypto failure")

// Hash generates a PHC-format Argon2id hash of a 4-digit PIN with a fresh
// random salt, so two hashes of the same PIN differ.
func Hash(pin string) (string, error) {
	if err := validatePin(pin); err != nil {
		return "", err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCrypto, err)
	}
	hash := argon2.IDKey([]byte(pin), salt, iterations, memory, parallelism, keyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// PHC-style encoded string
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Verify recomputes the hash of pin using the salt and parameters embedded
// in encodedHash and compares in constant time.
//
// A structurally invalid encoding (wrong part count, not argon2id, wrong
// version) returns (false, nil): the stored value is simply not a hash this
// PIN could match. A hash that looks structurally right but cannot be
// recomputed against (undecodable salt/hash, unparsable parameters) returns
// (false, ErrCrypto) so the caller can show a generic error instead of a
// plain "incorrect PIN".
func Verify(pin, encodedHash string) (bool, error) {
	if err := validatePin(pin); err != nil {
		return false, nil
	}

	// Parse PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encodedHash) {
		if encodedHash[i] == '$' {
			parts = append(parts, encodedHash[start:i])
			start = i + 1
		}
	}
	parts = append(parts, encodedHash[start:])

	// Structure must be ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false, nil
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false, fmt.Errorf("%w: failed to parse parameters: %w", ErrCrypto, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: failed to decode salt: %w", ErrCrypto, err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: failed to decode hash: %w", ErrCrypto, err)
	}
	if len(expectedHash) == 0 {
		return false, fmt.Errorf("%w: empty hash", ErrCrypto)
	}

	computed := argon2.IDKey(
		[]byte(pin),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - hash lengths are tiny
	)

	return subtle.ConstantTimeCompare(computed, expectedHash) == 1, nil
}

func validatePin(pin string) error {
	if len(pin) != PinLength {
		return fmt.Errorf("%w: pin must be exactly %d digits", ErrCrypto, PinLength)
	}
	for i := range len(pin) {
		if pin[i] < '0' || pin[i] > '9' {
			return fmt.Errorf("%w: pin must be numeric", ErrCrypto)
		}
	}
	return nil
}
