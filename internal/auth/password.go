// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides argon2id password hashing and the credential
// verifier used by the session store.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2 parameters (OWASP recommended second choice: m=19456, t=2, p=1)
const (
	Argon2Time    = 2
	Argon2Memory  = 19 * 1024 // 19 MB, fits on 256MB VMs
	Argon2Threads = 1
	Argon2KeyLen  = 32
	Argon2SaltLen = 16
)

const hashPrefix = "$argon2id$"

// ErrMalformedHash is returned for strings that look like an argon2id hash
// but cannot be decoded.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// passwordHash is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type passwordHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseHash(encoded string) (passwordHash, error) {
	var h passwordHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return h, fmt.Errorf("%w: want 6 fields, got %d", ErrMalformedHash, len(parts))
	}
	if parts[1] != "argon2id" {
		return h, fmt.Errorf("%w: unsupported type %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return h, fmt.Errorf("%w: version: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return h, fmt.Errorf("%w: version %d", ErrMalformedHash, version)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return h, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return h, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return h, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	if len(h.key) == 0 {
		return h, fmt.Errorf("%w: empty key", ErrMalformedHash)
	}
	return h, nil
}

func (h passwordHash) current() bool {
	return h.memory == Argon2Memory && h.time == Argon2Time && h.threads == Argon2Threads
}

// NeedsRehash reports whether an encoded hash is unreadable or uses
// parameters other than the current defaults.
func NeedsRehash(encodedHash string) bool {
	h, err := parseHash(encodedHash)
	return err != nil || !h.current()
}

// HashPassword creates an Argon2id hash of the password in the form
// $argon2id$v=19$m=19456,t=2,p=1$salt$key.
func HashPassword(password string) (string, error) {
	salt := make([]byte, Argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		hashPrefix, argon2.Version, Argon2Memory, Argon2Time, Argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// CheckPassword verifies a password against an Argon2id hash using the
// parameters recorded in the hash. The comparison is constant-time.
func CheckPassword(password, encodedHash string) (bool, error) {
	h, err := parseHash(encodedHash)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(key, h.key) == 1, nil
}

// PrepareHash turns a configured secret into a stored hash. Plain text is
// hashed with the current parameters. An encoded argon2id hash is validated
// and kept as is; stale reports whether its parameters are outdated.
func PrepareHash(secret string) (hash string, stale bool, err error) {
	if !strings.HasPrefix(secret, hashPrefix) {
		hash, err = HashPassword(secret)
		return hash, false, err
	}
	h, err := parseHash(secret)
	if err != nil {
		return "", false, err
	}
	return secret, !h.current(), nil
}
