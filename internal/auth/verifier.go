// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/aromapure/internal/session"
)

// StaticVerifier accepts exactly one configured username and password.
// The password is held only as an argon2id hash.
type StaticVerifier struct {
	username string
	hash     string
}

// NewStaticVerifier creates a verifier for the given pair. password may be
// plain text or an encoded argon2id hash.
func NewStaticVerifier(username, password string) (*StaticVerifier, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	hash, stale, err := PrepareHash(password)
	if err != nil {
		return nil, fmt.Errorf("preparing password hash: %w", err)
	}
	if stale {
		slog.Warn("configured password hash uses outdated argon2 parameters",
			"category", "auth", "username", username)
	}

	return &StaticVerifier{username: username, hash: hash}, nil
}

// Verify implements session.CredentialVerifier. The password hash is
// always checked so that timing does not reveal a username match.
func (v *StaticVerifier) Verify(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	passOK, err := CheckPassword(password, v.hash)
	if err != nil {
		return fmt.Errorf("checking password: %w", err)
	}

	if !userOK || !passOK {
		return session.ErrInvalidCredentials
	}
	return nil
}
