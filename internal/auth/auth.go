// Package auth keeps the bearer token sent to the circle service. The
// token comes from CIRCLES_TOKEN when set, else from a credentials file in
// the user's home directory.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvToken overrides the stored token.
const EnvToken = "CIRCLES_TOKEN"

// Source is where the active token was found.
type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// TokenInfo is the active token. ExpiresAt is nil when the token carries
// no expiry.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    Source     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token carries an expiry that has passed.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && now.After(*ti.ExpiresAt)
}

// Path is the credentials file, ~/.circles/credentials.json.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home: %w", err)
	}
	return filepath.Join(home, ".circles", "credentials.json"), nil
}

// GetToken returns the active token, or nil, nil when not logged in.
func GetToken() (*TokenInfo, error) {
	if ti := fromEnv(); ti != nil {
		return ti, nil
	}
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return readFile(p)
}

// Bearer is the token for outgoing requests, or "" when not logged in.
func Bearer() string {
	ti, err := GetToken()
	if err != nil || ti == nil {
		return ""
	}
	return ti.Token
}

// SetToken saves token to the credentials file. A nil expires falls back to
// the JWT exp claim.
func SetToken(token string, expires *time.Time) error {
	token = normalize(token)
	if token == "" {
		return errors.New("token is empty")
	}
	if expires == nil {
		expires = expiry(token)
	}
	p, err := Path()
	if err != nil {
		return err
	}
	return writeFile(p, TokenInfo{
		Token:     token,
		Source:    SourceFile,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expires,
	})
}

// DeleteToken removes the credentials file. A missing file is not an error.
func DeleteToken() error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

// Claims decodes a JWT's claims without verifying its signature. Opaque
// tokens return an error.
func Claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

func fromEnv() *TokenInfo {
	tok := normalize(os.Getenv(EnvToken))
	if tok == "" {
		return nil
	}
	return &TokenInfo{Token: tok, Source: SourceEnv, ExpiresAt: expiry(tok)}
}

func readFile(p string) (*TokenInfo, error) {
	b, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", p, err)
	}
	ti.Token = normalize(ti.Token)
	ti.Source = SourceFile
	return &ti, nil
}

// writeFile replaces p through a temp file in the same directory. CreateTemp
// makes the file owner-only.
func writeFile(p string, ti TokenInfo) error {
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func expiry(token string) *time.Time {
	claims, err := Claims(token)
	if err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

// normalize trims the token and drops a leading "Bearer " in any case.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 7 && strings.EqualFold(s[:7], "bearer ") {
		s = strings.TrimSpace(s[7:])
	}
	return s
}
