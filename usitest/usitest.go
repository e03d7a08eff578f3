// Copyright (c) 2026 The usirest Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// This package contains testing utilities for the USI client.
package usitest

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cnr-ibba/usirest/auth"
	"github.com/cnr-ibba/usirest/client"
	"github.com/cnr-ibba/usirest/config"
)

// the signing key used for test tokens; tokens are decoded without
// verification, so the key only matters for producing well-formed JWTs
var signingKey = []byte("usitest-signing-key")

// Enables DEBUG log messages for the client's structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

// MintTokenString produces a signed JWT string carrying the given identity
// claims, valid for the given lifetime from now. A negative lifetime yields
// an already-expired token.
func MintTokenString(name, nickname, email string, domains []string,
	lifetime time.Duration) (string, error) {

	now := time.Now()
	claims := auth.Claims{
		Name:     name,
		Nickname: nickname,
		Email:    email,
		Domains:  domains,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// MintToken produces a decoded test token for the given nickname, valid for
// the given lifetime from now.
func MintToken(nickname string, lifetime time.Duration) (*auth.Token, error) {
	tokenString, err := MintTokenString("Test User", nickname,
		nickname+"@example.com", []string{"subs.test-team-1"}, lifetime)
	if err != nil {
		return nil, err
	}
	return auth.NewToken(tokenString)
}

// NewClient builds a session around a freshly minted test token.
func NewClient(nickname string, lifetime time.Duration) (*client.Client, error) {
	token, err := MintToken(nickname, lifetime)
	if err != nil {
		return nil, err
	}
	return client.New(token, config.API.Timeout()), nil
}

// InitConfig points the configuration's API and AAP roots at the given base
// URLs (usually those of httptest servers).
func InitConfig(apiRoot, aapURL string) error {
	yamlData := fmt.Sprintf(`
api:
  root: %s
  timeout_seconds: 5
aap:
  url: %s
`, apiRoot, aapURL)
	return config.Init([]byte(yamlData))
}
