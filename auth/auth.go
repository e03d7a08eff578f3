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

// This package manages AAP bearer tokens: it exchanges credentials for a
// token, decodes token claims, and answers expiration queries. Tokens are
// immutable once decoded; an expired token is replaced by obtaining a new one,
// never renewed in place.
package auth

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cnr-ibba/usirest/config"
)

// a token within this duration of its expiry triggers an advisory warning
const expiryWarningWindow = 5 * time.Minute

// The identity claims carried by an AAP JWT.
type Claims struct {
	// full display name of the token's owner
	Name string `json:"name"`
	// AAP username
	Nickname string `json:"nickname"`
	// email address registered with the AAP
	Email string `json:"email"`
	// AAP domain (group) memberships
	Domains []string `json:"domains"`
	jwt.RegisteredClaims
}

// A decoded AAP bearer token. Construct one with Login or NewToken.
type Token struct {
	// the raw token string, as sent in Authorization headers
	Raw string
	// time at which the token was issued
	Issued time.Time
	// time at which the token expires
	Expires time.Time
	// identity claims decoded from the token
	Claims Claims
}

// Login exchanges AAP credentials for a decoded bearer token. The AAP
// authentication endpoint accepts basic credentials and responds with the
// token string as its body.
func Login(user, password string) (*Token, error) {
	resource := config.AAP.URL + "/auth"
	slog.Debug(fmt.Sprintf("Authenticating user %s against %s", user, resource))

	request, err := http.NewRequest(http.MethodGet, resource, http.NoBody)
	if err != nil {
		return nil, err
	}
	request.SetBasicAuth(user, password)

	client := http.Client{Timeout: config.API.Timeout()}
	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		slog.Error(fmt.Sprintf("Got status %d from the AAP", response.StatusCode))
		return nil, &AuthenticationError{
			StatusCode: response.StatusCode,
			Body:       string(body),
		}
	}

	// the response body is the token itself
	return NewToken(strings.TrimSpace(string(body)))
}

// NewToken decodes a caller-supplied token string. A token that cannot be
// decoded is rejected here, at construction, not at first use. The token's
// signature is not verified: this library holds no AAP keys, and the remote
// services do their own verification.
func NewToken(tokenString string) (*Token, error) {
	var claims Claims
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims)
	if err != nil {
		return nil, &InvalidTokenError{Message: err.Error()}
	}

	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, &InvalidTokenError{
			Message: "token carries no iat/exp claims",
		}
	}
	issued := claims.IssuedAt.Time
	expires := claims.ExpiresAt.Time
	if issued.After(expires) {
		return nil, &InvalidTokenError{
			Message: fmt.Sprintf("token issued at %s, after its expiry %s",
				issued.Format(time.RFC3339), expires.Format(time.RFC3339)),
		}
	}

	if method := parsed.Method.Alg(); method != "" {
		slog.Debug(fmt.Sprintf("Decoded token with %s", method))
	}

	return &Token{
		Raw:     tokenString,
		Issued:  issued,
		Expires: expires,
		Claims:  claims,
	}, nil
}

// Duration returns the remaining time before the token expires. A negative
// duration means the token has expired. A token close to its expiry logs an
// advisory warning; this never substitutes for an error.
func (t *Token) Duration() time.Duration {
	remaining := time.Until(t.Expires)
	switch {
	case remaining < 0:
		slog.Error(fmt.Sprintf("Token for %s is expired", t.Claims.Name))
	case remaining < expiryWarningWindow:
		slog.Warn(fmt.Sprintf("Token for %s will expire in %d seconds",
			t.Claims.Name, int(remaining.Seconds())))
	default:
		slog.Debug(fmt.Sprintf("Token for %s will expire in %d seconds",
			t.Claims.Name, int(remaining.Seconds())))
	}
	return remaining
}

// IsExpired reports whether the token has expired. A token with exactly zero
// remaining time is not yet expired.
func (t *Token) IsExpired() bool {
	return t.Duration() < 0
}

func (t *Token) String() string {
	remaining := t.Duration()
	if remaining < 0 {
		return fmt.Sprintf("Token for %s is expired", t.Claims.Name)
	}
	return fmt.Sprintf("Token for %s will last %d seconds",
		t.Claims.Name, int(remaining.Seconds()))
}
