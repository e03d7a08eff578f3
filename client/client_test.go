package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/cnr-ibba/usirest/auth"
	"github.com/cnr-ibba/usirest/config"
)

// this function gets called at the begining of a test session
func setup() {
	config.Init([]byte{})
}

// this function gets called after all tests complete
func breakdown() {
}

func TestMain(m *testing.M) {
	setup()
	status := m.Run()
	breakdown()
	os.Exit(status)
}

// mints a decoded token with the given lifetime for tests
func mintToken(t *testing.T, lifetime time.Duration) *auth.Token {
	now := time.Now()
	claims := auth.Claims{
		Name:     "Foo Bar",
		Nickname: "foo",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("secret"))
	assert.Nil(t, err)
	token, err := auth.NewToken(tokenString)
	assert.Nil(t, err)
	return token
}

func newTestClient(t *testing.T) *Client {
	return New(mintToken(t, time.Hour), 5*time.Second)
}

// tests whether a session carries the default headers plus its bearer token
func TestNewSessionHeaders(t *testing.T) {
	assert := assert.New(t)

	client := newTestClient(t)
	assert.Equal("application/hal+json", client.Headers["Accept"])
	assert.Contains(client.Headers["User-Agent"], "usirest")
	assert.Equal(fmt.Sprintf("Bearer %s", client.Token.Raw),
		client.Headers["Authorization"])

	// each session owns its header map
	other := newTestClient(t)
	client.Headers["Accept"] = "text/plain"
	assert.Equal("application/hal+json", other.Headers["Accept"])
}

// tests a successful GET and the last-response tracking
func TestGet(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal("application/hal+json", r.Header.Get("Accept"))
			assert.Contains(r.Header.Get("Authorization"), "Bearer ")
			fmt.Fprint(w, `{"name": "subs.test-team-1"}`)
		}))
	defer server.Close()

	client := newTestClient(t)
	body, err := client.Get(server.URL)
	assert.Nil(err)
	assert.JSONEq(`{"name": "subs.test-team-1"}`, string(body))
	assert.Equal(http.StatusOK, client.LastStatusCode)
	assert.Equal(body, client.LastResponse)
}

// tests whether an expired token blocks a verb before any network activity
func TestExpiredTokenBlocksVerbs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("An expired token should never reach the network.")
		}))
	defer server.Close()

	client := New(mintToken(t, -time.Minute), 5*time.Second)
	_, err := client.Get(server.URL)
	assert.NotNil(t, err, "Expired token didn't trigger an error.")
	var expired *TokenExpiredError
	assert.ErrorAs(t, err, &expired)
	assert.Equal(t, "foo", expired.User)
}

// tests the three-way status classification
func TestStatusClassification(t *testing.T) {
	assert := assert.New(t)

	status := http.StatusInternalServerError
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			fmt.Fprint(w, "oops")
		}))
	defer server.Close()

	client := newTestClient(t)

	// a 5xx is the server's problem
	_, err := client.Get(server.URL)
	var serverErr *ServerError
	assert.ErrorAs(err, &serverErr)
	assert.Equal(http.StatusInternalServerError, serverErr.StatusCode)
	assert.Equal("oops", serverErr.Body)

	// a 4xx is the caller's problem
	status = http.StatusNotFound
	_, err = client.Get(server.URL)
	var dataErr *DataError
	assert.ErrorAs(err, &dataErr)
	assert.Equal(http.StatusNotFound, dataErr.StatusCode)

	// anything else that differs from the expected status is its own failure
	status = http.StatusCreated
	_, err = client.Get(server.URL)
	var unexpected *UnexpectedStatusError
	assert.ErrorAs(err, &unexpected)
	assert.Equal(http.StatusCreated, unexpected.StatusCode)
	assert.Equal(http.StatusOK, unexpected.Expected)

	// the errored response is still tracked
	assert.Equal(http.StatusCreated, client.LastStatusCode)
	assert.Equal("oops", string(client.LastResponse))
}

// tests whether a POST sends its payload as JSON and expects a 201
func TestPost(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(http.MethodPost, r.Method)
			assert.Equal("application/json;charset=UTF-8", r.Header.Get("Content-Type"))
			var payload map[string]string
			assert.Nil(json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal("foo", payload["alias"])
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"alias": "foo"}`)
		}))
	defer server.Close()

	client := newTestClient(t)
	body, err := client.Post(server.URL, map[string]string{"alias": "foo"}, nil)
	assert.Nil(err)
	assert.JSONEq(`{"alias": "foo"}`, string(body))
}

// tests whether per-request headers merge over a copy of the session's
func TestHeaderMerge(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal("application/json", r.Header.Get("Accept"))
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, "{}")
		}))
	defer server.Close()

	client := newTestClient(t)
	_, err := client.Post(server.URL, map[string]string{},
		map[string]string{"Accept": "application/json"})
	assert.Nil(err)

	// the session headers are untouched
	assert.Equal("application/hal+json", client.Headers["Accept"])
}

// tests whether a DELETE expects a 204
func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		}))
	defer server.Close()

	client := newTestClient(t)
	assert.Nil(t, client.Delete(server.URL))
}
