/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mlm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
)

// fakeClock makes backoff sleeps return immediately.
type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

func (fakeClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time)
	close(ch)

	return ch
}

func newTestClient(t *testing.T, serverURL string, retries int) *Client {
	t.Helper()

	client, err := NewClient(&ClientConfig{
		URL:      serverURL,
		Username: "admin",
		Password: "secret",
		Retries:  retries,
	}, logger.NewTestLogger())
	require.NoError(t, err)

	client.clock = fakeClock{now: time.Unix(1700000000, 0)}

	return client
}

func apiPath(endpoint string) string {
	return DefaultAPIBasePath + endpoint
}

func TestNewClientValidation(t *testing.T) {
	log := logger.NewTestLogger()

	_, err := NewClient(&ClientConfig{Username: "admin", Password: "secret"}, log)
	require.ErrorIs(t, err, errMissingURL)

	_, err = NewClient(&ClientConfig{URL: "https://mlm.example.com"}, log)
	require.ErrorIs(t, err, errMissingCredentials)
}

func TestNewClientBaseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"bare host", "https://mlm.example.com", "https://mlm.example.com/rhn/manager/api"},
		{"trailing slash", "https://mlm.example.com/", "https://mlm.example.com/rhn/manager/api"},
		{"base path included", "https://mlm.example.com/rhn/manager/api", "https://mlm.example.com/rhn/manager/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(&ClientConfig{
				URL:      tt.url,
				Username: "admin",
				Password: "secret",
			}, logger.NewTestLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.baseURL)
		})
	}
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(apiPath("/auth/login"), func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "pxt-session-cookie", Value: "abc123"})
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, 1)

	require.NoError(t, client.Login(context.Background()))
	assert.True(t, client.loggedIn)
}

func TestLoginRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	err := client.Login(context.Background())

	var authErr *AuthError

	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.False(t, client.loggedIn)
}

func TestLoginRejectedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "Invalid credentials"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	err := client.Login(context.Background())

	var authErr *AuthError

	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "Invalid credentials")
}

func TestLoginConnectivityExhaustion(t *testing.T) {
	var hits int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++

		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	err := client.Login(context.Background())

	var connErr *ConnectivityError

	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 3, connErr.Attempts)
	assert.Equal(t, 3, hits)
}

func TestLogoutBestEffort(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(apiPath("/auth/login"), func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true}`))
	})
	mux.HandleFunc(apiPath("/auth/logout"), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, 1)
	require.NoError(t, client.Login(context.Background()))

	// Failure must be swallowed.
	client.Logout(context.Background())
	assert.False(t, client.loggedIn)
}

func TestSessionCookieReused(t *testing.T) {
	var sawCookie bool

	mux := http.NewServeMux()
	mux.HandleFunc(apiPath("/auth/login"), func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "pxt-session-cookie", Value: "abc123"})
		_, _ = w.Write([]byte(`{"success": true}`))
	})
	mux.HandleFunc(apiPath("/system/listSystems"), func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("pxt-session-cookie"); err == nil && cookie.Value == "abc123" {
			sawCookie = true
		}

		_, _ = w.Write([]byte(`{"success": true, "result": []}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, 1)
	require.NoError(t, client.Login(context.Background()))

	_, err := client.ListSystems(context.Background())
	require.NoError(t, err)
	assert.True(t, sawCookie)
}

func TestGenericGetSurface(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(apiPath("/systemgroup/listAllGroups"), func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "result": [{"name": "web"}]}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, 1)

	raw, err := client.Get(context.Background(), "/systemgroup/listAllGroups", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name": "web"}]`, string(raw))
}

func TestLoginContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Login(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
