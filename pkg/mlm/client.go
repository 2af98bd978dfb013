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

// Package mlm provides an authenticated client for the Multi-Linux
// Manager HTTP API. Session state lives in a cookie jar; one login
// serves the whole run.
package mlm

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
)

// Client talks to one Multi-Linux Manager server.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	baseURL    string
	endpoints  map[string]string
	clock      Clock
	metrics    APIMetrics
	logger     logger.Logger
	loggedIn   bool
}

// NewClient validates the connection settings and builds a client.
// Zero Timeout and Retries take the package defaults; a Retries value
// of -1 disables retrying entirely.
func NewClient(cfg *ClientConfig, log logger.Logger) (*Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errMissingURL
	}

	if cfg.Username == "" || cfg.Password == "" {
		return nil, errMissingCredentials
	}

	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, err
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	} else if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	basePath := cfg.APIBasePath
	if basePath == "" {
		basePath = DefaultAPIBasePath
	}

	baseURL := strings.TrimRight(cfg.URL, "/")
	if !strings.HasSuffix(baseURL, basePath) {
		baseURL += basePath
	}

	endpoints := DefaultEndpoints()
	for name, path := range cfg.Endpoints {
		endpoints[name] = path
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Jar:     jar,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !cfg.ValidateCerts, //nolint:gosec // operator opt-out for self-signed servers
			},
		},
	}

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		baseURL:    baseURL,
		endpoints:  endpoints,
		clock:      realClock{},
		metrics:    noopAPIMetrics{},
		logger:     log,
	}, nil
}

// SetMetrics attaches a metrics recorder. A nil recorder restores the no-op.
func (c *Client) SetMetrics(m APIMetrics) {
	if m == nil {
		c.metrics = noopAPIMetrics{}
		return
	}

	c.metrics = m
}

// Login authenticates and stores the session cookie. Credential
// rejection is fatal and never retried.
func (c *Client) Login(ctx context.Context) error {
	body := loginRequest{Login: c.config.Username, Password: c.config.Password}

	_, err := c.call(ctx, http.MethodPost, endpointLogin, nil, body)
	if err != nil {
		// The server reports bad credentials either as an HTTP 401/403
		// or as a success=false envelope on a 200.
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return err
		}

		if errors.Is(err, errAPIRequestFailed) {
			return &AuthError{StatusCode: http.StatusOK, Message: err.Error()}
		}

		return err
	}

	c.loggedIn = true

	c.logger.Debug().Str("url", c.baseURL).Msg("Authenticated to server")

	return nil
}

// Logout releases the server session. Best effort: failures are logged
// and swallowed since the session expires on its own.
func (c *Client) Logout(ctx context.Context) {
	if !c.loggedIn {
		return
	}

	if _, err := c.doRequest(ctx, http.MethodPost, c.endpoints[endpointLogout], nil, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Logout failed")
	}

	c.loggedIn = false
}

// Get issues an authenticated GET and returns the envelope result.
// Resource modules layered on this client consume this surface.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.callPath(ctx, http.MethodGet, path, query, nil)
}

// Post issues an authenticated POST and returns the envelope result.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.callPath(ctx, http.MethodPost, path, nil, body)
}
