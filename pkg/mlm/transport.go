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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// call resolves a logical endpoint name and runs the request through
// the retry budget.
func (c *Client) call(ctx context.Context, method, endpointKey string, query url.Values, body interface{}) (json.RawMessage, error) {
	endpoint, ok := c.endpoints[endpointKey]
	if !ok {
		return nil, fmt.Errorf("%w: unknown endpoint %q", errAPIRequestFailed, endpointKey)
	}

	return c.callPath(ctx, method, endpoint, query, body)
}

// callPath runs one API request, retrying transient failures with
// exponential backoff. Transient means a transport-level error, an
// HTTP 5xx, or a 429; everything else fails on the first attempt.
func (c *Client) callPath(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.Retries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordAPIRetry(path)

			delay := c.backoffDelay(attempt - 1)

			c.logger.Warn().
				Str("path", path).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Err(lastErr).
				Msg("Retrying request after transient failure")

			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		result, err := c.doRequest(ctx, method, path, query, body)
		if err == nil {
			return result, nil
		}

		if !isTransient(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, &ConnectivityError{
		Endpoint: path,
		Attempts: c.config.Retries + 1,
		Err:      lastErr,
	}
}

// doRequest performs a single HTTP exchange and unwraps the response
// envelope.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := c.clock.Now()

	c.metrics.RecordAPICall(path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIFailure(path, 0, c.clock.Now().Sub(start))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)

		c.metrics.RecordAPIFailure(path, resp.StatusCode, c.clock.Now().Sub(start))

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &AuthError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
		}

		return nil, &statusError{code: resp.StatusCode, body: string(bodyBytes)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordAPIFailure(path, resp.StatusCode, c.clock.Now().Sub(start))
		return nil, err
	}

	c.metrics.RecordAPISuccess(path, c.clock.Now().Sub(start))

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Some endpoints answer with a bare document instead of the
		// envelope; pass those through.
		return raw, nil //nolint:nilerr // non-envelope bodies are valid responses
	}

	if envelope.Success != nil && !*envelope.Success {
		if envelope.Message != "" {
			return nil, fmt.Errorf("%w: %s", errAPIRequestFailed, envelope.Message)
		}

		return nil, errAPIRequestFailed
	}

	if envelope.Result != nil {
		return envelope.Result, nil
	}

	return raw, nil
}

// isTransient reports whether another attempt could succeed.
func isTransient(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}

	var status *statusError
	if errors.As(err, &status) {
		return status.code == http.StatusTooManyRequests || status.code >= http.StatusInternalServerError
	}

	if errors.Is(err, errAPIRequestFailed) {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(urlErr, context.Canceled)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF)
}

// backoffDelay doubles per retry, capped at maxBackoffDelay, plus a
// sub-second jitter derived from the wall clock.
func (c *Client) backoffDelay(retry int) time.Duration {
	delay := maxBackoffDelay

	if retry < 6 {
		delay = time.Duration(1<<uint(retry)) * time.Second
	}

	if delay > maxBackoffDelay {
		delay = maxBackoffDelay
	}

	jitter := time.Duration(c.clock.Now().UnixNano() % int64(time.Second))

	return delay + jitter
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}
