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
	"errors"
	"fmt"
)

var (
	errUnexpectedStatusCode = errors.New("unexpected status code")
	errAPIRequestFailed     = errors.New("api request failed")
	errMissingURL           = errors.New("server url is required")
	errMissingCredentials   = errors.New("username and password are required")
)

// AuthError reports rejected credentials. It is never retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed: status %d", e.StatusCode)
	}

	return fmt.Sprintf("authentication failed: status %d: %s", e.StatusCode, e.Message)
}

// ConnectivityError reports an exhausted retry budget. Attempts counts
// every try including the first; Err is the last underlying cause.
type ConnectivityError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("request to %s failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// statusError carries a non-success HTTP status for retry classification.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: %d, response: %s", errUnexpectedStatusCode, e.code, e.body)
}

func (e *statusError) Unwrap() error {
	return errUnexpectedStatusCode
}
