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
	"encoding/json"
	"time"
)

const (
	// DefaultAPIBasePath is appended to the server URL unless already present.
	DefaultAPIBasePath = "/rhn/manager/api"

	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 60 * time.Second

	// DefaultRetries is the retry budget per API call, on top of the
	// first attempt.
	DefaultRetries = 3

	maxBackoffDelay = 60 * time.Second
)

// Endpoint keys into the endpoint table.
const (
	endpointLogin            = "login"
	endpointLogout           = "logout"
	endpointSystems          = "systems"
	endpointSystemGroups     = "system_groups"
	endpointRelevantErrata   = "relevant_errata"
	endpointRegistrationDate = "registration_date"
	endpointSuggestedReboot  = "suggested_reboot"
)

// DefaultEndpoints maps logical operation names to API paths relative
// to the API base path. Entries can be overridden through configuration.
func DefaultEndpoints() map[string]string {
	return map[string]string{
		endpointLogin:            "/auth/login",
		endpointLogout:           "/auth/logout",
		endpointSystems:          "/system/listSystems",
		endpointSystemGroups:     "/system/listGroups",
		endpointRelevantErrata:   "/system/getRelevantErrata",
		endpointRegistrationDate: "/system/getRegistrationDate",
		endpointSuggestedReboot:  "/system/listSuggestedReboot",
	}
}

// ClientConfig carries the connection settings for one server.
type ClientConfig struct {
	URL           string
	Username      string
	Password      string
	ValidateCerts bool
	Timeout       time.Duration
	Retries       int
	APIBasePath   string
	Endpoints     map[string]string
}

// RawSystem is one listSystems entry with its server-side field names
// preserved. Field mappings are applied later, so the keys stay loose.
type RawSystem map[string]interface{}

// ID extracts the numeric system identifier, reporting whether one is
// present. JSON numbers arrive as float64.
func (s RawSystem) ID() (int64, bool) {
	v, ok := s["id"]
	if !ok {
		return 0, false
	}

	switch id := v.(type) {
	case float64:
		return int64(id), true
	case int64:
		return id, true
	case int:
		return int64(id), true
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

// SystemDetail is the per-system data gathered beyond the listSystems
// row: errata counts, group subscriptions and the registration date.
type SystemDetail struct {
	ErrataCount      int
	SystemGroups     []string
	RegistrationDate string
	RebootRequired   bool
}

// FetchResult is the complete harvest of one fetch pass, keyed by
// system ID where per-system data applies.
type FetchResult struct {
	Systems []RawSystem
	Details map[int64]*SystemDetail
}

// apiResponse is the server's uniform response envelope. Success is a
// pointer so a body without the field can pass through untouched.
type apiResponse struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// systemGroupEntry is one listGroups row.
type systemGroupEntry struct {
	Subscribed      int    `json:"subscribed"`
	SystemGroupName string `json:"system_group_name"`
	Name            string `json:"name"`
}

// rebootEntry is one listSuggestedReboot row.
type rebootEntry struct {
	ID int64 `json:"id"`
}
