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

package models

// PatchStatus is the derived patch state of a managed system.
type PatchStatus string

const (
	PatchStatusUpToDate     PatchStatus = "up_to_date"
	PatchStatusNeedsPatches PatchStatus = "needs_patches"
	PatchStatusNeedsReboot  PatchStatus = "needs_reboot"
)

// DerivePatchStatus computes patch state from errata count and reboot flag.
// A pending reboot dominates: a system can be fully patched and still
// report needs_reboot until it restarts.
func DerivePatchStatus(errataCount int, rebootRequired bool) PatchStatus {
	if rebootRequired {
		return PatchStatusNeedsReboot
	}

	if errataCount > 0 {
		return PatchStatusNeedsPatches
	}

	return PatchStatusUpToDate
}

// SystemRecord is one managed system as fetched from the server,
// normalized to canonical field names. Records are immutable once
// fetched within a run.
type SystemRecord struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	Hostname         string                 `json:"hostname"`
	Active           bool                   `json:"active"`
	RegistrationDate string                 `json:"registration_date,omitempty"`
	LastCheckin      string                 `json:"last_checkin,omitempty"`
	LastBoot         string                 `json:"last_boot,omitempty"`
	ErrataCount      int                    `json:"errata_count"`
	RebootRequired   bool                   `json:"reboot_required"`
	SystemGroups     []string               `json:"system_groups,omitempty"`
	Extra            map[string]interface{} `json:"extra,omitempty"`
}

// PatchStatus derives the record's patch state.
func (s *SystemRecord) PatchStatus() PatchStatus {
	return DerivePatchStatus(s.ErrataCount, s.RebootRequired)
}

// InventoryHostname is the name the host is inventoried under:
// the hostname, falling back to the system name.
func (s *SystemRecord) InventoryHostname() string {
	if s.Hostname != "" {
		return s.Hostname
	}

	return s.Name
}
