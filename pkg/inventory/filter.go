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

package inventory

import (
	"strings"

	"github.com/mlmtools/mlm-inventory/pkg/models"
)

// FilterSpec selects systems through a conjunction of three predicates.
// The sentinel "all" disables the predicate it is set on.
type FilterSpec struct {
	Status       string            `json:"status,omitempty" yaml:"status,omitempty"`
	PatchStatus  string            `json:"patch_status,omitempty" yaml:"patch_status,omitempty"`
	SystemGroups models.StringList `json:"system_groups,omitempty" yaml:"system_groups,omitempty"`
}

func (f *FilterSpec) validate() error {
	if f.Status == "" {
		f.Status = StatusActive
	}

	switch f.Status {
	case StatusActive, StatusInactive, FilterAll:
	default:
		return configErrorf("filters.status", "%q is not one of active, inactive, all", f.Status)
	}

	if f.PatchStatus == "" {
		f.PatchStatus = FilterAll
	}

	switch models.PatchStatus(f.PatchStatus) {
	case models.PatchStatusUpToDate, models.PatchStatusNeedsPatches, models.PatchStatusNeedsReboot:
	default:
		if f.PatchStatus != FilterAll {
			return configErrorf("filters.patch_status",
				"%q is not one of up_to_date, needs_patches, needs_reboot, all", f.PatchStatus)
		}
	}

	return nil
}

// Matches reports whether the record passes every active predicate.
func (f *FilterSpec) Matches(s *models.SystemRecord) bool {
	return f.matchesStatus(s) && f.matchesPatchStatus(s) && f.matchesGroups(s)
}

func (f *FilterSpec) matchesStatus(s *models.SystemRecord) bool {
	switch f.Status {
	case StatusActive:
		return s.Active
	case StatusInactive:
		return !s.Active
	default:
		return true
	}
}

func (f *FilterSpec) matchesPatchStatus(s *models.SystemRecord) bool {
	if f.PatchStatus == "" || f.PatchStatus == FilterAll {
		return true
	}

	return string(s.PatchStatus()) == f.PatchStatus
}

// matchesGroups requires a non-empty intersection between the system's
// groups and the configured list. Comparison is case-insensitive. An empty
// configured list passes everything.
func (f *FilterSpec) matchesGroups(s *models.SystemRecord) bool {
	if len(f.SystemGroups) == 0 {
		return true
	}

	want := make(map[string]struct{}, len(f.SystemGroups))

	for _, g := range f.SystemGroups {
		if strings.EqualFold(g, FilterAll) {
			return true
		}

		want[strings.ToLower(g)] = struct{}{}
	}

	for _, g := range s.SystemGroups {
		if _, ok := want[strings.ToLower(g)]; ok {
			return true
		}
	}

	return false
}
