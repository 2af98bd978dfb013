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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlmtools/mlm-inventory/pkg/models"
)

func TestFilterSpecMatches(t *testing.T) {
	activeWeb := &models.SystemRecord{
		ID:           1,
		Name:         "web01",
		Active:       true,
		ErrataCount:  3,
		SystemGroups: []string{"Web Servers", "Production"},
	}

	inactiveDB := &models.SystemRecord{
		ID:             2,
		Name:           "db01",
		Active:         false,
		RebootRequired: true,
		SystemGroups:   []string{"Databases"},
	}

	groupless := &models.SystemRecord{ID: 3, Name: "lone01", Active: true}

	tests := []struct {
		name   string
		spec   FilterSpec
		record *models.SystemRecord
		want   bool
	}{
		{"defaults pass active", FilterSpec{Status: StatusActive, PatchStatus: FilterAll}, activeWeb, true},
		{"active rejects inactive", FilterSpec{Status: StatusActive, PatchStatus: FilterAll}, inactiveDB, false},
		{"inactive selects inactive", FilterSpec{Status: StatusInactive, PatchStatus: FilterAll}, inactiveDB, true},
		{"all status disables check", FilterSpec{Status: FilterAll, PatchStatus: FilterAll}, inactiveDB, true},
		{"patch status match", FilterSpec{Status: FilterAll, PatchStatus: "needs_patches"}, activeWeb, true},
		{"patch status mismatch", FilterSpec{Status: FilterAll, PatchStatus: "up_to_date"}, activeWeb, false},
		{"reboot dominates patch status", FilterSpec{Status: FilterAll, PatchStatus: "needs_reboot"}, inactiveDB, true},
		{
			"group intersection is case-insensitive",
			FilterSpec{Status: FilterAll, PatchStatus: FilterAll, SystemGroups: models.StringList{"web servers"}},
			activeWeb,
			true,
		},
		{
			"group mismatch",
			FilterSpec{Status: FilterAll, PatchStatus: FilterAll, SystemGroups: models.StringList{"Databases"}},
			activeWeb,
			false,
		},
		{
			"all sentinel in group list disables check",
			FilterSpec{Status: FilterAll, PatchStatus: FilterAll, SystemGroups: models.StringList{"all"}},
			groupless,
			true,
		},
		{
			"groupless system fails active group predicate",
			FilterSpec{Status: FilterAll, PatchStatus: FilterAll, SystemGroups: models.StringList{"Web Servers"}},
			groupless,
			false,
		},
		{
			"empty group list passes everything",
			FilterSpec{Status: FilterAll, PatchStatus: FilterAll, SystemGroups: models.StringList{}},
			groupless,
			true,
		},
		{
			"conjunction requires every predicate",
			FilterSpec{Status: StatusActive, PatchStatus: "needs_patches", SystemGroups: models.StringList{"Production"}},
			activeWeb,
			true,
		},
		{
			"one failing predicate rejects",
			FilterSpec{Status: StatusActive, PatchStatus: "needs_reboot", SystemGroups: models.StringList{"Production"}},
			activeWeb,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Matches(tt.record))
		})
	}
}
