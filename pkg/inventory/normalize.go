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
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
	"github.com/mlmtools/mlm-inventory/pkg/mlm"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

// defaultSystemFieldMapping lists the candidate source keys per canonical
// field. Order matters: the first key present with a non-null value wins.
// The registration date candidates track the field renames the server API
// went through across versions.
func defaultSystemFieldMapping() map[string][]string {
	return map[string][]string{
		"id":                {"id"},
		"name":              {"name"},
		"hostname":          {"hostname"},
		"active":            {"active"},
		"registration_date": {"created", "registered", "registrationDate"},
		"last_checkin":      {"lastCheckin"},
		"last_boot":         {"lastBoot"},
	}
}

// Normalizer turns raw system rows into SystemRecords by resolving each
// canonical field through its mapping. Mapping keys outside the canonical
// set become extra host variables.
type Normalizer struct {
	mapping map[string][]string
	extra   []string
	logger  logger.Logger
}

// NewNormalizer merges the configured overrides over the default mapping.
func NewNormalizer(overrides map[string]models.StringList, log logger.Logger) *Normalizer {
	mapping := defaultSystemFieldMapping()

	var extra []string

	for field, candidates := range overrides {
		if len(candidates) == 0 {
			continue
		}

		if _, canonical := mapping[field]; !canonical {
			extra = append(extra, field)
		}

		mapping[field] = candidates
	}

	// Sorted so extra variables resolve in a stable order.
	sort.Strings(extra)

	return &Normalizer{
		mapping: mapping,
		extra:   extra,
		logger:  log,
	}
}

// Normalize builds a SystemRecord from one raw row plus its enrichment
// detail. Returns false when the row lacks an ID or any usable name, in
// which case the system is skipped with a warning.
func (n *Normalizer) Normalize(raw mlm.RawSystem, detail *mlm.SystemDetail) (*models.SystemRecord, bool) {
	id, ok := n.resolveID(raw)
	if !ok {
		n.logger.Warn().Msg("Skipping system without a usable ID")
		return nil, false
	}

	name := n.stringField(raw, "name")
	hostname := n.stringField(raw, "hostname")

	if name == "" && hostname == "" {
		n.logger.Warn().Int64("system_id", id).Msg("Skipping system with neither hostname nor name")
		return nil, false
	}

	if detail == nil {
		detail = &mlm.SystemDetail{}
	}

	record := &models.SystemRecord{
		ID:               id,
		Name:             name,
		Hostname:         hostname,
		Active:           true,
		RegistrationDate: detail.RegistrationDate,
		LastCheckin:      n.stringField(raw, "last_checkin"),
		LastBoot:         n.stringField(raw, "last_boot"),
		ErrataCount:      detail.ErrataCount,
		RebootRequired:   detail.RebootRequired,
		SystemGroups:     sortedCopy(detail.SystemGroups),
	}

	// An absent active flag counts as active.
	if v, found := n.resolveField(raw, "active"); found {
		record.Active = truthyFlag(v)
	}

	if record.RegistrationDate == "" {
		record.RegistrationDate = n.stringField(raw, "registration_date")
	}

	if len(n.extra) > 0 {
		record.Extra = make(map[string]interface{}, len(n.extra))

		for _, field := range n.extra {
			if v, found := n.resolveField(raw, field); found {
				record.Extra[field] = v
			}
		}
	}

	return record, true
}

// HostVars projects a record into the variable map exposed for the host.
// The raw row is consulted for fields that stay outside the record, such
// as the address candidates and OS details.
func (n *Normalizer) HostVars(s *models.SystemRecord, raw mlm.RawSystem) models.HostVars {
	vars := models.HostVars{
		"id":              s.ID,
		"system_name":     s.Name,
		"hostname":        s.Hostname,
		"active":          s.Active,
		"patch_status":    string(s.PatchStatus()),
		"errata_count":    s.ErrataCount,
		"reboot_required": s.RebootRequired,
		"system_groups":   s.SystemGroups,
	}

	if s.RegistrationDate != "" {
		vars["registration_date"] = s.RegistrationDate
	}

	if s.LastCheckin != "" {
		vars["last_checkin"] = s.LastCheckin
	}

	if s.LastBoot != "" {
		vars["last_boot"] = s.LastBoot
	}

	vars["ansible_host"] = ansibleHost(s, raw)

	osVars(raw, vars)

	// Extra mapped fields never shadow the computed variables.
	for field, value := range s.Extra {
		if _, taken := vars[field]; !taken {
			vars[field] = value
		}
	}

	return vars
}

// ansibleHost picks the connection address: an explicit IP wins over the
// hostname, which wins over the system name.
func ansibleHost(s *models.SystemRecord, raw mlm.RawSystem) string {
	for _, key := range []string{"ip", "ipAddress"} {
		if v, ok := raw[key]; ok {
			if addr, isString := v.(string); isString && addr != "" {
				return addr
			}
		}
	}

	if s.Hostname != "" {
		return s.Hostname
	}

	return s.Name
}

// osVars lifts OS details out of the raw row. The server returns either a
// bare product string or a nested object.
func osVars(raw mlm.RawSystem, vars models.HostVars) {
	v, ok := raw["os"]
	if !ok || v == nil {
		return
	}

	switch os := v.(type) {
	case string:
		vars["os_name"] = os
	case map[string]interface{}:
		for rawKey, varName := range map[string]string{
			"name":    "os_name",
			"version": "os_version",
			"family":  "os_family",
		} {
			if value, present := os[rawKey]; present && value != nil {
				vars[varName] = value
			}
		}
	}
}

func (n *Normalizer) resolveID(raw mlm.RawSystem) (int64, bool) {
	v, ok := n.resolveField(raw, "id")
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
		parsed, err := id.Int64()
		if err != nil {
			return 0, false
		}

		return parsed, true
	default:
		return 0, false
	}
}

// resolveField returns the first candidate key present in raw with a
// non-null value.
func (n *Normalizer) resolveField(raw mlm.RawSystem, field string) (interface{}, bool) {
	for _, key := range n.mapping[field] {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}

	return nil, false
}

func (n *Normalizer) stringField(raw mlm.RawSystem, field string) string {
	v, ok := n.resolveField(raw, field)
	if !ok {
		return ""
	}

	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truthyFlag reads the server's assorted spellings of a boolean flag.
func truthyFlag(v interface{}) bool {
	switch flag := v.(type) {
	case bool:
		return flag
	case float64:
		return flag != 0
	case int:
		return flag != 0
	case int64:
		return flag != 0
	case string:
		switch flag {
		case "", "0", "false", "False", "no", "N", "n":
			return false
		default:
			return true
		}
	default:
		return v != nil
	}
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}

	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)

	return out
}
