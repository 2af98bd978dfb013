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

import "sort"

// HostVars is the per-host variable map exposed to the automation framework.
type HostVars map[string]interface{}

// InventoryDocument is the assembled inventory: group name to sorted
// member hostnames, plus per-host variables. For a fixed set of input
// records and a fixed configuration its JSON encoding is byte-identical
// across runs.
type InventoryDocument struct {
	Groups   map[string][]string `json:"groups"`
	HostVars map[string]HostVars `json:"hostvars"`
}

// NewInventoryDocument returns an empty document with initialized maps.
func NewInventoryDocument() *InventoryDocument {
	return &InventoryDocument{
		Groups:   make(map[string][]string),
		HostVars: make(map[string]HostVars),
	}
}

// AddToGroup inserts a host into a group, keeping the member list
// sorted and duplicate-free. Groups whose sanitized names collide
// merge their member sets here.
func (d *InventoryDocument) AddToGroup(group, host string) {
	members := d.Groups[group]

	i := sort.SearchStrings(members, host)
	if i < len(members) && members[i] == host {
		return
	}

	members = append(members, "")
	copy(members[i+1:], members[i:])
	members[i] = host
	d.Groups[group] = members
}

// GroupNames returns the group names in sorted order.
func (d *InventoryDocument) GroupNames() []string {
	names := make([]string, 0, len(d.Groups))
	for name := range d.Groups {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
