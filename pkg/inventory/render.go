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

	"github.com/mlmtools/mlm-inventory/pkg/models"
)

// RenderList serializes the document in the dynamic-inventory script
// shape: one key per group holding its hosts, plus _meta.hostvars.
func RenderList(doc *models.InventoryDocument) ([]byte, error) {
	out := make(map[string]interface{}, len(doc.Groups)+1)

	for name, hosts := range doc.Groups {
		out[name] = map[string]interface{}{"hosts": hosts}
	}

	out["_meta"] = map[string]interface{}{"hostvars": doc.HostVars}

	return json.MarshalIndent(out, "", "  ")
}

// RenderHost serializes one host's variables. Unknown hosts render as an
// empty object, which the automation framework treats as "no vars".
func RenderHost(doc *models.InventoryDocument, host string) ([]byte, error) {
	vars, ok := doc.HostVars[host]
	if !ok {
		vars = models.HostVars{}
	}

	return json.MarshalIndent(vars, "", "  ")
}
