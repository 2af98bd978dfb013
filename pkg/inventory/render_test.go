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
	"github.com/stretchr/testify/require"

	"github.com/mlmtools/mlm-inventory/pkg/models"
)

func renderTestDocument() *models.InventoryDocument {
	doc := models.NewInventoryDocument()
	doc.AddToGroup("all", "web01")
	doc.AddToGroup("web_servers", "web01")
	doc.HostVars["web01"] = models.HostVars{"ansible_host": "10.0.0.5", "errata_count": 2}

	return doc
}

func TestRenderList(t *testing.T) {
	payload, err := RenderList(renderTestDocument())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"all": {"hosts": ["web01"]},
		"web_servers": {"hosts": ["web01"]},
		"_meta": {"hostvars": {"web01": {"ansible_host": "10.0.0.5", "errata_count": 2}}}
	}`, string(payload))
}

func TestRenderHost(t *testing.T) {
	doc := renderTestDocument()

	payload, err := RenderHost(doc, "web01")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ansible_host": "10.0.0.5", "errata_count": 2}`, string(payload))

	payload, err = RenderHost(doc, "unknown")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(payload), "unknown hosts render as an empty object")
}
