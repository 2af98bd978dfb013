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
	"fmt"
	"strconv"
	"strings"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

// ImplicitGroup holds every host unconditionally.
const ImplicitGroup = "all"

// Sanitize turns an arbitrary name into a valid group identifier:
// lowercase, every character outside [a-z0-9_] replaced with an
// underscore, and an underscore prepended when the first character is not
// a letter or underscore. The transformation is idempotent, so sanitized
// names pass through unchanged. Distinct raw names can collide after
// sanitization; their host sets merge into one group.
func Sanitize(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder

	b.Grow(len(lower) + 1)

	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	s := b.String()
	if s == "" || (s[0] != '_' && (s[0] < 'a' || s[0] > 'z')) {
		s = "_" + s
	}

	return s
}

// GroupBuilder derives the inventory groups a host belongs to from its
// resolved variables.
type GroupBuilder struct {
	groupBy []string
	logger  logger.Logger
}

func NewGroupBuilder(groupBy []string, log logger.Logger) *GroupBuilder {
	return &GroupBuilder{
		groupBy: groupBy,
		logger:  log,
	}
}

// Add places host into the implicit group, one group per literal system
// group, and the groups derived from each group_by key. Scalar values
// produce "<key>_<sanitized value>"; list values produce one unprefixed
// group per element.
func (b *GroupBuilder) Add(doc *models.InventoryDocument, host string, vars models.HostVars) {
	doc.AddToGroup(ImplicitGroup, host)

	// Literal system groups always become inventory groups, whether or
	// not group_by mentions system_groups.
	if groups, ok := vars["system_groups"].([]string); ok {
		for _, g := range groups {
			doc.AddToGroup(Sanitize(g), host)
		}
	}

	for _, key := range b.groupBy {
		value, ok := vars[key]
		if !ok || value == nil {
			b.logger.Debug().Str("host", host).Str("key", key).Msg("Host has no value for group_by key")
			continue
		}

		switch v := value.(type) {
		case []string:
			for _, elem := range v {
				doc.AddToGroup(Sanitize(elem), host)
			}
		case []interface{}:
			for _, elem := range v {
				doc.AddToGroup(Sanitize(groupValue(elem)), host)
			}
		default:
			doc.AddToGroup(key+"_"+Sanitize(groupValue(v)), host)
		}
	}
}

func groupValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
