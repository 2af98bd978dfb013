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

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var errInvalidStringList = errors.New("expected a string or a list of strings")

// StringList accepts two config spellings: a bare string (shorthand for a
// one-element list) or a list of strings. Filter group lists and field
// mapping candidates both use it.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*l = StringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("%w: %s", errInvalidStringList, string(b))
	}

	*l = many

	return nil
}

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	var single string
	if err := node.Decode(&single); err == nil {
		*l = StringList{single}
		return nil
	}

	var many []string
	if err := node.Decode(&many); err != nil {
		return fmt.Errorf("%w: line %d", errInvalidStringList, node.Line)
	}

	*l = many

	return nil
}
