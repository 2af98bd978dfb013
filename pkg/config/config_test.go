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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
)

type testConfig struct {
	URL     string `json:"url" yaml:"url"`
	Timeout int    `json:"timeout" yaml:"timeout"`
}

var errMissingURL = errors.New("url is required")

func (c *testConfig) Validate() error {
	if c.URL == "" {
		return errMissingURL
	}

	if c.Timeout == 0 {
		c.Timeout = 60
	}

	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantURL string
		wantErr bool
	}{
		{
			name:    "json config",
			file:    "config.json",
			content: `{"url": "https://mlm.example.com", "timeout": 30}`,
			wantURL: "https://mlm.example.com",
		},
		{
			name:    "yaml config",
			file:    "config.yaml",
			content: "url: https://mlm.example.com\ntimeout: 30\n",
			wantURL: "https://mlm.example.com",
		},
		{
			name:    "yml extension",
			file:    "config.yml",
			content: "url: https://mlm.example.com\n",
			wantURL: "https://mlm.example.com",
		},
		{
			name:    "invalid json",
			file:    "config.json",
			content: `{"url": `,
			wantErr: true,
		},
		{
			name:    "validation failure",
			file:    "config.json",
			content: `{"timeout": 30}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			var cfg testConfig

			err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, cfg.URL)
		})
	}
}

func TestLoadAndValidateAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "url: https://mlm.example.com\n")

	var cfg testConfig

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, 60, cfg.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg testConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "/nonexistent/config.json", &cfg)
	require.Error(t, err)
}
