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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlmtools/mlm-inventory/pkg/models"
)

func validConfig() *Config {
	return &Config{
		URL:      "https://mlm.example.com",
		Username: "admin",
		Password: "secret",
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.Validate())

	assert.True(t, *cfg.ValidateCerts)
	assert.Equal(t, 60*time.Second, cfg.Timeout.Duration())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, time.Hour, cfg.CacheTimeout.Duration())
	assert.Equal(t, StatusActive, cfg.Filters.Status)
	assert.Equal(t, FilterAll, cfg.Filters.PatchStatus)
	assert.Equal(t, []string{"patch_status"}, cfg.GroupBy)
}

func TestConfigValidateKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.ValidateCerts = boolPtr(false)
	cfg.Timeout = models.Duration(10 * time.Second)
	cfg.Cache = boolPtr(false)
	cfg.GroupBy = []string{}
	cfg.Filters = FilterSpec{Status: StatusInactive, PatchStatus: "needs_reboot"}

	require.NoError(t, cfg.Validate())

	assert.False(t, *cfg.ValidateCerts)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Duration())
	assert.False(t, cfg.CacheEnabled())

	// An explicit empty group_by list disables attribute groups; only a
	// missing key gets the default.
	assert.Empty(t, cfg.GroupBy)
	assert.Equal(t, StatusInactive, cfg.Filters.Status)
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"missing url", func(c *Config) { c.URL = "" }, "url"},
		{"missing username", func(c *Config) { c.Username = "" }, "username"},
		{"missing password", func(c *Config) { c.Password = "" }, "password"},
		{"bad status", func(c *Config) { c.Filters.Status = "dormant" }, "filters.status"},
		{"bad patch status", func(c *Config) { c.Filters.PatchStatus = "broken" }, "filters.patch_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Ambient credentials would mask the missing-field cases.
			t.Setenv(envURL, "")
			t.Setenv(envUsername, "")
			t.Setenv(envPassword, "")

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			var confErr *ConfigurationError

			require.ErrorAs(t, err, &confErr)
			assert.Equal(t, tt.wantField, confErr.Field)
		})
	}
}

func TestConfigEnvironmentFillsMissingCredentials(t *testing.T) {
	t.Setenv(envURL, "https://env.example.com")
	t.Setenv(envUsername, "env-user")
	t.Setenv(envPassword, "env-pass")

	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://env.example.com", cfg.URL)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "env-pass", cfg.Password)
}

func TestConfigExplicitValuesBeatEnvironment(t *testing.T) {
	t.Setenv(envURL, "https://env.example.com")

	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://mlm.example.com", cfg.URL)
}

func TestClientConfigTranslation(t *testing.T) {
	cfg := validConfig()
	cfg.Retries = 5
	cfg.APIBasePath = "/custom/api"
	cfg.APIEndpoints = map[string]string{"login": "/custom/login"}

	require.NoError(t, cfg.Validate())

	cc := cfg.ClientConfig()
	assert.Equal(t, cfg.URL, cc.URL)
	assert.Equal(t, "admin", cc.Username)
	assert.Equal(t, "secret", cc.Password)
	assert.True(t, cc.ValidateCerts)
	assert.Equal(t, 60*time.Second, cc.Timeout)
	assert.Equal(t, 5, cc.Retries)
	assert.Equal(t, "/custom/api", cc.APIBasePath)
	assert.Equal(t, "/custom/login", cc.Endpoints["login"])
}
