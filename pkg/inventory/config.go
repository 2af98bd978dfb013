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
	"os"
	"time"

	"github.com/mlmtools/mlm-inventory/pkg/mlm"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultCacheTimeout = 3600 * time.Second
)

// Environment variables that fill credentials the config file omits.
// Explicit configuration values always win.
const (
	envURL      = "MLM_URL"
	envUsername = "MLM_USERNAME"
	envPassword = "MLM_PASSWORD"
)

// Statuses accepted by the status filter.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	// FilterAll disables the predicate it is set on.
	FilterAll = "all"
)

// FieldMappings carries per-record-type field mappings. Only system
// records are mapped today.
type FieldMappings struct {
	System map[string]models.StringList `json:"system,omitempty" yaml:"system,omitempty"`
}

// Config is the inventory source configuration, read from a JSON or YAML
// document.
type Config struct {
	URL           string            `json:"url" yaml:"url"`
	Username      string            `json:"username" yaml:"username"`
	Password      string            `json:"password" yaml:"password"`
	ValidateCerts *bool             `json:"validate_certs,omitempty" yaml:"validate_certs,omitempty"`
	Timeout       models.Duration   `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Retries       int               `json:"retries,omitempty" yaml:"retries,omitempty"`
	Cache         *bool             `json:"cache,omitempty" yaml:"cache,omitempty"`
	CacheTimeout  models.Duration   `json:"cache_timeout,omitempty" yaml:"cache_timeout,omitempty"`
	CacheDir      string            `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
	Filters       FilterSpec        `json:"filters,omitempty" yaml:"filters,omitempty"`
	GroupBy       []string          `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Compose       map[string]string `json:"compose,omitempty" yaml:"compose,omitempty"`
	FieldMappings FieldMappings     `json:"field_mappings,omitempty" yaml:"field_mappings,omitempty"`
	APIBasePath   string            `json:"api_base_path,omitempty" yaml:"api_base_path,omitempty"`
	APIEndpoints  map[string]string `json:"api_endpoints,omitempty" yaml:"api_endpoints,omitempty"`
	LogLevel      string            `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// Validate fills credentials from the environment, applies defaults, and
// checks enumerated fields. Implements config.Validator.
func (c *Config) Validate() error {
	c.applyEnvironment()

	if c.URL == "" {
		return configErrorf("url", "server URL is required")
	}

	if c.Username == "" {
		return configErrorf("username", "username is required")
	}

	if c.Password == "" {
		return configErrorf("password", "password is required")
	}

	if c.ValidateCerts == nil {
		c.ValidateCerts = boolPtr(true)
	}

	if c.Timeout <= 0 {
		c.Timeout = models.Duration(defaultTimeout)
	}

	if c.Cache == nil {
		c.Cache = boolPtr(true)
	}

	if c.CacheTimeout <= 0 {
		c.CacheTimeout = models.Duration(defaultCacheTimeout)
	}

	if err := c.Filters.validate(); err != nil {
		return err
	}

	// A nil group_by means the key was absent; an explicit empty list
	// disables attribute-derived groups.
	if c.GroupBy == nil {
		c.GroupBy = []string{"patch_status"}
	}

	return nil
}

func (c *Config) applyEnvironment() {
	if c.URL == "" {
		c.URL = os.Getenv(envURL)
	}

	if c.Username == "" {
		c.Username = os.Getenv(envUsername)
	}

	if c.Password == "" {
		c.Password = os.Getenv(envPassword)
	}
}

// CacheEnabled reports whether the cache store participates in this run.
func (c *Config) CacheEnabled() bool {
	return c.Cache != nil && *c.Cache
}

// ClientConfig translates the inventory configuration into the API client
// connection settings.
func (c *Config) ClientConfig() *mlm.ClientConfig {
	validateCerts := true
	if c.ValidateCerts != nil {
		validateCerts = *c.ValidateCerts
	}

	return &mlm.ClientConfig{
		URL:           c.URL,
		Username:      c.Username,
		Password:      c.Password,
		ValidateCerts: validateCerts,
		Timeout:       c.Timeout.Duration(),
		Retries:       c.Retries,
		APIBasePath:   c.APIBasePath,
		Endpoints:     c.APIEndpoints,
	}
}

// cacheKeyComponents returns the configuration facets that shape the
// assembled document. Two configs agreeing on these share a cache entry.
func (c *Config) cacheKeyComponents() []interface{} {
	return []interface{}{
		c.URL,
		c.Filters,
		c.GroupBy,
		c.Compose,
		c.FieldMappings.System,
	}
}

func boolPtr(v bool) *bool {
	return &v
}
