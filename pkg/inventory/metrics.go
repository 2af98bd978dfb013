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
	"sync"
	"time"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
)

// Metrics collects counters for one assembly run. The API methods satisfy
// the client transport's metrics hook, so one collector observes both the
// run stages and the underlying HTTP traffic.
type Metrics interface {
	// Run metrics
	RecordCacheHit()
	RecordCacheMiss()
	RecordFetchSuccess(systemCount int, duration time.Duration)
	RecordFetchFailure(err error, duration time.Duration)
	RecordFiltered(total, kept int)
	RecordGroupsBuilt(count int)
	RecordComposeWarning(host, variable string)

	// API metrics
	RecordAPICall(endpoint string)
	RecordAPISuccess(endpoint string, duration time.Duration)
	RecordAPIFailure(endpoint string, statusCode int, duration time.Duration)
	RecordAPIRetry(endpoint string)

	// Export metrics for monitoring systems
	GetMetrics() map[string]interface{}
}

// NoOpMetrics provides a no-op implementation of the Metrics interface
type NoOpMetrics struct{}

func (n *NoOpMetrics) RecordCacheHit()                                              {}
func (n *NoOpMetrics) RecordCacheMiss()                                             {}
func (n *NoOpMetrics) RecordFetchSuccess(systemCount int, duration time.Duration)   {}
func (n *NoOpMetrics) RecordFetchFailure(err error, duration time.Duration)         {}
func (n *NoOpMetrics) RecordFiltered(total, kept int)                               {}
func (n *NoOpMetrics) RecordGroupsBuilt(count int)                                  {}
func (n *NoOpMetrics) RecordComposeWarning(host, variable string)                   {}
func (n *NoOpMetrics) RecordAPICall(endpoint string)                                {}
func (n *NoOpMetrics) RecordAPISuccess(endpoint string, duration time.Duration)     {}
func (n *NoOpMetrics) RecordAPIFailure(endpoint string, statusCode int, duration time.Duration) {
}
func (n *NoOpMetrics) RecordAPIRetry(endpoint string)     {}
func (n *NoOpMetrics) GetMetrics() map[string]interface{} { return map[string]interface{}{} }

// InMemoryMetrics provides an in-memory implementation of the Metrics interface
type InMemoryMetrics struct {
	mu     sync.RWMutex
	logger logger.Logger

	// Run metrics
	cacheHits       int
	cacheMisses     int
	fetchSuccesses  int
	fetchFailures   int
	fetchDuration   time.Duration
	systemsFetched  int
	systemsKept     int
	groupsBuilt     int
	composeWarnings int

	// API metrics
	apiCalls    map[string]int
	apiSuccess  map[string]int
	apiFailures map[string]int
	apiRetries  map[string]int
	apiDuration map[string]time.Duration

	lastUpdated time.Time
}

// NewInMemoryMetrics creates a new in-memory metrics collector
func NewInMemoryMetrics(log logger.Logger) *InMemoryMetrics {
	return &InMemoryMetrics{
		logger:      log,
		apiCalls:    make(map[string]int),
		apiSuccess:  make(map[string]int),
		apiFailures: make(map[string]int),
		apiRetries:  make(map[string]int),
		apiDuration: make(map[string]time.Duration),
		lastUpdated: time.Now(),
	}
}

func (m *InMemoryMetrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordFetchSuccess(systemCount int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchSuccesses++
	m.systemsFetched = systemCount
	m.fetchDuration = duration
	m.lastUpdated = time.Now()

	m.logger.Info().
		Int("system_count", systemCount).
		Dur("duration", duration).
		Msg("Fetch completed successfully")
}

func (m *InMemoryMetrics) RecordFetchFailure(err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchFailures++
	m.fetchDuration = duration
	m.lastUpdated = time.Now()

	m.logger.Error().
		Err(err).
		Dur("duration", duration).
		Msg("Fetch failed")
}

func (m *InMemoryMetrics) RecordFiltered(total, kept int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systemsFetched = total
	m.systemsKept = kept
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordGroupsBuilt(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groupsBuilt = count
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordComposeWarning(host, variable string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.composeWarnings++
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordAPICall(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCalls[endpoint]++
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordAPISuccess(endpoint string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiSuccess[endpoint]++
	m.apiDuration[endpoint] = duration
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordAPIFailure(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiFailures[endpoint]++
	m.apiDuration[endpoint] = duration
	m.lastUpdated = time.Now()

	m.logger.Warn().
		Str("endpoint", endpoint).
		Int("status_code", statusCode).
		Dur("duration", duration).
		Msg("API call failed")
}

func (m *InMemoryMetrics) RecordAPIRetry(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiRetries[endpoint]++
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"cache": map[string]interface{}{
			"hits":   m.cacheHits,
			"misses": m.cacheMisses,
		},
		"fetch": map[string]interface{}{
			"successes": m.fetchSuccesses,
			"failures":  m.fetchFailures,
			"duration":  m.fetchDuration,
			"systems":   m.systemsFetched,
		},
		"run": map[string]interface{}{
			"systems_kept":     m.systemsKept,
			"groups_built":     m.groupsBuilt,
			"compose_warnings": m.composeWarnings,
		},
		"api": map[string]interface{}{
			"calls":     m.apiCalls,
			"successes": m.apiSuccess,
			"failures":  m.apiFailures,
			"retries":   m.apiRetries,
			"durations": m.apiDuration,
		},
		"last_updated": m.lastUpdated,
	}
}
