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
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
	"github.com/mlmtools/mlm-inventory/pkg/mlm"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

func testAssemblerConfig() *Config {
	return &Config{
		URL:      "https://mlm.example.com",
		Username: "admin",
		Password: "secret",
		Cache:    boolPtr(false),
	}
}

// scenarioFetchResult returns three systems: an active one with pending
// errata, an active one needing a reboot, and an inactive one needing a
// reboot.
func scenarioFetchResult() *mlm.FetchResult {
	return &mlm.FetchResult{
		Systems: []mlm.RawSystem{
			{"id": float64(1), "name": "a", "hostname": "a.example.com", "active": true},
			{"id": float64(2), "name": "b", "hostname": "b.example.com", "active": true},
			{"id": float64(3), "name": "c", "hostname": "c.example.com", "active": false},
		},
		Details: map[int64]*mlm.SystemDetail{
			1: {ErrataCount: 5},
			2: {RebootRequired: true},
			3: {RebootRequired: true},
		},
	}
}

func newMockAssembler(t *testing.T, cfg *Config, store CacheStore) (*Assembler, *MockSystemSource) {
	t.Helper()

	ctrl := gomock.NewController(t)
	source := NewMockSystemSource(ctrl)

	asm, err := NewAssembler(cfg, source, store, nil, logger.NewTestLogger())
	require.NoError(t, err)

	return asm, source
}

func expectFullRun(source *MockSystemSource, result *mlm.FetchResult) {
	source.EXPECT().Login(gomock.Any()).Return(nil)
	source.EXPECT().FetchSystems(gomock.Any(), 0).Return(result, nil)
	source.EXPECT().Logout(gomock.Any())
}

func TestAssembleFiltersScenario(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Filters = FilterSpec{Status: StatusActive, PatchStatus: "needs_reboot"}

	asm, source := newMockAssembler(t, cfg, nil)
	expectFullRun(source, scenarioFetchResult())

	doc, err := asm.Assemble(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc)

	// A fails patch_status, C fails status; only B survives.
	assert.Equal(t, []string{"b.example.com"}, doc.Groups[ImplicitGroup])
	assert.Len(t, doc.HostVars, 1)
	assert.Equal(t, "needs_reboot", doc.HostVars["b.example.com"]["patch_status"])
	assert.Equal(t, StateDone, asm.State())
}

func TestAssembleGroupCompleteness(t *testing.T) {
	result := &mlm.FetchResult{
		Systems: []mlm.RawSystem{
			{"id": float64(1), "name": "web01", "hostname": "web01.example.com", "active": true},
		},
		Details: map[int64]*mlm.SystemDetail{
			1: {SystemGroups: []string{"Web Servers"}},
		},
	}

	// The literal group appears whether or not group_by mentions
	// system_groups.
	for _, groupBy := range [][]string{{}, {"system_groups"}} {
		cfg := testAssemblerConfig()
		cfg.GroupBy = groupBy

		asm, source := newMockAssembler(t, cfg, nil)
		expectFullRun(source, result)

		doc, err := asm.Assemble(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"all", "web_servers"}, doc.GroupNames())
		assert.Equal(t, []string{"web01.example.com"}, doc.Groups["web_servers"])
	}
}

func TestAssembleDeterministicDocument(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Compose = map[string]string{
		"address":    `ansible_host | string`,
		"needs_work": `errata_count > 0 or reboot_required`,
	}

	marshal := func() []byte {
		asm, source := newMockAssembler(t, cfg, nil)
		expectFullRun(source, scenarioFetchResult())

		doc, err := asm.Assemble(context.Background())
		require.NoError(t, err)

		payload, err := json.Marshal(doc)
		require.NoError(t, err)

		return payload
	}

	assert.Equal(t, marshal(), marshal(), "repeated assembly must produce identical bytes")
}

func TestAssembleComposeMergesVariables(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Filters = FilterSpec{Status: FilterAll}
	cfg.Compose = map[string]string{
		"display": `system_name + ' (' + patch_status + ')'`,
	}

	asm, source := newMockAssembler(t, cfg, nil)
	expectFullRun(source, scenarioFetchResult())

	doc, err := asm.Assemble(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "a (needs_patches)", doc.HostVars["a.example.com"]["display"])
	assert.Equal(t, "b (needs_reboot)", doc.HostVars["b.example.com"]["display"])
}

func TestAssembleComposeFailureIsNotFatal(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Compose = map[string]string{
		"bad":  `missing_attr + 1`,
		"good": `errata_count`,
	}

	asm, source := newMockAssembler(t, cfg, nil)
	expectFullRun(source, scenarioFetchResult())

	doc, err := asm.Assemble(context.Background())
	require.NoError(t, err)
	require.Contains(t, doc.HostVars, "a.example.com")

	assert.NotContains(t, doc.HostVars["a.example.com"], "bad")
	assert.Equal(t, 5, doc.HostVars["a.example.com"]["good"])
	assert.Equal(t, StateDone, asm.State())
}

func TestAssembleAuthFailureIsFatal(t *testing.T) {
	asm, source := newMockAssembler(t, testAssemblerConfig(), nil)

	authErr := &mlm.AuthError{StatusCode: 401, Message: "bad credentials"}
	source.EXPECT().Login(gomock.Any()).Return(authErr)

	doc, err := asm.Assemble(context.Background())
	require.Nil(t, doc)

	var gotAuth *mlm.AuthError

	require.ErrorAs(t, err, &gotAuth)
	assert.Equal(t, StateFailed, asm.State())
}

func TestAssembleFetchFailureIsFatal(t *testing.T) {
	asm, source := newMockAssembler(t, testAssemblerConfig(), nil)

	connErr := &mlm.ConnectivityError{Endpoint: "systems", Attempts: 4, Err: errors.New("dial tcp: timeout")}
	source.EXPECT().Login(gomock.Any()).Return(nil)
	source.EXPECT().FetchSystems(gomock.Any(), 0).Return(nil, connErr)
	source.EXPECT().Logout(gomock.Any())

	doc, err := asm.Assemble(context.Background())
	require.Nil(t, doc)

	var gotConn *mlm.ConnectivityError

	require.ErrorAs(t, err, &gotConn)
	assert.Equal(t, StateFailed, asm.State())
}

func TestAssembleCacheHitSkipsFetch(t *testing.T) {
	cached := models.NewInventoryDocument()
	cached.AddToGroup(ImplicitGroup, "cached01")

	cfg := testAssemblerConfig()
	cfg.Cache = boolPtr(true)

	ctrl := gomock.NewController(t)
	store := NewMockCacheStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(cached, true)

	// No source expectations: a cache hit must not touch the network.
	asm, _ := newMockAssembler(t, cfg, store)

	doc, err := asm.Assemble(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cached, doc)
	assert.Equal(t, StateDone, asm.State())
}

func TestAssembleCacheMissFetchesAndWrites(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Cache = boolPtr(true)

	ctrl := gomock.NewController(t)
	store := NewMockCacheStore(ctrl)

	asm, source := newMockAssembler(t, cfg, store)
	expectFullRun(source, scenarioFetchResult())

	var written *models.InventoryDocument

	store.EXPECT().Get(gomock.Any()).Return(nil, false)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), time.Hour).
		DoAndReturn(func(_ string, doc *models.InventoryDocument, _ time.Duration) error {
			written = doc
			return nil
		})

	doc, err := asm.Assemble(context.Background())
	require.NoError(t, err)

	assert.Equal(t, doc, written, "the assembled document is what gets cached")
}

func TestAssembleCachePutFailureIsWarning(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Cache = boolPtr(true)

	ctrl := gomock.NewController(t)
	store := NewMockCacheStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(nil, false)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	asm, source := newMockAssembler(t, cfg, store)
	expectFullRun(source, scenarioFetchResult())

	doc, err := asm.Assemble(context.Background())
	require.NoError(t, err, "a failed cache write must not fail the run")
	require.NotNil(t, doc)
	assert.Equal(t, StateDone, asm.State())
}

func TestNewAssemblerRejectsBadCompose(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Compose = map[string]string{"broken": `1 +`}

	_, err := NewAssembler(cfg, nil, nil, nil, logger.NewTestLogger())

	var confErr *ConfigurationError

	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "compose", confErr.Field)
}

func TestAssembleRecordsMetrics(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.Filters = FilterSpec{Status: StatusActive, PatchStatus: "needs_reboot"}

	ctrl := gomock.NewController(t)
	source := NewMockSystemSource(ctrl)
	expectFullRun(source, scenarioFetchResult())

	metrics := NewInMemoryMetrics(logger.NewTestLogger())

	asm, err := NewAssembler(cfg, source, nil, metrics, logger.NewTestLogger())
	require.NoError(t, err)

	_, err = asm.Assemble(context.Background())
	require.NoError(t, err)

	got := metrics.GetMetrics()
	run, ok := got["run"].(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, 1, run["systems_kept"])
	assert.Equal(t, 2, run["groups_built"])
}
