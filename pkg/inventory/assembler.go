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

// Package inventory assembles the host inventory: it fetches systems from
// the management server, normalizes and filters them, derives groups and
// per-host variables, and caches the resulting document.
package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mlmtools/mlm-inventory/pkg/cache"
	"github.com/mlmtools/mlm-inventory/pkg/compose"
	"github.com/mlmtools/mlm-inventory/pkg/logger"
	"github.com/mlmtools/mlm-inventory/pkg/mlm"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

// State identifies the assembler's position in its run.
type State string

const (
	StateInit         State = "init"
	StateCacheCheck   State = "cache_check"
	StateAuthenticate State = "authenticate"
	StateFetch        State = "fetch"
	StateNormalize    State = "normalize"
	StateFilter       State = "filter"
	StateGroup        State = "group"
	StateCompose      State = "compose"
	StateCachePut     State = "cache_put"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Assembler orchestrates one inventory run. A fatal error from any stage
// moves it to StateFailed and no document is returned; per-host compose
// failures and cache problems are absorbed as warnings.
type Assembler struct {
	config     *Config
	source     SystemSource
	cache      CacheStore
	metrics    Metrics
	logger     logger.Logger
	normalizer *Normalizer
	groups     *GroupBuilder
	composeSet *compose.SpecSet
	cacheKey   string
	runID      string
	state      State
}

// hostEntry pairs a normalized record with its projected variables while
// the stages run.
type hostEntry struct {
	host   string
	vars   models.HostVars
	record *models.SystemRecord
}

// NewAssembler validates the configuration, compiles the compose block,
// and derives the cache key. A nil store disables caching regardless of
// configuration; a nil metrics collector is replaced with a no-op one.
func NewAssembler(cfg *Config, source SystemSource, store CacheStore, metrics Metrics, log logger.Logger) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set, err := compose.CompileSpec(cfg.Compose)
	if err != nil {
		return nil, &ConfigurationError{Field: "compose", Msg: err.Error(), Err: err}
	}

	if metrics == nil {
		metrics = &NoOpMetrics{}
	}

	a := &Assembler{
		config:     cfg,
		source:     source,
		cache:      store,
		metrics:    metrics,
		logger:     log,
		normalizer: NewNormalizer(cfg.FieldMappings.System, log),
		groups:     NewGroupBuilder(cfg.GroupBy, log),
		composeSet: set,
		runID:      uuid.New().String(),
		state:      StateInit,
	}

	if a.cacheActive() {
		key, keyErr := cache.Key(cfg.cacheKeyComponents()...)
		if keyErr != nil {
			return nil, &ConfigurationError{Field: "cache", Msg: "cannot derive cache key", Err: keyErr}
		}

		a.cacheKey = key
	}

	return a, nil
}

// State reports the assembler's current state.
func (a *Assembler) State() State {
	return a.state
}

// Assemble runs the stages in order and returns the inventory document.
// The document is a deterministic function of the fetched records and the
// configuration.
func (a *Assembler) Assemble(ctx context.Context) (*models.InventoryDocument, error) {
	a.transition(StateCacheCheck)

	if a.cacheActive() {
		if doc, ok := a.cache.Get(a.cacheKey); ok {
			a.metrics.RecordCacheHit()
			a.logger.Debug().Str("run_id", a.runID).Str("cache_key", a.cacheKey).Msg("Serving inventory from cache")
			a.transition(StateDone)

			return doc, nil
		}

		a.metrics.RecordCacheMiss()
	}

	a.transition(StateAuthenticate)

	if err := a.source.Login(ctx); err != nil {
		return nil, a.fail(err)
	}

	defer a.source.Logout(ctx)

	a.transition(StateFetch)

	fetchStart := time.Now()

	result, err := a.source.FetchSystems(ctx, 0)
	if err != nil {
		a.metrics.RecordFetchFailure(err, time.Since(fetchStart))
		return nil, a.fail(err)
	}

	a.metrics.RecordFetchSuccess(len(result.Systems), time.Since(fetchStart))

	a.transition(StateNormalize)

	entries := a.normalize(result)

	a.transition(StateFilter)

	kept := make([]hostEntry, 0, len(entries))

	for _, e := range entries {
		if a.config.Filters.Matches(e.record) {
			kept = append(kept, e)
		}
	}

	a.metrics.RecordFiltered(len(entries), len(kept))

	a.transition(StateGroup)

	doc := models.NewInventoryDocument()

	for _, e := range kept {
		if _, exists := doc.HostVars[e.host]; exists {
			a.logger.Warn().Str("run_id", a.runID).Str("host", e.host).
				Msg("Duplicate inventory hostname, later system wins")
		}

		a.groups.Add(doc, e.host, e.vars)
		doc.HostVars[e.host] = e.vars
	}

	a.metrics.RecordGroupsBuilt(len(doc.Groups))

	a.transition(StateCompose)

	a.applyCompose(kept)

	if a.cacheActive() {
		a.transition(StateCachePut)

		// The document is already assembled, so a failed write only
		// costs the next run a fetch.
		if putErr := a.cache.Put(a.cacheKey, doc, a.config.CacheTimeout.Duration()); putErr != nil {
			a.logger.Warn().Err(putErr).Str("run_id", a.runID).Msg("Failed to write inventory cache entry")
		}
	}

	a.transition(StateDone)

	a.logger.Info().
		Str("run_id", a.runID).
		Int("hosts", len(doc.HostVars)).
		Int("groups", len(doc.Groups)).
		Msg("Inventory assembled")

	return doc, nil
}

// normalize turns the fetch result into host entries, skipping rows the
// normalizer rejects. Systems arrive sorted by ID, so entry order is
// independent of fetch completion order.
func (a *Assembler) normalize(result *mlm.FetchResult) []hostEntry {
	entries := make([]hostEntry, 0, len(result.Systems))

	for _, raw := range result.Systems {
		var detail *mlm.SystemDetail

		if id, ok := raw.ID(); ok {
			detail = result.Details[id]
		}

		record, ok := a.normalizer.Normalize(raw, detail)
		if !ok {
			continue
		}

		entries = append(entries, hostEntry{
			host:   record.InventoryHostname(),
			vars:   a.normalizer.HostVars(record, raw),
			record: record,
		})
	}

	return entries
}

// applyCompose merges the derived variables into each host's vars. A
// failing expression omits only its own variable for that host.
func (a *Assembler) applyCompose(kept []hostEntry) {
	if a.composeSet.Len() == 0 {
		return
	}

	for _, e := range kept {
		composed, failures := a.composeSet.Apply(e.vars)

		for _, failure := range failures {
			variable := ""

			var varErr *compose.VarError
			if errors.As(failure, &varErr) {
				variable = varErr.Name
			}

			a.metrics.RecordComposeWarning(e.host, variable)
			a.logger.Warn().Err(failure).Str("run_id", a.runID).Str("host", e.host).
				Msg("Compose expression failed, variable omitted")
		}

		for name, value := range composed {
			e.vars[name] = value
		}
	}
}

func (a *Assembler) cacheActive() bool {
	return a.cache != nil && a.config.CacheEnabled()
}

func (a *Assembler) transition(next State) {
	a.state = next
	a.logger.Debug().Str("run_id", a.runID).Str("state", string(next)).Msg("Assembler state change")
}

func (a *Assembler) fail(err error) error {
	a.state = StateFailed
	a.logger.Error().Err(err).Str("run_id", a.runID).Msg("Inventory assembly failed")

	return err
}
