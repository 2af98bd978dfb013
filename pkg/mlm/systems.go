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

package mlm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const defaultFetchWorkers = 4

// ListSystems returns every system registered on the server with its
// raw field names intact.
func (c *Client) ListSystems(ctx context.Context) ([]RawSystem, error) {
	raw, err := c.call(ctx, http.MethodGet, endpointSystems, nil, nil)
	if err != nil {
		return nil, err
	}

	var systems []RawSystem
	if err := json.Unmarshal(raw, &systems); err != nil {
		return nil, err
	}

	return systems, nil
}

// ListSystemGroups returns the names of the groups a system is
// subscribed to. Legacy group names carry a "system_group_" prefix that
// the server-side UI hides, so it is stripped here too.
func (c *Client) ListSystemGroups(ctx context.Context, systemID int64) ([]string, error) {
	query := url.Values{"sid": []string{strconv.FormatInt(systemID, 10)}}

	raw, err := c.call(ctx, http.MethodGet, endpointSystemGroups, query, nil)
	if err != nil {
		return nil, err
	}

	return parseGroupNames(raw), nil
}

// parseGroupNames tolerates the response shapes the API has been seen
// to produce: a list of group objects, a list of bare names, or a
// single name.
func parseGroupNames(raw json.RawMessage) []string {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err == nil && single != "" {
			return []string{single}
		}

		return nil
	}

	var names []string

	for _, entry := range entries {
		var group systemGroupEntry
		if err := json.Unmarshal(entry, &group); err == nil {
			switch {
			case group.Subscribed == 1 && group.SystemGroupName != "":
				names = append(names, strings.TrimPrefix(group.SystemGroupName, "system_group_"))
			case group.Name != "":
				names = append(names, group.Name)
			}

			continue
		}

		var name string
		if err := json.Unmarshal(entry, &name); err == nil && name != "" {
			names = append(names, name)
		}
	}

	return names
}

// RelevantErrataCount returns the number of errata applicable to a
// system. A non-list result counts as zero.
func (c *Client) RelevantErrataCount(ctx context.Context, systemID int64) (int, error) {
	query := url.Values{"sid": []string{strconv.FormatInt(systemID, 10)}}

	raw, err := c.call(ctx, http.MethodGet, endpointRelevantErrata, query, nil)
	if err != nil {
		return 0, err
	}

	var errata []json.RawMessage
	if err := json.Unmarshal(raw, &errata); err != nil {
		return 0, nil
	}

	return len(errata), nil
}

// RegistrationDate returns when a system was registered. The lookup is
// best effort: the endpoint is missing on older servers, so failures
// degrade to an empty date instead of aborting the run.
func (c *Client) RegistrationDate(ctx context.Context, systemID int64) (string, error) {
	query := url.Values{"sid": []string{strconv.FormatInt(systemID, 10)}}

	raw, err := c.call(ctx, http.MethodGet, endpointRegistrationDate, query, nil)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		c.logger.Debug().Err(err).Int64("system_id", systemID).Msg("Could not fetch registration date")

		return "", nil
	}

	var date string
	if err := json.Unmarshal(raw, &date); err != nil {
		return "", nil
	}

	return date, nil
}

// ListSuggestedReboot returns the IDs of systems the server flags as
// needing a restart.
func (c *Client) ListSuggestedReboot(ctx context.Context) (map[int64]bool, error) {
	raw, err := c.call(ctx, http.MethodGet, endpointSuggestedReboot, nil, nil)
	if err != nil {
		return nil, err
	}

	var entries []rebootEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return map[int64]bool{}, nil
	}

	reboot := make(map[int64]bool, len(entries))
	for _, entry := range entries {
		reboot[entry.ID] = true
	}

	return reboot, nil
}

// FetchSystems harvests the full system set: the system list and
// reboot list first, then per-system errata counts, group
// subscriptions and registration dates through a bounded worker pool.
// Results come back sorted by system ID so downstream processing is
// independent of completion order.
func (c *Client) FetchSystems(ctx context.Context, workers int) (*FetchResult, error) {
	if workers <= 0 {
		workers = defaultFetchWorkers
	}

	var (
		systems   []RawSystem
		rebootIDs map[int64]bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		systems, err = c.ListSystems(gctx)

		return err
	})

	g.Go(func() error {
		var err error
		rebootIDs, err = c.ListSuggestedReboot(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortSystems(systems)

	details := make(map[int64]*SystemDetail, len(systems))

	var mu sync.Mutex

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, system := range systems {
		id, ok := system.ID()
		if !ok {
			continue
		}

		eg.Go(func() error {
			errataCount, err := c.RelevantErrataCount(egctx, id)
			if err != nil {
				return err
			}

			groups, err := c.ListSystemGroups(egctx, id)
			if err != nil {
				return err
			}

			regDate, err := c.RegistrationDate(egctx, id)
			if err != nil {
				return err
			}

			sort.Strings(groups)

			mu.Lock()
			details[id] = &SystemDetail{
				ErrataCount:      errataCount,
				SystemGroups:     groups,
				RegistrationDate: regDate,
				RebootRequired:   rebootIDs[id],
			}
			mu.Unlock()

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("systems", len(systems)).
		Int("reboot_flagged", len(rebootIDs)).
		Msg("Fetched systems from server")

	return &FetchResult{Systems: systems, Details: details}, nil
}

// sortSystems orders by ID ascending; entries without an ID sort last
// by name so output stays stable.
func sortSystems(systems []RawSystem) {
	sort.SliceStable(systems, func(i, j int) bool {
		iID, iOK := systems[i].ID()
		jID, jOK := systems[j].ID()

		switch {
		case iOK && jOK:
			return iID < jID
		case iOK:
			return true
		case jOK:
			return false
		default:
			iName, _ := systems[i]["name"].(string)
			jName, _ := systems[j]["name"].(string)

			return iName < jName
		}
	})
}
