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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/mlmtools/mlm-inventory/pkg/cache"
	"github.com/mlmtools/mlm-inventory/pkg/config"
	"github.com/mlmtools/mlm-inventory/pkg/inventory"
	"github.com/mlmtools/mlm-inventory/pkg/logger"
	"github.com/mlmtools/mlm-inventory/pkg/mlm"
	"github.com/mlmtools/mlm-inventory/pkg/models"
	"github.com/mlmtools/mlm-inventory/pkg/version"
)

func main() {
	configPath := flag.String("config", "mlm_inventory.yml", "Path to config file")
	list := flag.Bool("list", false, "Output the full inventory")
	host := flag.String("host", "", "Output variables for one host")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("mlm-inventory " + version.String())
		return
	}

	ctx := context.Background()
	cfgLoader := config.NewConfig(nil)

	var cfg inventory.Config

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logConfig := logger.DefaultConfig()
	if cfg.LogLevel != "" {
		logConfig.Level = cfg.LogLevel
	}

	runLogger, err := logger.New(logConfig)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	doc, err := assemble(ctx, &cfg, runLogger)
	if err != nil {
		log.Fatalf("Inventory assembly failed: %v", err)
	}

	payload, err := render(doc, *list, *host)
	if err != nil {
		log.Fatalf("Failed to render inventory: %v", err)
	}

	fmt.Println(string(payload))
}

func assemble(ctx context.Context, cfg *inventory.Config, runLogger logger.Logger) (*models.InventoryDocument, error) {
	client, err := mlm.NewClient(cfg.ClientConfig(), runLogger)
	if err != nil {
		return nil, err
	}

	metrics := inventory.NewInMemoryMetrics(runLogger)
	client.SetMetrics(metrics)

	var store inventory.CacheStore

	if cfg.CacheEnabled() {
		fileStore, storeErr := cache.NewFileStore(cfg.CacheDir, runLogger)
		if storeErr != nil {
			return nil, storeErr
		}

		store = fileStore
	}

	assembler, err := inventory.NewAssembler(cfg, client, store, metrics, runLogger)
	if err != nil {
		return nil, err
	}

	return assembler.Assemble(ctx)
}

// render picks the script output mode. A bare invocation behaves like
// --list, matching the dynamic-inventory convention.
func render(doc *models.InventoryDocument, list bool, host string) ([]byte, error) {
	if host != "" && !list {
		return inventory.RenderHost(doc, host)
	}

	return inventory.RenderList(doc)
}
