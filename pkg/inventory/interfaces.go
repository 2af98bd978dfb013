package inventory

//go:generate mockgen -destination=mock_inventory.go -package=inventory github.com/mlmtools/mlm-inventory/pkg/inventory SystemSource,CacheStore

import (
	"context"
	"time"

	"github.com/mlmtools/mlm-inventory/pkg/mlm"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

// SystemSource is the slice of the API client the assembler consumes.
type SystemSource interface {
	Login(ctx context.Context) error
	FetchSystems(ctx context.Context, workers int) (*mlm.FetchResult, error)
	Logout(ctx context.Context)
}

// CacheStore persists assembled documents between runs.
type CacheStore interface {
	Get(key string) (*models.InventoryDocument, bool)
	Put(key string, document *models.InventoryDocument, ttl time.Duration) error
}
