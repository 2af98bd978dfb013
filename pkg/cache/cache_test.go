package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlmtools/mlm-inventory/pkg/logger"
	"github.com/mlmtools/mlm-inventory/pkg/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	return store
}

func testDocument() *models.InventoryDocument {
	doc := models.NewInventoryDocument()
	doc.AddToGroup("all", "web01")
	doc.HostVars["web01"] = models.HostVars{"ansible_host": "10.0.0.5"}

	return doc
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put("abc", testDocument(), time.Hour))

	got, ok := store.Get("abc")
	require.True(t, ok)
	assert.Equal(t, testDocument(), got)

	// The temporary file from the atomic write must not linger.
	leftovers, err := filepath.Glob(filepath.Join(store.Dir(), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStoreMissOnAbsentKey(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Get("never-written")
	assert.False(t, ok)
}

func TestFileStoreTTLBoundary(t *testing.T) {
	store := newTestStore(t)

	t0 := time.Unix(1700000000, 0)
	ttl := time.Minute

	store.nowFn = func() time.Time { return t0 }
	require.NoError(t, store.Put("abc", testDocument(), ttl))

	tests := []struct {
		name string
		now  time.Time
		hit  bool
	}{
		{"one second before expiry", t0.Add(ttl - time.Second), true},
		{"exactly at expiry", t0.Add(ttl), false},
		{"one second after expiry", t0.Add(ttl + time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.nowFn = func() time.Time { return tt.now }

			doc, ok := store.Get("abc")
			assert.Equal(t, tt.hit, ok)

			if tt.hit {
				assert.Equal(t, testDocument(), doc)
			}
		})
	}
}

func TestFileStoreMissOnCorruptEntry(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, os.WriteFile(store.entryPath("abc"), []byte("{not json"), 0o600))

	_, ok := store.Get("abc")
	assert.False(t, ok)
}

func TestFileStoreOverwrite(t *testing.T) {
	store := newTestStore(t)

	first := testDocument()
	require.NoError(t, store.Put("abc", first, time.Hour))

	second := models.NewInventoryDocument()
	second.AddToGroup("all", "db01")
	second.HostVars["db01"] = models.HostVars{"ansible_host": "10.0.0.9"}
	require.NoError(t, store.Put("abc", second, time.Hour))

	got, ok := store.Get("abc")
	require.True(t, ok)
	assert.Equal(t, second, got)
}

func TestKeyStability(t *testing.T) {
	filters := map[string]interface{}{"status": "active", "patch_status": "all"}
	sameFilters := map[string]interface{}{"patch_status": "all", "status": "active"}

	a, err := Key("https://mlm.example.com", filters)
	require.NoError(t, err)

	// Map ordering must not influence the key.
	b, err := Key("https://mlm.example.com", sameFilters)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Key("https://other.example.com", filters)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := Key("https://mlm.example.com", map[string]interface{}{"status": "all"})
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}
