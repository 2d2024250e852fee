package cache

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/carnet-go/carnet/pkg/capability"
)

type CapabilityCache struct {
	MaxEntries int
	Vehicles   map[string]capability.Snapshot `json:"vehicles"`
	lock       sync.Mutex
}

// New returns a CapabilityCache that holds discovered capabilities for up to maxEntries vehicles.
// The CapabilityCache uses a least-recently-used (LRU) eviction strategy, with the caveat that for
// this purpose an entry is "used" when its vehicle was discovered, not when it's loaded from or
// saved to the CapabilityCache.
//
// Set maxEntries to zero for an unbounded cache.
func New(maxEntries int) *CapabilityCache {
	return &CapabilityCache{
		MaxEntries: maxEntries,
		Vehicles:   make(map[string]capability.Snapshot),
	}
}

// Import a CapabilityCache using data in r.
// The data should previously have been generated using [CapabilityCache.Export].
func Import(r io.Reader) (*CapabilityCache, error) {
	var cache CapabilityCache
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cache); err != nil {
		return nil, err
	}
	if cache.Vehicles == nil {
		cache.Vehicles = make(map[string]capability.Snapshot)
	}
	return &cache, nil
}

// ImportFromFile reads a CapabilityCache from disk.
func ImportFromFile(filename string) (*CapabilityCache, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Import(file)
}

// Export writes a serialized CapabilityCache to w.
func (c *CapabilityCache) Export(w io.Writer) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return json.NewEncoder(w).Encode(c)
}

// ExportToFile writes a CapabilityCache to disk. The file is readable by its owner only.
func (c *CapabilityCache) ExportToFile(filename string) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return c.Export(file)
}

// Update the CapabilityCache's entry for a vin with a discovered snapshot.
// Clients typically use the vehicle.UpdateCachedCapabilities method instead.
func (c *CapabilityCache) Update(vin string, snap capability.Snapshot) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Vehicles[vin] = snap
	if c.MaxEntries > 0 && len(c.Vehicles) > c.MaxEntries {
		oldestVIN := vin
		oldest := snap.DiscoveredAt
		for v, entry := range c.Vehicles {
			if entry.DiscoveredAt.Before(oldest) {
				oldestVIN = v
				oldest = entry.DiscoveredAt
			}
		}
		delete(c.Vehicles, oldestVIN)
	}
	return nil
}

// Get returns the snapshot cached for vin.
func (c *CapabilityCache) Get(vin string) (capability.Snapshot, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	snap, ok := c.Vehicles[vin]
	return snap, ok
}
