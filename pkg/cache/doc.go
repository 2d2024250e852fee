// Package cache allows clients to skip capability discovery when reconnecting to a vehicle.
//
// Discovering a vehicle's capabilities costs a backend round-trip before the first status fetch.
// A [CapabilityCache] stores the discovered entries per VIN so that later processes can restore
// them with vehicle.WithCapabilities. Outdated entries are harmless: an expired capability forces
// rediscovery on the next update, and rediscovery overwrites the cached entry.
//
// The same CapabilityCache may safely be used with different VINs.
package cache
