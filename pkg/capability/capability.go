// Package capability tracks which backend services a vehicle exposes.
//
// A [Map] is populated from the capability listing the backend returns for a VIN. Services that
// appear in the listing overwrite their previous entry; services that do not appear keep whatever
// state they had. A service missing from the Map is not applicable to the vehicle, while a service
// present with Active set to false is known but disabled.
package capability

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carnet-go/carnet/internal/log"
)

// Service identifies a backend service.
type Service string

const (
	ServiceAccess                  Service = "access"
	ServiceBatteryChargingCare     Service = "batteryChargingCare"
	ServiceCharging                Service = "charging"
	ServiceClimatisation           Service = "climatisation"
	ServiceDepartureTimers         Service = "departureTimers"
	ServiceFuelStatus              Service = "fuelStatus"
	ServiceHonkAndFlash            Service = "honkAndFlash"
	ServiceMeasurements            Service = "measurements"
	ServiceParkingPosition         Service = "parkingPosition"
	ServiceTripStatistics          Service = "tripStatistics"
	ServiceVehicleHealthInspection Service = "vehicleHealthInspection"
	ServiceVehicleLights           Service = "vehicleLights"
)

// Discoverable lists the services whose capability entries are recorded during discovery.
var Discoverable = []Service{
	ServiceAccess,
	ServiceTripStatistics,
	ServiceMeasurements,
	ServiceHonkAndFlash,
	ServiceParkingPosition,
	ServiceClimatisation,
	ServiceCharging,
}

func isDiscoverable(s Service) bool {
	for _, d := range Discoverable {
		if d == s {
			return true
		}
	}
	return false
}

// DefaultValidity is assumed for services that report no expiration date.
const DefaultValidity = 24 * time.Hour

// Entry describes one service.
type Entry struct {
	Active     bool       `json:"active"`
	Expiration *time.Time `json:"expiration,omitempty"`
	Operations []string   `json:"operations,omitempty"`
	Parameters []string   `json:"parameters,omitempty"`
}

// HasOperation reports whether the service advertises operation id.
func (e Entry) HasOperation(id string) bool {
	for _, op := range e.Operations {
		if op == id {
			return true
		}
	}
	return false
}

// Snapshot is a serializable copy of a Map.
type Snapshot struct {
	DiscoveredAt time.Time                  `json:"discovered_at"`
	Entries      map[Service]Entry          `json:"entries"`
	Parameters   map[string]json.RawMessage `json:"parameters,omitempty"`
}

// Map holds the capability entries of one vehicle. It is safe for concurrent use.
type Map struct {
	mu           sync.RWMutex
	entries      map[Service]Entry
	parameters   map[string]json.RawMessage
	discoveredAt time.Time
}

func NewMap() *Map {
	return &Map{
		entries:    make(map[Service]Entry),
		parameters: make(map[string]json.RawMessage),
	}
}

// Discover applies listing to the Map. Malformed service entries are logged and skipped. The
// returned count is the number of entries written.
func (m *Map) Discover(listing *Listing, now time.Time) int {
	if listing == nil {
		log.Warning("Capability listing is empty")
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range listing.Parameters {
		m.parameters[k] = v
	}
	if len(listing.Capabilities) == 0 {
		log.Warning("Could not determine available services: listing has no capabilities")
	}

	written := 0
	for _, id := range sortedKeys(listing.Capabilities) {
		service := Service(id)
		if !isDiscoverable(service) {
			continue
		}
		entry, err := decodeEntry(id, listing.Capabilities[id])
		if err != nil {
			log.Warning("Skipping capability %s: %s", id, err)
			continue
		}
		if entry.Active {
			log.Debug("Discovered enabled service: %s", id)
		}
		m.entries[service] = entry
		written++
	}
	m.discoveredAt = now
	return written
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsActive returns false if service is absent from the Map or disabled.
func (m *Map) IsActive(service Service) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[service].Active
}

// Entry returns the entry for service and whether it is present.
func (m *Map) Entry(service Service) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[service]
	return e, ok
}

// Expiration returns when access to service ends. Services without an expiration date are assumed
// valid for DefaultValidity past now.
func (m *Map) Expiration(service Service, now time.Time) time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[service]; ok && e.Expiration != nil {
		return e.Expiration.UTC()
	}
	return now.UTC().Add(DefaultValidity)
}

// IsExpired reports whether access to service has ended at now. The instants are compared in UTC.
func (m *Map) IsExpired(service Service, now time.Time) bool {
	return !now.UTC().Before(m.Expiration(service, now))
}

// Parameter returns the raw JSON value of a vehicle-wide parameter.
func (m *Map) Parameter(name string) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.parameters[name]
	return p, ok
}

// ParameterString returns a vehicle-wide parameter holding a JSON string.
func (m *Map) ParameterString(name string) (string, bool) {
	raw, ok := m.Parameter(name)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw), true
	}
	return s, true
}

// Services returns the services present in the Map, sorted.
func (m *Map) Services() []Service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make([]Service, 0, len(m.entries))
	for s := range m.entries {
		services = append(services, s)
	}
	sort.Slice(services, func(i, j int) bool { return services[i] < services[j] })
	return services
}

func (m *Map) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{
		DiscoveredAt: m.discoveredAt,
		Entries:      make(map[Service]Entry, len(m.entries)),
		Parameters:   make(map[string]json.RawMessage, len(m.parameters)),
	}
	for k, v := range m.entries {
		snap.Entries[k] = v
	}
	for k, v := range m.parameters {
		snap.Parameters[k] = v
	}
	return snap
}

// Restore replaces the Map contents with snap.
func (m *Map) Restore(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[Service]Entry, len(snap.Entries))
	m.parameters = make(map[string]json.RawMessage, len(snap.Parameters))
	for k, v := range snap.Entries {
		m.entries[k] = v
	}
	for k, v := range snap.Parameters {
		m.parameters[k] = v
	}
	m.discoveredAt = snap.DiscoveredAt
}

func (m *Map) DiscoveredAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.discoveredAt
}

func (m *Map) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("%d services, discovered %s", len(m.entries), m.discoveredAt.Format(time.RFC3339))
}
