package vehicle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/utils/clock"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/cache"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/document"
	"github.com/carnet-go/carnet/pkg/metrics"
	"github.com/carnet-go/carnet/pkg/request"
)

const (
	// DefaultPollInterval separates consecutive status polls.
	DefaultPollInterval = 10 * time.Second
	// DefaultPollAttempts bounds the number of status polls per action.
	DefaultPollAttempts = 18
)

// Backend is the remote service a Vehicle reads state from and submits actions to.
//
// Fetch methods return a nil document without error when the backend has nothing to report.
// Submission methods return a nil Response without error when the backend accepted the call but
// returned nothing usable.
type Backend interface {
	GetOperationList(ctx context.Context, vin string) (*capability.Listing, error)
	GetSelectiveStatus(ctx context.Context, vin string, services []capability.Service) (*structpb.Struct, error)
	GetVehicleData(ctx context.Context, vin string) (*structpb.Struct, error)
	GetParkingPosition(ctx context.Context, vin string) (*structpb.Struct, error)
	GetTripLast(ctx context.Context, vin string) (*structpb.Struct, error)
	GetServiceStatus(ctx context.Context) (*structpb.Struct, error)

	// GetRequestStatus returns the backend status string of a pending action, such as
	// "In Progress" or "successful".
	GetRequestStatus(ctx context.Context, vin, requestID string) (string, error)

	SetCharging(ctx context.Context, vin string, start bool) (*Response, error)
	SetChargingSettings(ctx context.Context, vin string, settings ChargingSettings) (*Response, error)
	SetClimater(ctx context.Context, vin string, settings ClimateSettings, start bool) (*Response, error)
	SetClimaterSettings(ctx context.Context, vin string, settings ClimateSettings) (*Response, error)
	SetWindowHeater(ctx context.Context, vin string, start bool) (*Response, error)
	SetLock(ctx context.Context, vin string, lock bool, spin string) (*Response, error)
	WakeUpVehicle(ctx context.Context, vin string) (*WakeResponse, error)
}

// Response is the backend's acknowledgement of a submitted action.
type Response struct {
	State string
	// ID identifies the action when polling GetRequestStatus.
	ID string
	// RateLimitRemaining is nil if the backend did not report a quota.
	RateLimitRemaining *int
}

// WakeResponse carries the HTTP status of a wake-up request.
type WakeResponse struct {
	StatusCode int
}

// ChargingSettings is sent with SetChargingSettings. Zero fields are omitted.
type ChargingSettings struct {
	MaxChargeCurrentAC       string `json:"maxChargeCurrentAC,omitempty"`
	MaxChargeCurrentACAmpere int    `json:"maxChargeCurrentAC_A,omitempty"`
	TargetSOC                int    `json:"targetSOC_pct,omitempty"`
}

// ClimateSettings is sent with SetClimater and SetClimaterSettings. Nil fields are omitted.
type ClimateSettings struct {
	TargetTemperature                 *float64 `json:"targetTemperature,omitempty"`
	TargetTemperatureUnit             string   `json:"targetTemperatureUnit,omitempty"`
	ClimatisationWithoutExternalPower *bool    `json:"climatisationWithoutExternalPower,omitempty"`
}

// A Vehicle is the client-side model of one vehicle: its capabilities, its last known state and the
// outcome of the control actions submitted to it.
type Vehicle struct {
	vin     string
	backend Backend
	clock   clock.PassiveClock
	metrics *metrics.Metrics

	pollInterval time.Duration
	pollAttempts int

	capabilities *capability.Map
	state        *document.Document
	requests     *request.Ledger

	mu         sync.Mutex
	discovered bool
	// merged holds when each top-level key of the state document was last fetched.
	merged map[string]time.Time
}

type Option func(*Vehicle)

// WithClock replaces the wall clock used for timestamps and expiry checks.
func WithClock(clk clock.PassiveClock) Option {
	return func(v *Vehicle) { v.clock = clk }
}

func WithPollInterval(d time.Duration) Option {
	return func(v *Vehicle) { v.pollInterval = d }
}

func WithPollAttempts(n int) Option {
	return func(v *Vehicle) {
		if n > 0 {
			v.pollAttempts = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Vehicle) { v.metrics = m }
}

// WithCapabilities restores a previously discovered capability snapshot, typically from a
// cache.CapabilityCache. The Vehicle skips discovery on its first update.
func WithCapabilities(snap capability.Snapshot) Option {
	return func(v *Vehicle) {
		v.capabilities.Restore(snap)
		v.discovered = true
	}
}

// NewVehicle creates a Vehicle with an empty capability map and state document.
func NewVehicle(vin string, backend Backend, options ...Option) *Vehicle {
	v := &Vehicle{
		vin:          vin,
		backend:      backend,
		clock:        clock.RealClock{},
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
		capabilities: capability.NewMap(),
		state:        document.New(),
		merged:       make(map[string]time.Time),
	}
	for _, opt := range options {
		opt(v)
	}
	v.requests = request.NewLedger(v.clock)
	return v
}

func (v *Vehicle) VIN() string {
	return v.vin
}

func (v *Vehicle) String() string {
	return v.vin
}

// Capabilities returns the vehicle's capability map.
func (v *Vehicle) Capabilities() *capability.Map {
	return v.capabilities
}

// State returns the vehicle's state document.
func (v *Vehicle) State() *document.Document {
	return v.state
}

// Requests returns the ledger of submitted control actions.
func (v *Vehicle) Requests() *request.Ledger {
	return v.requests
}

func (v *Vehicle) Discovered() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.discovered
}

// Discover fetches the capability listing and applies it to the capability map. Discovery
// succeeds even if individual entries of the listing are malformed.
func (v *Vehicle) Discover(ctx context.Context) error {
	log.Debug("Attempting discovery of supported services for %s", v.vin)
	listing, err := v.backend.GetOperationList(ctx, v.vin)
	if err != nil {
		return fmt.Errorf("capability discovery for %s: %w", v.vin, err)
	}
	if listing == nil {
		log.Warning("Could not determine available services for %s", v.vin)
	}
	n := v.capabilities.Discover(listing, v.clock.Now())
	log.Debug("Discovered %d services for %s: %s", n, v.vin, v.capabilities)

	v.mu.Lock()
	v.discovered = true
	v.mu.Unlock()
	return nil
}

// UpdateCachedCapabilities stores the discovered capabilities in c. Vehicles that were never
// discovered are not cached.
func (v *Vehicle) UpdateCachedCapabilities(c *cache.CapabilityCache) error {
	if !v.Discovered() {
		return nil
	}
	return c.Update(v.vin, v.capabilities.Snapshot())
}

// IsExpired reports whether access to service has expired. An expired service forces
// rediscovery on the next update.
func (v *Vehicle) IsExpired(service capability.Service) bool {
	if !v.capabilities.IsExpired(service, v.clock.Now()) {
		return false
	}
	log.Warning("Access to %s has expired for %s", service, v.vin)
	v.mu.Lock()
	v.discovered = false
	v.mu.Unlock()
	return true
}

// Has reports whether path exists in the state document.
func (v *Vehicle) Has(path string) bool {
	return v.state.Exists(path)
}

// Get returns the value at path in the state document.
func (v *Vehicle) Get(path string) (*structpb.Value, error) {
	return v.state.Get(path)
}
