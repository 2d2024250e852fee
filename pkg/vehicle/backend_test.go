package vehicle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/document"
)

const testVIN = "WVWZZZE1ZPP000001"

var (
	epoch   = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	errFake = errors.New("fake backend failure")
)

// testBackend is a scripted Backend. Fetches return the configured documents and errors; request
// polls pop RequestStatuses until one is left, which then repeats.
type testBackend struct {
	lock  sync.Mutex
	calls []string

	Listing    *capability.Listing
	ListingErr error

	SelectiveStatus func(services []capability.Service) (*structpb.Struct, error)
	VehicleData     *structpb.Struct
	VehicleDataErr  error
	Parking         *structpb.Struct
	Trip            *structpb.Struct
	ServiceStatus   *structpb.Struct

	RequestStatuses []string
	RequestErr      error
	polls           int

	Response  *Response
	SubmitErr error
	Wake      *WakeResponse
	WakeErr   error

	LastLock     bool
	LastSPIN     string
	LastCharging ChargingSettings
	LastClimate  ClimateSettings
}

func (b *testBackend) record(call string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, call)
}

func (b *testBackend) Calls() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *testBackend) Called(call string) int {
	n := 0
	for _, c := range b.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (b *testBackend) Polls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.polls
}

func (b *testBackend) GetOperationList(ctx context.Context, vin string) (*capability.Listing, error) {
	b.record("GetOperationList")
	return b.Listing, b.ListingErr
}

func (b *testBackend) GetSelectiveStatus(ctx context.Context, vin string, services []capability.Service) (*structpb.Struct, error) {
	b.record("GetSelectiveStatus")
	if b.SelectiveStatus == nil {
		return nil, nil
	}
	return b.SelectiveStatus(services)
}

func (b *testBackend) GetVehicleData(ctx context.Context, vin string) (*structpb.Struct, error) {
	b.record("GetVehicleData")
	return b.VehicleData, b.VehicleDataErr
}

func (b *testBackend) GetParkingPosition(ctx context.Context, vin string) (*structpb.Struct, error) {
	b.record("GetParkingPosition")
	return b.Parking, nil
}

func (b *testBackend) GetTripLast(ctx context.Context, vin string) (*structpb.Struct, error) {
	b.record("GetTripLast")
	return b.Trip, nil
}

func (b *testBackend) GetServiceStatus(ctx context.Context) (*structpb.Struct, error) {
	b.record("GetServiceStatus")
	return b.ServiceStatus, nil
}

func (b *testBackend) GetRequestStatus(ctx context.Context, vin, requestID string) (string, error) {
	b.record("GetRequestStatus")
	b.lock.Lock()
	defer b.lock.Unlock()
	b.polls++
	if b.RequestErr != nil {
		return "", b.RequestErr
	}
	if len(b.RequestStatuses) == 0 {
		return "In Progress", nil
	}
	status := b.RequestStatuses[0]
	if len(b.RequestStatuses) > 1 {
		b.RequestStatuses = b.RequestStatuses[1:]
	}
	return status, nil
}

func (b *testBackend) submit(call string) (*Response, error) {
	b.record(call)
	return b.Response, b.SubmitErr
}

func (b *testBackend) SetCharging(ctx context.Context, vin string, start bool) (*Response, error) {
	return b.submit("SetCharging")
}

func (b *testBackend) SetChargingSettings(ctx context.Context, vin string, settings ChargingSettings) (*Response, error) {
	b.LastCharging = settings
	return b.submit("SetChargingSettings")
}

func (b *testBackend) SetClimater(ctx context.Context, vin string, settings ClimateSettings, start bool) (*Response, error) {
	b.LastClimate = settings
	return b.submit("SetClimater")
}

func (b *testBackend) SetClimaterSettings(ctx context.Context, vin string, settings ClimateSettings) (*Response, error) {
	b.LastClimate = settings
	return b.submit("SetClimaterSettings")
}

func (b *testBackend) SetWindowHeater(ctx context.Context, vin string, start bool) (*Response, error) {
	return b.submit("SetWindowHeater")
}

func (b *testBackend) SetLock(ctx context.Context, vin string, lock bool, spin string) (*Response, error) {
	b.LastLock, b.LastSPIN = lock, spin
	return b.submit("SetLock")
}

func (b *testBackend) WakeUpVehicle(ctx context.Context, vin string) (*WakeResponse, error) {
	b.record("WakeUpVehicle")
	return b.Wake, b.WakeErr
}

func parseStruct(t *testing.T, body string) *structpb.Struct {
	t.Helper()
	s, err := document.Parse([]byte(body))
	if err != nil {
		t.Fatalf("parse %s: %s", body, err)
	}
	return s
}

func snapshotOf(services ...capability.Service) capability.Snapshot {
	snap := capability.Snapshot{DiscoveredAt: epoch, Entries: make(map[capability.Service]capability.Entry)}
	for _, s := range services {
		snap.Entries[s] = capability.Entry{Active: true}
	}
	return snap
}

// newTestVehicle returns a discovered vehicle with the given active services whose state is
// initialized from state, if not empty. Polls do not sleep.
func newTestVehicle(t *testing.T, backend *testBackend, state string, services ...capability.Service) (*Vehicle, *clocktesting.FakePassiveClock) {
	t.Helper()
	clk := clocktesting.NewFakePassiveClock(epoch)
	v := NewVehicle(testVIN, backend,
		WithClock(clk),
		WithPollInterval(0),
		WithCapabilities(snapshotOf(services...)),
	)
	if state != "" {
		v.State().Merge(parseStruct(t, state))
	}
	return v, clk
}
