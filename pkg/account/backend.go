package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/connector/inet"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

// RateLimitHeader carries the number of remaining action requests.
const RateLimitHeader = "Vcf-Remaining-Calls"

const (
	backendInProgress = "in_progress"
	stateInProgress   = "In Progress"
	stateThrottled    = "Throttled"
)

func vehiclePath(vin, endpoint string) string {
	return fmt.Sprintf("vehicle/v1/vehicles/%s/%s", vin, endpoint)
}

func (a *Account) GetOperationList(ctx context.Context, vin string) (*capability.Listing, error) {
	rsp, err := a.get(ctx, vehicle.APICapabilities, vehiclePath(vin, "capabilities"))
	if err != nil {
		return nil, err
	}
	var listing capability.Listing
	if err := json.Unmarshal(rsp.Body, &listing); err != nil {
		return nil, fmt.Errorf("%w: capabilities: %s", protocol.ErrBadResponse, err)
	}
	return &listing, nil
}

func (a *Account) GetSelectiveStatus(ctx context.Context, vin string, services []capability.Service) (*structpb.Struct, error) {
	jobs := make([]string, len(services))
	for i, s := range services {
		jobs[i] = string(s)
	}
	endpoint := vehiclePath(vin, "selectivestatus?jobs="+strings.Join(jobs, ","))
	rsp, err := a.get(ctx, vehicle.APISelectiveStatus, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeStruct(rsp.Body)
}

// GetVehicleData returns the account's masterdata entry for vin as the "vehicle" section.
func (a *Account) GetVehicleData(ctx context.Context, vin string) (*structpb.Struct, error) {
	entries, err := a.vehicleEntries(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		entry := e.GetStructValue()
		if entry.GetFields()["vin"].GetStringValue() == vin {
			return section("vehicle", entry), nil
		}
	}
	return nil, fmt.Errorf("vehicle %s: %w", vin, protocol.ErrNotFound)
}

// GetParkingPosition returns the "parkingposition" section. The backend answers 204 while the
// vehicle is driving, which is reported as {"isMoving": true}.
func (a *Account) GetParkingPosition(ctx context.Context, vin string) (*structpb.Struct, error) {
	rsp, err := a.get(ctx, vehicle.APIParkingPosition, vehiclePath(vin, "parkingposition"))
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode == http.StatusNoContent {
		return &structpb.Struct{Fields: map[string]*structpb.Value{"isMoving": structpb.NewBoolValue(true)}}, nil
	}
	data, err := dataOf(rsp.Body)
	if err != nil {
		return nil, err
	}
	out := section("parkingposition", data)
	out.Fields["isMoving"] = structpb.NewBoolValue(false)
	return out, nil
}

func (a *Account) GetTripLast(ctx context.Context, vin string) (*structpb.Struct, error) {
	rsp, err := a.get(ctx, vehicle.APITrips, fmt.Sprintf("vehicle/v1/trips/%s/shortterm/last", vin))
	if err != nil {
		return nil, err
	}
	data, err := dataOf(rsp.Body)
	if err != nil {
		return nil, err
	}
	return section("tripLast", data), nil
}

// GetServiceStatus reports the outcome of the most recent call to each API, plus the validity of
// the token. APIs that were never called are absent.
func (a *Account) GetServiceStatus(_ context.Context) (*structpb.Struct, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	for api, status := range a.apiStatus {
		out.Fields[string(api)] = structpb.NewStringValue(status)
	}
	token := apiStatusUp
	if a.Expired() {
		token = apiStatusExpired
	}
	out.Fields[string(vehicle.APIToken)] = structpb.NewStringValue(token)
	return out, nil
}

func (a *Account) GetRequestStatus(ctx context.Context, vin, requestID string) (string, error) {
	rsp, err := a.get(ctx, vehicle.APIVehicles, vehiclePath(vin, fmt.Sprintf("requests/%s/status", requestID)))
	if err != nil {
		return "", err
	}
	data, err := dataOf(rsp.Body)
	if err != nil {
		return "", err
	}
	status := data.GetFields()["status"].GetStringValue()
	if status == backendInProgress {
		return stateInProgress, nil
	}
	return status, nil
}

// submit posts an action. A 429 answer is not an error: it yields a throttled Response. Other 4xx
// answers are returned as a [protocol.NominalError].
func (a *Account) submit(ctx context.Context, method, endpoint string, body interface{}) (*vehicle.Response, error) {
	rsp, err := a.send(ctx, vehicle.APIVehicles, method, endpoint, body)
	var httpErr *inet.HttpError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusTooManyRequests {
		return &vehicle.Response{State: stateThrottled, RateLimitRemaining: remainingCalls(rsp.Header)}, nil
	}
	if httpErr != nil && httpErr.Code >= 400 && httpErr.Code < 500 {
		// The backend understood the action and refused it.
		return nil, &protocol.NominalError{Details: err}
	}
	if err != nil {
		return nil, err
	}
	out := &vehicle.Response{State: stateInProgress, RateLimitRemaining: remainingCalls(rsp.Header)}
	data, err := dataOf(rsp.Body)
	if err != nil {
		return nil, err
	}
	out.ID = data.GetFields()["requestID"].GetStringValue()
	return out, nil
}

func remainingCalls(h http.Header) *int {
	raw := h.Get(RateLimitHeader)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warning("Ignoring malformed %s header %q", RateLimitHeader, raw)
		return nil
	}
	return &n
}

func startStop(start bool) string {
	if start {
		return "start"
	}
	return "stop"
}

func (a *Account) SetCharging(ctx context.Context, vin string, start bool) (*vehicle.Response, error) {
	return a.submit(ctx, http.MethodPost, vehiclePath(vin, "charging/"+startStop(start)), nil)
}

func (a *Account) SetChargingSettings(ctx context.Context, vin string, settings vehicle.ChargingSettings) (*vehicle.Response, error) {
	return a.submit(ctx, http.MethodPut, vehiclePath(vin, "charging/settings"), settings)
}

func (a *Account) SetClimater(ctx context.Context, vin string, settings vehicle.ClimateSettings, start bool) (*vehicle.Response, error) {
	if !start {
		return a.submit(ctx, http.MethodPost, vehiclePath(vin, "climatisation/stop"), nil)
	}
	return a.submit(ctx, http.MethodPost, vehiclePath(vin, "climatisation/start"), settings)
}

func (a *Account) SetClimaterSettings(ctx context.Context, vin string, settings vehicle.ClimateSettings) (*vehicle.Response, error) {
	return a.submit(ctx, http.MethodPut, vehiclePath(vin, "climatisation/settings"), settings)
}

func (a *Account) SetWindowHeater(ctx context.Context, vin string, start bool) (*vehicle.Response, error) {
	return a.submit(ctx, http.MethodPost, vehiclePath(vin, "windowheating/"+startStop(start)), nil)
}

func (a *Account) SetLock(ctx context.Context, vin string, lock bool, spin string) (*vehicle.Response, error) {
	action := "unlock"
	if lock {
		action = "lock"
	}
	return a.submit(ctx, http.MethodPost, vehiclePath(vin, "access/"+action), map[string]string{"spin": spin})
}

// WakeUpVehicle returns the HTTP status of the wake-up trigger. Only transport failures are
// errors; the caller interprets the status code.
func (a *Account) WakeUpVehicle(ctx context.Context, vin string) (*vehicle.WakeResponse, error) {
	rsp, err := a.send(ctx, vehicle.APIVehicles, http.MethodPost, vehiclePath(vin, "vehiclewakeuptrigger"), nil)
	var httpErr *inet.HttpError
	if errors.As(err, &httpErr) {
		return &vehicle.WakeResponse{StatusCode: httpErr.Code}, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle.WakeResponse{StatusCode: rsp.StatusCode}, nil
}
