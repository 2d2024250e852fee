// File implements control actions related to vehicle charging.

package vehicle

import (
	"context"

	"github.com/carnet-go/carnet/pkg/request"
)

const (
	ChargingSettingReduced = "reduced"
	ChargingSettingMaximum = "maximum"
)

// SetChargerCurrent sets the maximum AC charging current in amperes.
func (v *Vehicle) SetChargerCurrent(ctx context.Context, amps int) (request.Status, error) {
	const action = "set charger current"
	if !v.IsChargingSupported() {
		return request.StatusEmpty, unsupported(action, "no charger support")
	}
	if err := checkArgs(action, chargerCurrentArgs{Amps: amps}); err != nil {
		return request.StatusEmpty, err
	}
	v.requests.MarkLatest(request.TopicBatteryCharge)
	resp, err := v.backend.SetChargingSettings(ctx, v.vin, ChargingSettings{MaxChargeCurrentACAmpere: amps})
	return v.handleResponse(ctx, request.TopicBatteryCharge, action, resp, err)
}

// SetCharger starts or stops charging. action is "start" or "stop".
func (v *Vehicle) SetCharger(ctx context.Context, action string) (request.Status, error) {
	if !v.IsChargingSupported() {
		return request.StatusEmpty, unsupported("charging", "no charging support")
	}
	if err := checkArgs("charging", startStopArgs{Action: action}); err != nil {
		return request.StatusEmpty, err
	}
	v.requests.MarkLatest(request.TopicBatteryCharge)
	resp, err := v.backend.SetCharging(ctx, v.vin, action == ActionStart)
	return v.handleResponse(ctx, request.TopicBatteryCharge, action+" charging", resp, err)
}

func (v *Vehicle) ChargeStart(ctx context.Context) (request.Status, error) {
	return v.SetCharger(ctx, ActionStart)
}

func (v *Vehicle) ChargeStop(ctx context.Context) (request.Status, error) {
	return v.SetCharger(ctx, ActionStop)
}

// SetChargingSettings selects reduced or maximum AC charging current.
func (v *Vehicle) SetChargingSettings(ctx context.Context, setting string) (request.Status, error) {
	const action = "set charging settings"
	if !v.IsChargeMaxACSettingSupported() {
		return request.StatusEmpty, unsupported(action, "charging settings are not supported")
	}
	if err := checkArgs(action, chargingSettingArgs{Setting: setting}); err != nil {
		return request.StatusEmpty, err
	}
	v.requests.MarkLatest(request.TopicBatteryCharge)
	resp, err := v.backend.SetChargingSettings(ctx, v.vin, ChargingSettings{MaxChargeCurrentAC: setting})
	return v.handleResponse(ctx, request.TopicBatteryCharge, action, resp, err)
}
