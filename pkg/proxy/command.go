package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carnet-go/carnet/pkg/connector/inet"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/request"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

var (
	// ErrCommandNotImplemented indicates a command has not be implemented in the SDK
	ErrCommandNotImplemented = errors.New("command not implemented")
)

// RequestParameters allows simple type check
type RequestParameters map[string]interface{}

// Action runs one control action against a vehicle.
type Action func(*vehicle.Vehicle) (request.Status, error)

// ExtractCommandAction use command to define which action should be executed.
func ExtractCommandAction(ctx context.Context, command string, params RequestParameters) (Action, error) {
	switch command {
	// Charging
	case "charge_start":
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.ChargeStart(ctx) }, nil
	case "charge_stop":
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.ChargeStop(ctx) }, nil
	case "set_charger":
		action, err := params.getString(command, "action", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetCharger(ctx, action) }, nil
	case "set_charger_current", "set_charging_amps":
		amps, err := params.getNumber(command, "value", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetChargerCurrent(ctx, int(amps)) }, nil
	case "set_charging_settings":
		setting, err := params.getString(command, "value", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetChargingSettings(ctx, setting) }, nil
	case "set_charge_min_level":
		level, err := params.getNumber(command, "value", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetChargeMinLevel(ctx, int(level)) }, nil
	case "set_schedule":
		return nil, ErrCommandNotImplemented
	// Climate Controls
	case "auto_conditioning_start", "climate_on":
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.ClimateOn(ctx) }, nil
	case "auto_conditioning_stop", "climate_off":
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.ClimateOff(ctx) }, nil
	case "set_climatisation":
		action, err := params.getString(command, "action", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetClimatisation(ctx, action) }, nil
	case "set_temps", "set_climatisation_temp":
		celsius, err := params.getNumber(command, "temperature", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetClimatisationTemp(ctx, celsius) }, nil
	case "set_window_heating":
		action, err := params.getString(command, "action", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetWindowHeating(ctx, action) }, nil
	case "set_battery_climatisation":
		on, err := params.getBool(command, "on", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetBatteryClimatisation(ctx, on) }, nil
	case "set_parking_heater":
		mode, err := params.getString(command, "action", true)
		if err != nil {
			return nil, err
		}
		spin, err := params.getString(command, "spin", false)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) {
			return v.SetParkingHeater(ctx, vehicle.HeaterMode(mode), spin)
		}, nil
	// Security
	case "door_lock", "door_unlock":
		spin, err := params.getString(command, "spin", true)
		if err != nil {
			return nil, err
		}
		if command == "door_lock" {
			return func(v *vehicle.Vehicle) (request.Status, error) { return v.Lock(ctx, spin) }, nil
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.Unlock(ctx, spin) }, nil
	case "set_lock":
		action, err := params.getString(command, "action", true)
		if err != nil {
			return nil, err
		}
		spin, err := params.getString(command, "spin", true)
		if err != nil {
			return nil, err
		}
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetLock(ctx, action, spin) }, nil
	case "wake_up", "refresh":
		return func(v *vehicle.Vehicle) (request.Status, error) { return v.SetRefresh(ctx) }, nil
	default:
		return nil, &inet.HttpError{Code: http.StatusBadRequest, Message: "{\"response\":null,\"error\":\"invalid_command\",\"error_description\":\"\"}"}
	}
}

func (p RequestParameters) getString(command, key string, required bool) (string, error) {
	value, exists := p[key]
	if exists {
		if s, isString := value.(string); isString {
			return s, nil
		}
		return "", invalidParamError(command, key, value)
	}

	if !required {
		return "", nil
	}

	return "", missingParamError(command, key)
}

func (p RequestParameters) getBool(command, key string, required bool) (bool, error) {
	value, exists := p[key]
	if exists {
		if val, isBool := value.(bool); isBool {
			return val, nil
		}
		return false, invalidParamError(command, key, value)
	}

	if !required {
		return false, nil
	}

	return false, missingParamError(command, key)
}

func (p RequestParameters) getNumber(command, key string, required bool) (float64, error) {
	value, exists := p[key]
	if exists {
		if num, isFloat64 := value.(float64); isFloat64 {
			return num, nil
		}
		return 0, invalidParamError(command, key, value)
	}

	if !required {
		return 0, nil
	}

	return 0, missingParamError(command, key)
}

func missingParamError(command, key string) error {
	return &protocol.ArgumentError{Action: command, Argument: key, Reason: fmt.Sprintf("missing %s param", key)}
}

func invalidParamError(command, key string, value interface{}) error {
	return &protocol.ArgumentError{Action: command, Argument: key, Value: value, Reason: fmt.Sprintf("invalid %s param", key)}
}
