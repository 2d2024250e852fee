// File implements control actions related to climatisation and window heating.

package vehicle

import (
	"context"

	"github.com/carnet-go/carnet/pkg/request"
)

const (
	// DefaultTargetTemperature is used when the vehicle reports no target temperature.
	DefaultTargetTemperature = 24.0

	temperatureUnitCelsius = "celsius"
)

// SetClimatisationTemp sets the climatisation target temperature in degrees Celsius.
func (v *Vehicle) SetClimatisationTemp(ctx context.Context, celsius float64) (request.Status, error) {
	const action = "set climatisation temperature"
	if !v.IsElectricClimatisationSupported() && !v.IsAuxiliaryClimatisationSupported() {
		return request.StatusEmpty, unsupported(action, "no climatisation support")
	}
	if err := checkArgs(action, temperatureArgs{Celsius: celsius}); err != nil {
		return request.StatusEmpty, err
	}
	settings := ClimateSettings{
		TargetTemperature:     &celsius,
		TargetTemperatureUnit: temperatureUnitCelsius,
	}
	if withoutPower, err := v.ClimatisationWithoutExternalPower(); err == nil {
		settings.ClimatisationWithoutExternalPower = &withoutPower
	}
	v.requests.MarkLatest(request.TopicClimatisation)
	resp, err := v.backend.SetClimaterSettings(ctx, v.vin, settings)
	return v.handleResponse(ctx, request.TopicClimatisation, action, resp, err)
}

// SetWindowHeating starts or stops the window heater. action is "start" or "stop".
func (v *Vehicle) SetWindowHeating(ctx context.Context, action string) (request.Status, error) {
	if !v.IsWindowHeaterSupported() {
		return request.StatusEmpty, unsupported("window heating", "no window heater support")
	}
	if err := checkArgs("window heating", startStopArgs{Action: action}); err != nil {
		return request.StatusEmpty, err
	}
	v.requests.MarkLatest(request.TopicClimatisation)
	resp, err := v.backend.SetWindowHeater(ctx, v.vin, action == ActionStart)
	return v.handleResponse(ctx, request.TopicClimatisation, action+" window heating", resp, err)
}

// SetBatteryClimatisation enables or disables climatisation without external power. The current
// target temperature is kept, or DefaultTargetTemperature if none is known.
func (v *Vehicle) SetBatteryClimatisation(ctx context.Context, on bool) (request.Status, error) {
	const action = "set climatisation without external power"
	if !v.IsClimatisationWithoutExternalPowerSupported() {
		return request.StatusEmpty, unsupported(action, "no climatisation support")
	}
	temperature, err := v.ClimatisationTargetTemperature()
	if err != nil {
		temperature = DefaultTargetTemperature
	}
	settings := ClimateSettings{
		TargetTemperature:                 &temperature,
		TargetTemperatureUnit:             temperatureUnitCelsius,
		ClimatisationWithoutExternalPower: &on,
	}
	v.requests.MarkLatest(request.TopicClimatisation)
	resp, err := v.backend.SetClimaterSettings(ctx, v.vin, settings)
	return v.handleResponse(ctx, request.TopicClimatisation, action, resp, err)
}

// SetClimatisation starts or stops electric climatisation. action is "start" or "stop". Starting
// reuses the vehicle's current climatisation settings.
func (v *Vehicle) SetClimatisation(ctx context.Context, action string) (request.Status, error) {
	if !v.IsElectricClimatisationSupported() {
		return request.StatusEmpty, unsupported("climatisation", "no climatisation support")
	}
	if err := checkArgs("climatisation", startStopArgs{Action: action}); err != nil {
		return request.StatusEmpty, err
	}
	var settings ClimateSettings
	if action == ActionStart {
		settings.TargetTemperatureUnit = temperatureUnitCelsius
		if temperature, err := v.ClimatisationTargetTemperature(); err == nil {
			settings.TargetTemperature = &temperature
		}
		if withoutPower, err := v.ClimatisationWithoutExternalPower(); err == nil {
			settings.ClimatisationWithoutExternalPower = &withoutPower
		}
	}
	v.requests.MarkLatest(request.TopicClimatisation)
	resp, err := v.backend.SetClimater(ctx, v.vin, settings, action == ActionStart)
	return v.handleResponse(ctx, request.TopicClimatisation, action+" climatisation", resp, err)
}

func (v *Vehicle) ClimateOn(ctx context.Context) (request.Status, error) {
	return v.SetClimatisation(ctx, ActionStart)
}

func (v *Vehicle) ClimateOff(ctx context.Context) (request.Status, error) {
	return v.SetClimatisation(ctx, ActionStop)
}
