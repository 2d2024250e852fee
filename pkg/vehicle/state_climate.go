// File implements climatisation attributes.

package vehicle

import (
	"time"

	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/document"
)

const windowHeatingParameter = "supportsStartWindowHeating"

// ClimatisationTargetTemperature returns the target temperature in degrees Celsius.
func (v *Vehicle) ClimatisationTargetTemperature() (float64, error) {
	return v.number(pathClimateSettings, "targetTemperature_C")
}

func (v *Vehicle) IsClimatisationTargetTemperatureSupported() bool {
	return v.has(pathClimateSettings, "targetTemperature_C")
}

func (v *Vehicle) ClimatisationTargetTemperatureLastUpdated() (time.Time, error) {
	return v.capturedAt(pathClimateSettings)
}

// ClimatisationWithoutExternalPower reports whether climatisation may draw on the battery.
func (v *Vehicle) ClimatisationWithoutExternalPower() (bool, error) {
	return v.state.Bool(join(pathClimateSettings, "climatisationWithoutExternalPower"))
}

func (v *Vehicle) IsClimatisationWithoutExternalPowerSupported() bool {
	return v.has(pathClimateSettings, "climatisationWithoutExternalPower")
}

func (v *Vehicle) ClimatisationWithoutExternalPowerLastUpdated() (time.Time, error) {
	return v.capturedAt(pathClimateSettings)
}

// IsClimatisationSupported reports whether the vehicle reports a climatisation state.
func (v *Vehicle) IsClimatisationSupported() bool {
	return v.has(pathClimateStatus, "climatisationState")
}

func (v *Vehicle) ElectricClimatisation() (bool, error) {
	return v.oneOf(pathClimateStatus, "climatisationState", "ventilation", "heating", "on")
}

func (v *Vehicle) IsElectricClimatisationSupported() bool {
	return v.IsClimatisationSupported() &&
		v.IsClimatisationTargetTemperatureSupported() &&
		v.IsClimatisationWithoutExternalPowerSupported()
}

func (v *Vehicle) ElectricClimatisationLastUpdated() (time.Time, error) {
	return v.capturedAt(pathClimateStatus)
}

func (v *Vehicle) AuxiliaryClimatisation() (bool, error) {
	return v.oneOf(pathClimateStatus, "climatisationState", "heating", "heatingAuxiliary", "on")
}

// IsAuxiliaryClimatisationSupported is false: the backend exposes no auxiliary heater control.
func (v *Vehicle) IsAuxiliaryClimatisationSupported() bool {
	return false
}

func (v *Vehicle) AuxiliaryClimatisationLastUpdated() (time.Time, error) {
	return v.capturedAt(pathClimateStatus)
}

func (v *Vehicle) WindowHeaterFront() (bool, error) {
	return v.windowHeater("front")
}

func (v *Vehicle) WindowHeaterBack() (bool, error) {
	return v.windowHeater("rear")
}

func (v *Vehicle) windowHeater(location string) (bool, error) {
	element, ok, err := v.findNamed(join(pathWindowHeating, "windowHeatingStatus"), "windowLocation", location)
	if err != nil || !ok {
		return false, err
	}
	state, err := document.String(element, "windowHeatingState")
	return err == nil && state == "on", nil
}

func (v *Vehicle) IsWindowHeaterFrontSupported() bool {
	return v.has(pathWindowHeating, "windowHeatingStatus")
}

func (v *Vehicle) IsWindowHeaterBackSupported() bool {
	return v.has(pathWindowHeating, "windowHeatingStatus")
}

func (v *Vehicle) WindowHeaterFrontLastUpdated() (time.Time, error) {
	return v.capturedAt(pathWindowHeating)
}

func (v *Vehicle) WindowHeaterBackLastUpdated() (time.Time, error) {
	return v.capturedAt(pathWindowHeating)
}

// WindowHeater reports whether any window heater is on.
func (v *Vehicle) WindowHeater() (bool, error) {
	front, err := v.WindowHeaterFront()
	if err != nil {
		return false, err
	}
	back, err := v.WindowHeaterBack()
	return front || back, err
}

func (v *Vehicle) WindowHeaterLastUpdated() (time.Time, error) {
	return v.WindowHeaterFrontLastUpdated()
}

// IsWindowHeaterSupported checks the listing's parameter bag first, then the parameters of the
// climatisation capability used by older models.
func (v *Vehicle) IsWindowHeaterSupported() bool {
	if s, ok := v.capabilities.ParameterString(windowHeatingParameter); ok && s == "true" {
		return true
	}
	entry, ok := v.capabilities.Entry(capability.ServiceClimatisation)
	if !ok {
		return false
	}
	s, ok := entry.Parameter(windowHeatingParameter)
	return ok && s == "true"
}
