package vehicle

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/pkg/document"
	"github.com/carnet-go/carnet/pkg/protocol"
)

// Status subtrees of the state document. Each holds a "value" object whose carCapturedTimestamp
// dates every field next to it.
const (
	pathChargingStatus  = "charging.chargingStatus.value"
	pathBatteryStatus   = "charging.batteryStatus.value"
	pathChargeSettings  = "charging.chargingSettings.value"
	pathPlugStatus      = "charging.plugStatus.value"
	pathRangeStatus     = "measurements.rangeStatus.value"
	pathOdometer        = "measurements.odometerStatus.value"
	pathFuelLevelStatus = "measurements.fuelLevelStatus.value"
	pathFuelRange       = "fuelStatus.rangeStatus.value"
	pathClimateSettings = "climatisation.climatisationSettings.value"
	pathClimateStatus   = "climatisation.climatisationStatus.value"
	pathWindowHeating   = "climatisation.windowHeatingStatus.value"
	pathAccessStatus    = "access.accessStatus.value"
	pathMaintenance     = "vehicleHealthInspection.maintenanceStatus.value"
	pathLights          = "vehicleLights.lightsStatus.value"

	pathParking  = "parkingposition"
	pathTripLast = "tripLast"
	pathMaster   = "vehicle"

	capturedTimestamp = "carCapturedTimestamp"
)

func join(segments ...string) string {
	return strings.Join(segments, document.Separator)
}

// capturedAt reads the capture timestamp colocated with the fields of subtree.
func (v *Vehicle) capturedAt(subtree string) (time.Time, error) {
	return v.state.Time(join(subtree, capturedTimestamp))
}

func (v *Vehicle) number(subtree, field string) (float64, error) {
	return v.state.Number(join(subtree, field))
}

func (v *Vehicle) integer(subtree, field string) (int, error) {
	n, err := v.number(subtree, field)
	return int(n), err
}

func (v *Vehicle) text(subtree, field string) (string, error) {
	return v.state.String(join(subtree, field))
}

// equals reads a string field and compares it with want.
func (v *Vehicle) equals(subtree, field, want string) (bool, error) {
	s, err := v.text(subtree, field)
	if err != nil {
		return false, err
	}
	return s == want, nil
}

func (v *Vehicle) oneOf(subtree, field string, values ...string) (bool, error) {
	s, err := v.text(subtree, field)
	if err != nil {
		return false, err
	}
	for _, want := range values {
		if s == want {
			return true, nil
		}
	}
	return false, nil
}

func (v *Vehicle) has(subtree, field string) bool {
	return v.state.Exists(join(subtree, field))
}

func (v *Vehicle) hasNumber(subtree, field string) bool {
	return v.state.IsNumber(join(subtree, field))
}

// findNamed returns the first element of the list at path whose key field equals name. ok is
// false if no element matches.
func (v *Vehicle) findNamed(path, key, name string) (element *structpb.Value, ok bool, err error) {
	items, err := v.state.List(path)
	if err != nil {
		return nil, false, err
	}
	for _, item := range items {
		if s, err := document.String(item, key); err == nil && s == name {
			return item, true, nil
		}
	}
	return nil, false, nil
}

// statusList returns the strings of the "status" list of element.
func statusList(element *structpb.Value) []string {
	values, err := document.List(element, "status")
	if err != nil {
		return nil
	}
	statuses := make([]string, 0, len(values))
	for _, s := range values {
		statuses = append(statuses, s.GetStringValue())
	}
	return statuses
}

func contains(values []string, want string) bool {
	for _, s := range values {
		if s == want {
			return true
		}
	}
	return false
}

func notFound(path string) error {
	return fmt.Errorf("%s: %w", path, protocol.ErrNotFound)
}
