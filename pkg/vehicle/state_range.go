// File implements range, fuel and drive train attributes.

package vehicle

import (
	"time"
)

const engineTypeElectric = "electric"

var combustionEngineTypes = []string{"gasoline", "petrol", "diesel", "cng", "lpg"}

// ElectricRange returns the electric range in km.
func (v *Vehicle) ElectricRange() (int, error) {
	return v.integer(pathRangeStatus, "electricRange")
}

func (v *Vehicle) IsElectricRangeSupported() bool {
	return v.has(pathRangeStatus, "electricRange")
}

func (v *Vehicle) ElectricRangeLastUpdated() (time.Time, error) {
	return v.capturedAt(pathRangeStatus)
}

// CombustionRange returns the diesel range, or the gasoline range if no diesel range is
// reported, in km.
func (v *Vehicle) CombustionRange() (int, error) {
	if v.has(pathRangeStatus, "dieselRange") {
		return v.integer(pathRangeStatus, "dieselRange")
	}
	return v.integer(pathRangeStatus, "gasolineRange")
}

func (v *Vehicle) IsCombustionRangeSupported() bool {
	return v.has(pathRangeStatus, "dieselRange") || v.has(pathRangeStatus, "gasolineRange")
}

func (v *Vehicle) CombustionRangeLastUpdated() (time.Time, error) {
	return v.capturedAt(pathRangeStatus)
}

// CombinedRange returns the total range in km. It is only supported for hybrids.
func (v *Vehicle) CombinedRange() (int, error) {
	return v.integer(pathRangeStatus, "totalRange_km")
}

func (v *Vehicle) IsCombinedRangeSupported() bool {
	return v.has(pathRangeStatus, "totalRange_km") && v.IsElectricRangeSupported() && v.IsCombustionRangeSupported()
}

func (v *Vehicle) CombinedRangeLastUpdated() (time.Time, error) {
	return v.capturedAt(pathRangeStatus)
}

// AdBlueRange returns the range in km before the AdBlue tank is empty.
func (v *Vehicle) AdBlueRange() (int, error) {
	return v.integer(pathRangeStatus, "adBlueRange")
}

func (v *Vehicle) IsAdBlueRangeSupported() bool {
	return v.has(pathRangeStatus, "adBlueRange")
}

func (v *Vehicle) AdBlueRangeLastUpdated() (time.Time, error) {
	return v.capturedAt(pathRangeStatus)
}

// FuelLevel returns the tank level in percent. The fuel status service is preferred over
// measurements.
func (v *Vehicle) FuelLevel() (int, error) {
	if v.has(pathFuelRange, "primaryEngine.currentFuelLevel_pct") {
		return v.integer(pathFuelRange, "primaryEngine.currentFuelLevel_pct")
	}
	return v.integer(pathFuelLevelStatus, "currentFuelLevel_pct")
}

func (v *Vehicle) IsFuelLevelSupported() bool {
	return v.has(pathFuelRange, "primaryEngine.currentFuelLevel_pct") || v.has(pathFuelLevelStatus, "currentFuelLevel_pct")
}

func (v *Vehicle) FuelLevelLastUpdated() (time.Time, error) {
	if v.has(pathFuelRange, capturedTimestamp) {
		return v.capturedAt(pathFuelRange)
	}
	return v.capturedAt(pathFuelLevelStatus)
}

// Distance returns the odometer reading in km.
func (v *Vehicle) Distance() (int, error) {
	return v.integer(pathOdometer, "odometer")
}

func (v *Vehicle) IsDistanceSupported() bool {
	return v.has(pathOdometer, "odometer")
}

func (v *Vehicle) DistanceLastUpdated() (time.Time, error) {
	return v.capturedAt(pathOdometer)
}

func (v *Vehicle) IsPrimaryDriveElectric() bool {
	ok, err := v.equals(pathFuelLevelStatus, "primaryEngineType", engineTypeElectric)
	return err == nil && ok
}

func (v *Vehicle) IsSecondaryDriveElectric() bool {
	ok, err := v.equals(pathFuelLevelStatus, "secondaryEngineType", engineTypeElectric)
	return err == nil && ok
}

func (v *Vehicle) IsPrimaryDriveCombustion() bool {
	return v.engineIsCombustion("primaryEngine.type", "primaryEngineType")
}

func (v *Vehicle) IsSecondaryDriveCombustion() bool {
	return v.engineIsCombustion("secondaryEngine.type", "secondaryEngineType")
}

func (v *Vehicle) HasCombustionEngine() bool {
	return v.IsPrimaryDriveCombustion() || v.IsSecondaryDriveCombustion()
}

// engineIsCombustion prefers the measurements engine type over the fuel status one.
func (v *Vehicle) engineIsCombustion(fuelStatusField, measurementsField string) bool {
	engine, err := v.text(pathFuelLevelStatus, measurementsField)
	if err != nil {
		engine, err = v.text(pathFuelRange, fuelStatusField)
	}
	return err == nil && contains(combustionEngineTypes, engine)
}
