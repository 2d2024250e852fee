// File implements charging and battery attributes.

package vehicle

import (
	"time"
)

// Charging reports whether the vehicle is currently charging.
func (v *Vehicle) Charging() (bool, error) {
	return v.equals(pathChargingStatus, "chargingState", "charging")
}

func (v *Vehicle) IsChargingSupported() bool {
	return v.has(pathChargingStatus, "chargingState")
}

func (v *Vehicle) ChargingLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargingStatus)
}

// ChargingPower returns the charging power in kW.
func (v *Vehicle) ChargingPower() (float64, error) {
	return v.number(pathChargingStatus, "chargePower_kW")
}

func (v *Vehicle) IsChargingPowerSupported() bool {
	return v.has(pathChargingStatus, "chargePower_kW")
}

func (v *Vehicle) ChargingPowerLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargingStatus)
}

// ChargingRate returns the range gained per hour of charging in km/h.
func (v *Vehicle) ChargingRate() (float64, error) {
	return v.number(pathChargingStatus, "chargeRate_kmph")
}

func (v *Vehicle) IsChargingRateSupported() bool {
	return v.has(pathChargingStatus, "chargeRate_kmph")
}

func (v *Vehicle) ChargingRateLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargingStatus)
}

// ChargerType returns "AC", "DC" or "Unknown".
func (v *Vehicle) ChargerType() (string, error) {
	t, err := v.text(pathChargingStatus, "chargeType")
	if err != nil {
		return "", err
	}
	switch t {
	case "ac":
		return "AC", nil
	case "dc":
		return "DC", nil
	}
	return "Unknown", nil
}

func (v *Vehicle) IsChargerTypeSupported() bool {
	return v.has(pathChargingStatus, "chargeType")
}

func (v *Vehicle) ChargerTypeLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargingStatus)
}

// BatteryLevel returns the state of charge in percent.
func (v *Vehicle) BatteryLevel() (int, error) {
	return v.integer(pathBatteryStatus, "currentSOC_pct")
}

func (v *Vehicle) IsBatteryLevelSupported() bool {
	return v.has(pathBatteryStatus, "currentSOC_pct")
}

func (v *Vehicle) BatteryLevelLastUpdated() (time.Time, error) {
	return v.capturedAt(pathBatteryStatus)
}

// BatteryTargetChargeLevel returns the target state of charge in percent.
func (v *Vehicle) BatteryTargetChargeLevel() (int, error) {
	return v.integer(pathChargeSettings, "targetSOC_pct")
}

func (v *Vehicle) IsBatteryTargetChargeLevelSupported() bool {
	return v.has(pathChargeSettings, "targetSOC_pct")
}

func (v *Vehicle) BatteryTargetChargeLevelLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargeSettings)
}

// ChargeMaxACSetting returns "reduced" or "maximum".
func (v *Vehicle) ChargeMaxACSetting() (string, error) {
	return v.text(pathChargeSettings, "maxChargeCurrentAC")
}

// IsChargeMaxACSettingSupported requires the setting to hold one of the values
// SetChargingSettings accepts.
func (v *Vehicle) IsChargeMaxACSettingSupported() bool {
	ok, err := v.oneOf(pathChargeSettings, "maxChargeCurrentAC", ChargingSettingReduced, ChargingSettingMaximum)
	return err == nil && ok
}

func (v *Vehicle) ChargeMaxACSettingLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargeSettings)
}

// ChargeMaxACAmpere returns the maximum AC charging current in amperes.
func (v *Vehicle) ChargeMaxACAmpere() (int, error) {
	return v.integer(pathChargeSettings, "maxChargeCurrentAC_A")
}

func (v *Vehicle) IsChargeMaxACAmpereSupported() bool {
	return v.has(pathChargeSettings, "maxChargeCurrentAC_A")
}

func (v *Vehicle) ChargeMaxACAmpereLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargeSettings)
}

func (v *Vehicle) ReducedACCharging() (bool, error) {
	return v.equals(pathChargeSettings, "maxChargeCurrentAC", ChargingSettingReduced)
}

func (v *Vehicle) IsReducedACChargingSupported() bool {
	return v.IsChargeMaxACSettingSupported()
}

func (v *Vehicle) ReducedACChargingLastUpdated() (time.Time, error) {
	return v.ChargeMaxACSettingLastUpdated()
}

func (v *Vehicle) ChargingCableLocked() (bool, error) {
	return v.equals(pathPlugStatus, "plugLockState", "locked")
}

func (v *Vehicle) IsChargingCableLockedSupported() bool {
	return v.has(pathPlugStatus, "plugLockState")
}

func (v *Vehicle) ChargingCableLockedLastUpdated() (time.Time, error) {
	return v.capturedAt(pathPlugStatus)
}

func (v *Vehicle) ChargingCableConnected() (bool, error) {
	return v.equals(pathPlugStatus, "plugConnectionState", "connected")
}

func (v *Vehicle) IsChargingCableConnectedSupported() bool {
	return v.has(pathPlugStatus, "plugConnectionState")
}

func (v *Vehicle) ChargingCableConnectedLastUpdated() (time.Time, error) {
	return v.capturedAt(pathPlugStatus)
}

// ChargingTimeLeft returns the minutes until charging completes.
func (v *Vehicle) ChargingTimeLeft() (int, error) {
	return v.integer(pathChargingStatus, "remainingChargingTimeToComplete_min")
}

func (v *Vehicle) IsChargingTimeLeftSupported() bool {
	return v.IsChargingSupported()
}

func (v *Vehicle) ChargingTimeLeftLastUpdated() (time.Time, error) {
	return v.capturedAt(pathChargingStatus)
}

// ExternalPower reports whether a charging station supplies power.
func (v *Vehicle) ExternalPower() (bool, error) {
	return v.oneOf(pathPlugStatus, "externalPower", "stationConnected", "available", "ready")
}

func (v *Vehicle) IsExternalPowerSupported() bool {
	return v.has(pathPlugStatus, "externalPower")
}

func (v *Vehicle) ExternalPowerLastUpdated() (time.Time, error) {
	return v.capturedAt(pathPlugStatus)
}
