package vehicle

import (
	"slices"
	"time"

	"github.com/carnet-go/carnet/pkg/request"
)

// Attribute describes one projection of the state document.
type Attribute struct {
	Name        string
	Unit        string
	Supported   func(*Vehicle) bool
	Value       func(*Vehicle) (any, error)
	LastUpdated func(*Vehicle) (time.Time, error)
}

// Reading is the value of an Attribute for one vehicle.
type Reading struct {
	Name        string    `json:"name"`
	Unit        string    `json:"unit,omitempty"`
	Value       any       `json:"value"`
	LastUpdated time.Time `json:"last_updated,omitzero"`
}

func attr[T any](name, unit string, value func(*Vehicle) (T, error), supported func(*Vehicle) bool, updated func(*Vehicle) (time.Time, error)) Attribute {
	return Attribute{
		Name:      name,
		Unit:      unit,
		Supported: supported,
		Value: func(v *Vehicle) (any, error) {
			return value(v)
		},
		LastUpdated: updated,
	}
}

func always(*Vehicle) bool { return true }

func now(v *Vehicle) (time.Time, error) { return v.clock.Now(), nil }

func door(d Opening) Attribute {
	return attr("door_closed_"+string(d), "",
		func(v *Vehicle) (bool, error) { return v.DoorClosed(d) },
		func(v *Vehicle) bool { return v.IsDoorClosedSupported(d) },
		(*Vehicle).AccessLastUpdated)
}

func window(w Opening) Attribute {
	return attr("window_closed_"+string(w), "",
		func(v *Vehicle) (bool, error) { return v.WindowClosed(w) },
		func(v *Vehicle) bool { return v.IsWindowClosedSupported(w) },
		(*Vehicle).AccessLastUpdated)
}

func apiStatus(api API) Attribute {
	return attr("api_"+string(api)+"_status", "",
		func(v *Vehicle) (string, error) { return v.APIStatus(api), nil },
		func(v *Vehicle) bool { return v.IsAPIStatusSupported(api) },
		(*Vehicle).APIStatusLastUpdated)
}

func actionStatus(topic request.Topic) Attribute {
	return attr(topic.String()+"_action_status", "",
		func(v *Vehicle) (string, error) { return v.ActionStatus(topic).String(), nil },
		always,
		func(v *Vehicle) (time.Time, error) { return v.ActionStatusLastUpdated(topic), nil })
}

// Attributes lists every attribute in display order.
func Attributes() []Attribute {
	attrs := []Attribute{
		attr("nickname", "", (*Vehicle).Nickname, (*Vehicle).IsNicknameSupported, (*Vehicle).NicknameLastUpdated),
		attr("model", "", (*Vehicle).Model, (*Vehicle).IsModelSupported, (*Vehicle).ModelLastUpdated),
		attr("model_year", "", (*Vehicle).ModelYear, (*Vehicle).IsModelYearSupported, (*Vehicle).ModelYearLastUpdated),
		attr("deactivated", "", (*Vehicle).Deactivated, (*Vehicle).IsDeactivatedSupported, (*Vehicle).DeactivatedLastUpdated),
		attr("last_connected", "", (*Vehicle).LastConnected, (*Vehicle).IsLastConnectedSupported, (*Vehicle).LastConnected),
		attr("last_data_refresh", "", (*Vehicle).LastDataRefresh, (*Vehicle).IsLastDataRefreshSupported, now),

		attr("charging", "", (*Vehicle).Charging, (*Vehicle).IsChargingSupported, (*Vehicle).ChargingLastUpdated),
		attr("charging_power", "kW", (*Vehicle).ChargingPower, (*Vehicle).IsChargingPowerSupported, (*Vehicle).ChargingPowerLastUpdated),
		attr("charging_rate", "km/h", (*Vehicle).ChargingRate, (*Vehicle).IsChargingRateSupported, (*Vehicle).ChargingRateLastUpdated),
		attr("charger_type", "", (*Vehicle).ChargerType, (*Vehicle).IsChargerTypeSupported, (*Vehicle).ChargerTypeLastUpdated),
		attr("battery_level", "%", (*Vehicle).BatteryLevel, (*Vehicle).IsBatteryLevelSupported, (*Vehicle).BatteryLevelLastUpdated),
		attr("battery_target_charge_level", "%", (*Vehicle).BatteryTargetChargeLevel, (*Vehicle).IsBatteryTargetChargeLevelSupported, (*Vehicle).BatteryTargetChargeLevelLastUpdated),
		attr("charge_max_ac_setting", "", (*Vehicle).ChargeMaxACSetting, (*Vehicle).IsChargeMaxACSettingSupported, (*Vehicle).ChargeMaxACSettingLastUpdated),
		attr("charge_max_ac_ampere", "A", (*Vehicle).ChargeMaxACAmpere, (*Vehicle).IsChargeMaxACAmpereSupported, (*Vehicle).ChargeMaxACAmpereLastUpdated),
		attr("reduced_ac_charging", "", (*Vehicle).ReducedACCharging, (*Vehicle).IsReducedACChargingSupported, (*Vehicle).ReducedACChargingLastUpdated),
		attr("charging_cable_locked", "", (*Vehicle).ChargingCableLocked, (*Vehicle).IsChargingCableLockedSupported, (*Vehicle).ChargingCableLockedLastUpdated),
		attr("charging_cable_connected", "", (*Vehicle).ChargingCableConnected, (*Vehicle).IsChargingCableConnectedSupported, (*Vehicle).ChargingCableConnectedLastUpdated),
		attr("charging_time_left", "min", (*Vehicle).ChargingTimeLeft, (*Vehicle).IsChargingTimeLeftSupported, (*Vehicle).ChargingTimeLeftLastUpdated),
		attr("external_power", "", (*Vehicle).ExternalPower, (*Vehicle).IsExternalPowerSupported, (*Vehicle).ExternalPowerLastUpdated),

		attr("electric_range", "km", (*Vehicle).ElectricRange, (*Vehicle).IsElectricRangeSupported, (*Vehicle).ElectricRangeLastUpdated),
		attr("combustion_range", "km", (*Vehicle).CombustionRange, (*Vehicle).IsCombustionRangeSupported, (*Vehicle).CombustionRangeLastUpdated),
		attr("combined_range", "km", (*Vehicle).CombinedRange, (*Vehicle).IsCombinedRangeSupported, (*Vehicle).CombinedRangeLastUpdated),
		attr("adblue_range", "km", (*Vehicle).AdBlueRange, (*Vehicle).IsAdBlueRangeSupported, (*Vehicle).AdBlueRangeLastUpdated),
		attr("fuel_level", "%", (*Vehicle).FuelLevel, (*Vehicle).IsFuelLevelSupported, (*Vehicle).FuelLevelLastUpdated),
		attr("odometer", "km", (*Vehicle).Distance, (*Vehicle).IsDistanceSupported, (*Vehicle).DistanceLastUpdated),

		attr("climatisation_target_temperature", "°C", (*Vehicle).ClimatisationTargetTemperature, (*Vehicle).IsClimatisationTargetTemperatureSupported, (*Vehicle).ClimatisationTargetTemperatureLastUpdated),
		attr("climatisation_without_external_power", "", (*Vehicle).ClimatisationWithoutExternalPower, (*Vehicle).IsClimatisationWithoutExternalPowerSupported, (*Vehicle).ClimatisationWithoutExternalPowerLastUpdated),
		attr("electric_climatisation", "", (*Vehicle).ElectricClimatisation, (*Vehicle).IsElectricClimatisationSupported, (*Vehicle).ElectricClimatisationLastUpdated),
		attr("auxiliary_climatisation", "", (*Vehicle).AuxiliaryClimatisation, (*Vehicle).IsAuxiliaryClimatisationSupported, (*Vehicle).AuxiliaryClimatisationLastUpdated),
		attr("window_heater_front", "", (*Vehicle).WindowHeaterFront, (*Vehicle).IsWindowHeaterFrontSupported, (*Vehicle).WindowHeaterFrontLastUpdated),
		attr("window_heater_back", "", (*Vehicle).WindowHeaterBack, (*Vehicle).IsWindowHeaterBackSupported, (*Vehicle).WindowHeaterBackLastUpdated),
		attr("window_heater", "", (*Vehicle).WindowHeater, (*Vehicle).IsWindowHeaterSupported, (*Vehicle).WindowHeaterLastUpdated),

		attr("door_locked", "", (*Vehicle).DoorLocked, (*Vehicle).IsDoorLockedSupported, (*Vehicle).DoorLockedLastUpdated),
		attr("trunk_locked", "", (*Vehicle).TrunkLocked, (*Vehicle).IsTrunkLockedSupported, (*Vehicle).TrunkLockedLastUpdated),
		attr("trunk_closed", "", (*Vehicle).TrunkClosed, (*Vehicle).IsTrunkClosedSupported, (*Vehicle).AccessLastUpdated),
		attr("hood_closed", "", (*Vehicle).HoodClosed, (*Vehicle).IsHoodClosedSupported, (*Vehicle).AccessLastUpdated),
		attr("doors_closed", "", (*Vehicle).DoorsClosed, (*Vehicle).IsDoorsClosedSupported, (*Vehicle).AccessLastUpdated),
		attr("windows_closed", "", (*Vehicle).WindowsClosed, (*Vehicle).IsWindowsClosedSupported, (*Vehicle).AccessLastUpdated),
		attr("sunroof_closed", "", (*Vehicle).SunroofClosed, (*Vehicle).IsSunroofClosedSupported, (*Vehicle).AccessLastUpdated),

		attr("inspection_due_days", "d", (*Vehicle).InspectionDueDays, (*Vehicle).IsInspectionDueDaysSupported, (*Vehicle).MaintenanceLastUpdated),
		attr("inspection_due_km", "km", (*Vehicle).InspectionDueKm, (*Vehicle).IsInspectionDueKmSupported, (*Vehicle).MaintenanceLastUpdated),
		attr("oil_service_due_days", "d", (*Vehicle).OilServiceDueDays, (*Vehicle).IsOilServiceDueDaysSupported, (*Vehicle).MaintenanceLastUpdated),
		attr("oil_service_due_km", "km", (*Vehicle).OilServiceDueKm, (*Vehicle).IsOilServiceDueKmSupported, (*Vehicle).MaintenanceLastUpdated),

		attr("position", "", (*Vehicle).Position, (*Vehicle).IsPositionSupported, (*Vehicle).PositionLastUpdated),
		attr("vehicle_moving", "", (*Vehicle).VehicleMoving, (*Vehicle).IsVehicleMovingSupported, (*Vehicle).VehicleMovingLastUpdated),
		attr("parking_time", "", (*Vehicle).ParkingTime, (*Vehicle).IsParkingTimeSupported, (*Vehicle).PositionLastUpdated),
		attr("parking_light", "", (*Vehicle).ParkingLight, (*Vehicle).IsParkingLightSupported, (*Vehicle).ParkingLightLastUpdated),

		attr("trip_last_average_speed", "km/h", (*Vehicle).TripAverageSpeed, (*Vehicle).IsTripAverageSpeedSupported, (*Vehicle).TripLastUpdated),
		attr("trip_last_average_electric_consumption", "kWh/100km", (*Vehicle).TripAverageElectricConsumption, (*Vehicle).IsTripAverageElectricConsumptionSupported, (*Vehicle).TripLastUpdated),
		attr("trip_last_average_fuel_consumption", "l/100km", (*Vehicle).TripAverageFuelConsumption, (*Vehicle).IsTripAverageFuelConsumptionSupported, (*Vehicle).TripLastUpdated),
		attr("trip_last_duration", "", (*Vehicle).TripDuration, (*Vehicle).IsTripDurationSupported, (*Vehicle).TripLastUpdated),
		attr("trip_last_length", "km", (*Vehicle).TripLength, (*Vehicle).IsTripLengthSupported, (*Vehicle).TripLastUpdated),
		attr("trip_last_average_recuperation", "kWh/100km", (*Vehicle).TripAverageRecuperation, (*Vehicle).IsTripAverageRecuperationSupported, (*Vehicle).TripLastUpdated),

		attr("request_in_progress", "",
			func(v *Vehicle) (bool, error) { return v.RequestInProgress(), nil }, always, now),
		attr("request_results", "",
			func(v *Vehicle) (map[string]string, error) { return v.RequestResults(), nil }, always, now),
		attr("requests_remaining", "", (*Vehicle).RequestsRemaining, (*Vehicle).IsRequestsRemainingSupported, (*Vehicle).RequestsRemainingLastUpdated),
	}
	for _, d := range slices.Concat(Doors, []Opening{OpeningTrunk, OpeningBonnet}) {
		attrs = append(attrs, door(d))
	}
	for _, w := range slices.Concat(Windows, []Opening{OpeningSunroof, OpeningSunroofRear, OpeningRoofCover}) {
		attrs = append(attrs, window(w))
	}
	for _, api := range APIs {
		attrs = append(attrs, apiStatus(api))
	}
	for _, topic := range request.Topics {
		attrs = append(attrs, actionStatus(topic))
	}
	return attrs
}

// Readings evaluates every supported attribute. Attributes whose value cannot be read are
// skipped.
func (v *Vehicle) Readings() []Reading {
	var readings []Reading
	for _, a := range Attributes() {
		if !a.Supported(v) {
			continue
		}
		value, err := a.Value(v)
		if err != nil {
			continue
		}
		r := Reading{Name: a.Name, Unit: a.Unit, Value: value}
		if at, err := a.LastUpdated(v); err == nil {
			r.LastUpdated = at
		}
		readings = append(readings, r)
	}
	return readings
}
