// File implements masterdata, maintenance, lights, connection and backend health attributes.

package vehicle

import (
	"strconv"
	"time"

	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/document"
)

const (
	pathCarData      = "carData"
	pathDeactivated  = "carData.deactivated"
	pathRefreshTime  = "refreshTimestamp"
	statusUnknownAPI = "Unknown"
	lightStatusOn    = "on"
)

// API names a backend endpoint whose health is reported by the service status section.
type API string

const (
	APIVehicles        API = "vehicles"
	APICapabilities    API = "capabilities"
	APITrips           API = "trips"
	APISelectiveStatus API = "selectivestatus"
	APIParkingPosition API = "parkingposition"
	APIToken           API = "token"
)

// APIs lists every API reported by APIStatus.
var APIs = []API{APIVehicles, APICapabilities, APITrips, APISelectiveStatus, APIParkingPosition, APIToken}

func (v *Vehicle) Nickname() (string, error) {
	return v.text(pathMaster, "nickname")
}

func (v *Vehicle) IsNicknameSupported() bool {
	return v.has(pathMaster, "nickname")
}

func (v *Vehicle) Model() (string, error) {
	return v.text(pathMaster, "model")
}

func (v *Vehicle) IsModelSupported() bool {
	return v.has(pathMaster, "model")
}

func (v *Vehicle) ModelYear() (string, error) {
	year, err := v.state.Get(join(pathMaster, "modelYear"))
	if err != nil {
		return "", err
	}
	// Some regions report the year as a number.
	if document.IsNumber(year, "") {
		n, _ := document.Number(year, "")
		return strconv.Itoa(int(n)), nil
	}
	return document.String(year, "")
}

func (v *Vehicle) IsModelYearSupported() bool {
	return v.has(pathMaster, "modelYear")
}

// MasterDataLastUpdated dates the nickname, model and model year, which carry no capture
// timestamp of their own.
func (v *Vehicle) MasterDataLastUpdated() (time.Time, error) {
	return v.fetchedAt(pathMaster)
}

func (v *Vehicle) NicknameLastUpdated() (time.Time, error) {
	return v.MasterDataLastUpdated()
}

func (v *Vehicle) ModelLastUpdated() (time.Time, error) {
	return v.MasterDataLastUpdated()
}

func (v *Vehicle) ModelYearLastUpdated() (time.Time, error) {
	return v.MasterDataLastUpdated()
}

// Deactivated reports whether the backend has deactivated the vehicle. Deactivated vehicles are
// not updated.
func (v *Vehicle) Deactivated() (bool, error) {
	return v.state.Bool(pathDeactivated)
}

func (v *Vehicle) IsDeactivatedSupported() bool {
	deactivated, err := v.Deactivated()
	return err == nil && deactivated
}

func (v *Vehicle) DeactivatedLastUpdated() (time.Time, error) {
	return v.fetchedAt(pathCarData)
}

// InspectionDueDays returns the days until the next inspection. Negative values are overdue.
func (v *Vehicle) InspectionDueDays() (int, error) {
	return v.integer(pathMaintenance, "inspectionDue_days")
}

func (v *Vehicle) IsInspectionDueDaysSupported() bool {
	return v.has(pathMaintenance, "inspectionDue_days")
}

func (v *Vehicle) InspectionDueKm() (int, error) {
	return v.integer(pathMaintenance, "inspectionDue_km")
}

func (v *Vehicle) IsInspectionDueKmSupported() bool {
	return v.has(pathMaintenance, "inspectionDue_km")
}

func (v *Vehicle) OilServiceDueDays() (int, error) {
	return v.integer(pathMaintenance, "oilServiceDue_days")
}

func (v *Vehicle) IsOilServiceDueDaysSupported() bool {
	return v.has(pathMaintenance, "oilServiceDue_days")
}

func (v *Vehicle) OilServiceDueKm() (int, error) {
	return v.integer(pathMaintenance, "oilServiceDue_km")
}

func (v *Vehicle) IsOilServiceDueKmSupported() bool {
	return v.has(pathMaintenance, "oilServiceDue_km")
}

// MaintenanceLastUpdated dates every maintenance attribute.
func (v *Vehicle) MaintenanceLastUpdated() (time.Time, error) {
	return v.capturedAt(pathMaintenance)
}

// ParkingLight reports whether exactly one light, the parking light of one side, is on.
func (v *Vehicle) ParkingLight() (bool, error) {
	lights, err := v.state.List(join(pathLights, "lights"))
	if err != nil {
		return false, err
	}
	on := 0
	for _, light := range lights {
		if s, err := document.String(light, "status"); err == nil && s == lightStatusOn {
			on++
		}
	}
	return on == 1, nil
}

func (v *Vehicle) IsParkingLightSupported() bool {
	return v.has(pathLights, "lights")
}

func (v *Vehicle) ParkingLightLastUpdated() (time.Time, error) {
	return v.capturedAt(pathLights)
}

// LastConnected approximates when the vehicle last reported to the backend: the battery timestamp
// while charging, otherwise the odometer timestamp.
func (v *Vehicle) LastConnected() (time.Time, error) {
	if v.IsBatteryLevelSupported() {
		if charging, err := v.Charging(); err == nil && charging {
			return v.BatteryLevelLastUpdated()
		}
	}
	return v.DistanceLastUpdated()
}

func (v *Vehicle) IsLastConnectedSupported() bool {
	return v.IsBatteryLevelSupported() || v.IsDistanceSupported()
}

// APIStatus returns the backend's health string for api, or "Unknown" if it was not reported.
func (v *Vehicle) APIStatus(api API) string {
	s, err := v.text(sectionServiceStatus, string(api))
	if err != nil {
		return statusUnknownAPI
	}
	return s
}

// IsAPIStatusSupported gates the trips and parking position APIs on their capabilities.
func (v *Vehicle) IsAPIStatusSupported(api API) bool {
	switch api {
	case APITrips:
		return v.capabilities.IsActive(capability.ServiceTripStatistics)
	case APIParkingPosition:
		return v.capabilities.IsActive(capability.ServiceParkingPosition)
	}
	return true
}

// APIStatusLastUpdated is always now: the service status is fetched on every update.
func (v *Vehicle) APIStatusLastUpdated() (time.Time, error) {
	return v.clock.Now(), nil
}

// LastDataRefresh returns when the backend last refreshed its data from the vehicle.
func (v *Vehicle) LastDataRefresh() (time.Time, error) {
	return v.state.Time(pathRefreshTime)
}

func (v *Vehicle) IsLastDataRefreshSupported() bool {
	return true
}
