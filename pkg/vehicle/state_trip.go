// File implements parking position and last trip attributes.

package vehicle

import (
	"time"
)

const (
	pathMoving       = "isMoving"
	tripEndTimestamp = "tripEndTimestamp"
)

// Position is the parking position of a vehicle. It is zero while the vehicle is moving.
type Position struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// Position returns where the vehicle is parked.
func (v *Vehicle) Position() (Position, error) {
	if moving, _ := v.VehicleMoving(); moving {
		return Position{}, nil
	}
	lat, err := v.number(pathParking, "lat")
	if err != nil {
		return Position{}, err
	}
	lng, err := v.number(pathParking, "lon")
	if err != nil {
		return Position{}, err
	}
	at, err := v.capturedAt(pathParking)
	if err != nil {
		return Position{}, err
	}
	return Position{Lat: lat, Lng: lng, Timestamp: at}, nil
}

// IsPositionSupported is true while the vehicle is moving, even though no coordinates are known.
func (v *Vehicle) IsPositionSupported() bool {
	if moving, _ := v.VehicleMoving(); moving {
		return true
	}
	return v.has(pathParking, capturedTimestamp)
}

func (v *Vehicle) PositionLastUpdated() (time.Time, error) {
	return v.capturedAt(pathParking)
}

// VehicleMoving is reported by the backend as the absence of a parking position.
func (v *Vehicle) VehicleMoving() (bool, error) {
	return v.state.Bool(pathMoving)
}

func (v *Vehicle) IsVehicleMovingSupported() bool {
	return v.IsPositionSupported()
}

// VehicleMovingLastUpdated returns when the parking position was last fetched. A moving vehicle
// reports no capture timestamp.
func (v *Vehicle) VehicleMovingLastUpdated() (time.Time, error) {
	return v.fetchedAt(pathMoving)
}

// ParkingTime returns when the vehicle was parked.
func (v *Vehicle) ParkingTime() (time.Time, error) {
	return v.capturedAt(pathParking)
}

func (v *Vehicle) IsParkingTimeSupported() bool {
	return v.IsPositionSupported()
}

// TripAverageSpeed returns the average speed of the last trip in km/h.
func (v *Vehicle) TripAverageSpeed() (float64, error) {
	return v.number(pathTripLast, "averageSpeed_kmph")
}

func (v *Vehicle) IsTripAverageSpeedSupported() bool {
	return v.hasNumber(pathTripLast, "averageSpeed_kmph")
}

// TripAverageElectricConsumption returns kWh/100km.
func (v *Vehicle) TripAverageElectricConsumption() (float64, error) {
	return v.number(pathTripLast, "averageElectricConsumption")
}

func (v *Vehicle) IsTripAverageElectricConsumptionSupported() bool {
	return v.hasNumber(pathTripLast, "averageElectricConsumption")
}

// TripAverageFuelConsumption returns l/100km.
func (v *Vehicle) TripAverageFuelConsumption() (float64, error) {
	return v.number(pathTripLast, "averageFuelConsumption")
}

func (v *Vehicle) IsTripAverageFuelConsumptionSupported() bool {
	return v.hasNumber(pathTripLast, "averageFuelConsumption")
}

// TripDuration returns the travel time of the last trip.
func (v *Vehicle) TripDuration() (time.Duration, error) {
	minutes, err := v.number(pathTripLast, "travelTime")
	return time.Duration(minutes * float64(time.Minute)), err
}

func (v *Vehicle) IsTripDurationSupported() bool {
	return v.hasNumber(pathTripLast, "travelTime")
}

// TripLength returns the distance of the last trip in km.
func (v *Vehicle) TripLength() (int, error) {
	return v.integer(pathTripLast, "mileage_km")
}

func (v *Vehicle) IsTripLengthSupported() bool {
	return v.hasNumber(pathTripLast, "mileage_km")
}

// TripAverageRecuperation returns kWh/100km.
func (v *Vehicle) TripAverageRecuperation() (float64, error) {
	return v.number(pathTripLast, "averageRecuperation")
}

func (v *Vehicle) IsTripAverageRecuperationSupported() bool {
	return v.hasNumber(pathTripLast, "averageRecuperation")
}

// TripLastUpdated dates every last trip attribute by the trip's end.
func (v *Vehicle) TripLastUpdated() (time.Time, error) {
	return v.state.Time(join(pathTripLast, tripEndTimestamp))
}
