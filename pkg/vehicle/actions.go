// File implements helpers shared by control actions and the actions the backend integration
// does not provide.

package vehicle

import (
	"context"
	"fmt"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/request"
)

const (
	ActionStart  = "start"
	ActionStop   = "stop"
	ActionLock   = "lock"
	ActionUnlock = "unlock"
)

// HeaterMode selects what the parking heater does.
type HeaterMode string

const (
	HeaterModeHeating     HeaterMode = "heating"
	HeaterModeVentilation HeaterMode = "ventilation"
	HeaterModeOff         HeaterMode = "off"
)

// Schedule is one departure timer.
type Schedule struct {
	ID             int
	Enabled        bool
	DepartureTime  string
	ChargeMinLevel int
}

// SetChargeMinLevel would set the minimum charge level of departure schedules.
func (v *Vehicle) SetChargeMinLevel(ctx context.Context, level int) (request.Status, error) {
	return request.StatusEmpty, notImplemented("set charge minimum level")
}

// SetParkingHeater would control the legacy auxiliary parking heater.
func (v *Vehicle) SetParkingHeater(ctx context.Context, mode HeaterMode, spin string) (request.Status, error) {
	return request.StatusEmpty, notImplemented("set parking heater")
}

// SetSchedule would store a departure timer.
func (v *Vehicle) SetSchedule(ctx context.Context, schedule Schedule) (request.Status, error) {
	return request.StatusEmpty, notImplemented("set schedule")
}

func unsupported(action, reason string) error {
	log.Error("%s: %s", action, reason)
	return protocol.Unsupported(action, reason)
}

func notImplemented(action string) error {
	log.Error("%s is not implemented", action)
	return fmt.Errorf("%s: %w", action, protocol.ErrNotImplemented)
}
