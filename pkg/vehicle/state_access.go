// File implements door, window and lock attributes.

package vehicle

import (
	"errors"
	"time"

	"github.com/carnet-go/carnet/pkg/capability"
)

// ErrVehicleStateUnknown indicates the vehicle reported an opening without a recognizable state.
var ErrVehicleStateUnknown = errors.New("could not determine vehicle state")

// Opening names a door, window or roof element of the access status.
type Opening string

const (
	OpeningFrontLeft   Opening = "frontLeft"
	OpeningFrontRight  Opening = "frontRight"
	OpeningRearLeft    Opening = "rearLeft"
	OpeningRearRight   Opening = "rearRight"
	OpeningTrunk       Opening = "trunk"
	OpeningBonnet      Opening = "bonnet"
	OpeningSunroof     Opening = "sunRoof"
	OpeningSunroofRear Opening = "sunRoofRear"
	OpeningRoofCover   Opening = "roofCover"
)

// Doors lists the doors checked by DoorsClosed.
var Doors = []Opening{OpeningFrontLeft, OpeningFrontRight, OpeningRearLeft, OpeningRearRight}

// Windows lists the windows checked by WindowsClosed.
var Windows = []Opening{OpeningFrontLeft, OpeningFrontRight, OpeningRearLeft, OpeningRearRight}

const (
	listDoors   = "doors"
	listWindows = "windows"

	statusOpen        = "open"
	statusClosed      = "closed"
	statusLocked      = "locked"
	statusUnsupported = "unsupported"
)

// DoorLocked reports whether the vehicle reports all doors locked.
func (v *Vehicle) DoorLocked() (bool, error) {
	return v.equals(pathAccessStatus, "doorLockStatus", statusLocked)
}

// IsDoorLockedSupported requires an active access capability.
func (v *Vehicle) IsDoorLockedSupported() bool {
	return v.capabilities.IsActive(capability.ServiceAccess) && v.has(pathAccessStatus, "doorLockStatus")
}

func (v *Vehicle) DoorLockedLastUpdated() (time.Time, error) {
	return v.capturedAt(pathAccessStatus)
}

func (v *Vehicle) TrunkLocked() (bool, error) {
	return v.openingHas(listDoors, OpeningTrunk, statusLocked)
}

func (v *Vehicle) IsTrunkLockedSupported() bool {
	return v.capabilities.IsActive(capability.ServiceAccess) && v.isOpeningSupported(listDoors, OpeningTrunk)
}

func (v *Vehicle) TrunkLockedLastUpdated() (time.Time, error) {
	return v.capturedAt(pathAccessStatus)
}

func (v *Vehicle) TrunkClosed() (bool, error) {
	return v.openingHas(listDoors, OpeningTrunk, statusClosed)
}

func (v *Vehicle) IsTrunkClosedSupported() bool {
	return v.isOpeningSupported(listDoors, OpeningTrunk)
}

func (v *Vehicle) HoodClosed() (bool, error) {
	return v.openingClosed(listDoors, OpeningBonnet)
}

func (v *Vehicle) IsHoodClosedSupported() bool {
	return v.isOpeningSupported(listDoors, OpeningBonnet)
}

// DoorClosed returns ErrVehicleStateUnknown if the door reports neither open nor closed.
func (v *Vehicle) DoorClosed(door Opening) (bool, error) {
	return v.openingClosed(listDoors, door)
}

func (v *Vehicle) IsDoorClosedSupported(door Opening) bool {
	return v.isOpeningSupported(listDoors, door)
}

// DoorsClosed reports whether every supported door is closed.
func (v *Vehicle) DoorsClosed() (bool, error) {
	return v.allClosed(listDoors, Doors)
}

func (v *Vehicle) IsDoorsClosedSupported() bool {
	return v.anySupported(listDoors, Doors)
}

// WindowClosed returns ErrVehicleStateUnknown if the window reports neither open nor closed.
func (v *Vehicle) WindowClosed(window Opening) (bool, error) {
	return v.openingClosed(listWindows, window)
}

func (v *Vehicle) IsWindowClosedSupported(window Opening) bool {
	return v.isOpeningSupported(listWindows, window)
}

// WindowsClosed reports whether every supported window is closed.
func (v *Vehicle) WindowsClosed() (bool, error) {
	return v.allClosed(listWindows, Windows)
}

func (v *Vehicle) IsWindowsClosedSupported() bool {
	return v.anySupported(listWindows, Windows)
}

func (v *Vehicle) SunroofClosed() (bool, error) {
	return v.openingClosed(listWindows, OpeningSunroof)
}

func (v *Vehicle) IsSunroofClosedSupported() bool {
	return v.isOpeningSupported(listWindows, OpeningSunroof)
}

// AccessLastUpdated dates every door, window and lock attribute.
func (v *Vehicle) AccessLastUpdated() (time.Time, error) {
	return v.capturedAt(pathAccessStatus)
}

func (v *Vehicle) openingStatus(list string, name Opening) ([]string, bool, error) {
	element, ok, err := v.findNamed(join(pathAccessStatus, list), "name", string(name))
	if err != nil || !ok {
		return nil, ok, err
	}
	return statusList(element), true, nil
}

// openingHas reports whether the opening's status list contains status. A missing opening is
// reported as false.
func (v *Vehicle) openingHas(list string, name Opening, status string) (bool, error) {
	statuses, _, err := v.openingStatus(list, name)
	if err != nil {
		return false, err
	}
	return contains(statuses, status), nil
}

func (v *Vehicle) openingClosed(list string, name Opening) (bool, error) {
	statuses, ok, err := v.openingStatus(list, name)
	if err != nil || !ok {
		return false, err
	}
	if !contains(statuses, statusOpen) && !contains(statuses, statusClosed) {
		return false, ErrVehicleStateUnknown
	}
	return contains(statuses, statusClosed), nil
}

func (v *Vehicle) isOpeningSupported(list string, name Opening) bool {
	statuses, ok, err := v.openingStatus(list, name)
	return err == nil && ok && !contains(statuses, statusUnsupported)
}

func (v *Vehicle) anySupported(list string, names []Opening) bool {
	for _, name := range names {
		if v.isOpeningSupported(list, name) {
			return true
		}
	}
	return false
}

func (v *Vehicle) allClosed(list string, names []Opening) (bool, error) {
	for _, name := range names {
		if !v.isOpeningSupported(list, name) {
			continue
		}
		closed, err := v.openingClosed(list, name)
		if err != nil || !closed {
			return false, err
		}
	}
	return true, nil
}
