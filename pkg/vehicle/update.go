package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/protocol"
)

// Section names reported to metrics and logs for each fetch.
const (
	sectionSelectiveStatus = "selectivestatus"
	sectionVehicle         = "vehicle"
	sectionParkingPosition = "parkingposition"
	sectionTripLast        = "tripLast"
	sectionServiceStatus   = "service_status"
)

// statusServices are requested from the selective status endpoint on every update.
var statusServices = []capability.Service{
	capability.ServiceAccess,
	capability.ServiceFuelStatus,
	capability.ServiceVehicleLights,
	capability.ServiceVehicleHealthInspection,
	capability.ServiceMeasurements,
	capability.ServiceCharging,
	capability.ServiceClimatisation,
}

// Update refreshes the state document. It runs discovery first if needed, skips all fetches for a
// deactivated vehicle, and otherwise issues the status, masterdata, parking position and trip
// fetches concurrently before fetching the backend's service status.
//
// A failed fetch does not prevent others from merging their results. The returned error joins
// every fetch failure.
func (v *Vehicle) Update(ctx context.Context) error {
	start := time.Now()
	defer func() { v.metrics.ObserveUpdate(time.Since(start)) }()

	if !v.Discovered() {
		if err := v.Discover(ctx); err != nil {
			return err
		}
	}
	if deactivated, err := v.Deactivated(); err == nil && deactivated {
		log.Info("Vehicle %s is deactivated", v.vin)
		return nil
	}

	// A plain Group does not cancel siblings when one fetch fails.
	var (
		group errgroup.Group
		errs  = make([]error, 4)
	)
	group.Go(func() error {
		errs[0] = v.fetchSelectiveStatus(ctx, statusServices)
		return nil
	})
	group.Go(func() error {
		errs[1] = v.fetch(ctx, sectionVehicle, func(ctx context.Context) (*structpb.Struct, error) {
			return v.backend.GetVehicleData(ctx, v.vin)
		})
		return nil
	})
	if v.fetchAllowed(capability.ServiceParkingPosition) {
		group.Go(func() error {
			errs[2] = v.fetch(ctx, sectionParkingPosition, func(ctx context.Context) (*structpb.Struct, error) {
				return v.backend.GetParkingPosition(ctx, v.vin)
			})
			return nil
		})
	}
	if v.fetchAllowed(capability.ServiceTripStatistics) {
		group.Go(func() error {
			errs[3] = v.fetch(ctx, sectionTripLast, func(ctx context.Context) (*structpb.Struct, error) {
				return v.backend.GetTripLast(ctx, v.vin)
			})
			return nil
		})
	}
	_ = group.Wait()

	serviceStatus, err := v.backend.GetServiceStatus(ctx)
	v.metrics.ObserveFetch(sectionServiceStatus, err)
	if err != nil {
		log.Warning("Failed to fetch service status: %s", err)
		errs = append(errs, fmt.Errorf("%s: %w", sectionServiceStatus, err))
	} else {
		v.state.MergeSection(sectionServiceStatus, serviceStatus)
	}
	return errors.Join(errs...)
}

// fetchAllowed gates optional fetches on an active, unexpired capability.
func (v *Vehicle) fetchAllowed(service capability.Service) bool {
	return v.capabilities.IsActive(service) && !v.IsExpired(service)
}

func (v *Vehicle) fetchSelectiveStatus(ctx context.Context, services []capability.Service) error {
	return v.fetch(ctx, sectionSelectiveStatus, func(ctx context.Context) (*structpb.Struct, error) {
		return v.backend.GetSelectiveStatus(ctx, v.vin, services)
	})
}

func (v *Vehicle) fetch(ctx context.Context, section string, get func(context.Context) (*structpb.Struct, error)) error {
	data, err := get(ctx)
	v.metrics.ObserveFetch(section, err)
	if err != nil {
		log.Warning("Failed to fetch %s for %s: %s", section, v.vin, err)
		return fmt.Errorf("%s: %w", section, err)
	}
	keys := make([]string, 0, len(data.GetFields()))
	for k := range data.GetFields() {
		keys = append(keys, k)
	}
	if !v.state.Merge(data) {
		log.Debug("No %s data for %s", section, v.vin)
		return nil
	}
	now := v.clock.Now()
	v.mu.Lock()
	for _, k := range keys {
		v.merged[k] = now
	}
	v.mu.Unlock()
	return nil
}

// fetchedAt returns when the top-level key of the state document was last written by a fetch.
func (v *Vehicle) fetchedAt(key string) (time.Time, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	at, ok := v.merged[key]
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", key, protocol.ErrNotFound)
	}
	return at, nil
}

// Run calls Update every interval until ctx is done. onUpdate, if not nil, receives the result of
// each update. Run returns ctx.Err().
func (v *Vehicle) Run(ctx context.Context, interval time.Duration, onUpdate func(error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		// A tick and cancellation may be ready together.
		if err := ctx.Err(); err != nil {
			return err
		}
		err := v.Update(ctx)
		if onUpdate != nil {
			onUpdate(err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
