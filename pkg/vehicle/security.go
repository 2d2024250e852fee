package vehicle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/request"
)

// pendingUnknownOffset postpones the stale check of lock and refresh records that carry no
// timestamp. Submit stamps records with the ledger clock, so this only applies when that clock
// reports the zero time. Such a record holds the gate closed until a result is recorded.
const pendingUnknownOffset = -5 * time.Minute

// IsValidSPIN returns true if spin is a four-digit security PIN.
func IsValidSPIN(spin string) bool {
	return checkArgs("spin", lockArgs{Action: ActionLock, SPIN: spin}) == nil
}

// SetLock locks or unlocks the vehicle. action is "lock" or "unlock". It returns
// StatusInProgress without submitting if a lock action is already pending.
func (v *Vehicle) SetLock(ctx context.Context, action, spin string) (request.Status, error) {
	if !v.capabilities.IsActive(capability.ServiceAccess) {
		return request.StatusEmpty, unsupported("lock", "remote lock/unlock is not supported")
	}
	if err := checkArgs("lock", lockArgs{Action: action, SPIN: spin}); err != nil {
		return request.StatusEmpty, err
	}
	if !v.requests.TryBegin(request.TopicLock, request.DefaultStaleAfter, pendingUnknownOffset) {
		return request.StatusInProgress, nil
	}
	v.requests.MarkLatest(request.TopicLock)
	resp, err := v.backend.SetLock(ctx, v.vin, action == ActionLock, spin)
	return v.handleResponse(ctx, request.TopicLock, action+" vehicle", resp, err)
}

func (v *Vehicle) Lock(ctx context.Context, spin string) (request.Status, error) {
	return v.SetLock(ctx, ActionLock, spin)
}

func (v *Vehicle) Unlock(ctx context.Context, spin string) (request.Status, error) {
	return v.SetLock(ctx, ActionUnlock, spin)
}

// SetRefresh wakes the vehicle and waits until it reports fresh measurements. It returns
// StatusInProgress without submitting if a refresh is already pending.
func (v *Vehicle) SetRefresh(ctx context.Context) (request.Status, error) {
	if !v.requests.TryBegin(request.TopicRefresh, request.DefaultStaleAfter, pendingUnknownOffset) {
		return request.StatusInProgress, nil
	}
	v.requests.MarkLatest(request.TopicRefresh)
	resp, err := v.backend.WakeUpVehicle(ctx, v.vin)

	t := v.newTracker(request.TopicRefresh)
	submissionErr := func(cause error) error {
		return &protocol.SubmissionError{Topic: request.TopicRefresh.String(), Err: cause}
	}
	switch {
	case err != nil:
		log.Warning("Failed to execute data refresh: %s", err)
		return t.finish(ctx, request.StatusException), submissionErr(err)
	case resp == nil:
		log.Warning("Unable to refresh the data: no response")
		return t.finish(ctx, request.StatusFailed), submissionErr(nil)
	case resp.StatusCode == 429:
		log.Debug("Server side throttled. Try again later.")
		v.requests.SetPollState(request.StatusThrottled.String())
		return t.finish(ctx, request.StatusThrottled), nil
	case resp.StatusCode != 204:
		log.Debug("Unable to refresh the data. Incorrect response code: %d", resp.StatusCode)
		return t.finish(ctx, request.StatusFailed), submissionErr(fmt.Errorf("unexpected response code %d", resp.StatusCode))
	}

	// The refresh has no backend id. A local one marks the record as pending for the gate.
	v.requests.Submit(request.TopicRefresh, uuid.NewString(), t.id)
	v.requests.SetPollState(request.StatusInProgress.String())
	t.poll(ctx)
	status, err := v.waitForDataRefresh(ctx)
	v.requests.SetPollState(status.String())
	if err != nil {
		return t.finish(ctx, request.StatusException), fmt.Errorf("waiting for data refresh: %w", err)
	}
	return t.finish(ctx, status), nil
}

// Wake is an alias of SetRefresh.
func (v *Vehicle) Wake(ctx context.Context) (request.Status, error) {
	return v.SetRefresh(ctx)
}
