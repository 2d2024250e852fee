package vehicle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/request"
)

// States of a tracked action.
const (
	stateSubmitted = "submitted"
	statePolling   = "polling"
	stateSucceeded = "succeeded"
	stateFailed    = "failed"
	stateThrottled = "throttled"
	stateTimeout   = "timeout"
	stateException = "exception"
)

const (
	eventPoll     = "poll"
	eventSucceed  = "succeed"
	eventFail     = "fail"
	eventThrottle = "throttle"
	eventTimeOut  = "time_out"
	eventAbort    = "abort"
)

var terminalStates = map[string]request.Status{
	stateSucceeded: request.StatusSucceeded,
	stateFailed:    request.StatusFailed,
	stateThrottled: request.StatusThrottled,
	stateTimeout:   request.StatusTimeout,
	stateException: request.StatusException,
}

var terminalEvents = map[request.Status]string{
	request.StatusSucceeded: eventSucceed,
	request.StatusFailed:    eventFail,
	request.StatusThrottled: eventThrottle,
	request.StatusTimeout:   eventTimeOut,
	request.StatusException: eventAbort,
}

// tracker drives one submitted action to a terminal status. Entering a terminal state writes the
// status and a fresh timestamp into the vehicle's ledger.
type tracker struct {
	v       *Vehicle
	topic   request.Topic
	id      uuid.UUID
	machine *fsm.FSM
	status  request.Status
}

func (v *Vehicle) newTracker(topic request.Topic) *tracker {
	t := &tracker{
		v:      v,
		topic:  topic,
		id:     uuid.New(),
		status: request.StatusInProgress,
	}
	t.machine = fsm.NewFSM(
		stateSubmitted,
		fsm.Events{
			{Name: eventPoll, Src: []string{stateSubmitted}, Dst: statePolling},
			{Name: eventThrottle, Src: []string{stateSubmitted, statePolling}, Dst: stateThrottled},
			{Name: eventFail, Src: []string{stateSubmitted, statePolling}, Dst: stateFailed},
			{Name: eventAbort, Src: []string{stateSubmitted, statePolling}, Dst: stateException},
			{Name: eventSucceed, Src: []string{statePolling}, Dst: stateSucceeded},
			{Name: eventTimeOut, Src: []string{statePolling}, Dst: stateTimeout},
		},
		fsm.Callbacks{
			"enter_state": t.enterState,
		},
	)
	return t
}

func (t *tracker) enterState(_ context.Context, e *fsm.Event) {
	log.Debug("Request %s (%s): %s -> %s", t.id, t.topic, e.Src, e.Dst)
	status, ok := terminalStates[e.Dst]
	if !ok {
		return
	}
	t.status = status
	t.v.requests.RecordResult(t.topic, status, "", request.NoQuota)
	t.v.metrics.ObserveAction(t.topic.String(), status.String())
}

// poll moves a submitted action into the polling state. Transitions ignore cancellation of ctx
// so that an abandoned action still reaches a terminal state.
func (t *tracker) poll(ctx context.Context) {
	if err := t.machine.Event(context.WithoutCancel(ctx), eventPoll); err != nil {
		log.Warning("Request %s: %s", t.id, err)
	}
}

// finish moves the action into the terminal state matching status and returns the status
// recorded in the ledger. Statuses that are not terminal are treated as failures.
func (t *tracker) finish(ctx context.Context, status request.Status) request.Status {
	event, ok := terminalEvents[status]
	if !ok {
		event = eventFail
	}
	if err := t.machine.Event(context.WithoutCancel(ctx), event); err != nil {
		log.Warning("Request %s: %s", t.id, err)
		if _, done := terminalStates[t.machine.Current()]; !done {
			t.status = request.StatusException
			t.v.requests.RecordResult(t.topic, t.status, "", request.NoQuota)
			t.v.metrics.ObserveAction(t.topic.String(), t.status.String())
		}
	}
	return t.status
}

// handleResponse records the backend's acknowledgement of a submitted action and tracks it to
// completion. err is the transport error of the submission, if any.
func (v *Vehicle) handleResponse(ctx context.Context, topic request.Topic, action string, resp *Response, err error) (request.Status, error) {
	t := v.newTracker(topic)
	if err != nil {
		log.Error("Failed to %s: %s", action, err)
		return t.finish(ctx, request.StatusException), &protocol.SubmissionError{Topic: topic.String(), Err: err}
	}
	if resp == nil {
		log.Error("Failed to %s: no response", action)
		return t.finish(ctx, request.StatusFailed), &protocol.SubmissionError{Topic: topic.String()}
	}

	if resp.RateLimitRemaining != nil {
		log.Info("%d requests remaining", *resp.RateLimitRemaining)
		v.requests.UpdateQuota(*resp.RateLimitRemaining)
		v.metrics.SetRemaining(v.vin, *resp.RateLimitRemaining)
	}
	v.requests.Submit(topic, resp.ID, t.id)
	v.requests.SetDetail(topic, resp.State)

	if request.ParseStatus(resp.State) == request.StatusThrottled {
		log.Warning("Request throttled (%s)", topic)
		return t.finish(ctx, request.StatusThrottled), nil
	}

	t.poll(ctx)
	status, err := v.waitForRequest(ctx, topic, resp.ID)
	if err != nil {
		return t.finish(ctx, request.StatusException), fmt.Errorf("waiting for %s: %w", action, err)
	}
	return t.finish(ctx, status), nil
}

// waitForRequest polls the status of action id until it leaves "In Progress". A failed poll
// yields StatusException and an exhausted budget yields StatusTimeout. The only error returned is
// the context's.
func (v *Vehicle) waitForRequest(ctx context.Context, topic request.Topic, id string) (request.Status, error) {
	for attempt := 1; attempt <= v.pollAttempts; attempt++ {
		raw, err := v.backend.GetRequestStatus(ctx, v.vin, id)
		v.metrics.ObservePoll("request")
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return request.StatusException, ctxErr
			}
			log.Warning("Exception encountered while waiting for request status: %s", err)
			return request.StatusException, nil
		}
		log.Debug("Request ID %s: %s", id, raw)
		v.requests.SetPollState(raw)
		v.requests.SetDetail(topic, raw)

		status := request.ParseStatus(raw)
		if status != request.StatusInProgress {
			return status, nil
		}
		if attempt == v.pollAttempts {
			break
		}
		if err := v.sleep(ctx); err != nil {
			return request.StatusException, err
		}
	}
	log.Info("Timeout while waiting for result of %s", id)
	return request.StatusTimeout, nil
}

// waitForDataRefresh refetches measurements until the vehicle reports a connection at or after
// the refresh was triggered.
func (v *Vehicle) waitForDataRefresh(ctx context.Context) (request.Status, error) {
	measurements := []capability.Service{capability.ServiceMeasurements}
	for attempt := 1; attempt <= v.pollAttempts; attempt++ {
		err := v.fetchSelectiveStatus(ctx, measurements)
		v.metrics.ObservePoll("refresh")
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return request.StatusException, ctxErr
			}
			log.Warning("Exception encountered while waiting for data refresh: %s", err)
			return request.StatusException, nil
		}
		triggered := v.requests.Record(request.TopicRefresh).Timestamp
		if connected, err := v.LastConnected(); err == nil && !connected.Before(triggered) {
			return request.StatusSucceeded, nil
		}
		if attempt == v.pollAttempts {
			break
		}
		if err := v.sleep(ctx); err != nil {
			return request.StatusException, err
		}
	}
	log.Info("Timeout while waiting for data refresh")
	return request.StatusTimeout, nil
}

func (v *Vehicle) sleep(ctx context.Context) error {
	if v.pollInterval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(v.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
