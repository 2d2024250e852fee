package vehicle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/request"
)

func TestIsValidSPIN(t *testing.T) {
	tests := []struct {
		spin  string
		valid bool
	}{
		{"1234", true},
		{"0000", true},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"", false},
	}
	for _, test := range tests {
		if got := IsValidSPIN(test.spin); got != test.valid {
			t.Errorf("IsValidSPIN(%q) = %v, want %v", test.spin, got, test.valid)
		}
	}
}

func TestLockPreconditions(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		backend := &testBackend{}
		v, _ := newTestVehicle(t, backend, "")
		_, err := v.Lock(context.Background(), "1234")
		if !errors.Is(err, protocol.ErrUnsupported) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("invalid spin", func(t *testing.T) {
		backend := &testBackend{}
		v, _ := newTestVehicle(t, backend, "", capability.ServiceAccess)
		_, err := v.Lock(context.Background(), "12a4")
		var argErr *protocol.ArgumentError
		if !errors.As(err, &argErr) || argErr.Argument != "spin" {
			t.Errorf("err = %v", err)
		}
		if backend.Called("SetLock") != 0 {
			t.Error("invalid lock was submitted")
		}
	})
	t.Run("invalid action", func(t *testing.T) {
		backend := &testBackend{}
		v, _ := newTestVehicle(t, backend, "", capability.ServiceAccess)
		_, err := v.SetLock(context.Background(), "open", "1234")
		if !errors.Is(err, protocol.ErrInvalidArgument) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestLockSubmits(t *testing.T) {
	backend := &testBackend{
		Response:        &Response{State: "In Progress", ID: "lock-1"},
		RequestStatuses: []string{"successful"},
	}
	v, _ := newTestVehicle(t, backend, "", capability.ServiceAccess)

	status, err := v.Unlock(context.Background(), "1234")
	if err != nil || status != request.StatusSucceeded {
		t.Fatalf("got %s, %v", status, err)
	}
	if backend.LastLock || backend.LastSPIN != "1234" {
		t.Errorf("submitted lock=%v spin=%q", backend.LastLock, backend.LastSPIN)
	}
}

func TestLockGate(t *testing.T) {
	backend := &testBackend{
		Response:        &Response{State: "In Progress", ID: "lock-2"},
		RequestStatuses: []string{"successful"},
	}
	v, clk := newTestVehicle(t, backend, "", capability.ServiceAccess)
	v.Requests().Submit(request.TopicLock, "lock-1", uuid.New())

	clk.SetTime(epoch.Add(time.Minute))
	status, err := v.Lock(context.Background(), "1234")
	if err != nil || status != request.StatusInProgress {
		t.Fatalf("got %s, %v", status, err)
	}
	if backend.Called("SetLock") != 0 {
		t.Fatal("gate did not block submission")
	}
	if v.Requests().Record(request.TopicLock).ExternalID != "lock-1" {
		t.Error("skipped submission modified the pending record")
	}

	clk.SetTime(epoch.Add(request.DefaultStaleAfter + time.Second))
	status, err = v.Lock(context.Background(), "1234")
	if err != nil || status != request.StatusSucceeded {
		t.Fatalf("got %s, %v", status, err)
	}
	if backend.Called("SetLock") != 1 {
		t.Error("stale record blocked submission")
	}
}

func TestLockThrottledWhilePolling(t *testing.T) {
	backend := &testBackend{
		Response:        &Response{State: "In Progress", ID: "req-1"},
		RequestStatuses: []string{"In Progress", "Throttled"},
	}
	v, _ := newTestVehicle(t, backend, "", capability.ServiceAccess)

	status, err := v.Lock(context.Background(), "1234")
	if err != nil || status != request.StatusThrottled {
		t.Fatalf("got %s, %v", status, err)
	}
	r := v.Requests().Record(request.TopicLock)
	if r.Status != request.StatusThrottled || r.Pending() {
		t.Errorf("ledger record = %+v", r)
	}
	if !v.Requests().TryBegin(request.TopicLock, request.DefaultStaleAfter, pendingUnknownOffset) {
		t.Error("gate closed after the action completed")
	}
}

func TestLockGateUnknownTimestamp(t *testing.T) {
	backend := &testBackend{Response: &Response{State: "In Progress", ID: "lock-2"}}
	v, clk := newTestVehicle(t, backend, "", capability.ServiceAccess)
	clk.SetTime(time.Time{})
	v.Requests().Submit(request.TopicLock, "lock-1", uuid.New())

	clk.SetTime(epoch.Add(request.DefaultStaleAfter + time.Second))
	status, err := v.Lock(context.Background(), "1234")
	if err != nil || status != request.StatusInProgress {
		t.Fatalf("got %s, %v", status, err)
	}
	if backend.Called("SetLock") != 0 {
		t.Error("record without a timestamp was treated as stale")
	}
}

func odometerAt(at time.Time) func([]capability.Service) (*structpb.Struct, error) {
	return func([]capability.Service) (*structpb.Struct, error) {
		return structpb.NewStruct(map[string]interface{}{
			"measurements": map[string]interface{}{
				"odometerStatus": map[string]interface{}{
					"value": map[string]interface{}{
						"odometer":             float64(12345),
						"carCapturedTimestamp": at.Format(time.RFC3339),
					},
				},
			},
		})
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name       string
		wake       *WakeResponse
		wakeErr    error
		connected  time.Time
		wantStatus request.Status
		wantErr    error
		wantPolls  int
	}{
		{name: "fresh data", wake: &WakeResponse{StatusCode: 204}, connected: epoch.Add(time.Minute), wantStatus: request.StatusSucceeded, wantPolls: 1},
		{name: "stale data", wake: &WakeResponse{StatusCode: 204}, connected: epoch.Add(-time.Hour), wantStatus: request.StatusTimeout, wantPolls: DefaultPollAttempts},
		{name: "throttled", wake: &WakeResponse{StatusCode: 429}, wantStatus: request.StatusThrottled},
		{name: "unexpected code", wake: &WakeResponse{StatusCode: 500}, wantStatus: request.StatusFailed, wantErr: protocol.ErrSubmissionFailed},
		{name: "no response", wantStatus: request.StatusFailed, wantErr: protocol.ErrSubmissionFailed},
		{name: "transport error", wakeErr: errFake, wantStatus: request.StatusException, wantErr: errFake},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			backend := &testBackend{
				Wake:            test.wake,
				WakeErr:         test.wakeErr,
				SelectiveStatus: odometerAt(test.connected),
			}
			v, _ := newTestVehicle(t, backend, "")

			status, err := v.Wake(context.Background())
			if test.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Fatalf("err = %v, want %v", err, test.wantErr)
			}
			if status != test.wantStatus {
				t.Errorf("status = %s, want %s", status, test.wantStatus)
			}
			if n := backend.Called("GetSelectiveStatus"); n != test.wantPolls {
				t.Errorf("refetched %d times, want %d", n, test.wantPolls)
			}
			r := v.Requests().Record(request.TopicRefresh)
			if r.Status != test.wantStatus || r.Pending() {
				t.Errorf("record = %+v", r)
			}
		})
	}
}

func TestRefreshGate(t *testing.T) {
	backend := &testBackend{Wake: &WakeResponse{StatusCode: 204}}
	v, _ := newTestVehicle(t, backend, "")
	v.Requests().Submit(request.TopicRefresh, "pending", uuid.New())

	status, err := v.SetRefresh(context.Background())
	if err != nil || status != request.StatusInProgress {
		t.Fatalf("got %s, %v", status, err)
	}
	if backend.Called("WakeUpVehicle") != 0 {
		t.Error("gate did not block refresh")
	}
}

func ExampleVehicle_Lock() {
	backend := &testBackend{
		Response:        &Response{State: "In Progress", ID: "lock-1"},
		RequestStatuses: []string{"successful"},
	}
	v := NewVehicle(testVIN, backend, WithPollInterval(0), WithCapabilities(snapshotOf(capability.ServiceAccess)))
	status, err := v.Lock(context.Background(), "1234")
	fmt.Println(status, err)
	// Output: Succeeded <nil>
}
