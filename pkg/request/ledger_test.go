package request

import (
	"testing"
	"time"

	"github.com/google/uuid"
	clocktesting "k8s.io/utils/clock/testing"
)

var epoch = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func TestAdmissionGate(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(epoch)
	l := NewLedger(clk)

	if !l.TryBegin(TopicLock, DefaultStaleAfter, 0) {
		t.Fatal("gate closed on empty ledger")
	}
	l.Submit(TopicLock, "req-1", uuid.New())

	clk.SetTime(epoch.Add(2 * time.Minute))
	if l.TryBegin(TopicLock, DefaultStaleAfter, 0) {
		t.Error("gate open within stale window")
	}
	clk.SetTime(epoch.Add(DefaultStaleAfter))
	if l.TryBegin(TopicLock, DefaultStaleAfter, 0) {
		t.Error("gate open exactly at stale boundary")
	}
	if !l.TryBegin(TopicClimatisation, DefaultStaleAfter, 0) {
		t.Error("pending lock closed the climatisation gate")
	}

	clk.SetTime(epoch.Add(DefaultStaleAfter + time.Second))
	if !l.TryBegin(TopicLock, DefaultStaleAfter, 0) {
		t.Error("gate closed after stale window")
	}
	if r := l.Record(TopicLock); r.Pending() {
		t.Errorf("stale external id not cleared: %+v", r)
	}
}

func TestAdmissionGateUnknownTimestamp(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(time.Time{})
	l := NewLedger(clk)
	l.Submit(TopicRefresh, "pending", uuid.New())
	if r := l.Record(TopicRefresh); !r.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %s", r.Timestamp)
	}

	// An unknown start is assumed to be now minus the offset; -5m pushes it into the future.
	clk.SetTime(epoch)
	if l.TryBegin(TopicRefresh, DefaultStaleAfter, -5*time.Minute) {
		t.Error("gate open for pending record with unknown timestamp and negative offset")
	}
	if !l.TryBegin(TopicRefresh, DefaultStaleAfter, 4*time.Minute) {
		t.Error("gate closed for pending record assumed older than the stale window")
	}
}

func TestRecordResult(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(epoch)
	l := NewLedger(clk)

	if _, _, ok := l.Latest(); ok {
		t.Error("fresh ledger reported a latest topic")
	}
	if _, _, ok := l.Remaining(); ok {
		t.Error("fresh ledger reported a quota")
	}

	clk.SetTime(epoch.Add(time.Minute))
	r := l.RecordResult(TopicBatteryCharge, StatusSucceeded, "", 42)
	if r.Status != StatusSucceeded || !r.Timestamp.Equal(epoch.Add(time.Minute)) {
		t.Errorf("unexpected record %+v", r)
	}
	remaining, updated, ok := l.Remaining()
	if !ok || remaining != 42 || !updated.Equal(epoch.Add(time.Minute)) {
		t.Errorf("Remaining() = %d, %s, %v", remaining, updated, ok)
	}

	l.RecordResult(TopicClimatisation, StatusThrottled, "", NoQuota)
	if remaining, _, _ := l.Remaining(); remaining != 42 {
		t.Errorf("NoQuota overwrote quota: %d", remaining)
	}
	topic, status, ok := l.Latest()
	if !ok || topic != TopicClimatisation || status != StatusThrottled {
		t.Errorf("Latest() = %s, %s, %v", topic, status, ok)
	}
}

func TestSubmitKeepsCorrelationID(t *testing.T) {
	l := NewLedger(clocktesting.NewFakePassiveClock(epoch))
	id := uuid.New()
	l.Submit(TopicLock, "ext", id)
	if r, ok := l.InProgress(); !ok || r.ID != id || r.Topic != TopicLock {
		t.Errorf("InProgress() = %+v, %v", r, ok)
	}
	l.SetDetail(TopicLock, "successful")
	r := l.RecordResult(TopicLock, StatusSucceeded, "", NoQuota)
	if r.ID != id || r.Detail != "successful" {
		t.Errorf("result lost correlation data: %+v", r)
	}
	if _, ok := l.InProgress(); ok {
		t.Error("terminal record still in progress")
	}
}

func TestResults(t *testing.T) {
	l := NewLedger(clocktesting.NewFakePassiveClock(epoch))
	l.SetPollState("In Progress")
	l.RecordResult(TopicLock, StatusFailed, "", NoQuota)
	results := l.Results()
	expected := map[string]string{
		"latest":         "Lock",
		"state":          "In Progress",
		"departuretimer": "None",
		"batterycharge":  "None",
		"climatisation":  "None",
		"refresh":        "None",
		"lock":           "Failed",
		"preheater":      "None",
	}
	if len(results) != len(expected) {
		t.Fatalf("Results() = %v", results)
	}
	for k, v := range expected {
		if results[k] != v {
			t.Errorf("Results()[%q] = %q, expected %q", k, results[k], v)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"In Progress": StatusInProgress,
		"in_progress": StatusInProgress,
		"successful":  StatusSucceeded,
		"Throttled":   StatusThrottled,
		"Timeout":     StatusTimeout,
		"Exception":   StatusException,
		"fail":        StatusFailed,
		"":            StatusFailed,
	}
	for input, expected := range tests {
		if got := ParseStatus(input); got != expected {
			t.Errorf("ParseStatus(%q) = %s, expected %s", input, got, expected)
		}
	}
	for _, topic := range Topics {
		if parsed, ok := ParseTopic(topic.String()); !ok || parsed != topic {
			t.Errorf("ParseTopic(%q) = %v, %v", topic, parsed, ok)
		}
	}
}
