// Package request records the lifecycle of control actions submitted to the backend.
//
// Each [Topic] owns one [Record] holding the status of its most recent action. The [Ledger] also
// tracks the backend's remaining request quota, the topic touched last and the raw state reported
// by the most recent status poll.
package request

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/carnet-go/carnet/internal/log"
)

// Topic is a category of control action.
type Topic int

const (
	TopicDepartureTimer Topic = iota
	TopicBatteryCharge
	TopicClimatisation
	TopicRefresh
	TopicLock
	TopicParkingHeater
)

// Topics lists every topic in reporting order.
var Topics = []Topic{
	TopicDepartureTimer,
	TopicBatteryCharge,
	TopicClimatisation,
	TopicRefresh,
	TopicLock,
	TopicParkingHeater,
}

var topicKeys = map[Topic]string{
	TopicDepartureTimer: "departuretimer",
	TopicBatteryCharge:  "batterycharge",
	TopicClimatisation:  "climatisation",
	TopicRefresh:        "refresh",
	TopicLock:           "lock",
	TopicParkingHeater:  "preheater",
}

var topicNames = map[Topic]string{
	TopicDepartureTimer: "Departure timer",
	TopicBatteryCharge:  "Charging",
	TopicClimatisation:  "Climatisation",
	TopicRefresh:        "Refresh",
	TopicLock:           "Lock",
	TopicParkingHeater:  "Parking heater",
}

// String returns the topic's stable key.
func (t Topic) String() string {
	if k, ok := topicKeys[t]; ok {
		return k
	}
	return "unknown"
}

// DisplayName returns a human-readable topic name.
func (t Topic) DisplayName() string {
	return topicNames[t]
}

// ParseTopic is the inverse of Topic.String.
func ParseTopic(s string) (Topic, bool) {
	for t, k := range topicKeys {
		if k == s {
			return t, true
		}
	}
	return 0, false
}

const (
	// DefaultStaleAfter is how long a pending record blocks new submissions on its topic.
	DefaultStaleAfter = 3 * time.Minute
	// NoQuota marks a response without rate limit information.
	NoQuota = -1
)

// Record is the latest action outcome of one topic.
type Record struct {
	Topic     Topic
	Status    Status
	Timestamp time.Time
	// ExternalID is the backend's identifier for a pending action. It is empty once the action
	// reaches a terminal status.
	ExternalID string
	// ID correlates log lines and metrics for one submission.
	ID uuid.UUID
	// Detail holds the backend's raw status string, if any.
	Detail string
}

// Pending reports whether the record refers to an action still awaiting a terminal status.
func (r Record) Pending() bool {
	return r.ExternalID != ""
}

// Ledger is safe for concurrent use, but TryBegin does not reserve the topic: two callers may both
// pass the gate before either records a pending submission.
type Ledger struct {
	mu               sync.Mutex
	clock            clock.PassiveClock
	records          map[Topic]Record
	remaining        int
	remainingUpdated time.Time
	latest           Topic
	hasLatest        bool
	pollState        string
}

func NewLedger(clk clock.PassiveClock) *Ledger {
	if clk == nil {
		clk = clock.RealClock{}
	}
	l := &Ledger{
		clock:     clk,
		records:   make(map[Topic]Record, len(Topics)),
		remaining: NoQuota,
	}
	now := clk.Now()
	for _, t := range Topics {
		l.records[t] = Record{Topic: t, Status: StatusEmpty, Timestamp: now}
	}
	return l
}

// TryBegin reports whether a new action may be submitted on topic. It returns false if the topic
// has a pending record younger than staleAfter. A pending record with no timestamp is treated as
// created unknownOffset before now, so a negative offset holds the gate closed for longer. Submit
// and RecordResult stamp records with the ledger clock, so a missing timestamp means that clock
// reported the zero time.
//
// A stale pending record has its external id cleared.
func (l *Ledger) TryBegin(topic Topic, staleAfter, unknownOffset time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[topic]
	if !ok || !r.Pending() {
		return true
	}
	now := l.clock.Now()
	started := r.Timestamp
	if started.IsZero() {
		started = now.Add(-unknownOffset)
	}
	if started.Add(staleAfter).Before(now) {
		log.Debug("Clearing stale %s request %s", topic, r.ExternalID)
		r.ExternalID = ""
		l.records[topic] = r
		return true
	}
	log.Info("Action (%s) already in progress", topic)
	return false
}

// Submit records a pending action on topic and marks the topic as latest.
func (l *Ledger) Submit(topic Topic, externalID string, id uuid.UUID) Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := Record{
		Topic:      topic,
		Status:     StatusInProgress,
		Timestamp:  l.clock.Now(),
		ExternalID: externalID,
		ID:         id,
	}
	l.records[topic] = r
	l.latest, l.hasLatest = topic, true
	return r
}

// MarkLatest records topic as the most recently touched topic without changing its record.
func (l *Ledger) MarkLatest(topic Topic) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest, l.hasLatest = topic, true
}

// RecordResult overwrites the record of topic. Passing NoQuota as remaining leaves the shared
// quota counter unchanged.
func (l *Ledger) RecordResult(topic Topic, status Status, externalID string, remaining int) Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	previous := l.records[topic]
	r := Record{
		Topic:      topic,
		Status:     status,
		Timestamp:  now,
		ExternalID: externalID,
		ID:         previous.ID,
		Detail:     previous.Detail,
	}
	l.records[topic] = r
	l.latest, l.hasLatest = topic, true
	if remaining != NoQuota {
		l.remaining = remaining
		l.remainingUpdated = now
	}
	return r
}

// SetDetail stores the backend's raw status string on the record of topic.
func (l *Ledger) SetDetail(topic Topic, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.records[topic]
	r.Detail = detail
	l.records[topic] = r
}

// UpdateQuota sets the remaining request quota unless remaining is NoQuota.
func (l *Ledger) UpdateQuota(remaining int) {
	if remaining == NoQuota {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining = remaining
	l.remainingUpdated = l.clock.Now()
}

func (l *Ledger) Record(topic Topic) Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[topic]
}

// Latest returns the most recently touched topic and its status. It returns false if no action
// has been recorded.
func (l *Ledger) Latest() (Topic, Status, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hasLatest {
		return 0, StatusEmpty, false
	}
	return l.latest, l.records[l.latest].Status, true
}

// Remaining returns the last reported request quota and when it was reported.
func (l *Ledger) Remaining() (int, time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining, l.remainingUpdated, l.remaining != NoQuota
}

// InProgress returns the first pending record in topic order.
func (l *Ledger) InProgress() (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range Topics {
		if r := l.records[t]; r.Pending() {
			return r, true
		}
	}
	return Record{}, false
}

func (l *Ledger) SetPollState(state string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pollState = state
}

func (l *Ledger) PollState() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pollState
}

// Results summarizes the ledger: the latest topic, the poll state and the status of every topic.
func (l *Ledger) Results() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	results := map[string]string{"state": l.pollState, "latest": ""}
	if l.hasLatest {
		results["latest"] = l.latest.DisplayName()
	}
	for _, t := range Topics {
		results[t.String()] = l.records[t].Status.String()
	}
	return results
}
