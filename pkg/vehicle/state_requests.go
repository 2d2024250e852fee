package vehicle

import (
	"time"

	"github.com/carnet-go/carnet/pkg/request"
)

// ActionStatus returns the status of the latest action on topic.
func (v *Vehicle) ActionStatus(topic request.Topic) request.Status {
	return v.requests.Record(topic).Status
}

func (v *Vehicle) ActionStatusLastUpdated(topic request.Topic) time.Time {
	return v.requests.Record(topic).Timestamp
}

// RequestInProgress reports whether any action still awaits a terminal status.
func (v *Vehicle) RequestInProgress() bool {
	_, ok := v.requests.InProgress()
	return ok
}

// RequestResults summarizes the ledger. See request.Ledger.Results.
func (v *Vehicle) RequestResults() map[string]string {
	return v.requests.Results()
}

// RequestsRemaining returns the backend's last reported request quota.
func (v *Vehicle) RequestsRemaining() (int, error) {
	n, _, ok := v.requests.Remaining()
	if !ok {
		return 0, notFound("requests remaining")
	}
	return n, nil
}

func (v *Vehicle) IsRequestsRemainingSupported() bool {
	_, _, ok := v.requests.Remaining()
	return ok
}

func (v *Vehicle) RequestsRemainingLastUpdated() (time.Time, error) {
	_, at, ok := v.requests.Remaining()
	if !ok {
		return time.Time{}, notFound("requests remaining")
	}
	return at, nil
}
