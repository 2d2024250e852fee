package proxy_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/carnet-go/carnet/pkg/connector/inet"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/proxy"
)

func TestExtractCommandAction(t *testing.T) {
	params := proxy.RequestParameters{
		"action":      "start",
		"value":       16.0,
		"spin":        "1234",
		"temperature": 21.5,
		"on":          true,
	}

	tests := []struct {
		command  string
		params   proxy.RequestParameters
		expected error
	}{
		{"charge_start", nil, nil},
		{"set_charger", params, nil},
		{"set_charger", nil, protocol.ErrInvalidArgument},
		{"set_charger_current", params, nil},
		{"set_charger_current", proxy.RequestParameters{"value": "16"}, protocol.ErrInvalidArgument},
		{"set_charging_settings", proxy.RequestParameters{"value": "reduced"}, nil},
		{"set_climatisation_temp", params, nil},
		{"set_battery_climatisation", params, nil},
		{"set_battery_climatisation", proxy.RequestParameters{"on": "yes"}, protocol.ErrInvalidArgument},
		{"set_window_heating", params, nil},
		{"door_lock", params, nil},
		{"door_unlock", nil, protocol.ErrInvalidArgument},
		{"set_lock", proxy.RequestParameters{"action": "lock"}, protocol.ErrInvalidArgument},
		{"set_parking_heater", params, nil},
		{"wake_up", nil, nil},
		{"set_schedule", params, proxy.ErrCommandNotImplemented},
	}

	for _, test := range tests {
		action, err := proxy.ExtractCommandAction(context.Background(), test.command, test.params)
		if !errors.Is(err, test.expected) {
			t.Errorf("%s: err = %v, want %v", test.command, err, test.expected)
			continue
		}
		if test.expected == nil && action == nil {
			t.Errorf("%s: no action returned", test.command)
		}
		if test.expected != nil && action != nil {
			t.Errorf("%s: expected error %v but got an action", test.command, test.expected)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := proxy.ExtractCommandAction(context.Background(), "remote_boombox", nil)
	var httpErr *inet.HttpError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Errorf("err = %v", err)
	}
}
