package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/carnet-go/carnet/pkg/account"
	"github.com/carnet-go/carnet/pkg/cli"
	"github.com/carnet-go/carnet/pkg/request"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

var (
	ErrCommandLineArgs     = errors.New("invalid command line arguments")
	ErrInvalidTemperature  = errors.New("invalid temperature")
	ErrRequestInProgress   = errors.New("another request is in progress")
	ErrActionNotSuccessful = errors.New("action did not succeed")
)

const defaultMonitorInterval = 5 * time.Minute

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error

type Command struct {
	help          string
	requiresVIN   bool // True if command targets a vehicle rather than the account
	requiresState bool // True if the vehicle must be updated before the handler runs
	longRunning   bool // True if the command timeout does not apply
	args          []Argument
	optional      []Argument
	handler       Handler
}

// ParseTemperature parses a temperature such as 21.5, 22C or 72F and returns degrees Celsius.
func ParseTemperature(s string) (float64, error) {
	s = strings.TrimSpace(s)
	unit := "C"
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'c', 'C':
			s = s[:n-1]
		case 'f', 'F':
			unit = "F"
			s = s[:n-1]
		}
	}
	degrees, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: format as 22C or 72F", ErrInvalidTemperature)
	}
	if unit == "F" {
		degrees = (degrees - 32.0) * 5.0 / 9.0
	}
	return degrees, nil
}

// ParseOnOff parses on/off style switches.
func ParseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off", ErrCommandLineArgs)
}

// configureFlags verifies that c contains all the information required to execute a command.
func configureFlags(c *cli.Config, commandName string) error {
	info, ok := commands[commandName]
	if !ok {
		return ErrUnknownCommand
	}
	c.Flags = cli.FlagOAuth
	if info.requiresVIN {
		c.Flags |= cli.FlagVIN | cli.FlagCache
	}

	haveOAuth := !(c.KeyringTokenName == "" && c.TokenFilename == "")
	haveVIN := c.VIN != ""
	_, err := checkReadiness(commandName, haveOAuth, haveVIN)
	return err
}

var (
	ErrRequiresOAuth  = errors.New("command requires an OAuth token")
	ErrRequiresVIN    = errors.New("command requires a VIN")
	ErrUnknownCommand = errors.New("unrecognized command")
)

func checkReadiness(commandName string, haveOAuth, haveVIN bool) (*Command, error) {
	info, ok := commands[commandName]
	if !ok {
		return nil, ErrUnknownCommand
	}
	if !haveOAuth {
		return nil, ErrRequiresOAuth
	}
	if info.requiresVIN && !haveVIN {
		return nil, ErrRequiresVIN
	}
	return info, nil
}

func execute(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, err := checkReadiness(args[0], acct != nil, car != nil)
	if err != nil {
		return err
	}

	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args)-1, len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		if info.requiresState {
			if err := car.Update(ctx); err != nil {
				if !car.Discovered() {
					return err
				}
				writeErr("Partial update: %s", err)
			}
		}
		err = info.handler(ctx, acct, car, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

// report prints the outcome of a control action and converts unsuccessful outcomes to errors.
func report(status request.Status, err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("Status: %s\n", status)
	switch status {
	case request.StatusSucceeded:
		return nil
	case request.StatusInProgress:
		return ErrRequestInProgress
	}
	return fmt.Errorf("%w: %s", ErrActionNotSuccessful, status)
}

func printReadings(car *vehicle.Vehicle) {
	for _, r := range car.Readings() {
		value := fmt.Sprintf("%v", r.Value)
		if r.Unit != "" {
			value += " " + r.Unit
		}
		if r.LastUpdated.IsZero() {
			fmt.Printf("%-40s %s\n", r.Name, value)
		} else {
			fmt.Printf("%-40s %-24s %s\n", r.Name, value, r.LastUpdated.Local().Format(time.DateTime))
		}
	}
}

func printResults(results map[string]string) {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-24s %s\n", k, results[k])
	}
}

var commands = map[string]*Command{
	"vehicles": &Command{
		help: "List the VINs enrolled in the account",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			vins, err := acct.Vehicles(ctx)
			if err != nil {
				return err
			}
			for _, vin := range vins {
				fmt.Println(vin)
			}
			return nil
		},
	},
	"discover": &Command{
		help:        "Fetch the vehicle's capability listing",
		requiresVIN: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			if err := car.Discover(ctx); err != nil {
				return err
			}
			caps := car.Capabilities()
			for _, service := range caps.Services() {
				entry, _ := caps.Entry(service)
				fmt.Printf("%-28s active=%-5v expires=%s\n", service, entry.Active, caps.Expiration(service, time.Now()).Format(time.DateOnly))
			}
			return nil
		},
	},
	"status": &Command{
		help:          "Update the vehicle and print every supported attribute",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			printReadings(car)
			return nil
		},
	},
	"get": &Command{
		help:          "Update the vehicle and print the state document value at PATH",
		requiresVIN:   true,
		requiresState: true,
		args: []Argument{
			Argument{name: "PATH", help: "Dot separated path, e.g. charging.batteryStatus.value.currentSOC_pct"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			value, err := car.Get(args["PATH"])
			if err != nil {
				return err
			}
			out, err := protojson.MarshalOptions{Multiline: true}.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	},
	"charging-start": &Command{
		help:          "Start charging",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.ChargeStart(ctx))
		},
	},
	"charging-stop": &Command{
		help:          "Stop charging",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.ChargeStop(ctx))
		},
	},
	"charging-set-amps": &Command{
		help:          "Set maximum AC charge current to AMPS",
		requiresVIN:   true,
		requiresState: true,
		args: []Argument{
			Argument{name: "AMPS", help: "Charging current"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			amps, err := strconv.Atoi(args["AMPS"])
			if err != nil {
				return fmt.Errorf("%w: error parsing AMPS", ErrCommandLineArgs)
			}
			return report(car.SetChargerCurrent(ctx, amps))
		},
	},
	"charging-set-mode": &Command{
		help:          "Select reduced or maximum AC charge current",
		requiresVIN:   true,
		requiresState: true,
		args: []Argument{
			Argument{name: "MODE", help: "One of: reduced, maximum"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.SetChargingSettings(ctx, strings.ToLower(args["MODE"])))
		},
	},
	"climate-on": &Command{
		help:          "Turn on climate control",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.ClimateOn(ctx))
		},
	},
	"climate-off": &Command{
		help:          "Turn off climate control",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.ClimateOff(ctx))
		},
	},
	"climate-set-temp": &Command{
		help:          "Set climatisation target temperature",
		requiresVIN:   true,
		requiresState: true,
		args: []Argument{
			Argument{name: "TEMP", help: "Desired temperature (e.g., 70f or 21c; defaults to Celsius)"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			celsius, err := ParseTemperature(args["TEMP"])
			if err != nil {
				return err
			}
			return report(car.SetClimatisationTemp(ctx, celsius))
		},
	},
	"climate-battery": &Command{
		help:          "Allow or forbid climatisation without external power",
		requiresVIN:   true,
		requiresState: true,
		args: []Argument{
			Argument{name: "STATE", help: "on or off"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			on, err := ParseOnOff(args["STATE"])
			if err != nil {
				return err
			}
			return report(car.SetBatteryClimatisation(ctx, on))
		},
	},
	"window-heater-on": &Command{
		help:          "Turn on window heating",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.SetWindowHeating(ctx, vehicle.ActionStart))
		},
	},
	"window-heater-off": &Command{
		help:          "Turn off window heating",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.SetWindowHeating(ctx, vehicle.ActionStop))
		},
	},
	"lock": &Command{
		help:          "Lock vehicle",
		requiresVIN:   true,
		requiresState: true,
		args: []Argument{
			Argument{name: "SPIN", help: "Four-digit security PIN"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.Lock(ctx, args["SPIN"]))
		},
	},
	"unlock": &Command{
		help:          "Unlock vehicle",
		requiresVIN:   true,
		requiresState: true,
		args: []Argument{
			Argument{name: "SPIN", help: "Four-digit security PIN"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.Unlock(ctx, args["SPIN"]))
		},
	},
	"wake": &Command{
		help:          "Ask the vehicle to upload fresh data",
		requiresVIN:   true,
		requiresState: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return report(car.Wake(ctx))
		},
	},
	"requests": &Command{
		help:        "Print the status of recent control actions",
		requiresVIN: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			printResults(car.RequestResults())
			return nil
		},
	},
	"monitor": &Command{
		help:        "Update the vehicle every INTERVAL and print its attributes until interrupted",
		requiresVIN: true,
		longRunning: true,
		optional: []Argument{
			Argument{name: "INTERVAL", help: "Update interval (e.g., 30s or 5m)"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			interval := defaultMonitorInterval
			if s, ok := args["INTERVAL"]; ok {
				var err error
				if interval, err = time.ParseDuration(s); err != nil || interval <= 0 {
					return fmt.Errorf("%w: invalid INTERVAL", ErrCommandLineArgs)
				}
			}
			err := car.Run(ctx, interval, func(err error) {
				if err != nil {
					writeErr("Update failed: %s", err)
				}
				fmt.Printf("--- %s\n", time.Now().Format(time.DateTime))
				printReadings(car)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	},
}
