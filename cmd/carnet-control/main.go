package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/account"
	"github.com/carnet-go/carnet/pkg/cli"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Vehicle commands require a VIN and an OAuth token.
 * Account commands require an OAuth token.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information. Valid COMMANDs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	maxLength := 0
	var labels []string
	for command := range commands {
		labels = append(labels, command)
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	sort.Strings(labels)
	for _, command := range labels {
		info := commands[command]
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), info.help)
	}
}

func runCommand(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args []string, timeout time.Duration) int {
	if info, ok := commands[args[0]]; !ok || !info.longRunning {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := execute(ctx, acct, car, args); err != nil {
		switch {
		case protocol.MayHaveSucceeded(err):
			writeErr("Couldn't verify success: %s", err)
		case protocol.IsNominalError(err):
			writeErr("Rejected by the backend: %s", err)
		case errors.Is(err, protocol.ErrUnsupported):
			writeErr("Not supported by this vehicle: %s", err)
		case errors.Is(err, protocol.ErrInvalidArgument):
			writeErr("Invalid argument: %s", err)
		default:
			writeErr("Failed to execute command: %s", err)
		}
		return 1
	}
	return 0
}

func runInteractiveShell(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, timeout time.Duration) int {
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Printf("> "); scanner.Scan(); fmt.Printf("> ") {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		if args[0] == "help" {
			if len(args) > 1 {
				if info, ok := commands[args[1]]; ok {
					info.Usage(args[1])
					continue
				}
			}
			Usage()
			continue
		}
		runCommand(ctx, acct, car, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		debug          bool
		commandTimeout time.Duration
		connTimeout    time.Duration
	)
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		os.Exit(1)
	}
	flag.Usage = Usage
	flag.BoolVar(&debug, "debug", false, "Enable verbose debugging messages")
	flag.DurationVar(&commandTimeout, "command-timeout", 5*time.Minute, "Set timeout for commands, including action status polls.")
	flag.DurationVar(&connTimeout, "connect-timeout", 20*time.Second, "Set timeout for establishing initial connection.")

	config.RegisterCommandLineFlags()
	flag.Parse()
	if debug {
		config.Verbose = true
	}
	config.ReadFromEnvironment()
	if config.Verbose {
		log.SetLevel(log.LevelDebug)
	}

	args := flag.Args()
	if len(args) > 0 {
		if args[0] == "help" {
			if len(args) == 1 {
				Usage()
				status = 0
				return
			}
			info, ok := commands[args[1]]
			if !ok {
				writeErr("Unrecognized command: %s", args[1])
				return
			}
			info.Usage(args[1])
			status = 0
			return
		} else {
			if err := configureFlags(config, args[0]); err != nil {
				writeErr("Missing required flag: %s", err)
				return
			}
		}
	}

	if err := config.LoadCredentials(); err != nil {
		writeErr("Error loading credentials: %s", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	connCtx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()

	acct, car, err := config.Connect(connCtx)
	if err != nil {
		writeErr("Error: %s", err)
		return
	}

	if car != nil {
		defer config.UpdateCachedCapabilities(car)
	}

	if flag.NArg() > 0 {
		status = runCommand(ctx, acct, car, flag.Args(), commandTimeout)
	} else {
		status = runInteractiveShell(ctx, acct, car, commandTimeout)
	}
}
