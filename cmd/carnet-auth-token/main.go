// Utility for storing OAuth tokens in the system keyring

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carnet-go/carnet/pkg/account"
	"github.com/carnet-go/carnet/pkg/cli"
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "usage: %s [-token-name token_name] [-delete] [file]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Reads an OAuth token from stdin or file and saves it under token_name in the system")
	fmt.Fprintf(w, "keyring. The token_name defaults to $%s.\n", cli.EnvCarnetTokenName)
	fmt.Fprintln(w, "")
	flag.PrintDefaults()
}

// readToken returns the trimmed token and checks that it parses as an account token.
func readToken(r io.Reader) (string, *account.Account, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	token := strings.TrimSpace(string(raw))
	acct, err := account.New(token, "")
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

func main() {
	returnCode := 1
	defer func() {
		os.Exit(returnCode)
	}()

	config, err := cli.NewConfig(cli.FlagOAuth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		return
	}

	var remove bool
	flag.StringVar(&config.KeyringTokenName, "token-name", "", "Name to use for keyring entry")
	flag.BoolVar(&remove, "delete", false, "Delete the keyring entry instead of saving a token")
	flag.Usage = usage
	flag.Parse()
	config.ReadFromEnvironment()

	if config.KeyringTokenName == "" {
		fmt.Fprintf(os.Stderr, "Must provide system keyring name to save OAuth token under using -token-name or $%s\n", cli.EnvCarnetTokenName)
		return
	}

	if remove {
		if err := config.DeleteToken(); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting token from keyring: %s\n", err)
			return
		}
		returnCode = 0
		return
	}

	var in io.Reader = os.Stdin
	switch flag.NArg() {
	case 0:
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading token from file: %s\n", err)
			return
		}
		defer f.Close()
		in = f
	default:
		fmt.Fprintln(os.Stderr, "Too many command-line arguments")
		return
	}

	token, acct, err := readToken(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading token: %s\n", err)
		return
	}
	if acct.Expired() {
		fmt.Fprintf(os.Stderr, "Warning: token expired at %s\n", acct.Expiry.Format(time.RFC3339))
	}

	if err := config.SaveTokenToKeyring(token); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving token to keyring: %s\n", err)
		return
	}
	fmt.Printf("Saved token for %s\n", acct.Subject)

	returnCode = 0
}
