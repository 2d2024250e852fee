package cli_test

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"

	"github.com/carnet-go/carnet/pkg/cache"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/cli"
)

const testVIN = "WVWZZZE1ZPP000001"

func writeToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(filename, []byte(token+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv(cli.EnvCarnetVIN, "ENVVIN")
	t.Setenv(cli.EnvCarnetHost, "env.example.com")
	t.Setenv(cli.EnvCarnetCacheFile, "/tmp/env-cache.json")

	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse([]string{"-vin", testVIN, "-poll-interval", "2s"}); err != nil {
		t.Fatal(err)
	}
	config.ReadFromEnvironment()

	if config.VIN != testVIN {
		t.Errorf("VIN = %q", config.VIN)
	}
	if config.Host != "env.example.com" || config.CacheFilename != "/tmp/env-cache.json" {
		t.Errorf("environment not read: %+v", config)
	}
	if config.PollInterval != 2*time.Second {
		t.Errorf("poll interval = %s", config.PollInterval)
	}
}

func TestFlagMask(t *testing.T) {
	config, err := cli.NewConfig(cli.FlagOAuth)
	if err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	config.RegisterFlags(fs)
	if fs.Lookup("vin") != nil || fs.Lookup("cache-file") != nil {
		t.Error("masked flags registered")
	}
	if fs.Lookup("token-file") == nil || fs.Lookup("host") == nil {
		t.Error("OAuth flags not registered")
	}
}

func TestNoToken(t *testing.T) {
	config, err := cli.NewConfig(cli.FlagOAuth)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := config.Connect(context.Background()); !errors.Is(err, cli.ErrNoTokenSpecified) {
		t.Errorf("err = %v", err)
	}
}

func TestConnectRestoresCache(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "cache.json")
	c := cache.New(0)
	c.Update(testVIN, capability.Snapshot{
		DiscoveredAt: time.Now(),
		Entries:      map[capability.Service]capability.Entry{capability.ServiceAccess: {Active: true}},
	})
	if err := c.ExportToFile(cacheFile); err != nil {
		t.Fatal(err)
	}

	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		t.Fatal(err)
	}
	config.VIN = testVIN
	config.TokenFilename = writeToken(t)
	config.CacheFilename = cacheFile
	config.Host = "bff.example.com"

	acct, car, err := config.Connect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if acct.Host != "bff.example.com" || acct.Subject != "user" {
		t.Errorf("account = %+v", acct)
	}
	if car == nil || !car.Discovered() || !car.Capabilities().IsActive(capability.ServiceAccess) {
		t.Fatal("cached capabilities not restored")
	}

	config.UpdateCachedCapabilities(car)
	reloaded, err := cache.ImportFromFile(cacheFile)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Get(testVIN); !ok {
		t.Error("cache not written back")
	}
}

func TestKeyringToken(t *testing.T) {
	t.Setenv(cli.EnvCarnetKeyringPass, "hunter2")
	config, err := cli.NewConfig(cli.FlagOAuth)
	if err != nil {
		t.Fatal(err)
	}
	config.KeyringTokenName = "me"
	if err := config.BackendType.Set(string(keyring.FileBackend)); err != nil {
		t.Fatal(err)
	}
	config.Backend.FileDir = t.TempDir()
	config.ReadFromEnvironment()

	if err := config.SaveToken("secret-token"); err != nil {
		t.Fatal(err)
	}
	token, err := config.LoadTokenFromKeyring()
	if err != nil || token != "secret-token" {
		t.Fatalf("token = %q, %v", token, err)
	}
	if err := config.DeleteToken(); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadTokenFromKeyring(); err == nil {
		t.Error("token still present after delete")
	}
}

func TestInvalidKeyringType(t *testing.T) {
	config, err := cli.NewConfig(cli.FlagOAuth)
	if err != nil {
		t.Fatal(err)
	}
	if err := config.BackendType.Set("floppy-disk"); err == nil {
		t.Error("accepted unknown keyring type")
	}
}
