/*
Package cli facilitates building command-line applications that monitor and control vehicles. It
defines a [Config] type that can be used to register common command-line flags (using the Golang
flag package) and environment variable equivalents.

The package uses [keyring]'s platform-agnostic interface for storing OAuth tokens in an
OS-dependent credential store.

# Examples

	import flag

	config, err := NewConfig(FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for the VIN, OAuth, etc.
	flag.Parse()
	config.ReadFromEnvironment()      // Fills in missing fields using environment variables
	config.LoadCredentials()          // Prompt for Keyring password if needed

	// Initializes acct, and car if a VIN was provided. Cached capabilities are restored so that the
	// first update skips discovery.
	acct, car, err := config.Connect(ctx)
	if err != nil {
		panic(err)
	}
	defer config.UpdateCachedCapabilities(car)

Alternatively, you can use a [Flag] mask to control what [Config] fields are populated. Note that in
the examples below, config.Flags must be set before calling [flag.Parse] or
[Config.ReadFromEnvironment]:

	config, err = NewConfig(FlagOAuth) // config.Connect() returns an account but no vehicle.
	config, err = NewConfig(FlagOAuth | FlagVIN) // config.Connect() does not use a capability cache.
*/
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/account"
	"github.com/carnet-go/carnet/pkg/cache"
	"github.com/carnet-go/carnet/pkg/vehicle"

	"github.com/99designs/keyring"
)

// Environment variable names used are used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvCarnetTokenName    = "CARNET_TOKEN_NAME"
	EnvCarnetTokenFile    = "CARNET_TOKEN_FILE"
	EnvCarnetVIN          = "CARNET_VIN"
	EnvCarnetCacheFile    = "CARNET_CACHE_FILE"
	EnvCarnetHost         = "CARNET_HOST"
	EnvCarnetVerbose      = "CARNET_VERBOSE"
	EnvCarnetKeyringType  = "CARNET_KEYRING_TYPE"
	EnvCarnetKeyringPass  = "CARNET_KEYRING_PASSWORD"
	EnvCarnetKeyringPath  = "CARNET_KEYRING_PATH"
	EnvCarnetKeyringDebug = "CARNET_KEYRING_DEBUG"
)

// Flag controls what options should be scanned from the command line and/or environment variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagVIN   Flag = 1 // Enable VIN option.
	FlagOAuth Flag = 2 // Enable OAuth and backend host options.
	FlagCache Flag = 4 // Enable capability cache option.
	FlagAll   Flag = FlagVIN | FlagOAuth | FlagCache
)

var (
	ErrNoTokenSpecified = errors.New("OAuth token location not provided")
	ErrKeyNotFound      = keyring.ErrKeyNotFound
)

// Config fields determine how a client authenticates to the backend and which vehicle it models.
type Config struct {
	Flags            Flag   // Controls which set of environment variables/CLI flags to use.
	KeyringTokenName string // Username for OAuth token in system keyring
	VIN              string
	TokenFilename    string
	CacheFilename    string
	Host             string        // Backend host. Defaults to account.DefaultHost.
	PollInterval     time.Duration // Separation of action status polls.
	Verbose          bool
	Backend          keyring.Config
	BackendType      backendType
	Debug            bool // Enable keyring debug messages

	password     *string
	capabilities *cache.CapabilityCache
	acct         *account.Account
	oauthToken   string
}

func NewConfig(flags Flag) (*Config, error) {
	c := Config{
		Flags: flags,
		Backend: keyring.Config{
			ServiceName:              keyringServiceName,
			KeychainTrustApplication: true,
			KeyCtlScope:              "user",
		},
	}
	c.BackendType = backendType{&c}
	c.Backend.KeychainPasswordFunc = c.getPassword
	c.Backend.FilePasswordFunc = c.getPassword

	return &c, nil
}

// RegisterCommandLineFlags adds c's options to the default flag set.
func (c *Config) RegisterCommandLineFlags() {
	c.RegisterFlags(flag.CommandLine)
}

func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	if c.Flags.isSet(FlagVIN) {
		fs.StringVar(&c.VIN, "vin", "", "Vehicle Identification Number. Defaults to $CARNET_VIN.")
		fs.DurationVar(&c.PollInterval, "poll-interval", vehicle.DefaultPollInterval, "Wait `duration` between action status polls")
	}
	if c.Flags.isSet(FlagCache) {
		if !c.Flags.isSet(FlagVIN) {
			log.Debug("FlagCache is set but FlagVIN is not. Capabilities are cached per VIN.")
		}
		fs.StringVar(&c.CacheFilename, "cache-file", "", "Load capability cache from `file`. Defaults to $CARNET_CACHE_FILE.")
	}
	if c.Flags.isSet(FlagOAuth) {
		fs.StringVar(&c.KeyringTokenName, "token-name", "", "System keyring `name` for OAuth token. Defaults to $CARNET_TOKEN_NAME.")
		fs.StringVar(&c.TokenFilename, "token-file", "", "`File` containing OAuth token. Defaults to $CARNET_TOKEN_FILE.")
		fs.StringVar(&c.Host, "host", "", "Backend `hostname`. Defaults to $CARNET_HOST or "+account.DefaultHost+".")

		var names []string
		for _, name := range keyring.AvailableBackends() {
			names = append(names, string(name))
		}
		sort.Strings(names)
		fs.Var(&c.BackendType, "keyring-type", "Keyring `type` ("+strings.Join(names, "|")+"). Defaults to $CARNET_KEYRING_TYPE.")
		fs.StringVar(&c.Backend.FileDir, "keyring-file-dir", keyringDirectory, "keyring `directory` for file-backed keyring types")
		fs.BoolVar(&c.Debug, "keyring-debug", false, "Enable keyring debug logging")
	}
}

// LoadCredentials attempts to open a keyring, prompting for a password if not needed. Call this
// method before [Config.Connect] to prevent interactive prompts from counting against timeouts.
func (c *Config) LoadCredentials() error {
	if c.Flags.isSet(FlagOAuth) {
		if _, err := c.token(); err != nil {
			return err
		}
	}
	return nil
}

// ReadFromEnvironment populates c using environment variables. Values that are already populated
// are not overwritten.
//
// Calling ReadFromEnvironment after flag.Parse() (or other initialization method) will prevent the
// environment from overriding explicit command-line parameters and avoid potentially misleading
// debug log messages.
func (c *Config) ReadFromEnvironment() {
	if !c.Verbose {
		_, c.Verbose = os.LookupEnv(EnvCarnetVerbose)
	}
	if c.Verbose {
		log.SetLevel(log.LevelDebug)
	}
	if c.Flags.isSet(FlagVIN) {
		if c.VIN == "" {
			c.VIN = os.Getenv(EnvCarnetVIN)
			log.Debug("Set VIN to '%s'", c.VIN)
		}
	}
	if c.Flags.isSet(FlagCache) {
		if c.CacheFilename == "" {
			c.CacheFilename = os.Getenv(EnvCarnetCacheFile)
			log.Debug("Set capability cache file to '%s'", c.CacheFilename)
		}
	}
	if c.Flags.isSet(FlagOAuth) {
		if c.KeyringTokenName == "" && c.TokenFilename == "" {
			c.KeyringTokenName = os.Getenv(EnvCarnetTokenName)
			log.Debug("Set OAuth token name to '%s'", c.KeyringTokenName)

			c.TokenFilename = os.Getenv(EnvCarnetTokenFile)
			log.Debug("Set OAuth token file to '%s'", c.TokenFilename)
		}
		if c.Host == "" {
			c.Host = os.Getenv(EnvCarnetHost)
			log.Debug("Set backend host to '%s'", c.Host)
		}
		if c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(os.Getenv(EnvCarnetKeyringType)); err == nil {
				log.Debug("Set keyring type to '%s'", c.BackendType)
			}
		}
		if c.password == nil {
			password := os.Getenv(EnvCarnetKeyringPass)
			c.password = &password
			if len(password) > 0 {
				log.Debug("Set keyring File Password to %s", strings.Repeat("*", len("hunter2")))
			}
		}
		if c.Backend.FileDir == "" {
			c.Backend.FileDir = os.Getenv(EnvCarnetKeyringPath)
			log.Debug("Set keyring File Path to '%s'", c.Backend.FileDir)
		}
		if !c.Debug {
			_, c.Debug = os.LookupEnv(EnvCarnetKeyringDebug)
			log.Debug("Set keyring Debug Logging to '%v'", c.Debug)
		}
	}
}

// UpdateCachedCapabilities writes the capabilities discovered for v to c.CacheFilename.
//
// If c.CacheFilename is not set or v was never discovered, then this method does nothing.
func (c *Config) UpdateCachedCapabilities(v *vehicle.Vehicle) {
	if v == nil || c.CacheFilename == "" || c.capabilities == nil || !v.Discovered() {
		return
	}
	if err := v.UpdateCachedCapabilities(c.capabilities); err != nil {
		log.Error("Error updating cache: %s", err)
		return
	}
	if err := c.capabilities.ExportToFile(c.CacheFilename); err != nil {
		log.Error("Error updating cache: %s", err)
	}
}

// Connect logs in to the configured account and, if c includes a VIN, models the corresponding
// vehicle. Vehicle options are appended after the ones derived from c.
func (c *Config) Connect(ctx context.Context, options ...vehicle.Option) (acct *account.Account, car *vehicle.Vehicle, err error) {
	if c.acct == nil {
		if c.acct, err = c.Account(); err != nil {
			return nil, nil, err
		}
	}
	acct = c.acct

	if !c.Flags.isSet(FlagVIN) || c.VIN == "" {
		return acct, nil, nil
	}
	if err := c.loadCache(); err != nil {
		return nil, nil, err
	}

	var opts []vehicle.Option
	if c.PollInterval > 0 {
		opts = append(opts, vehicle.WithPollInterval(c.PollInterval))
	}
	if c.capabilities != nil {
		if snap, ok := c.capabilities.Get(c.VIN); ok {
			log.Debug("Restoring cached capabilities of %s", c.VIN)
			opts = append(opts, vehicle.WithCapabilities(snap))
		}
	}
	car = vehicle.NewVehicle(c.VIN, acct, append(opts, options...)...)
	return acct, car, nil
}

func (c *Config) loadCache() error {
	if c.CacheFilename == "" || c.capabilities != nil {
		return nil
	}
	log.Debug("Loading cache from %s...", c.CacheFilename)
	var err error
	c.capabilities, err = cache.ImportFromFile(c.CacheFilename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load capability cache: %s", err)
		}
		// Create a new cache if one couldn't be loaded from the file
		c.capabilities = cache.New(0)
	}
	return nil
}

func (c *Config) token() (string, error) {
	if c.oauthToken != "" {
		return c.oauthToken, nil
	}
	if c.TokenFilename == "" && c.KeyringTokenName == "" {
		return "", ErrNoTokenSpecified
	}
	var err error
	if c.TokenFilename != "" {
		token, err := os.ReadFile(c.TokenFilename)
		if err == nil {
			c.oauthToken = strings.TrimSpace(string(token))
			return c.oauthToken, nil
		}
		if !errors.Is(err, os.ErrNotExist) || c.KeyringTokenName == "" {
			return "", err
		}
		// If the token file doesn't exist, fall through to trying to load from the system keyring.
	}
	c.oauthToken, err = c.LoadTokenFromKeyring()
	return c.oauthToken, err
}

// Account logs into and returns the configured account.
func (c *Config) Account() (*account.Account, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	acct, err := account.New(token, "")
	if err != nil {
		return nil, err
	}
	if c.Host != "" {
		acct.Host = c.Host
	}
	if acct.Expired() {
		log.Warning("OAuth token expired at %s", acct.Expiry.Format(time.RFC3339))
	}
	return acct, nil
}

// SaveToken writes token to the system keyring or file, depending on what options are
// configured. The method prefers the keyring if both options are available.
func (c *Config) SaveToken(token string) error {
	if c.KeyringTokenName != "" {
		return c.SaveTokenToKeyring(token)
	}
	if c.TokenFilename != "" {
		return os.WriteFile(c.TokenFilename, []byte(token), 0600)
	}
	return ErrNoTokenSpecified
}

// CapabilityCache returns the cache loaded from c.CacheFilename. An empty cache is returned if the
// file does not exist or no file is configured.
func (c *Config) CapabilityCache() (*cache.CapabilityCache, error) {
	if err := c.loadCache(); err != nil {
		return nil, err
	}
	if c.capabilities == nil {
		c.capabilities = cache.New(0)
	}
	return c.capabilities, nil
}

// SaveCapabilityCache writes the cache returned by [Config.CapabilityCache] to c.CacheFilename.
func (c *Config) SaveCapabilityCache() error {
	if c.CacheFilename == "" || c.capabilities == nil {
		return nil
	}
	return c.capabilities.ExportToFile(c.CacheFilename)
}
