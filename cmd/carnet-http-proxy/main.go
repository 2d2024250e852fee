package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/cli"
	"github.com/carnet-go/carnet/pkg/metrics"
	"github.com/carnet-go/carnet/pkg/proxy"
)

const defaultPort = 8443

const (
	EnvTlsCert = "CARNET_HTTP_PROXY_TLS_CERT"
	EnvTlsKey  = "CARNET_HTTP_PROXY_TLS_KEY"
	EnvHost    = "CARNET_HTTP_PROXY_HOST"
	EnvPort    = "CARNET_HTTP_PROXY_PORT"
	EnvTimeout = "CARNET_HTTP_PROXY_TIMEOUT"
	EnvVerbose = "CARNET_VERBOSE"
)

const nonLocalhostWarning = `
Do not listen on a network interface without adding client authentication. Unauthorized clients may
be used to create excessive traffic from your IP address to the vehicle backend, which may respond
by throttling or blocking your account.`

type HttpProxyConfig struct {
	keyFilename  string
	certFilename string
	verbose      bool
	host         string
	port         int
	timeout      time.Duration
}

var (
	httpConfig = &HttpProxyConfig{}
)

func init() {
	flag.StringVar(&httpConfig.certFilename, "cert", "", "TLS certificate chain `file`. A self-signed certificate is generated if omitted.")
	flag.StringVar(&httpConfig.keyFilename, "tls-key", "", "Server TLS private key `file`")
	flag.BoolVar(&httpConfig.verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&httpConfig.host, "host", "localhost", "Proxy server `hostname`")
	flag.IntVar(&httpConfig.port, "port", defaultPort, "`Port` to listen on")
	flag.DurationVar(&httpConfig.timeout, "timeout", proxy.DefaultTimeout, "Timeout interval for one request, including action status polls")
}

func Usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [OPTION...]\n", os.Args[0])
	fmt.Fprintf(out, "\nA server that exposes a REST API for reading and controlling CARIAD vehicles")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, nonLocalhostWarning)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func main() {
	config, err := cli.NewConfig(cli.FlagCache)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}()

	flag.Usage = Usage
	config.RegisterCommandLineFlags()
	flag.Parse()
	if err = readFromEnvironment(); err != nil {
		return
	}
	config.ReadFromEnvironment()

	if httpConfig.verbose {
		log.SetLevel(log.LevelDebug)
	}

	if httpConfig.host != "localhost" {
		fmt.Fprintln(os.Stderr, nonLocalhostWarning)
	}

	capabilities, err := config.CapabilityCache()
	if err != nil {
		return
	}
	defer func() {
		if err := config.SaveCapabilityCache(); err != nil {
			log.Error("Failed to save capability cache: %s", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug("Creating proxy")
	p := proxy.New(ctx, httpConfig.timeout, proxy.NewAccount, capabilities)
	p.Metrics = metrics.New()

	addr := fmt.Sprintf("%s:%d", httpConfig.host, httpConfig.port)
	server := newServer(addr, p)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("Listening on %s", addr)
	// To add client authentication, wrap p in an http.Handler that checks the request before
	// invoking p.ServeHTTP and pass that handler to newServer instead.
	err = listen(server)
	if errors.Is(err, http.ErrServerClosed) {
		log.Info("Server stopped")
		err = nil
	}
}

func newServer(addr string, p *proxy.Proxy) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Metrics.Handler())
	mux.Handle("/", p)

	if httpConfig.certFilename != "" {
		return &http.Server{Addr: addr, Handler: mux}
	}
	server, certPEM := NewServer(addr)
	server.Handler = mux
	log.Debug("Using self-signed certificate:\n%s", certPEM)
	return server
}

func listen(server *http.Server) error {
	if httpConfig.certFilename != "" {
		return server.ListenAndServeTLS(httpConfig.certFilename, httpConfig.keyFilename)
	}
	// Certificates are already in server.TLSConfig.
	return server.ListenAndServeTLS("", "")
}

// readFromEnvironment applies configuration from environment variables.
// Values are not overwritten.
func readFromEnvironment() error {
	if httpConfig.certFilename == "" {
		httpConfig.certFilename = os.Getenv(EnvTlsCert)
	}

	if httpConfig.keyFilename == "" {
		httpConfig.keyFilename = os.Getenv(EnvTlsKey)
	}

	if httpConfig.host == "localhost" {
		host, ok := os.LookupEnv(EnvHost)
		if ok {
			httpConfig.host = host
		}
	}

	if !httpConfig.verbose {
		if verbose, ok := os.LookupEnv(EnvVerbose); ok {
			httpConfig.verbose = verbose != "false" && verbose != "0"
		}
	}

	var err error
	if httpConfig.port == defaultPort {
		if port, ok := os.LookupEnv(EnvPort); ok {
			httpConfig.port, err = strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid port: %s", port)
			}
		}
	}

	if httpConfig.timeout == proxy.DefaultTimeout {
		if timeoutEnv, ok := os.LookupEnv(EnvTimeout); ok {
			httpConfig.timeout, err = time.ParseDuration(timeoutEnv)
			if err != nil {
				return fmt.Errorf("invalid timeout: %s", timeoutEnv)
			}
		}
	}

	return nil
}
