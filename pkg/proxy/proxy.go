package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/account"
	"github.com/carnet-go/carnet/pkg/cache"
	"github.com/carnet-go/carnet/pkg/connector/inet"
	"github.com/carnet-go/carnet/pkg/metrics"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/request"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

const (
	// DefaultTimeout bounds one request, including the status polls of a control action.
	DefaultTimeout       = 5 * time.Minute
	maxRequestBodyBytes  = 512
	vinLength            = 17
	proxyProtocolVersion = "carnet-http-proxy/1.0.0"
)

// AccountFactory returns the backend of the account an OAuth token belongs to.
type AccountFactory func(oauthToken, userAgent string) (vehicle.Backend, error)

// NewAccount is the AccountFactory for the CARIAD backend.
func NewAccount(oauthToken, userAgent string) (vehicle.Backend, error) {
	acct, err := account.New(oauthToken, userAgent)
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func getToken(req *http.Request) (string, error) {
	token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("client did not provide an OAuth token")
	}
	return token, nil
}

// vehicleEntry keeps a vehicle model alive between requests so that its ledger and state
// accumulate. A request carrying a different token replaces the entry.
type vehicleEntry struct {
	token string
	car   *vehicle.Vehicle
}

// Proxy exposes an HTTP API for reading vehicle state and running control actions.
type Proxy struct {
	Timeout time.Duration
	// Metrics, if set, is passed to every vehicle model.
	Metrics *metrics.Metrics
	// VehicleOptions are applied to every vehicle model the proxy creates.
	VehicleOptions []vehicle.Option

	ctx          context.Context
	newAccount   AccountFactory
	capabilities *cache.CapabilityCache
	vinLock      sync.Map

	mu       sync.Mutex
	vehicles map[string]*vehicleEntry
}

// New creates an http proxy. Requests are bounded by timeout and by ctx. Discovered capabilities
// are stored in capabilities, which may be nil.
func New(ctx context.Context, timeout time.Duration, newAccount AccountFactory, capabilities *cache.CapabilityCache) *Proxy {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Proxy{
		Timeout:      timeout,
		ctx:          ctx,
		newAccount:   newAccount,
		capabilities: capabilities,
		vehicles:     make(map[string]*vehicleEntry),
	}
}

// lockVIN locks a VIN-specific mutex, blocking until the operation succeeds or ctx expires.
func (p *Proxy) lockVIN(ctx context.Context, vin string) error {
	lock := make(chan bool, 1)
	for {
		if obj, loaded := p.vinLock.LoadOrStore(vin, lock); loaded {
			select {
			case <-obj.(chan bool):
				// The goroutine that reads from the channel doesn't necessarily own the mutex. This
				// allows the mutex owner to delete the entry from the map, limiting the size of the
				// map to the number of concurrent vehicle requests.
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			return nil
		}
	}
}

// unlockVIN releases a VIN-specific mutex.
func (p *Proxy) unlockVIN(vin string) {
	obj, ok := p.vinLock.Load(vin)
	if !ok {
		panic("called unlock without owning mutex")
	}
	p.vinLock.Delete(vin)  // Allow someone else to claim the mutex
	close(obj.(chan bool)) // Unblock goroutines
}

// getVehicle returns the vehicle model for vin, creating it if the token changed. Callers must
// hold the VIN lock.
func (p *Proxy) getVehicle(token, vin string) (*vehicle.Vehicle, error) {
	p.mu.Lock()
	entry, ok := p.vehicles[vin]
	p.mu.Unlock()
	if ok && entry.token == token {
		return entry.car, nil
	}

	backend, err := p.newAccount(token, proxyProtocolVersion)
	if err != nil {
		return nil, err
	}
	options := []vehicle.Option{vehicle.WithMetrics(p.Metrics)}
	if p.capabilities != nil {
		if snap, ok := p.capabilities.Get(vin); ok {
			options = append(options, vehicle.WithCapabilities(snap))
		}
	}
	car := vehicle.NewVehicle(vin, backend, append(options, p.VehicleOptions...)...)

	p.mu.Lock()
	p.vehicles[vin] = &vehicleEntry{token: token, car: car}
	p.mu.Unlock()
	return car, nil
}

func (p *Proxy) updateCache(car *vehicle.Vehicle) {
	if p.capabilities == nil {
		return
	}
	if err := car.UpdateCachedCapabilities(p.capabilities); err != nil {
		log.Warning("Error updating capability cache: %s", err)
	}
}

// Response contains a server's response to a client request.
type Response struct {
	Response   interface{} `json:"response"`
	Error      string      `json:"error"`
	ErrDetails string      `json:"error_description"`
}

// ActionResult is the response to a control action.
type ActionResult struct {
	Result bool   `json:"result"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// VehicleData is the response to a vehicle_data request.
type VehicleData struct {
	VIN        string            `json:"vin"`
	State      json.RawMessage   `json:"state"`
	Attributes []vehicle.Reading `json:"attributes"`
}

func writeJSON(w http.ResponseWriter, code int, reply *Response) {
	jsonBytes, err := json.Marshal(reply)
	if err != nil {
		log.Error("Error serializing reply %+v: %s", reply, err)
		code = http.StatusInternalServerError
		jsonBytes = []byte("{\"error\": \"internal server error\"}")
	}
	if code != http.StatusOK {
		log.Error("Returning error %s", http.StatusText(code))
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	jsonBytes = append(jsonBytes, '\n')
	w.Write(jsonBytes)
}

func writeJSONError(w http.ResponseWriter, code int, err error) {
	var httpErr *inet.HttpError
	if errors.As(err, &httpErr) {
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(httpErr.Code)
		w.Write([]byte(httpErr.Message + "\n"))
		return
	}
	reply := Response{Error: http.StatusText(code)}
	if err != nil {
		reply.Error = err.Error()
	}
	writeJSON(w, code, &reply)
}

// errorStatus maps errors of control actions and updates onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, protocol.ErrUnsupported):
		return http.StatusPreconditionFailed
	case errors.Is(err, protocol.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, protocol.ErrNotImplemented), errors.Is(err, ErrCommandNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, protocol.ErrSubmissionFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case protocol.ShouldRetry(err):
		return http.StatusServiceUnavailable
	}
	var httpErr *inet.HttpError
	if errors.As(err, &httpErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Info("Received %s request for %s", req.Method, req.URL.Path)

	token, err := getToken(req)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, err)
		return
	}

	path := strings.Split(req.URL.Path, "/")
	if !strings.HasPrefix(req.URL.Path, "/api/1/vehicles/") || len(path) < 6 {
		writeJSONError(w, http.StatusNotFound, nil)
		return
	}
	vin := path[4]
	if len(vin) != vinLength {
		writeJSONError(w, http.StatusNotFound, errors.New("expected 17-character VIN in path"))
		return
	}

	var handler func(context.Context, *vehicle.Vehicle, http.ResponseWriter, *http.Request)
	switch {
	case len(path) == 6 && path[5] == "vehicle_data" && req.Method == http.MethodGet:
		handler = p.handleVehicleData
	case len(path) == 6 && path[5] == "requests" && req.Method == http.MethodGet:
		handler = p.handleRequests
	case len(path) == 7 && path[5] == "command":
		if req.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, nil)
			return
		}
		command := path[6]
		handler = func(ctx context.Context, car *vehicle.Vehicle, w http.ResponseWriter, req *http.Request) {
			p.handleVehicleCommand(ctx, car, w, req, command)
		}
	default:
		writeJSONError(w, http.StatusNotFound, nil)
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.Timeout)
	defer cancel()

	// Serialize requests for a specific VIN. Two concurrent actions on one vehicle would both pass
	// the admission gate before either is recorded as pending.
	if err := p.lockVIN(ctx, vin); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer p.unlockVIN(vin)

	car, err := p.getVehicle(token, vin)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, err)
		return
	}
	defer p.updateCache(car)
	handler(ctx, car, w, req)
}

func (p *Proxy) handleVehicleData(ctx context.Context, car *vehicle.Vehicle, w http.ResponseWriter, _ *http.Request) {
	err := car.Update(ctx)
	if err != nil && !car.Discovered() {
		code := errorStatus(err)
		writeJSON(w, code, &Response{Error: http.StatusText(code), ErrDetails: err.Error()})
		return
	}

	state, marshalErr := car.State().MarshalJSON()
	if marshalErr != nil {
		writeJSONError(w, http.StatusInternalServerError, marshalErr)
		return
	}
	reply := Response{Response: &VehicleData{VIN: car.VIN(), State: state, Attributes: car.Readings()}}
	if err != nil {
		// Sections that could be fetched are still returned.
		reply.Error = "partial update"
		reply.ErrDetails = err.Error()
	}
	writeJSON(w, http.StatusOK, &reply)
}

func (p *Proxy) handleRequests(_ context.Context, car *vehicle.Vehicle, w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &Response{Response: car.Requests().Results()})
}

func (p *Proxy) handleVehicleCommand(ctx context.Context, car *vehicle.Vehicle, w http.ResponseWriter, req *http.Request, command string) {
	log.Debug("Executing %s on %s", command, car.VIN())
	action, err := extractCommandAction(ctx, req, command)
	if err != nil {
		writeJSONError(w, errorStatus(err), err)
		return
	}

	status, err := action(car)
	if err != nil {
		writeJSON(w, errorStatus(err), &Response{
			Response:   &ActionResult{Status: status.String()},
			Error:      http.StatusText(errorStatus(err)),
			ErrDetails: err.Error(),
		})
		return
	}

	result := &ActionResult{Result: status == request.StatusSucceeded, Status: status.String()}
	code := http.StatusOK
	switch status {
	case request.StatusSucceeded:
	case request.StatusInProgress:
		result.Reason = "another request is in progress"
	case request.StatusTimeout:
		code = http.StatusGatewayTimeout
		result.Reason = "vehicle did not confirm the request in time"
	default:
		result.Reason = fmt.Sprintf("request ended with status %s", status)
	}
	writeJSON(w, code, &Response{Response: result})
}

func extractCommandAction(ctx context.Context, req *http.Request, command string) (Action, error) {
	var params RequestParameters
	body, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBodyBytes+1))
	if err != nil {
		return nil, &inet.HttpError{Code: http.StatusBadRequest, Message: "could not read request body"}
	}
	if len(body) > maxRequestBodyBytes {
		return nil, &inet.HttpError{Code: http.StatusRequestEntityTooLarge, Message: "request body too large"}
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &params); err != nil {
			return nil, &inet.HttpError{Code: http.StatusBadRequest, Message: "error occurred while parsing request parameters"}
		}
	}

	return ExtractCommandAction(ctx, command, params)
}
