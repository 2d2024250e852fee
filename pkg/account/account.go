// Package account connects to the CARIAD vehicle backend ("BFF") on behalf of one user.
//
// An [Account] implements [vehicle.Backend], so a vehicle model is created with
//
//	acct, err := account.New(token, "")
//	car := vehicle.NewVehicle(vin, acct)
package account

import (
	"context"
	_ "embed" // Used to embed version for use with user agent
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/connector/inet"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

var (
	//go:embed version.txt
	libraryVersion string
)

func buildUserAgent(app string) string {
	library := strings.TrimSpace("carnet-sdk/" + libraryVersion)
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return library
	}
	path := strings.Split(build.Path, "/")
	if len(path) == 0 {
		return library
	}

	if app == "" {
		app = path[len(path)-1]
		var version string
		if build.Main.Version != "(devel)" && build.Main.Version != "" {
			version = build.Main.Version
		} else {
			for _, info := range build.Settings {
				if info.Key == "vcs.revision" {
					if len(info.Value) > 8 {
						version = info.Value[0:8]
					}
					break
				}
			}
		}

		if version != "" {
			app = fmt.Sprintf("%s/%s", app, version)
		}
	}

	return fmt.Sprintf("%s %s", app, library)
}

// DefaultHost is the European BFF endpoint.
const DefaultHost = "emea.bff.cariad.digital"

const (
	apiStatusUp      = "Up"
	apiStatusExpired = "Expired"
)

var ErrMalformedToken = errors.New("client provided malformed OAuth token")

var _ vehicle.Backend = (*Account)(nil)

// Account allows interaction with the vehicles of one CARIAD user.
type Account struct {
	// The default UserAgent is constructed from the library version, but can be overridden.
	UserAgent string
	// Host may be changed before the first request, e.g. to select another region.
	Host    string
	Subject string
	// Expiry is zero if the token carries no exp claim.
	Expiry time.Time

	authHeader string
	now        func() time.Time

	mu        sync.Mutex
	apiStatus map[vehicle.API]string
}

// New returns an [Account] authenticated by oauthToken. The token is a JWT whose signature is not
// checked here; the backend does that. Optional userAgent can be passed in, otherwise it is
// generated from build information.
func New(oauthToken, userAgent string) (*Account, error) {
	oauthToken = strings.TrimSpace(oauthToken)
	if oauthToken == "" {
		return nil, protocol.ErrNoToken
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(oauthToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	acct := &Account{
		UserAgent:  buildUserAgent(userAgent),
		Host:       DefaultHost,
		Subject:    claims.Subject,
		authHeader: "Bearer " + oauthToken,
		now:        time.Now,
		apiStatus:  make(map[vehicle.API]string),
	}
	if claims.ExpiresAt != nil {
		acct.Expiry = claims.ExpiresAt.Time
	}
	return acct, nil
}

// Expired reports whether the token's exp claim lies in the past.
func (a *Account) Expired() bool {
	return !a.Expiry.IsZero() && a.now().After(a.Expiry)
}

func (a *Account) connection() *inet.Connection {
	return inet.NewConnection(a.Host, a.authHeader, a.UserAgent)
}

// send issues one request and records the health of api from the outcome.
func (a *Account) send(ctx context.Context, api vehicle.API, method, endpoint string, body interface{}) (*inet.Response, error) {
	rsp, err := a.connection().Do(ctx, method, endpoint, body)
	status := apiStatusUp
	var httpErr *inet.HttpError
	switch {
	case errors.As(err, &httpErr):
		status = fmt.Sprintf("Down (%d)", httpErr.Code)
	case err != nil:
		status = "Unreachable"
	}
	a.mu.Lock()
	a.apiStatus[api] = status
	a.mu.Unlock()
	return rsp, err
}

// get fetches endpoint. A 429 answer is reported as [protocol.ErrThrottled].
func (a *Account) get(ctx context.Context, api vehicle.API, endpoint string) (*inet.Response, error) {
	rsp, err := a.send(ctx, api, http.MethodGet, endpoint, nil)
	var httpErr *inet.HttpError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusTooManyRequests {
		return rsp, fmt.Errorf("%w (%s)", protocol.ErrThrottled, endpoint)
	}
	return rsp, err
}

// Vehicles lists the VINs enrolled in the account.
func (a *Account) Vehicles(ctx context.Context) ([]string, error) {
	entries, err := a.vehicleEntries(ctx)
	if err != nil {
		return nil, err
	}
	vins := make([]string, 0, len(entries))
	for _, e := range entries {
		if vin := e.GetStructValue().GetFields()["vin"].GetStringValue(); vin != "" {
			vins = append(vins, vin)
		}
	}
	return vins, nil
}

func (a *Account) vehicleEntries(ctx context.Context) ([]*structpb.Value, error) {
	rsp, err := a.get(ctx, vehicle.APIVehicles, "vehicle/v1/vehicles")
	if err != nil {
		return nil, err
	}
	body, err := decodeStruct(rsp.Body)
	if err != nil {
		return nil, err
	}
	return body.GetFields()["data"].GetListValue().GetValues(), nil
}

func decodeStruct(body []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(body) == 0 {
		return s, nil
	}
	if err := protojson.Unmarshal(body, s); err != nil {
		return nil, fmt.Errorf("%w: %s", protocol.ErrBadResponse, err)
	}
	return s, nil
}

// dataOf unwraps the {"data": ...} envelope of BFF responses.
func dataOf(body []byte) (*structpb.Struct, error) {
	s, err := decodeStruct(body)
	if err != nil {
		return nil, err
	}
	if data := s.GetFields()["data"].GetStructValue(); data != nil {
		return data, nil
	}
	log.Debug("Response carries no data envelope")
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
}

func section(name string, data *structpb.Struct) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{name: structpb.NewStructValue(data)}}
}
