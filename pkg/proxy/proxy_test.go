package proxy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/mocks"
	"github.com/carnet-go/carnet/pkg/cache"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/proxy"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

const (
	vin                = "WVWZZZE1ZPP000003"
	authorizationToken = "Bearer token"
)

func mustStruct(body string) *structpb.Struct {
	s := &structpb.Struct{}
	Expect(s.UnmarshalJSON([]byte(body))).To(Succeed())
	return s
}

var _ = Describe("Proxy", func() {
	var (
		ctrl         *gomock.Controller
		p            *proxy.Proxy
		backend      *mocks.MockBackend
		capabilities *cache.CapabilityCache
		validToken   bool
		accounts     int
	)

	sendRequest := func(method, path string, token string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Authorization", token)
		rr := httptest.NewRecorder()
		p.ServeHTTP(rr, req)
		return rr
	}

	decode := func(rr *httptest.ResponseRecorder) map[string]interface{} {
		var reply map[string]interface{}
		Expect(json.Unmarshal(rr.Body.Bytes(), &reply)).To(Succeed())
		return reply
	}

	commandPath := func(command string) string {
		return fmt.Sprintf("/api/1/vehicles/%s/command/%s", vin, command)
	}

	withAccess := func() {
		Expect(capabilities.Update(vin, capability.Snapshot{
			DiscoveredAt: time.Now(),
			Entries:      map[capability.Service]capability.Entry{capability.ServiceAccess: {Active: true}},
		})).To(Succeed())
	}

	BeforeEach(func() {
		validToken = true
		accounts = 0
		ctrl = gomock.NewController(GinkgoT())
		backend = mocks.NewMockBackend(ctrl)
		capabilities = cache.New(0)
		p = proxy.New(context.Background(), 10*time.Second, func(oauthToken, userAgent string) (vehicle.Backend, error) {
			if validToken {
				accounts++
				return backend, nil
			}
			return nil, fmt.Errorf("invalid token")
		}, capabilities)
		p.VehicleOptions = []vehicle.Option{vehicle.WithPollInterval(0), vehicle.WithPollAttempts(3)}
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	Context("routing", func() {
		It("returns not found for an invalid VIN", func() {
			rr := sendRequest(http.MethodPost, "/api/1/vehicles/ABC/command/door_lock", authorizationToken, nil)
			Expect(rr.Code).To(Equal(http.StatusNotFound))
		})

		It("returns unauthorized without a token", func() {
			rr := sendRequest(http.MethodPost, commandPath("door_lock"), "", nil)
			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns unauthorized for an invalid token", func() {
			validToken = false
			rr := sendRequest(http.MethodPost, commandPath("door_lock"), "Bearer invalid", nil)
			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects commands sent with GET", func() {
			rr := sendRequest(http.MethodGet, commandPath("door_lock"), authorizationToken, nil)
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))
		})

		It("fails for unknown command", func() {
			rr := sendRequest(http.MethodPost, commandPath("honk_horn"), authorizationToken, nil)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("vehicle commands", func() {
		It("locks the vehicle", func() {
			withAccess()
			gomock.InOrder(
				backend.EXPECT().SetLock(gomock.Any(), vin, true, "1234").
					Return(&vehicle.Response{ID: "r1", State: "In Progress"}, nil),
				backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "r1").Return("In Progress", nil),
				backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "r1").Return("successful", nil),
			)

			rr := sendRequest(http.MethodPost, commandPath("door_lock"), authorizationToken, []byte(`{"spin": "1234"}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"response":{"result":true,"status":"Succeeded","reason":""},"error":"","error_description":""}`))
		})

		It("keeps the ledger between requests", func() {
			withAccess()
			backend.EXPECT().SetLock(gomock.Any(), vin, false, "1234").
				Return(&vehicle.Response{ID: "r2", State: "In Progress"}, nil)
			backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "r2").Return("failed", nil)

			rr := sendRequest(http.MethodPost, commandPath("door_unlock"), authorizationToken, []byte(`{"spin": "1234"}`))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(decode(rr)["response"]).To(HaveKeyWithValue("result", false))

			rr = sendRequest(http.MethodGet, fmt.Sprintf("/api/1/vehicles/%s/requests", vin), authorizationToken, nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(decode(rr)["response"]).To(And(
				HaveKeyWithValue("lock", "Failed"),
				HaveKeyWithValue("latest", "Lock"),
			))
			Expect(accounts).To(Equal(1))
		})

		It("reports a timeout", func() {
			withAccess()
			backend.EXPECT().SetLock(gomock.Any(), vin, true, "1234").
				Return(&vehicle.Response{ID: "r3", State: "In Progress"}, nil)
			backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "r3").Return("In Progress", nil).Times(3)

			rr := sendRequest(http.MethodPost, commandPath("door_lock"), authorizationToken, []byte(`{"spin": "1234"}`))
			Expect(rr.Code).To(Equal(http.StatusGatewayTimeout))
			Expect(decode(rr)["response"]).To(HaveKeyWithValue("status", "Timeout"))
		})

		It("refuses actions the vehicle does not support", func() {
			rr := sendRequest(http.MethodPost, commandPath("door_lock"), authorizationToken, []byte(`{"spin": "1234"}`))
			Expect(rr.Code).To(Equal(http.StatusPreconditionFailed))
		})

		It("rejects missing parameters", func() {
			rr := sendRequest(http.MethodPost, commandPath("door_lock"), authorizationToken, []byte(`{}`))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects invalid parameters", func() {
			withAccess()
			rr := sendRequest(http.MethodPost, commandPath("door_lock"), authorizationToken, []byte(`{"spin": "12"}`))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects malformed bodies", func() {
			rr := sendRequest(http.MethodPost, commandPath("door_lock"), authorizationToken, []byte(`spin=1234`))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("reports unimplemented actions", func() {
			rr := sendRequest(http.MethodPost, commandPath("set_charge_min_level"), authorizationToken, []byte(`{"value": 40}`))
			Expect(rr.Code).To(Equal(http.StatusNotImplemented))

			rr = sendRequest(http.MethodPost, commandPath("set_schedule"), authorizationToken, nil)
			Expect(rr.Code).To(Equal(http.StatusNotImplemented))
		})

		It("reports submission failures", func() {
			withAccess()
			backend.EXPECT().SetLock(gomock.Any(), vin, true, "1234").Return(nil, errors.New("connection reset"))

			rr := sendRequest(http.MethodPost, commandPath("door_lock"), authorizationToken, []byte(`{"spin": "1234"}`))
			Expect(rr.Code).To(Equal(http.StatusBadGateway))
			Expect(decode(rr)["response"]).To(HaveKeyWithValue("status", "Exception"))
		})
	})

	Context("vehicle data", func() {
		It("discovers, updates and caches capabilities", func() {
			var listing capability.Listing
			Expect(json.Unmarshal([]byte(`{"capabilities": [{"id": "access", "isEnabled": true}]}`), &listing)).To(Succeed())

			backend.EXPECT().GetOperationList(gomock.Any(), vin).Return(&listing, nil)
			backend.EXPECT().GetSelectiveStatus(gomock.Any(), vin, gomock.Any()).Return(mustStruct(`{"access": {"accessStatus": {"value": {"doorLockStatus": "locked"}}}}`), nil)
			backend.EXPECT().GetVehicleData(gomock.Any(), vin).Return(mustStruct(`{"vehicle": {"nickname": "Golf"}}`), nil)
			backend.EXPECT().GetServiceStatus(gomock.Any()).Return(mustStruct(`{"vehicles": "Up"}`), nil)

			rr := sendRequest(http.MethodGet, fmt.Sprintf("/api/1/vehicles/%s/vehicle_data", vin), authorizationToken, nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			response := decode(rr)["response"].(map[string]interface{})
			Expect(response).To(HaveKeyWithValue("vin", vin))
			Expect(response["state"]).To(HaveKeyWithValue("vehicle", HaveKeyWithValue("nickname", "Golf")))
			Expect(response["attributes"]).To(ContainElement(And(
				HaveKeyWithValue("name", "door_locked"),
				HaveKeyWithValue("value", true),
			)))

			_, cached := capabilities.Get(vin)
			Expect(cached).To(BeTrue())
		})

		It("fails when discovery fails", func() {
			backend.EXPECT().GetOperationList(gomock.Any(), vin).Return(nil, errors.New("offline"))

			rr := sendRequest(http.MethodGet, fmt.Sprintf("/api/1/vehicles/%s/vehicle_data", vin), authorizationToken, nil)
			Expect(rr.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(rr)["error_description"]).To(ContainSubstring("offline"))
		})
	})
})
