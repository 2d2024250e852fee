package vehicle_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/mocks"
	"github.com/carnet-go/carnet/pkg/capability"
	"github.com/carnet-go/carnet/pkg/protocol"
	"github.com/carnet-go/carnet/pkg/request"
	"github.com/carnet-go/carnet/pkg/vehicle"
)

const vin = "WVWZZZE1ZPP000002"

func mustStruct(fields map[string]interface{}) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Vehicle actions", func() {
	var (
		ctrl    *gomock.Controller
		backend *mocks.MockBackend
		v       *vehicle.Vehicle
		ctx     context.Context
	)

	snapshot := capability.Snapshot{Entries: map[capability.Service]capability.Entry{
		capability.ServiceAccess: {Active: true},
	}}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		backend = mocks.NewMockBackend(ctrl)
		v = vehicle.NewVehicle(vin, backend, vehicle.WithPollInterval(0), vehicle.WithCapabilities(snapshot))
		ctx = context.Background()
		v.State().Merge(mustStruct(map[string]interface{}{
			"climatisation": map[string]interface{}{
				"climatisationSettings": map[string]interface{}{"value": map[string]interface{}{
					"targetTemperature_C":               22.0,
					"climatisationWithoutExternalPower": false,
				}},
				"climatisationStatus": map[string]interface{}{"value": map[string]interface{}{
					"climatisationState": "off",
				}},
			},
		}))
	})

	Describe("Lock", func() {
		It("submits and polls until the backend reports success", func() {
			gomock.InOrder(
				backend.EXPECT().SetLock(gomock.Any(), vin, true, "1234").
					Return(&vehicle.Response{State: "In Progress", ID: "lock-1"}, nil),
				backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "lock-1").Return("In Progress", nil),
				backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "lock-1").Return("successful", nil),
			)

			status, err := v.Lock(ctx, "1234")
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(request.StatusSucceeded))
			Expect(v.ActionStatus(request.TopicLock)).To(Equal(request.StatusSucceeded))
			Expect(v.RequestResults()).To(HaveKeyWithValue("latest", "Lock"))
		})

		It("skips a second lock while the first is pending", func() {
			backend.EXPECT().SetLock(gomock.Any(), vin, true, "1234").
				Return(&vehicle.Response{State: "In Progress", ID: "lock-1"}, nil)
			backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "lock-1").
				DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
					status, err := v.Lock(ctx, "1234")
					Expect(err).NotTo(HaveOccurred())
					Expect(status).To(Equal(request.StatusInProgress))
					return "successful", nil
				})

			status, err := v.Lock(ctx, "1234")
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(request.StatusSucceeded))
		})

		It("rejects an invalid SPIN without contacting the backend", func() {
			_, err := v.Unlock(ctx, "12")
			Expect(errors.Is(err, protocol.ErrInvalidArgument)).To(BeTrue())
		})
	})

	Describe("Climatisation", func() {
		It("restarts climatisation with the current settings", func() {
			backend.EXPECT().SetClimater(gomock.Any(), vin, gomock.Any(), true).
				DoAndReturn(func(_ context.Context, _ string, settings vehicle.ClimateSettings, _ bool) (*vehicle.Response, error) {
					Expect(settings.TargetTemperature).NotTo(BeNil())
					Expect(*settings.TargetTemperature).To(BeNumerically("==", 22))
					return &vehicle.Response{State: "In Progress", ID: "clim-1"}, nil
				})
			backend.EXPECT().GetRequestStatus(gomock.Any(), vin, "clim-1").Return("successful", nil)

			status, err := v.ClimateOn(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(request.StatusSucceeded))
		})

		It("reports a throttled submission without polling", func() {
			remaining := 0
			backend.EXPECT().SetClimater(gomock.Any(), vin, gomock.Any(), false).
				Return(&vehicle.Response{State: "Throttled", ID: "clim-2", RateLimitRemaining: &remaining}, nil)

			status, err := v.ClimateOff(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(request.StatusThrottled))
			n, err := v.RequestsRemaining()
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})

		It("refuses window heating without the capability parameter", func() {
			_, err := v.SetWindowHeating(ctx, vehicle.ActionStart)
			var unsupported *protocol.UnsupportedError
			Expect(errors.As(err, &unsupported)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("merges every section and the service status", func() {
			backend.EXPECT().GetSelectiveStatus(gomock.Any(), vin, gomock.Any()).Return(mustStruct(map[string]interface{}{
				"measurements": map[string]interface{}{"odometerStatus": map[string]interface{}{"value": map[string]interface{}{
					"odometer": 4200.0,
				}}},
			}), nil)
			backend.EXPECT().GetVehicleData(gomock.Any(), vin).Return(nil, nil)
			backend.EXPECT().GetServiceStatus(gomock.Any()).Return(mustStruct(map[string]interface{}{"token": "Up"}), nil)

			Expect(v.Update(ctx)).To(Succeed())
			Expect(v.Distance()).To(Equal(4200))
			Expect(v.APIStatus(vehicle.APIToken)).To(Equal("Up"))
			Expect(v.IsClimatisationSupported()).To(BeTrue())
		})
	})
})
