package capability_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/carnet-go/carnet/pkg/capability"
)

func parseListing(body string) *capability.Listing {
	var l capability.Listing
	Expect(json.Unmarshal([]byte(body), &l)).To(Succeed())
	return &l
}

var _ = Describe("Capability", func() {
	var (
		m   *capability.Map
		now time.Time
	)

	BeforeEach(func() {
		m = capability.NewMap()
		now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	})

	Describe("Discover", func() {
		It("records enabled services with operations in listing order", func() {
			listing := parseListing(`{
				"capabilities": {
					"access": {
						"id": "access",
						"isEnabled": true,
						"expirationDate": "2030-01-01T00:00:00Z",
						"operations": {
							"unlock": {"id": "unlock"},
							"lock": {"id": "lock"},
							"honk": {"id": "honk"}
						},
						"parameters": ["spin", {"key": "supportsStartWindowHeating", "value": "true"}]
					}
				}
			}`)
			Expect(m.Discover(listing, now)).To(Equal(1))

			entry, ok := m.Entry(capability.ServiceAccess)
			Expect(ok).To(BeTrue())
			Expect(entry.Active).To(BeTrue())
			Expect(entry.Operations).To(Equal([]string{"unlock", "lock", "honk"}))
			Expect(entry.Parameters).To(Equal([]string{"spin", "supportsStartWindowHeating=true"}))
			Expect(entry.Expiration).ToNot(BeNil())
			Expect(entry.Expiration.Year()).To(Equal(2030))
			Expect(entry.HasOperation("lock")).To(BeTrue())
			v, ok := entry.Parameter("supportsStartWindowHeating")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("true"))
		})

		It("records only inactivity for disabled services", func() {
			listing := parseListing(`{
				"capabilities": {
					"charging": {
						"id": "charging",
						"isEnabled": false,
						"status": [1004],
						"operations": {"start": {"id": "start"}}
					}
				}
			}`)
			m.Discover(listing, now)
			entry, ok := m.Entry(capability.ServiceCharging)
			Expect(ok).To(BeTrue())
			Expect(entry).To(Equal(capability.Entry{Active: false}))
			Expect(m.IsActive(capability.ServiceCharging)).To(BeFalse())
		})

		It("overwrites services on rediscovery", func() {
			m.Discover(parseListing(`{"capabilities": {"access": {"isEnabled": true}}}`), now)
			Expect(m.IsActive(capability.ServiceAccess)).To(BeTrue())
			m.Discover(parseListing(`{"capabilities": {"access": {"isEnabled": false}}}`), now)
			Expect(m.IsActive(capability.ServiceAccess)).To(BeFalse())
		})

		It("leaves services absent from the listing unmodified", func() {
			m.Discover(parseListing(`{"capabilities": {"access": {"isEnabled": true}, "charging": {"isEnabled": true}}}`), now)
			m.Discover(parseListing(`{"capabilities": {"charging": {"isEnabled": false}}}`), now)
			Expect(m.IsActive(capability.ServiceAccess)).To(BeTrue())
			Expect(m.IsActive(capability.ServiceCharging)).To(BeFalse())
		})

		It("skips malformed entries without aborting", func() {
			listing := parseListing(`{
				"capabilities": {
					"access": {"isEnabled": "yes"},
					"charging": {"id": "climatisation", "isEnabled": true},
					"measurements": {"isEnabled": true, "expirationDate": "tomorrow"},
					"parkingPosition": {"isEnabled": true}
				}
			}`)
			Expect(m.Discover(listing, now)).To(Equal(1))
			Expect(m.IsActive(capability.ServiceParkingPosition)).To(BeTrue())
			_, ok := m.Entry(capability.ServiceAccess)
			Expect(ok).To(BeFalse())
			_, ok = m.Entry(capability.ServiceCharging)
			Expect(ok).To(BeFalse())
			_, ok = m.Entry(capability.ServiceMeasurements)
			Expect(ok).To(BeFalse())
		})

		It("ignores services outside the discoverable set", func() {
			m.Discover(parseListing(`{"capabilities": {"fuelStatus": {"isEnabled": true}, "mystery": {"isEnabled": true}}}`), now)
			Expect(m.Services()).To(BeEmpty())
		})

		It("accepts capabilities as an array", func() {
			listing := parseListing(`{
				"capabilities": [
					{"id": "tripStatistics", "isEnabled": true, "operations": [{"id": "getTrips"}]},
					{"isEnabled": true}
				]
			}`)
			m.Discover(listing, now)
			entry, ok := m.Entry(capability.ServiceTripStatistics)
			Expect(ok).To(BeTrue())
			Expect(entry.Operations).To(Equal([]string{"getTrips"}))
		})

		It("merges the parameter bag", func() {
			m.Discover(parseListing(`{"parameters": {"supportsStartWindowHeating": "true"}, "capabilities": {}}`), now)
			m.Discover(parseListing(`{"parameters": {"other": 1}, "capabilities": {}}`), now)
			v, ok := m.ParameterString("supportsStartWindowHeating")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("true"))
			v, ok = m.ParameterString("other")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("1"))
		})

		It("tolerates a nil listing", func() {
			Expect(m.Discover(nil, now)).To(Equal(0))
		})
	})

	Describe("IsActive", func() {
		It("is false for absent services", func() {
			Expect(m.IsActive(capability.ServiceHonkAndFlash)).To(BeFalse())
		})
	})

	Describe("IsExpired", func() {
		It("assumes a default validity window without expiration", func() {
			m.Discover(parseListing(`{"capabilities": {"access": {"isEnabled": true}}}`), now)
			Expect(m.IsExpired(capability.ServiceAccess, now)).To(BeFalse())
			Expect(m.Expiration(capability.ServiceAccess, now)).To(BeTemporally("==", now.Add(capability.DefaultValidity)))
		})

		It("compares against the expiration date", func() {
			m.Discover(parseListing(`{"capabilities": {"access": {"isEnabled": true, "expirationDate": "2024-05-01T12:00:00+02:00"}}}`), now)
			Expect(m.IsExpired(capability.ServiceAccess, now)).To(BeTrue())
			Expect(m.IsExpired(capability.ServiceAccess, now.Add(-3*time.Hour))).To(BeFalse())
		})

		It("expires at the expiration instant", func() {
			m.Discover(parseListing(`{"capabilities": {"access": {"isEnabled": true, "expirationDate": "2024-05-01T14:00:00+02:00"}}}`), now)
			Expect(m.IsExpired(capability.ServiceAccess, now.Add(-time.Second))).To(BeFalse())
			Expect(m.IsExpired(capability.ServiceAccess, now)).To(BeTrue())
			Expect(m.IsExpired(capability.ServiceAccess, now.In(time.FixedZone("CEST", 2*3600)))).To(BeTrue())
		})
	})

	Describe("Snapshot", func() {
		It("restores an equivalent map", func() {
			m.Discover(parseListing(`{"parameters": {"p": "v"}, "capabilities": {"access": {"isEnabled": true, "operations": {"lock": {}}}}}`), now)
			restored := capability.NewMap()
			restored.Restore(m.Snapshot())
			Expect(restored.IsActive(capability.ServiceAccess)).To(BeTrue())
			entry, _ := restored.Entry(capability.ServiceAccess)
			Expect(entry.Operations).To(Equal([]string{"lock"}))
			Expect(restored.DiscoveredAt()).To(BeTemporally("==", now))
		})
	})
})
