package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/physics"
	"github.com/san-kum/webswing/internal/sim"
	"github.com/san-kum/webswing/internal/vecmath"
)

var _ = Describe("Simulator", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		s = sim.New(physics.DefaultParams(), nil)
	})

	Describe("range as a function of release time", func() {
		rangeAt := func(release float64) float64 {
			res, err := s.Run(context.Background(), release, vecmath.Zero)
			Expect(err).NotTo(HaveOccurred())
			return res.Range
		}

		It("is not monotonic", func() {
			early, mid, late := rangeAt(3), rangeAt(8), rangeAt(15)
			Expect(mid).To(BeNumerically(">", early))
			Expect(mid).To(BeNumerically(">", late))
		})

		It("is interior to the reference bracket", func() {
			Expect(rangeAt(8)).To(BeNumerically(">", rangeAt(6)))
			Expect(rangeAt(8)).To(BeNumerically(">", rangeAt(12)))
		})
	})

	Describe("the swing phase", func() {
		It("keeps the tether under tension for part of the swing", func() {
			res, err := s.Run(context.Background(), 8, vecmath.Zero)
			Expect(err).NotTo(HaveOccurred())

			sys, err := physics.NewSystemConfig(s.Params)
			Expect(err).NotTo(HaveOccurred())

			peak := 0.0
			for i, t := range res.Trajectory.Times {
				if t > 8 {
					break
				}
				peak = math.Max(peak, sys.TensionAt(res.Trajectory.States[i]))
			}
			Expect(peak).To(BeNumerically(">", 0))
		})
	})

	Describe("landing", func() {
		It("stops on the ground", func() {
			res, err := s.Run(context.Background(), 10, vecmath.Zero)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Landed).To(BeTrue())
			Expect(res.Flight.Status).To(Equal(dynamo.Terminated))

			_, x, _ := res.Trajectory.Last()
			Expect(math.Abs(x[1])).To(BeNumerically("<", 1e-6))
		})

		It("reports a flight that runs out of time", func() {
			s.FreeFlight = 0.5
			res, err := s.Run(context.Background(), 10, vecmath.Zero)
			Expect(err).To(MatchError(dynamo.ErrEventNotReached))
			Expect(res.Landed).To(BeFalse())
		})
	})
})
