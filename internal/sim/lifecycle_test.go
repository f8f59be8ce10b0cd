package sim_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/turbosim/internal/config"
	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/experiment"
	"github.com/san-kum/turbosim/internal/physics"
	"github.com/san-kum/turbosim/internal/sim"
	"github.com/san-kum/turbosim/internal/storage"
)

var _ = Describe("Simulation lifecycle", func() {
	var (
		dir string
		cfg *config.Config
		s   *sim.Simulation
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "turbosim")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		cfg = config.GetPreset("particle_in_field")
		cfg.Clock.NumSteps = 50
		cfg.Diagnostics.Directory = dir

		s, err = sim.New(cfg, experiment.NewDefaultRegistry())
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts in the constructed phase with nothing published", func() {
		Expect(s.Phase()).To(Equal(sim.Constructed))
		Expect(s.Resources()).To(BeNil())
		Expect(s.ModuleNames()).To(Equal([]string{"EMWave", "ChargedParticle"}))
		Expect(s.DiagnosticNames()).To(Equal([]string{"clock", "field", "field", "point"}))
	})

	Context("after resources are exchanged", func() {
		BeforeEach(func() {
			Expect(s.ExchangeResources()).To(Succeed())
		})

		It("publishes every module's resources", func() {
			Expect(s.Phase()).To(Equal(sim.ResourcesExchanged))
			Expect(s.Resources().Names()).To(ConsistOf(
				"EMField:E",
				"ChargedParticle:position",
				"ChargedParticle:momentum",
			))
		})

		It("binds the particle to the wave's live field", func() {
			wave := s.PhysicsModules()[0].(*physics.EMWave)
			h, ok := dynamo.Find[*dynamo.Array](s.Resources(), "EMField:E")
			Expect(ok).To(BeTrue())
			e, err := h.Get()
			Expect(err).NotTo(HaveOccurred())
			Expect(e).To(BeIdenticalTo(wave.E))
		})

		It("rejects a second exchange", func() {
			Expect(s.ExchangeResources()).To(MatchError(dynamo.ErrInvalidPhase))
		})
	})

	Context("when run to completion", func() {
		BeforeEach(func() {
			Expect(s.Run()).To(Succeed())
		})

		It("takes every clock step and finalizes", func() {
			Expect(s.Phase()).To(Equal(sim.Finalized))
			Expect(s.Clock().Step).To(Equal(51))
			Expect(s.Done()).To(BeTrue())
		})

		It("writes every diagnostic within its buffer", func() {
			outputs := s.Outputs()
			Expect(outputs).To(HaveLen(4))
			for _, out := range outputs {
				Expect(filepath.Dir(out.Path)).To(Equal(dir))
				Expect(out.Rows).To(BeNumerically(">", 1))
				Expect(out.Rows).To(BeNumerically("<=", 51))

				rows, err := storage.ReadFile(out.Path)
				Expect(err).NotTo(HaveOccurred())
				Expect(rows).To(HaveLen(out.Rows))
			}
		})

		It("moves the particle along the field", func() {
			rows, err := storage.ReadFile(filepath.Join(dir, "momentum.csv"))
			Expect(err).NotTo(HaveOccurred())
			last := rows[len(rows)-1]
			Expect(last).To(HaveLen(3))
			Expect(last[1]).NotTo(BeZero())
			Expect(last[0]).To(BeZero())
		})

		It("leaves published handles stale", func() {
			h, ok := dynamo.Find[*dynamo.Array](s.Resources(), "EMField:E")
			Expect(ok).To(BeTrue())
			_, err := h.Get()
			Expect(err).To(MatchError(dynamo.ErrStaleHandle))
		})

		It("refuses further steps", func() {
			Expect(s.Step()).To(MatchError(dynamo.ErrInvalidPhase))
		})
	})

	Context("with a module the registry does not know", func() {
		It("fails to construct", func() {
			cfg.PhysicsModules = append(cfg.PhysicsModules, config.Entry{Name: "Plasma"})
			_, err := sim.New(cfg, experiment.NewDefaultRegistry())
			Expect(err).To(MatchError(dynamo.ErrNotRegistered))
		})
	})

	Context("when the pusher is missing", func() {
		It("fails to construct the particle", func() {
			cfg.Tools = nil
			_, err := sim.New(cfg, experiment.NewDefaultRegistry())
			Expect(err).To(MatchError(dynamo.ErrToolNotFound))
		})
	})
})
