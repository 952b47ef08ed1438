package srs_test

import (
	"bytes"
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/grid"
	"github.com/san-kum/sdofsim/internal/logging"
	"github.com/san-kum/sdofsim/internal/srs"
	"github.com/san-kum/sdofsim/internal/waveform"
)

func logGrid(start, stop float64, n int) []float64 {
	freqs, err := grid.Spec{Start: start, Stop: stop, Count: n, Spacing: grid.Logarithmic}.Build()
	Expect(err).NotTo(HaveOccurred())
	return freqs
}

var _ = Describe("Compute", func() {
	var (
		ctx   context.Context
		pulse waveform.PulseSpec
		opts  srs.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		pulse = waveform.PulseSpec{Shape: waveform.HalfSine, Amplitude: 50, Duration: 0.011}.InG()
		opts = srs.Options{Q: 10, Tail: 0.3, Logger: logging.NoOpLogger{}}
	})

	Context("with a 50 g, 11 ms half-sine", func() {
		var (
			res   *srs.Result
			freqs []float64
		)

		BeforeEach(func() {
			freqs = logGrid(10, 1000, 100)
			var err error
			res, err = srs.FromPulse(ctx, pulse, freqs, opts)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns one point per natural frequency", func() {
			Expect(res.Frequencies).To(Equal(freqs))
			Expect(res.Primary).To(HaveLen(100))
			Expect(res.Residual).To(HaveLen(100))
			Expect(res.MaxiMax).To(HaveLen(100))
			Expect(res.Zeta).To(BeNumerically("~", 0.05, 1e-15))
			Expect(res.PulseEnd).To(Equal(0.011))
		})

		It("obeys MaxiMax = max(Primary, Residual) at every frequency", func() {
			for i := range res.MaxiMax {
				Expect(res.MaxiMax[i].Y).To(Equal(math.Max(res.Primary[i].Y, res.Residual[i].Y)))
				Expect(res.Primary[i].Y).To(Equal(math.Max(res.PrimaryPos[i].Y, res.PrimaryNeg[i].Y)))
				Expect(res.Residual[i].Y).To(Equal(math.Max(res.ResidualPos[i].Y, res.ResidualNeg[i].Y)))
			}
		})

		It("amplifies the input near the pulse frequency", func() {
			peak, at := res.Peak()
			Expect(at).To(BeNumerically(">", 30))
			Expect(at).To(BeNumerically("<", 120))
			Expect(peak / pulse.Amplitude).To(BeNumerically(">", 1.3))
			Expect(peak / pulse.Amplitude).To(BeNumerically("<", 2))
		})

		It("tapers away from the pulse frequency", func() {
			peak, _ := res.Peak()
			low := res.MaxiMax[0].Y / pulse.Amplitude
			high := res.MaxiMax[len(res.MaxiMax)-1].Y / pulse.Amplitude

			Expect(low).To(BeNumerically("<", 0.6))
			Expect(high).To(BeNumerically("~", 1, 0.15))
			Expect(high).To(BeNumerically("<", peak/pulse.Amplitude))
		})

		It("is dominated by the residual response at low frequency", func() {
			Expect(res.Residual[0].Y).To(BeNumerically(">", res.Primary[0].Y))
			last := len(res.MaxiMax) - 1
			Expect(res.Primary[last].Y).To(BeNumerically(">", res.Residual[last].Y))
		})
	})

	It("gives the same spectrum serially and in parallel", func() {
		freqs := logGrid(20, 500, 24)

		opts.Workers = 1
		serial, err := srs.FromPulse(ctx, pulse, freqs, opts)
		Expect(err).NotTo(HaveOccurred())

		opts.Workers = 4
		parallel, err := srs.FromPulse(ctx, pulse, freqs, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(parallel.MaxiMax).To(Equal(serial.MaxiMax))
		Expect(parallel.Primary).To(Equal(serial.Primary))
		Expect(parallel.Residual).To(Equal(serial.Residual))
	})

	It("stops when the context is canceled", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := srs.FromPulse(canceled, pulse, logGrid(10, 1000, 50), opts)
		Expect(err).To(MatchError(dynamo.ErrContextCanceled))
	})

	It("returns an all-zero spectrum for a quiet record", func() {
		in := srs.Input{Dt: 1e-4, Accel: make([]float64, 100)}
		res, err := srs.Compute(ctx, in, logGrid(10, 100, 5), opts)
		Expect(err).NotTo(HaveOccurred())
		for _, p := range res.MaxiMax {
			Expect(p.Y).To(BeZero())
		}
	})

	Describe("the residual tail", func() {
		It("defaults to three periods of the lowest frequency and warns", func() {
			var buf bytes.Buffer
			opts.Tail = 0
			opts.Logger = logging.NewLogger(&buf, false)

			res, err := srs.FromPulse(ctx, pulse, logGrid(20, 200, 5), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Tail).To(BeNumerically("~", 3.0/20, 1e-12))
			Expect(buf.String()).To(ContainSubstring("[WARN]"))
			Expect(buf.String()).To(ContainSubstring("tail"))
		})
	})

	Describe("pulse end detection", func() {
		It("finds the last sample above 1% of the peak", func() {
			series, err := waveform.Series(pulse, 1e-4, 0.05)
			Expect(err).NotTo(HaveOccurred())

			end := srs.DetectPulseEnd(series.Values, series.Dt)
			Expect(end).To(BeNumerically("<=", pulse.Duration))
			Expect(end).To(BeNumerically(">", 0.98*pulse.Duration))

			res, err := srs.Compute(ctx, srs.Input{Dt: series.Dt, Accel: series.Values}, logGrid(10, 100, 4), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.PulseEnd).To(Equal(end))
		})

		It("uses the whole record when it is silent", func() {
			Expect(srs.DetectPulseEnd(make([]float64, 11), 0.1)).To(BeNumerically("~", 1.0, 1e-12))
		})
	})

	DescribeTable("rejects invalid input",
		func(in srs.Input, freqs []float64, o srs.Options) {
			o.Logger = logging.NoOpLogger{}
			_, err := srs.Compute(ctx, in, freqs, o)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		},
		Entry("zero step", srs.Input{Dt: 0, Accel: []float64{1, 0}}, []float64{10, 20}, srs.DefaultOptions()),
		Entry("single sample", srs.Input{Dt: 1e-3, Accel: []float64{1}}, []float64{10, 20}, srs.DefaultOptions()),
		Entry("non-finite sample", srs.Input{Dt: 1e-3, Accel: []float64{1, math.NaN()}}, []float64{10, 20}, srs.DefaultOptions()),
		Entry("zero frequency", srs.Input{Dt: 1e-3, Accel: []float64{1, 0}}, []float64{0, 20}, srs.DefaultOptions()),
		Entry("unsorted frequencies", srs.Input{Dt: 1e-3, Accel: []float64{1, 0}}, []float64{20, 10}, srs.DefaultOptions()),
		Entry("negative damping", srs.Input{Dt: 1e-3, Accel: []float64{1, 0}}, []float64{10, 20}, srs.Options{Zeta: -0.1}),
		Entry("negative quality factor", srs.Input{Dt: 1e-3, Accel: []float64{1, 0}}, []float64{10, 20}, srs.Options{Zeta: 0.05, Q: -10}),
		Entry("negative tail", srs.Input{Dt: 1e-3, Accel: []float64{1, 0}}, []float64{10, 20}, srs.Options{Zeta: 0.05, Tail: -1}),
	)
})

var _ = Describe("PulseStep", func() {
	It("resolves the highest frequency and the pulse", func() {
		p := waveform.PulseSpec{Shape: waveform.HalfSine, Amplitude: 1, Duration: 0.011}
		Expect(srs.PulseStep(p, 1000)).To(BeNumerically("~", 5e-5, 1e-18))
		Expect(srs.PulseStep(p, 10)).To(BeNumerically("~", 0.011/50, 1e-18))
	})
})
