package launchsim

import (
	"math"
	"math/rand"
	"os"
	"sort"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
	"github.com/gonum/stat"
)

// ParameterVariation enumerates the recognized dispersion options. Each
// is drawn independently per trial; zero sigmas disable an option.
type ParameterVariation struct {
	DryMassSigma        float64 // kg, additive
	ThrustFactorSigma   float64 // multiplicative
	BurnTimeFactorSigma float64 // multiplicative
	InclinationSigma    float64 // degrees, additive
	HeadingSigma        float64 // degrees, additive
	WindSpeedSigma      float64 // m/s, clamped ≥ 0
	WindDirectionSigma  float64 // degrees, mod 360
	DragFactorSigma     float64 // multiplicative
	ChuteCdSigma        float64 // multiplicative on Cd·S
	DeployLagSigma      float64 // s, clamped ≥ 0
	PMotorFailure       float64 // Bernoulli
	PChuteFailure       float64 // Bernoulli
	PSeparationFailure  float64 // Bernoulli
}

// DefaultVariation returns the conventional dispersion set.
func DefaultVariation() ParameterVariation {
	return ParameterVariation{
		DryMassSigma:        0.005,
		ThrustFactorSigma:   0.03,
		BurnTimeFactorSigma: 0.05,
		InclinationSigma:    1,
		HeadingSigma:        2,
		WindSpeedSigma:      1.5,
		WindDirectionSigma:  15,
		DragFactorSigma:     0.05,
		ChuteCdSigma:        0.10,
		DeployLagSigma:      0.5,
		PMotorFailure:       0.001,
		PChuteFailure:       0.005,
		PSeparationFailure:  0.002,
	}
}

// dispersionRNG wraps a seeded stream with the generators the sampler
// needs. Each trial owns one, seeded from the base seed and the trial
// counter, never from wall-clock, so runs are reproducible.
type dispersionRNG struct {
	r *rand.Rand
}

func newDispersionRNG(seed int64) *dispersionRNG {
	return &dispersionRNG{rand.New(rand.NewSource(seed))}
}

// Gaussian draws N(μ, σ) via Box–Muller.
func (d *dispersionRNG) Gaussian(μ, σ float64) float64 {
	u1 := d.r.Float64()
	for u1 == 0 {
		u1 = d.r.Float64()
	}
	u2 := d.r.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return μ + σ*z
}

// Triangular draws from a triangular distribution by piecewise inverse CDF.
func (d *dispersionRNG) Triangular(min, mode, max float64) float64 {
	u := d.r.Float64()
	fc := (mode - min) / (max - min)
	if u < fc {
		return min + math.Sqrt(u*(max-min)*(mode-min))
	}
	return max - math.Sqrt((1-u)*(max-min)*(max-mode))
}

// LogNormal draws exp(N(μ, σ)) with moments matched to the provided
// mean and standard deviation.
func (d *dispersionRNG) LogNormal(mean, stdDev float64) float64 {
	if mean <= 0 {
		return 0
	}
	cv2 := (stdDev / mean) * (stdDev / mean)
	σ2 := math.Log(1 + cv2)
	μ := math.Log(mean) - σ2/2
	return math.Exp(d.Gaussian(μ, math.Sqrt(σ2)))
}

// Bernoulli draws true with probability p.
func (d *dispersionRNG) Bernoulli(p float64) bool {
	return d.r.Float64() < p
}

// factor draws a multiplicative gaussian factor clamped to [0.5, 1.5].
func (d *dispersionRNG) factor(σ float64) float64 {
	f := d.Gaussian(1, σ)
	if f < 0.5 {
		f = 0.5
	} else if f > 1.5 {
		f = 1.5
	}
	return f
}

// TrialOutcome is the recorded result of one dispersion trial.
type TrialOutcome struct {
	Index       int
	Result      FlightResult
	Failed      bool   // core failure: the configuration was rejected or the flight broke down numerically
	FailureKind string // simulation_error, motor_cato, chute_failure, separation_failure
	East, North float64
}

// MetricSummary is the per-metric statistics block.
type MetricSummary struct {
	Mean, StdDev, Min, Max float64
	Median, P5, P95        float64
}

func summarize(values []float64) MetricSummary {
	if len(values) == 0 {
		return MetricSummary{}
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	return MetricSummary{
		Mean:   stat.Mean(sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P5:     stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}

// HistogramBin is one equal-width apogee histogram bucket.
type HistogramBin struct {
	Low, High float64
	Count     int
}

// LandingPoint is one touchdown location, east/north of the pad.
type LandingPoint struct {
	East, North float64
}

// DispersionEllipse is the axis-aligned landing dispersion summary, fed
// to downstream ellipse fitting.
type DispersionEllipse struct {
	EastMean, NorthMean   float64
	SigmaEast, SigmaNorth float64
}

// MonteCarloResult aggregates a dispersion run.
type MonteCarloResult struct {
	Trials, Successes, Failures int
	FailureKinds                map[string]int
	Apogee                      MetricSummary
	FlightTime                  MetricSummary
	LandingSpeed                MetricSummary
	LandingDistance             MetricSummary
	ApogeeHistogram             []HistogramBin
	Landings                    []LandingPoint
	Ellipse                     DispersionEllipse
	Outcomes                    []TrialOutcome
}

// MonteCarlo perturbs a base configuration and runs the flights, in
// parallel batches. Trials share nothing mutable: each owns its engine,
// state, and random stream.
type MonteCarlo struct {
	Base      Configuration
	Variation ParameterVariation
	Trials    int
	BatchSize int
	Seed      int64
	StepSize  float64

	stopChan chan bool
	stopOnce sync.Once
	logger   kitlog.Logger
}

// NewMonteCarlo returns a driver with the provided trial count and a
// default batch size bound of 8.
func NewMonteCarlo(base Configuration, variation ParameterVariation, trials int) *MonteCarlo {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "vehicle", base.Name, "subsys", "mc")
	return &MonteCarlo{
		Base:      base,
		Variation: variation,
		Trials:    trials,
		BatchSize: 8,
		Seed:      1,
		StepSize:  5e-3,
		stopChan:  make(chan bool, 1),
		logger:    klog,
	}
}

// Cancel stops the dispatch of further batches. In-flight trials run to
// completion.
func (mc *MonteCarlo) Cancel() {
	mc.stopOnce.Do(func() { mc.stopChan <- true })
}

func (mc *MonteCarlo) cancelled() bool {
	select {
	case <-mc.stopChan:
		return true
	default:
		return false
	}
}

// perturb draws a trial configuration. The returned configuration shares
// no mutable state with the base.
func (mc *MonteCarlo) perturb(rng *dispersionRNG) (Configuration, float64, float64, string) {
	cfg := mc.Base // value copy; pointers below are re-created before mutation
	kind := ""
	if len(cfg.Stages) > 0 {
		// Stages carry flags the engine mutates during a flight.
		stages := make([]*Stage, len(cfg.Stages))
		for i, s := range cfg.Stages {
			dup := *s
			stages[i] = &dup
		}
		cfg.Stages = stages
	}

	if σ := mc.Variation.DryMassSigma; σ > 0 {
		δ := rng.Gaussian(0, σ)
		cfg.Mass.Body.Mass = math.Max(1e-6, cfg.Mass.Body.Mass+δ)
	}
	thrustFactor := 1.0
	if σ := mc.Variation.ThrustFactorSigma; σ > 0 {
		thrustFactor = rng.factor(σ)
	}
	if σ := mc.Variation.BurnTimeFactorSigma; σ > 0 && cfg.Motor != nil {
		f := rng.factor(σ)
		cfg.Motor = stretchBurn(cfg.Motor, f)
	}
	if σ := mc.Variation.InclinationSigma; σ > 0 {
		cfg.InclinationDeg += rng.Gaussian(0, σ)
	}
	if σ := mc.Variation.HeadingSigma; σ > 0 {
		cfg.HeadingDeg += rng.Gaussian(0, σ)
	}
	if σ := mc.Variation.WindSpeedSigma; σ > 0 {
		cfg.Wind.Speed = math.Max(0, rng.Gaussian(cfg.Wind.Speed, σ))
	}
	if σ := mc.Variation.WindDirectionSigma; σ > 0 {
		cfg.Wind.DirectionDeg = math.Mod(rng.Gaussian(cfg.Wind.DirectionDeg, σ)+360, 360)
	}
	dragFactor := 1.0
	if σ := mc.Variation.DragFactorSigma; σ > 0 {
		dragFactor = rng.factor(σ)
	}
	if cfg.Recovery != nil {
		rec := *cfg.Recovery
		if σ := mc.Variation.ChuteCdSigma; σ > 0 {
			f := rng.factor(σ)
			rec.Main.DragCoefficient *= f
			rec.Drogue.DragCoefficient *= f
		}
		if σ := mc.Variation.DeployLagSigma; σ > 0 && rec.DualDeploy {
			// A late main is modeled as a lower deployment altitude.
			lag := math.Max(0, rng.Gaussian(0, σ))
			drop := lag * 25 // m lost per second of lag under drogue
			rec.MainDeployAltitude = math.Max(30, rec.MainDeployAltitude-drop)
		}
		cfg.Recovery = &rec
	}

	// Failure modes: the configuration is degraded and the flight still
	// runs, so the sample keeps the probability mass of those modes.
	if rng.Bernoulli(mc.Variation.PMotorFailure) && cfg.Motor != nil {
		cfg.Motor = stretchBurn(cfg.Motor, 0.3) // CATO: most of the burn is lost
		kind = "motor_cato"
	} else if rng.Bernoulli(mc.Variation.PChuteFailure) {
		cfg.Recovery = nil
		kind = "chute_failure"
	} else if rng.Bernoulli(mc.Variation.PSeparationFailure) && len(cfg.Stages) > 1 {
		stages := make([]*Stage, len(cfg.Stages))
		for i, s := range cfg.Stages {
			dup := *s
			dup.Separation = SeparateOnCommand
			stages[i] = &dup
		}
		cfg.Stages = stages
		kind = "separation_failure"
	}
	return cfg, thrustFactor, dragFactor, kind
}

// stretchBurn scales a motor's burn time while preserving its impulse
// distribution shape.
func stretchBurn(m *Motor, f float64) *Motor {
	curve := make([]ThrustPoint, len(m.Curve))
	for i, pt := range m.Curve {
		curve[i] = ThrustPoint{pt.Time * f, pt.Thrust}
	}
	return &Motor{
		Designation:    m.Designation,
		CasingMass:     m.CasingMass,
		PropellantMass: m.PropellantMass,
		BurnTime:       m.BurnTime * f,
		AverageThrust:  m.AverageThrust,
		Curve:          curve,
	}
}

// runTrial executes one trial with its own engine and stream.
func (mc *MonteCarlo) runTrial(idx int) TrialOutcome {
	rng := newDispersionRNG(mc.Seed + int64(idx))
	cfg, thrustFactor, dragFactor, kind := mc.perturb(rng)
	out := TrialOutcome{Index: idx, FailureKind: kind}

	flight, err := NewFlight(cfg)
	if err != nil {
		out.Failed = true
		out.FailureKind = "simulation_error"
		return out
	}
	flight.ThrustFactor = thrustFactor
	flight.DragFactor = dragFactor
	flight.SetStepSize(mc.StepSize)
	out.Result = flight.Propagate()
	if out.Result.ErrKind == NumericalBreakdown {
		out.Failed = true
		out.FailureKind = "simulation_error"
		return out
	}
	out.East, out.North = out.Result.LandingPosition()
	return out
}

// Run executes the trial space and aggregates the sample set. The
// returned outcomes are a permutation of the trial space; completion
// order is not deterministic but the per-trial results are.
func (mc *MonteCarlo) Run() MonteCarloResult {
	mc.logger.Log("level", "info", "status", "starting", "trials", mc.Trials, "batch", mc.BatchSize)
	outChan := make(chan TrialOutcome, mc.Trials)
	var wg sync.WaitGroup
	dispatched := 0
	for start := 0; start < mc.Trials; start += mc.BatchSize {
		if mc.cancelled() {
			mc.logger.Log("level", "warning", "status", "cancelled", "dispatched", dispatched)
			break
		}
		end := start + mc.BatchSize
		if end > mc.Trials {
			end = mc.Trials
		}
		for i := start; i < end; i++ {
			wg.Add(1)
			dispatched++
			go func(idx int) {
				defer wg.Done()
				outChan <- mc.runTrial(idx)
			}(i)
		}
		wg.Wait() // batch barrier: the concurrency bound is the batch size
	}
	close(outChan)

	outcomes := make([]TrialOutcome, 0, dispatched)
	for out := range outChan {
		outcomes = append(outcomes, out)
	}
	res := mc.aggregate(outcomes)
	mc.logger.Log("level", "notice", "status", "finished", "successes", res.Successes, "failures", res.Failures,
		"apogee(m)", res.Apogee.Mean, "±", res.Apogee.StdDev)
	return res
}

func (mc *MonteCarlo) aggregate(outcomes []TrialOutcome) MonteCarloResult {
	res := MonteCarloResult{
		Trials:       len(outcomes),
		FailureKinds: make(map[string]int),
		Outcomes:     outcomes,
	}
	var apogees, times, landSpeeds, landDists []float64
	for _, out := range outcomes {
		if out.FailureKind != "" {
			res.FailureKinds[out.FailureKind]++
		}
		if out.Failed {
			res.Failures++
			continue
		}
		res.Successes++
		apogees = append(apogees, out.Result.Apogee)
		times = append(times, out.Result.FlightTime)
		landSpeeds = append(landSpeeds, out.Result.LandingSpeed)
		landDists = append(landDists, math.Hypot(out.East, out.North))
		res.Landings = append(res.Landings, LandingPoint{out.East, out.North})
	}
	res.Apogee = summarize(apogees)
	res.FlightTime = summarize(times)
	res.LandingSpeed = summarize(landSpeeds)
	res.LandingDistance = summarize(landDists)
	res.ApogeeHistogram = histogram(apogees, 20)

	if len(res.Landings) > 0 {
		east := make([]float64, len(res.Landings))
		north := make([]float64, len(res.Landings))
		for i, p := range res.Landings {
			east[i] = p.East
			north[i] = p.North
		}
		res.Ellipse.EastMean, res.Ellipse.SigmaEast = stat.MeanStdDev(east, nil)
		res.Ellipse.NorthMean, res.Ellipse.SigmaNorth = stat.MeanStdDev(north, nil)
	}
	return res
}

// histogram builds an equal-width histogram over the sample.
func histogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi+1e-9)
	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]HistogramBin, bins)
	for i := 0; i < bins; i++ {
		out[i] = HistogramBin{dividers[i], dividers[i+1], int(counts[i])}
	}
	return out
}

/* TARC scoring */

// TARCTarget is the contest target and qualification window.
type TARCTarget struct {
	ApogeeFt                 float64
	TimeS                    float64
	MinApogeeFt, MaxApogeeFt float64
	MinTimeS, MaxTimeS       float64
}

// TARCScore is the contest score of one flight.
type TARCScore struct {
	Score     float64
	Qualified bool
}

// ScoreTARC scores a flight result: apogee error in feet plus duration
// error in seconds, lower is better.
func ScoreTARC(res FlightResult, target TARCTarget) TARCScore {
	const mToFt = 3.28084
	apogeeFt := res.Apogee * mToFt
	score := math.Abs(apogeeFt-target.ApogeeFt) + math.Abs(res.FlightTime-target.TimeS)
	qualified := apogeeFt >= target.MinApogeeFt && apogeeFt <= target.MaxApogeeFt &&
		res.FlightTime >= target.MinTimeS && res.FlightTime <= target.MaxTimeS
	return TARCScore{score, qualified}
}
