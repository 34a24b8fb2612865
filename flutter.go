package launchsim

import (
	"fmt"
	"math"
)

// FlutterStatus is the safety ladder of the flutter analysis.
type FlutterStatus uint8

const (
	// FlutterExcellent means a safety factor of at least 2.
	FlutterExcellent FlutterStatus = iota + 1
	// FlutterGood means a safety factor of at least 1.5.
	FlutterGood
	// FlutterAdequate means a safety factor of at least 1.25.
	FlutterAdequate
	// FlutterMarginal means a safety factor of at least 1.
	FlutterMarginal
	// FlutterUnsafe means the fin flutters below the peak airspeed.
	FlutterUnsafe
)

func (s FlutterStatus) String() string {
	switch s {
	case FlutterExcellent:
		return "excellent"
	case FlutterGood:
		return "good"
	case FlutterAdequate:
		return "adequate"
	case FlutterMarginal:
		return "marginal"
	case FlutterUnsafe:
		return "unsafe"
	default:
		panic("unknown flutter status")
	}
}

// FlutterResult is the outcome of the NARTS flutter analysis.
type FlutterResult struct {
	FlutterVelocity float64 // m/s
	SafetyFactor    float64 // V_f / v_max
	Status          FlutterStatus
}

// FlutterAnalyzer computes the critical airspeed at which a trapezoidal
// fin becomes aeroelastically unstable, via the NARTS closed form.
type FlutterAnalyzer struct {
	Fins     FinSet
	Material Material
	Atm      Atmosphere
	Altitude float64 // m, where the peak airspeed occurs
}

// NewFlutterAnalyzer validates the inputs; a zero thickness ratio would
// blow up the cubed inverse in the formula.
func NewFlutterAnalyzer(fins FinSet, mat Material, atm Atmosphere, altitude float64) (*FlutterAnalyzer, error) {
	if fins.RootChord <= 0 || fins.Span <= 0 || fins.Thickness <= 0 {
		return nil, fmt.Errorf("flutter needs positive fin dimensions")
	}
	if err := mat.Validate(); err != nil {
		return nil, err
	}
	return &FlutterAnalyzer{fins, mat, atm, altitude}, nil
}

// FlutterVelocity returns the NARTS critical airspeed.
func (fa *FlutterAnalyzer) FlutterVelocity() float64 {
	amb := fa.Atm.Sample(fa.Altitude)
	ar := fa.Fins.AspectRatio()
	λ := fa.Fins.TipChord / fa.Fins.RootChord
	τ := fa.Fins.Thickness / fa.Fins.RootChord
	denom := 1.337 * math.Pow(ar, 3) * amb.Pressure / (ar + 2) * (λ + 1) / 2 * math.Pow(1/τ, 3)
	return amb.SpeedOfSound * math.Sqrt(fa.Material.ShearModulus/denom)
}

// Analyze reports the flutter margin against a peak airspeed.
func (fa *FlutterAnalyzer) Analyze(vMax float64) FlutterResult {
	vf := fa.FlutterVelocity()
	res := FlutterResult{FlutterVelocity: vf}
	if vMax <= 0 {
		res.SafetyFactor = math.Inf(1)
		res.Status = FlutterExcellent
		return res
	}
	res.SafetyFactor = vf / vMax
	switch {
	case res.SafetyFactor >= 2.0:
		res.Status = FlutterExcellent
	case res.SafetyFactor >= 1.5:
		res.Status = FlutterGood
	case res.SafetyFactor >= 1.25:
		res.Status = FlutterAdequate
	case res.SafetyFactor >= 1.0:
		res.Status = FlutterMarginal
	default:
		res.Status = FlutterUnsafe
	}
	return res
}

// RequiredThickness inverts the formula: the minimum fin thickness whose
// flutter velocity reaches the target.
func (fa *FlutterAnalyzer) RequiredThickness(targetVf float64) float64 {
	if targetVf <= 0 {
		return 0
	}
	amb := fa.Atm.Sample(fa.Altitude)
	ar := fa.Fins.AspectRatio()
	λ := fa.Fins.TipChord / fa.Fins.RootChord
	// V_f = a·√(G/(k·(1/τ)³)) with k the geometry-pressure factor, so
	// τ = ∛(k·(V_f/a)²/G).
	k := 1.337 * math.Pow(ar, 3) * amb.Pressure / (ar + 2) * (λ + 1) / 2
	ratio := targetVf / amb.SpeedOfSound
	τ := math.Cbrt(k * ratio * ratio / fa.Material.ShearModulus)
	return fa.Fins.RootChord * τ
}
