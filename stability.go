package launchsim

import "fmt"

// StabilityClass is the conventional caliber-margin ladder.
type StabilityClass uint8

const (
	// Unstable margin below 0.5 caliber
	Unstable StabilityClass = iota + 1
	// MarginallyUnstable margin below 1 caliber
	MarginallyUnstable
	// MarginallyStable margin below 1.5 calibers
	MarginallyStable
	// Stable margin below 2 calibers
	Stable
	// VeryStable margin below 2.5 calibers
	VeryStable
	// OverStable margin below 3.5 calibers
	OverStable
	// SeverelyOverStable margin of 3.5 calibers or more
	SeverelyOverStable
)

func (c StabilityClass) String() string {
	switch c {
	case Unstable:
		return "unstable"
	case MarginallyUnstable:
		return "marginally unstable"
	case MarginallyStable:
		return "marginally stable"
	case Stable:
		return "stable"
	case VeryStable:
		return "very stable"
	case OverStable:
		return "over-stable"
	case SeverelyOverStable:
		return "severely over-stable"
	default:
		panic("unknown stability class")
	}
}

// StabilityResult composes the aerodynamic CP with the mass-weighted CG.
type StabilityResult struct {
	CP      float64 // m from the nose tip
	CG      float64 // m from the nose tip
	Margin  float64 // calibers
	CNAlpha float64
	Class   StabilityClass
}

// AnalyzeStability computes the static margin for the provided geometry,
// mass breakdown and current motor propellant load.
func AnalyzeStability(g RocketGeometry, m RocketMass, propellant float64) (StabilityResult, error) {
	if err := g.Validate(); err != nil {
		return StabilityResult{}, fmt.Errorf("invalid geometry: %s", err)
	}
	if err := m.Validate(); err != nil {
		return StabilityResult{}, fmt.Errorf("invalid mass: %s", err)
	}
	cp := CenterOfPressure(g)
	cg := m.CenterOfGravity(propellant)
	margin := (cp.CP - cg) / g.Diameter()
	return StabilityResult{
		CP:      cp.CP,
		CG:      cg,
		Margin:  margin,
		CNAlpha: cp.CNAlpha,
		Class:   classifyMargin(margin),
	}, nil
}

func classifyMargin(margin float64) StabilityClass {
	switch {
	case margin < 0.5:
		return Unstable
	case margin < 1.0:
		return MarginallyUnstable
	case margin < 1.5:
		return MarginallyStable
	case margin < 2.0:
		return Stable
	case margin < 2.5:
		return VeryStable
	case margin < 3.5:
		return OverStable
	default:
		return SeverelyOverStable
	}
}
