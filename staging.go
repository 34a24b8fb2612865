package launchsim

import (
	"fmt"
	"math"
)

// IgnitionTrigger defines when a stage motor lights.
type IgnitionTrigger uint8

const (
	// IgniteAtLiftoff lights the motor at launch, after an optional delay.
	IgniteAtLiftoff IgnitionTrigger = iota + 1
	// IgniteAtSeparation lights the motor once the stage below has separated.
	IgniteAtSeparation
	// IgniteAfterDelay lights the motor a fixed time after liftoff.
	IgniteAfterDelay
	// IgniteAtAltitude lights the motor when climbing through an altitude.
	IgniteAtAltitude
	// IgniteAtApogee lights the motor at the apex of the trajectory.
	IgniteAtApogee
)

func (t IgnitionTrigger) String() string {
	switch t {
	case IgniteAtLiftoff:
		return "liftoff"
	case IgniteAtSeparation:
		return "separation"
	case IgniteAfterDelay:
		return "delay"
	case IgniteAtAltitude:
		return "altitude"
	case IgniteAtApogee:
		return "apogee"
	default:
		panic("unknown ignition trigger")
	}
}

// SeparationTrigger defines when a spent stage departs the stack.
type SeparationTrigger uint8

const (
	// SeparateAtBurnout separates after the stage motor burns out.
	SeparateAtBurnout SeparationTrigger = iota + 1
	// SeparateAtTimer separates a fixed time after stage ignition.
	SeparateAtTimer
	// SeparateAtAltitude separates when climbing through an altitude.
	SeparateAtAltitude
	// SeparateAtVelocity separates when exceeding a speed.
	SeparateAtVelocity
	// SeparateOnCommand never separates on its own.
	SeparateOnCommand
)

func (t SeparationTrigger) String() string {
	switch t {
	case SeparateAtBurnout:
		return "burnout"
	case SeparateAtTimer:
		return "timer"
	case SeparateAtAltitude:
		return "altitude"
	case SeparateAtVelocity:
		return "velocity"
	case SeparateOnCommand:
		return "command"
	default:
		panic("unknown separation trigger")
	}
}

// Stage is one propulsion unit of a multi-stage stack. Trigger flags and
// times are mutated by the flight engine as the flight unfolds.
type Stage struct {
	Name       string
	Motor      *Motor
	DryMass    float64 // kg, structure departing with this stage
	Ignition   IgnitionTrigger
	Separation SeparationTrigger

	IgnitionDelay      float64 // s, meaning depends on the trigger
	SeparationDelay    float64 // s
	IgnitionAltitude   float64 // m, for IgniteAtAltitude
	SeparationAltitude float64 // m, for SeparateAtAltitude
	SeparationVelocity float64 // m/s, for SeparateAtVelocity
	StackPosition      float64 // m from the base of the stack

	Ignited, BurnedOut, Separated bool
	IgnitionTime, SeparationTime  float64
}

// Validate rejects an unbuildable stage.
func (s *Stage) Validate() error {
	if s.Motor == nil {
		return fmt.Errorf("stage %s has no motor", s.Name)
	}
	if s.DryMass < 0 {
		return fmt.Errorf("stage %s has negative dry mass", s.Name)
	}
	if s.Ignition < IgniteAtLiftoff || s.Ignition > IgniteAtApogee {
		return fmt.Errorf("stage %s has an unknown ignition trigger", s.Name)
	}
	if s.Separation < SeparateAtBurnout || s.Separation > SeparateOnCommand {
		return fmt.Errorf("stage %s has an unknown separation trigger", s.Name)
	}
	return nil
}

// shouldIgnite evaluates the ignition trigger at time t for the current
// state. prior is the stage below, nil for the booster.
func (s *Stage) shouldIgnite(t, altitude, vy float64, prior *Stage) bool {
	if s.Ignited {
		return false
	}
	switch s.Ignition {
	case IgniteAtLiftoff, IgniteAfterDelay:
		return t >= s.IgnitionDelay
	case IgniteAtSeparation:
		return prior != nil && prior.Separated && (t-prior.SeparationTime) >= s.IgnitionDelay
	case IgniteAtAltitude:
		return altitude >= s.IgnitionAltitude
	case IgniteAtApogee:
		return vy <= 0 && altitude > 100
	default:
		return false
	}
}

// shouldSeparate evaluates the separation trigger at time t.
func (s *Stage) shouldSeparate(t, altitude, speed float64) bool {
	if s.Separated || !s.Ignited {
		return false
	}
	switch s.Separation {
	case SeparateAtBurnout:
		return s.BurnedOut && (t-s.IgnitionTime-s.Motor.BurnTime) >= s.SeparationDelay
	case SeparateAtTimer:
		return (t - s.IgnitionTime) >= s.SeparationDelay
	case SeparateAtAltitude:
		return altitude >= s.SeparationAltitude
	case SeparateAtVelocity:
		return speed >= s.SeparationVelocity
	case SeparateOnCommand:
		return false
	default:
		return false
	}
}

// StageImpact is the recorded fate of a departed stage.
type StageImpact struct {
	Stage      string
	Time       float64 // s after launch
	Velocity   float64 // m/s at impact
	FallHeight float64 // m, separation altitude
}

// ballisticImpact tracks a separated stage with a simplified 1-D model:
// it tumbles at Cd = 1.0 on the body cross section until the ground.
func ballisticImpact(name string, sepTime, altitude, vy, mass, bodyRadius float64, atm Atmosphere) StageImpact {
	const cd = 1.0
	area := math.Pi * bodyRadius * bodyRadius
	t, h, v := sepTime, altitude, vy
	const dt = 0.05
	for h > 0 && t < sepTime+600 {
		amb := atm.Sample(h)
		drag := 0.5 * amb.Density * v * v * cd * area / mass
		a := -amb.Gravity
		if v > 0 {
			a -= drag
		} else {
			a += drag
		}
		v += a * dt
		h += v * dt
		t += dt
	}
	return StageImpact{name, t, math.Abs(v), altitude}
}
