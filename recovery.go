package launchsim

import (
	"fmt"
	"math"
)

// Canopy is a parachute: diameter and drag-area coefficient.
type Canopy struct {
	Diameter        float64 // m
	DragCoefficient float64
}

// DragArea returns Cd·A of the canopy.
func (c Canopy) DragArea() float64 {
	return c.DragCoefficient * math.Pi * c.Diameter * c.Diameter / 4
}

// RecoveryConfig describes the descent hardware. A single-deploy flight
// opens Main at apogee; a dual-deploy flight rides the drogue down to
// MainDeployAltitude first.
type RecoveryConfig struct {
	DualDeploy         bool
	Drogue             Canopy // ignored unless DualDeploy
	Main               Canopy
	MainDeployAltitude float64 // m AGL, dual deploy only
}

// Validate rejects an unusable recovery configuration.
func (r RecoveryConfig) Validate() error {
	if r.Main.Diameter <= 0 || r.Main.DragCoefficient <= 0 {
		return fmt.Errorf("main canopy needs positive diameter and Cd")
	}
	if r.DualDeploy {
		if r.Drogue.Diameter <= 0 || r.Drogue.DragCoefficient <= 0 {
			return fmt.Errorf("drogue canopy needs positive diameter and Cd")
		}
		if r.MainDeployAltitude <= 0 {
			return fmt.Errorf("main deploy altitude must be positive")
		}
	}
	return nil
}

// RecoveryResult is the outcome of the descent analysis.
type RecoveryResult struct {
	DrogueTerminal float64 // m/s, 0 for single deploy
	MainTerminal   float64 // m/s, near the ground
	DescentTime    float64 // s from apogee to touchdown
	LandingSpeed   float64 // m/s vertical at touchdown
	DriftDistance  float64 // m downwind
	DriftCardinal  string  // compass direction of the drift
	LandingEast    float64 // m from the pad, east positive
	LandingNorth   float64 // m from the pad, north positive
}

// terminalVelocity returns √(2mg/(ρ·Cd·A)) at the ambient density.
func terminalVelocity(mass float64, amb AtmosphereSample, dragArea float64) float64 {
	return math.Sqrt(2 * mass * amb.Gravity / (amb.Density * dragArea))
}

// AnalyzeDescent models the recovery as sequential constant-drag phases:
// drogue from apogee to the main deploy altitude, then main to the
// ground. Drift accumulates along the wind profile at each altitude.
func AnalyzeDescent(cfg RecoveryConfig, apogee, mass float64, atm Atmosphere, wind WindModel) (RecoveryResult, error) {
	if err := cfg.Validate(); err != nil {
		return RecoveryResult{}, err
	}
	if apogee <= 0 || mass <= 0 {
		return RecoveryResult{}, fmt.Errorf("descent needs positive apogee and mass (apogee=%f mass=%f)", apogee, mass)
	}
	var res RecoveryResult
	const dh = 5.0 // m altitude slices

	mainFrom := apogee
	if cfg.DualDeploy && cfg.MainDeployAltitude < apogee {
		mainFrom = cfg.MainDeployAltitude
		for h := apogee; h > mainFrom; h -= dh {
			amb := atm.Sample(h)
			vt := terminalVelocity(mass, amb, cfg.Drogue.DragArea())
			slice := math.Min(dh, h-mainFrom)
			dt := slice / vt
			res.DescentTime += dt
			res.DriftDistance += wind.SpeedAt(h) * dt
		}
		res.DrogueTerminal = terminalVelocity(mass, atm.Sample(mainFrom), cfg.Drogue.DragArea())
	}
	for h := mainFrom; h > 0; h -= dh {
		amb := atm.Sample(h)
		vt := terminalVelocity(mass, amb, cfg.Main.DragArea())
		slice := math.Min(dh, h)
		dt := slice / vt
		res.DescentTime += dt
		res.DriftDistance += wind.SpeedAt(h) * dt
	}
	res.MainTerminal = terminalVelocity(mass, atm.Sample(0), cfg.Main.DragArea())
	res.LandingSpeed = res.MainTerminal

	// The vehicle drifts downwind: opposite the direction the wind is from.
	downwind := WindVector(1, wind.FromDirection)
	res.LandingEast = res.DriftDistance * downwind[0]
	res.LandingNorth = res.DriftDistance * -downwind[2] // north is -z
	res.DriftCardinal = cardinal(math.Atan2(res.LandingEast, res.LandingNorth))
	return res, nil
}

// cardinal names a bearing in radians clockwise from north.
func cardinal(bearing float64) string {
	names := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	deg := Rad2deg(bearing)
	idx := int(math.Mod(deg+22.5, 360) / 45)
	return names[idx]
}
