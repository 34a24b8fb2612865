package launchsim

import (
	"fmt"
	"math"
)

// ThrustPoint is one sample of a thrust curve.
type ThrustPoint struct {
	Time   float64 // s since ignition
	Thrust float64 // N
}

// Motor is an immutable solid motor definition. The remaining propellant
// during a burn lives in the flight state, never here, so a single Motor
// may back any number of concurrent trials.
type Motor struct {
	Designation    string
	CasingMass     float64 // kg, dry
	PropellantMass float64 // kg, loaded
	BurnTime       float64 // s
	AverageThrust  float64 // N, used when no curve is supplied
	Curve          []ThrustPoint
}

// NewMotor validates and returns a motor. The curve, when supplied, must
// start at t=0, be monotone non-decreasing in time, and end at BurnTime.
func NewMotor(designation string, casingMass, propellantMass, burnTime, averageThrust float64, curve []ThrustPoint) (*Motor, error) {
	if burnTime <= 0 {
		return nil, fmt.Errorf("motor %s: burn time must be positive, got %f", designation, burnTime)
	}
	if propellantMass <= 0 || casingMass < 0 {
		return nil, fmt.Errorf("motor %s: invalid masses (casing=%f propellant=%f)", designation, casingMass, propellantMass)
	}
	if len(curve) == 0 && averageThrust <= 0 {
		return nil, fmt.Errorf("motor %s: neither thrust curve nor average thrust provided", designation)
	}
	if len(curve) > 0 {
		if curve[0].Time != 0 {
			return nil, fmt.Errorf("motor %s: thrust curve must start at t=0", designation)
		}
		for i := 1; i < len(curve); i++ {
			if curve[i].Time < curve[i-1].Time {
				return nil, fmt.Errorf("motor %s: thrust curve not monotone in time at index %d", designation, i)
			}
			if curve[i].Thrust < 0 {
				return nil, fmt.Errorf("motor %s: negative thrust at index %d", designation, i)
			}
		}
		if last := curve[len(curve)-1].Time; math.Abs(last-burnTime) > 1e-9 {
			return nil, fmt.Errorf("motor %s: thrust curve ends at %f, expected burn time %f", designation, last, burnTime)
		}
	}
	return &Motor{designation, casingMass, propellantMass, burnTime, averageThrust, curve}, nil
}

func (m *Motor) String() string {
	return fmt.Sprintf("%s (%.1f N·s)", m.Designation, m.TotalImpulse())
}

// ThrustAt returns the interpolated thrust at t seconds since ignition.
// Out of the burn window it returns 0 rather than signalling.
func (m *Motor) ThrustAt(t float64) float64 {
	if t < 0 || t >= m.BurnTime {
		return 0
	}
	if len(m.Curve) == 0 {
		return m.AverageThrust
	}
	for i := 0; i < len(m.Curve)-1; i++ {
		t1, f1 := m.Curve[i].Time, m.Curve[i].Thrust
		t2, f2 := m.Curve[i+1].Time, m.Curve[i+1].Thrust
		if t >= t1 && t <= t2 {
			if t2 == t1 {
				return f2
			}
			return f1 + (t-t1)/(t2-t1)*(f2-f1)
		}
	}
	return m.Curve[len(m.Curve)-1].Thrust
}

// MassFlowRate returns the proportional propellant mass flow at t seconds
// since ignition: constant during the burn, zero afterwards.
func (m *Motor) MassFlowRate(t float64) float64 {
	if t < 0 || t >= m.BurnTime {
		return 0
	}
	return m.PropellantMass / m.BurnTime
}

// TotalImpulse integrates the thrust curve by trapezoids, or falls back
// to average thrust times burn time.
func (m *Motor) TotalImpulse() float64 {
	if len(m.Curve) < 2 {
		return m.AverageThrust * m.BurnTime
	}
	total := 0.0
	for i := 0; i < len(m.Curve)-1; i++ {
		dt := m.Curve[i+1].Time - m.Curve[i].Time
		total += dt * (m.Curve[i].Thrust + m.Curve[i+1].Thrust) / 2
	}
	return total
}

// AvgThrust returns the curve-derived average thrust.
func (m *Motor) AvgThrust() float64 {
	if len(m.Curve) < 2 {
		return m.AverageThrust
	}
	return m.TotalImpulse() / m.BurnTime
}

// MaxThrust returns the peak thrust of the curve.
func (m *Motor) MaxThrust() float64 {
	if len(m.Curve) == 0 {
		return m.AverageThrust
	}
	max := 0.0
	for _, pt := range m.Curve {
		if pt.Thrust > max {
			max = pt.Thrust
		}
	}
	return max
}

// LoadedMass returns casing plus full propellant.
func (m *Motor) LoadedMass() float64 {
	return m.CasingMass + m.PropellantMass
}

/* A few well-known motors, usable directly in scenarios and tests. */

// Motors is the read-only built-in motor table, keyed by designation.
// It is constructed once at init and must not be mutated.
var Motors = map[string]*Motor{
	"C6":   mustMotor("C6", 0.0122, 0.0108, 1.86, 0, estesC6Curve),
	"D12":  mustMotor("D12", 0.0242, 0.0211, 1.65, 0, estesD12Curve),
	"G80":  mustMotor("G80", 0.062, 0.0625, 1.7, 80, nil),
	"J350": mustMotor("J350", 0.400, 0.370, 2.0, 350, nil),
}

var estesC6Curve = []ThrustPoint{
	{0, 0}, {0.05, 4.0}, {0.15, 12.0}, {0.25, 14.1}, {0.3, 9.0},
	{0.5, 5.0}, {0.8, 4.2}, {1.2, 4.0}, {1.6, 3.9}, {1.8, 3.8}, {1.86, 0},
}

var estesD12Curve = []ThrustPoint{
	{0, 0}, {0.06, 8.0}, {0.2, 24.0}, {0.28, 29.7}, {0.34, 22.0},
	{0.5, 12.0}, {0.8, 10.0}, {1.2, 9.8}, {1.5, 9.5}, {1.65, 0},
}

func mustMotor(designation string, casing, prop, burn, avg float64, curve []ThrustPoint) *Motor {
	m, err := NewMotor(designation, casing, prop, burn, avg, curve)
	if err != nil {
		panic(err)
	}
	return m
}
