package launchsim

import (
	"math"
	"testing"

	"github.com/ChristopherRabotin/ode"
	"github.com/gonum/floats"
)

// sho is a simple-harmonic-oscillator probe of the integrator: ÿ = -y.
type sho struct {
	y, v float64
	t    float64
	end  float64
}

func (s *sho) GetState() []float64 { return []float64{s.y, s.v} }
func (s *sho) SetState(t float64, f []float64) {
	s.t = t
	s.y = f[0]
	s.v = f[1]
}
func (s *sho) Stop(t float64) bool { return t >= s.end }
func (s *sho) Func(t float64, f []float64) []float64 {
	return []float64{f[1], -f[0]}
}

func TestRK4Oscillator(t *testing.T) {
	probe := &sho{y: 1, v: 0, end: 2 * math.Pi}
	ode.NewRK4(0, 1e-2, probe).Solve()
	// One full period: the amplitude and phase must both survive.
	if !floats.EqualWithinAbs(probe.y, 1, 0.02) {
		t.Fatalf("amplitude drifted to %f", probe.y)
	}
	if math.Abs(probe.v) > 0.13 {
		t.Fatalf("phase drifted, v=%f", probe.v)
	}
}

func dropConfig(radius float64) Configuration {
	g := alphaIIIGeometry()
	g.BodyRadius = radius
	return Configuration{
		Name:     "drop-test",
		Geometry: g,
		Mass: RocketMass{
			Body: MassComponent{"body", 0.1, 0.2},
		},
	}
}

func TestDropNoDrag(t *testing.T) {
	f, err := NewFlight(dropConfig(0.0125))
	if err != nil {
		t.Fatal(err)
	}
	f.DragFactor = 0
	f.ReleaseAt(100)
	res := f.Propagate()

	want := math.Sqrt(2 * 100 / StandardGravity)
	if math.Abs(res.FlightTime-want)/want > 1e-3 {
		t.Fatalf("landing time %f, want %f within 0.1%%", res.FlightTime, want)
	}
	if !floats.EqualWithinAbs(res.LandingSpeed, 44.3, 0.5) {
		t.Fatalf("landing speed %f", res.LandingSpeed)
	}
	if res.Phase != Landed {
		t.Fatalf("phase %s", res.Phase)
	}
}

func TestDropWithDrag(t *testing.T) {
	f, err := NewFlight(dropConfig(0.02))
	if err != nil {
		t.Fatal(err)
	}
	f.ReleaseAt(100)
	res := f.Propagate()
	if res.Phase != Landed {
		t.Fatalf("phase %s", res.Phase)
	}
	// Drag slows the fall below the 44.3 m/s free-fall figure.
	if res.LandingSpeed >= 44.3 || res.LandingSpeed < 20 {
		t.Fatalf("landing speed with drag: %f", res.LandingSpeed)
	}
	if res.FlightTime <= math.Sqrt(2*100/StandardGravity) {
		t.Fatal("drag must lengthen the fall")
	}
}

func TestAlphaIIIFlight(t *testing.T) {
	f, err := NewFlight(alphaIIIConfig())
	if err != nil {
		t.Fatal(err)
	}
	f.SetStepSize(2e-3)
	res := f.Propagate()

	if res.ErrKind == NumericalBreakdown {
		t.Fatal("flight broke down")
	}
	if res.Apogee < 150 || res.Apogee > 700 {
		t.Fatalf("apogee %f", res.Apogee)
	}
	if res.MaxVelocity < 50 || res.MaxVelocity > 180 {
		t.Fatalf("max velocity %f", res.MaxVelocity)
	}
	if res.Phase != Landed {
		t.Fatalf("phase %s after %f s", res.Phase, res.FlightTime)
	}
	if res.FlightTime < 10 || res.FlightTime > 115 {
		t.Fatalf("flight time %f", res.FlightTime)
	}
	if res.MaxAcceleration <= StandardGravity {
		t.Fatalf("max acceleration %f", res.MaxAcceleration)
	}
	if res.RailExitSpeed <= 0 {
		t.Fatal("no rail exit recorded")
	}

	// The canonical event sequence, in temporal order.
	sequence := []string{"ignition", "burnout", "apogee", "landing"}
	last := -1.0
	for _, kind := range sequence {
		ts := eventTimes(res.Events, kind)
		if len(ts) == 0 {
			t.Fatalf("missing event %s", kind)
		}
		if ts[0] < last {
			t.Fatalf("event %s out of order", kind)
		}
		last = ts[0]
	}
}

func TestFlightInvariants(t *testing.T) {
	f, err := NewFlight(alphaIIIConfig())
	if err != nil {
		t.Fatal(err)
	}
	f.SetStepSize(2e-3)
	res := f.Propagate()

	// Committed attitude stays unit-norm.
	if math.Abs(f.q.Norm()-1) > 1e-6 {
		t.Fatalf("quaternion norm %f", f.q.Norm())
	}
	// Propellant is spent to within the burn-end boundary step, never negative.
	if f.propellant < 0 || f.propellant > 1e-4 {
		t.Fatalf("propellant after burnout: %g", f.propellant)
	}
	// Altitude clamped at touchdown.
	if f.r[1] < 0 {
		t.Fatalf("altitude after landing: %f", f.r[1])
	}
	// Event times are non-decreasing in the log.
	for i := 1; i < len(res.Events); i++ {
		if res.Events[i].Time < res.Events[i-1].Time {
			t.Fatalf("event log out of order at %d", i)
		}
	}
	// Trajectory is sampled on the 50 ms grid.
	if len(res.Trajectory) < int(res.FlightTime/trajectoryInterval)/2 {
		t.Fatalf("trajectory too sparse: %d points over %f s", len(res.Trajectory), res.FlightTime)
	}
	// Total mass accounting: dry breakdown plus remaining propellant, exactly.
	if !floats.EqualWithinAbs(f.mass(f.propellant), f.Config.Mass.DryMass()+f.propellant, 1e-15) {
		t.Fatal("mass accounting fail after burnout")
	}
}

func TestGimbalTiltsVehicle(t *testing.T) {
	cfg := alphaIIIConfig()
	cfg.RailLength = 0 // free flight, let the gimbal act immediately
	f, err := NewFlight(cfg)
	if err != nil {
		t.Fatal(err)
	}
	f.SetGimbal(0.1, 0)
	f.SetMaxFlightTime(0.8)
	f.Propagate()
	if Norm(f.ω) == 0 {
		t.Fatal("gimbal produced no body rate")
	}
	axis := f.q.Rotate([]float64{0, 1, 0})
	if axis[1] >= 1-1e-9 {
		t.Fatal("gimbal did not tilt the attitude")
	}
}

func TestGimbalClamp(t *testing.T) {
	cfg := alphaIIIConfig()
	f, err := NewFlight(cfg)
	if err != nil {
		t.Fatal(err)
	}
	f.SetGimbal(10, -10)
	tilted := f.gimbal.Rotate([]float64{0, 1, 0})
	// Each axis saturates at 0.15 rad.
	angle := math.Acos(Dot(tilted, []float64{0, 1, 0}))
	if angle > 2*maxGimbalAngle+1e-9 {
		t.Fatalf("gimbal clamp fail: %f rad", angle)
	}
}

func TestIntegrationLimit(t *testing.T) {
	cfg := alphaIIIConfig()
	f, err := NewFlight(cfg)
	if err != nil {
		t.Fatal(err)
	}
	f.SetStepSize(2e-3)
	f.SetMaxFlightTime(1.0) // far too short to land
	res := f.Propagate()
	if res.ErrKind != IntegrationLimitReached {
		t.Fatalf("err kind %s", res.ErrKind)
	}
	if res.Phase == Landed {
		t.Fatal("cannot have landed in one second")
	}
	if len(res.Trajectory) == 0 {
		t.Fatal("partial trajectory must be returned")
	}
}

func TestInvalidConfigurationRejected(t *testing.T) {
	cfg := alphaIIIConfig()
	cfg.Geometry.BodyRadius = -1
	if _, err := NewFlight(cfg); err == nil {
		t.Fatal("negative radius must be rejected")
	}
	cfg = alphaIIIConfig()
	cfg.Geometry.Fins.Count = 2
	if _, err := NewFlight(cfg); err == nil {
		t.Fatal("two-fin rocket must be rejected")
	}
	cfg = alphaIIIConfig()
	cfg.Geometry.NoseShape = NoseShape(99)
	if _, err := NewFlight(cfg); err == nil {
		t.Fatal("unknown nose shape must be rejected")
	}
}

func TestWindDriftsTrajectory(t *testing.T) {
	cfg := alphaIIIConfig()
	cfg.Wind = WindConfig{Speed: 4, DirectionDeg: 270} // west wind pushes east
	f, err := NewFlight(cfg)
	if err != nil {
		t.Fatal(err)
	}
	f.SetStepSize(2e-3)
	res := f.Propagate()
	east, _ := res.LandingPosition()
	if east == 0 {
		t.Fatal("wind produced no drift")
	}
}
