package launchsim

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
)

// FlightPhase enumerates the flight state machine.
type FlightPhase uint8

const (
	// PreLaunch holds the vehicle on the pad until the first thrust.
	PreLaunch FlightPhase = iota + 1
	// Powered covers a motor burn.
	Powered
	// Coasting is the unpowered ascent to apogee.
	Coasting
	// Descent runs from apogee to the ground.
	Descent
	// Landed terminates the propagation.
	Landed
)

func (p FlightPhase) String() string {
	switch p {
	case PreLaunch:
		return "prelaunch"
	case Powered:
		return "powered"
	case Coasting:
		return "coasting"
	case Descent:
		return "descent"
	case Landed:
		return "landed"
	default:
		panic("unknown flight phase")
	}
}

// FlightErrorKind tags an abnormal propagation outcome.
type FlightErrorKind uint8

const (
	// NoFlightError is the nominal outcome.
	NoFlightError FlightErrorKind = iota
	// NumericalBreakdown is a non-finite state or a quaternion norm drift
	// beyond 1e-3 before renormalization. The flight terminates at the
	// current time with the partial trajectory retained.
	NumericalBreakdown
	// IntegrationLimitReached means t hit tMax without landing. The
	// partial result is valid; this is not an error to the caller.
	IntegrationLimitReached
)

func (k FlightErrorKind) String() string {
	switch k {
	case NoFlightError:
		return "none"
	case NumericalBreakdown:
		return "numerical breakdown"
	case IntegrationLimitReached:
		return "integration limit reached"
	default:
		panic("unknown flight error kind")
	}
}

// FlightEvent is one entry of the append-only event log.
type FlightEvent struct {
	Time     float64
	Type     string
	Altitude float64
	Velocity float64
}

// TrajectoryPoint is a committed sample of the flight state.
type TrajectoryPoint struct {
	Time       float64
	X, Y, Z    float64
	VX, VY, VZ float64
	Mach       float64
	AoA        float64
}

// FlightResult aggregates a completed propagation.
type FlightResult struct {
	Apogee          float64 // m AGL
	ApogeeTime      float64 // s
	MaxVelocity     float64 // m/s
	MaxAcceleration float64 // m/s²
	MaxMach         float64
	FlightTime      float64 // s
	LandingSpeed    float64 // m/s
	RailExitSpeed   float64 // m/s
	Phase           FlightPhase
	ErrKind         FlightErrorKind
	Trajectory      []TrajectoryPoint
	Events          []FlightEvent
	StageImpacts    []StageImpact
}

// FlightState is the streamed per-step snapshot consumed by the exporter.
type FlightState struct {
	T          float64
	R, V, W    []float64
	Q          Quaternion
	Propellant float64
	Phase      FlightPhase
}

const (
	// DefaultStepSize is the integration step of a flight.
	DefaultStepSize = 1e-3
	// MaxStepSize is the permitted upper bound on the step.
	MaxStepSize = 1e-2
	// DefaultMaxFlightTime bounds a single propagation.
	DefaultMaxFlightTime = 120.0
	trajectoryInterval   = 0.05
	maxGimbalAngle       = 0.15
)

// Flight owns the state of one simulated flight and does the propagation.
// It implements the integrator's Integrable contract: the solver probes
// trial states through Func and the committed state replaces the previous
// one atomically in SetState. A Flight is single-use and deterministic:
// identical inputs and step size produce bit-identical trajectories.
type Flight struct {
	Config Configuration
	Atm    Atmosphere
	Wind   WindModel

	// Perturbation knobs for dispersion studies; both default to 1.
	ThrustFactor float64
	DragFactor   float64

	r, v, ω    []float64
	q          Quaternion
	propellant float64
	t          float64
	phase      FlightPhase
	events     []FlightEvent
	trajectory []TrajectoryPoint
	impacts    []StageImpact

	stages   []*Stage
	gimbal   Quaternion
	stepSize float64
	tMax     float64
	maxSteps uint64
	steps    uint64
	errKind  FlightErrorKind
	done     bool
	deployed *Canopy
	railExit float64
	prevV    []float64
	maxAlt   float64
	apogeeT  float64
	maxVel   float64
	maxAcc   float64
	maxMach  float64
	lastTraj float64
	logger   kitlog.Logger
	histChan chan<- FlightState
}

// NewFlight validates the configuration and readies a flight on the pad.
func NewFlight(cfg Configuration) (*Flight, error) {
	return NewFlightWithExport(cfg, ExportConfig{})
}

// NewFlightWithExport additionally streams every committed state to the
// trajectory exporter.
func NewFlightWithExport(cfg Configuration, conf ExportConfig) (*Flight, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %s", err)
	}
	f := &Flight{
		Config:       cfg,
		Atm:          NewAtmosphereWithGround(cfg.GroundTemp, cfg.GroundPressure),
		Wind:         NewWindModel(cfg.Wind),
		ThrustFactor: 1,
		DragFactor:   1,
		r:            []float64{0, 0, 0},
		v:            []float64{0, 0, 0},
		ω:            []float64{0, 0, 0},
		q:            RailAttitude(Deg2rad(cfg.InclinationDeg), Deg2rad(cfg.HeadingDeg)),
		phase:        PreLaunch,
		gimbal:       IdentityQuaternion(),
		stepSize:     DefaultStepSize,
		tMax:         DefaultMaxFlightTime,
		prevV:        []float64{0, 0, 0},
		logger:       FlightLogInit(cfg.Name),
	}
	f.stages = cfg.Stages
	if len(f.stages) == 0 && cfg.Motor != nil {
		// A single-stage vehicle is a one-stage stack which never separates.
		f.stages = []*Stage{{
			Name:       cfg.Name,
			Motor:      cfg.Motor,
			Ignition:   IgniteAtLiftoff,
			Separation: SeparateOnCommand,
		}}
	}
	for _, s := range f.stages {
		f.propellant += s.Motor.PropellantMass
	}
	f.maxSteps = uint64(f.tMax/f.stepSize) + 1
	if !conf.IsUseless() {
		histChan := make(chan FlightState, 1000)
		f.histChan = histChan
		exportWg.Add(1)
		go func() {
			defer exportWg.Done()
			StreamStates(conf, histChan)
		}()
	}
	return f, nil
}

// SetStepSize overrides the integration step, clamped to the permitted range.
func (f *Flight) SetStepSize(dt float64) {
	if dt <= 0 {
		dt = DefaultStepSize
	}
	if dt > MaxStepSize {
		dt = MaxStepSize
	}
	f.stepSize = dt
	f.maxSteps = uint64(f.tMax/f.stepSize) + 1
}

// SetMaxFlightTime overrides the propagation bound.
func (f *Flight) SetMaxFlightTime(tMax float64) {
	if tMax > 0 {
		f.tMax = tMax
		f.maxSteps = uint64(f.tMax/f.stepSize) + 1
	}
}

// SetGimbal tilts the thrust axis by the provided pitch and yaw angles,
// clamped to ±0.15 rad per axis.
func (f *Flight) SetGimbal(pitch, yaw float64) {
	clamp := func(a float64) float64 {
		if a > maxGimbalAngle {
			return maxGimbalAngle
		}
		if a < -maxGimbalAngle {
			return -maxGimbalAngle
		}
		return a
	}
	qp := NewQuaternionFromAxisAngle([]float64{1, 0, 0}, clamp(pitch))
	qy := NewQuaternionFromAxisAngle([]float64{0, 0, 1}, clamp(yaw))
	f.gimbal = qp.Mul(qy).Normalized()
}

// ReleaseAt places the vehicle at an initial altitude with no rail
// constraint, for drop scenarios.
func (f *Flight) ReleaseAt(altitude float64) {
	f.r[1] = altitude
	f.phase = Coasting
}

// mass returns the current total vehicle mass for a trial propellant load.
func (f *Flight) mass(propellant float64) float64 {
	if propellant < 0 {
		propellant = 0
	}
	m := f.Config.Mass.DryMass() + propellant
	if len(f.Config.Stages) > 0 {
		// In a multi-stage stack each stage carries its own structure and
		// casing; the RocketMass breakdown describes the sustainer airframe.
		for _, s := range f.stages {
			if s.Separated {
				continue
			}
			m += s.DryMass + s.Motor.CasingMass
		}
	}
	if m <= 0 {
		m = 1e-3
	}
	return m
}

// thrustAndFlow sums thrust and propellant flow over the burning stages.
func (f *Flight) thrustAndFlow(t float64) (thrust, flow float64) {
	for _, s := range f.stages {
		if !s.Ignited || s.Separated {
			continue
		}
		burnT := t - s.IgnitionTime
		thrust += s.Motor.ThrustAt(burnT) * f.ThrustFactor
		flow += s.Motor.MassFlowRate(burnT)
	}
	return
}

// onRail reports whether the vehicle is still constrained by the rail.
func (f *Flight) onRail(r []float64) bool {
	if f.Config.RailLength <= 0 {
		return false
	}
	return (f.phase == PreLaunch || f.phase == Powered) && Norm(r) < f.Config.RailLength
}

// GetState returns the flat state array (r, v, q, ω, m_prop).
func (f *Flight) GetState() []float64 {
	return []float64{
		f.r[0], f.r[1], f.r[2],
		f.v[0], f.v[1], f.v[2],
		f.q.W, f.q.X, f.q.Y, f.q.Z,
		f.ω[0], f.ω[1], f.ω[2],
		f.propellant,
	}
}

// Func assembles the state derivative at a trial state. It never mutates
// the flight; the commit happens in SetState.
func (f *Flight) Func(t float64, s []float64) []float64 {
	fDot := make([]float64, len(s))
	r := s[0:3]
	v := s[3:6]
	q := Quaternion{s[6], s[7], s[8], s[9]}.Normalized()
	ω := []float64{s[10], s[11], s[12]}
	prop := s[13]

	m := f.mass(prop)
	g := f.Config.Geometry
	amb := f.Atm.Sample(f.Config.BaseAltitude + r[1])

	// Forces.
	force := []float64{0, -m * amb.Gravity, 0}
	thrust, flow := f.thrustAndFlow(t)
	bodyAxis := q.Rotate([]float64{0, 1, 0})
	if thrust > 0 {
		dir := q.Rotate(f.gimbal.Rotate([]float64{0, 1, 0}))
		force = Added(force, Scaled(dir, thrust))
	}
	vRel := Subbed(v, f.Wind.VelocityAt(r[1], t))
	xCG := f.Config.Mass.CenterOfGravity(prop)
	aero := ComputeAeroForces(g, vRel, bodyAxis, amb, xCG)
	force = Added(force, Scaled(aero.Drag, f.DragFactor))
	if f.deployed != nil {
		vr := Norm(vRel)
		if vr > 1e-6 {
			chute := 0.5 * amb.Density * vr * vr * f.deployed.DragArea()
			force = Added(force, Scaled(Unit(vRel), -chute))
		}
	}

	// Moments. The canopy damps the attitude dynamics entirely.
	moment := []float64{0, 0, 0}
	if f.deployed == nil {
		moment = aero.Moment
		if thrust > 0 {
			// Gimbal torque about the CG, assembled in the body frame.
			xMotor := f.Config.Mass.Casing.Position
			arm := []float64{0, -(xMotor - xCG), 0}
			fBody := f.gimbal.Rotate([]float64{0, thrust, 0})
			moment = Added(moment, q.Rotate(Cross(arm, fBody)))
		}
	}

	if f.onRail(r) {
		// The rail reacts every force component but the axial one, and
		// holds the attitude fixed.
		rail := RailDirection(Deg2rad(f.Config.InclinationDeg), Deg2rad(f.Config.HeadingDeg))
		axial := Dot(force, rail)
		if axial < 0 && r[1] <= 1e-9 {
			axial = 0 // the pad holds the stack down
		}
		force = Scaled(rail, axial)
		moment = []float64{0, 0, 0}
		ω = []float64{0, 0, 0}
	}

	// dr/dt, dv/dt.
	fDot[0], fDot[1], fDot[2] = v[0], v[1], v[2]
	fDot[3] = force[0] / m
	fDot[4] = force[1] / m
	fDot[5] = force[2] / m

	// dq/dt.
	dq := q.KinematicRate(ω)
	fDot[6], fDot[7], fDot[8], fDot[9] = dq.W, dq.X, dq.Y, dq.Z

	// dω/dt from Euler's rigid-body equations. The roll axis is the body
	// longitudinal (+y); x and z share the transverse inertia, recomputed
	// each call from the current mass and length.
	length := g.TotalLength()
	radius := g.BodyRadius
	iT := m*length*length/12 + m*radius*radius/4
	iR := m * radius * radius / 2
	mBody := q.Conjugate().Rotate(moment)
	fDot[10] = (mBody[0] - (iT-iR)*ω[1]*ω[2]) / iT
	fDot[11] = mBody[1] / iR // the transverse inertias are equal
	fDot[12] = (mBody[2] - (iR-iT)*ω[0]*ω[1]) / iT

	// dm_prop/dt.
	fDot[13] = -flow
	return fDot
}

// SetState commits the state at time t, renormalizes the attitude, and
// advances the phase machine and the stage triggers.
func (f *Flight) SetState(t float64, s []float64) {
	// Breakdown checks happen before the commit so a poisoned state never
	// replaces a finite one.
	for _, val := range s {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			f.fail(t, "non-finite state")
			return
		}
	}
	q := Quaternion{s[6], s[7], s[8], s[9]}
	if math.Abs(q.Norm()-1) > 1e-3 {
		f.fail(t, fmt.Sprintf("quaternion norm drifted to %f", q.Norm()))
		return
	}

	f.t = t
	copy(f.r, s[0:3])
	copy(f.v, s[3:6])
	f.q = q.Normalized()
	copy(f.ω, s[10:13])
	f.propellant = math.Max(0, s[13])

	// Ignitions are evaluated before separations so that a sustainer can
	// light on the very step its booster departs.
	f.advanceStages(t)
	f.advancePhase(t)
	f.track(t)

	if f.histChan != nil {
		f.histChan <- FlightState{t, append([]float64{}, f.r...), append([]float64{}, f.v...), append([]float64{}, f.ω...), f.q, f.propellant, f.phase}
	}
}

func (f *Flight) fail(t float64, why string) {
	f.errKind = NumericalBreakdown
	f.done = true
	f.logger.Log("level", "critical", "subsys", "flight", "t", t, "breakdown", why)
}

// advanceStages walks the stack from the booster up and evaluates, for each
// stage, its ignition trigger, its burnout, then its separation trigger.
func (f *Flight) advanceStages(t float64) {
	altitude := f.r[1]
	speed := Norm(f.v)

	var prior *Stage
	for i, s := range f.stages {
		if !s.Separated && s.shouldIgnite(t, altitude, f.v[1], prior) {
			s.Ignited = true
			s.IgnitionTime = t
			switch f.phase {
			case PreLaunch:
				f.phase = Powered
				f.emit(t, "liftoff", altitude, speed)
				f.logger.Log("level", "notice", "subsys", "flight", "t", t, "phase", f.phase)
			case Coasting:
				f.phase = Powered
			}
			f.emit(t, "ignition", altitude, speed)
			f.logger.Log("level", "info", "subsys", "prop", "t", t, "ignited", s.Name)
		}
		if s.Ignited && !s.BurnedOut && (t-s.IgnitionTime) >= s.Motor.BurnTime {
			s.BurnedOut = true
			f.emit(t, "burnout", altitude, speed)
			f.logger.Log("level", "info", "subsys", "prop", "t", t, "burnout", s.Name, "v(m/s)", speed)
		}
		// The sustainer never separates from itself.
		if i < len(f.stages)-1 && s.shouldSeparate(t, altitude, speed) {
			s.Separated = true
			s.SeparationTime = t
			f.emit(t, "separation", altitude, speed)
			f.logger.Log("level", "info", "subsys", "flight", "t", t, "separated", s.Name)
			impactMass := s.DryMass + s.Motor.CasingMass
			if impactMass <= 0 {
				impactMass = 0.1
			}
			f.impacts = append(f.impacts, ballisticImpact(s.Name, t, altitude, f.v[1], impactMass, f.Config.Geometry.BodyRadius, f.Atm))
		}
		prior = s
	}
}

// advancePhase runs the phase machine after the stage bookkeeping.
func (f *Flight) advancePhase(t float64) {
	thrust, _ := f.thrustAndFlow(t)
	altitude := f.r[1]
	speed := Norm(f.v)

	switch f.phase {
	case Powered:
		if f.railExit == 0 && f.Config.RailLength > 0 && Norm(f.r) >= f.Config.RailLength {
			f.railExit = speed
			f.emit(t, "rail_departure", altitude, speed)
		}
		if thrust == 0 && f.allIgnitedBurnedOut() {
			f.phase = Coasting
		}
	case Coasting:
		if f.v[1] <= 0 && altitude > 10 {
			f.phase = Descent
			f.maxAlt = altitude
			f.apogeeT = t
			f.emit(t, "apogee", altitude, speed)
			f.logger.Log("level", "notice", "subsys", "flight", "t", t, "apogee(m)", altitude)
			f.openCanopy(t, altitude)
		}
	case Descent:
		if f.Config.Recovery != nil && f.Config.Recovery.DualDeploy &&
			f.deployed == &f.Config.Recovery.Drogue && altitude <= f.Config.Recovery.MainDeployAltitude {
			f.deployed = &f.Config.Recovery.Main
			f.emit(t, "main_deploy", altitude, speed)
			f.logger.Log("level", "info", "subsys", "recovery", "t", t, "main(m)", altitude)
		}
	}

	if f.phase != Landed && f.r[1] <= 0 && t > 0.1 {
		f.phase = Landed
		f.r[1] = 0
		landingSpeed := math.Abs(f.v[1])
		// Touchdown damps the lateral motion.
		f.v[0] *= 0.1
		f.v[2] *= 0.1
		f.emit(t, "landing", 0, landingSpeed)
		f.logger.Log("level", "notice", "subsys", "flight", "t", t, "landing(m/s)", landingSpeed)
		f.done = true
	}
}

func (f *Flight) allIgnitedBurnedOut() bool {
	any := false
	for _, s := range f.stages {
		if s.Ignited && !s.Separated {
			any = true
			if !s.BurnedOut {
				return false
			}
		}
	}
	return any
}

// openCanopy opens the drogue (dual deploy) or the main at apogee.
func (f *Flight) openCanopy(t, altitude float64) {
	if f.Config.Recovery == nil {
		return
	}
	if f.Config.Recovery.DualDeploy {
		f.deployed = &f.Config.Recovery.Drogue
		f.emit(t, "drogue_deploy", altitude, Norm(f.v))
		f.logger.Log("level", "info", "subsys", "recovery", "t", t, "drogue(m)", altitude)
		return
	}
	f.deployed = &f.Config.Recovery.Main
	f.emit(t, "main_deploy", altitude, Norm(f.v))
	f.logger.Log("level", "info", "subsys", "recovery", "t", t, "main(m)", altitude)
}

// track updates the flight maxima and samples the trajectory whenever the
// step time crosses a 50 ms boundary.
func (f *Flight) track(t float64) {
	speed := Norm(f.v)
	if speed > f.maxVel {
		f.maxVel = speed
	}
	if f.r[1] > f.maxAlt && f.phase != Descent && f.phase != Landed {
		f.maxAlt = f.r[1]
	}
	if t > 0 && !f.done {
		acc := Norm(Subbed(f.v, f.prevV)) / f.stepSize
		if acc > f.maxAcc {
			f.maxAcc = acc
		}
	}
	copy(f.prevV, f.v)

	amb := f.Atm.Sample(f.Config.BaseAltitude + f.r[1])
	mach := speed / amb.SpeedOfSound
	if mach > f.maxMach {
		f.maxMach = mach
	}

	if t == 0 || math.Floor(t/trajectoryInterval) > math.Floor(f.lastTraj/trajectoryInterval) {
		vRel := Subbed(f.v, f.Wind.VelocityAt(f.r[1], t))
		aoa := 0.0
		if Norm(vRel) > 1e-6 {
			bodyAxis := f.q.Rotate([]float64{0, 1, 0})
			c := Dot(bodyAxis, Unit(vRel))
			if c > 1 {
				c = 1
			} else if c < -1 {
				c = -1
			}
			aoa = math.Acos(c)
		}
		f.trajectory = append(f.trajectory, TrajectoryPoint{
			Time: t,
			X:    f.r[0], Y: f.r[1], Z: f.r[2],
			VX: f.v[0], VY: f.v[1], VZ: f.v[2],
			Mach: mach,
			AoA:  aoa,
		})
		f.lastTraj = t
	}
}

// emit appends to the event log in causal order.
func (f *Flight) emit(t float64, kind string, altitude, velocity float64) {
	f.events = append(f.events, FlightEvent{t, kind, altitude, velocity})
}

// Stop implements the integrator contract: the propagation ends on
// landing, breakdown, or the integration bound.
func (f *Flight) Stop(t float64) bool {
	if f.done {
		f.closeHist()
		return true
	}
	f.steps++
	if t >= f.tMax || f.steps > f.maxSteps {
		if f.errKind == NoFlightError {
			f.errKind = IntegrationLimitReached
			f.logger.Log("level", "warning", "subsys", "flight", "t", t, "status", "integration limit reached", "phase", f.phase)
		}
		f.closeHist()
		return true
	}
	return false
}

func (f *Flight) closeHist() {
	if f.histChan != nil {
		close(f.histChan)
		f.histChan = nil
	}
}

// Propagate runs the flight to completion and returns the result.
func (f *Flight) Propagate() FlightResult {
	f.logger.Log("level", "info", "subsys", "flight", "status", "starting", "phase", f.phase, "propellant(kg)", f.propellant)
	ode.NewRK4(0, f.stepSize, f).Solve() // Blocking.
	f.closeHist()
	exportWg.Wait()

	res := FlightResult{
		Apogee:          f.maxAlt,
		ApogeeTime:      f.apogeeT,
		MaxVelocity:     f.maxVel,
		MaxAcceleration: f.maxAcc,
		MaxMach:         f.maxMach,
		FlightTime:      f.t,
		RailExitSpeed:   f.railExit,
		Phase:           f.phase,
		ErrKind:         f.errKind,
		Trajectory:      f.trajectory,
		Events:          f.events,
		StageImpacts:    f.impacts,
	}
	for _, ev := range f.events {
		if ev.Type == "landing" {
			res.LandingSpeed = ev.Velocity
		}
	}
	f.logger.Log("level", "notice", "subsys", "flight", "status", "finished",
		"apogee(m)", res.Apogee, "maxV(m/s)", res.MaxVelocity, "flightTime(s)", res.FlightTime, "phase", res.Phase)
	return res
}

// LandingPosition returns the touchdown coordinates of a result, east and
// north of the pad.
func (res FlightResult) LandingPosition() (east, north float64) {
	if len(res.Trajectory) == 0 {
		return 0, 0
	}
	last := res.Trajectory[len(res.Trajectory)-1]
	return last.X, -last.Z
}
