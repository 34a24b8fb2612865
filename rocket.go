package launchsim

import (
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// NoseShape defines the supported nose cone profiles.
type NoseShape uint8

const (
	// Conical nose cone
	Conical NoseShape = iota + 1
	// Ogive (tangent) nose cone
	Ogive
	// Parabolic nose cone
	Parabolic
	// Elliptical nose cone
	Elliptical
	// VonKarman (LD-Haack) nose cone
	VonKarman
	// Haack series nose cone
	Haack
	// Power series nose cone
	Power
	// Blunted nose cone
	Blunted
)

func (s NoseShape) String() string {
	switch s {
	case Conical:
		return "conical"
	case Ogive:
		return "ogive"
	case Parabolic:
		return "parabolic"
	case Elliptical:
		return "elliptical"
	case VonKarman:
		return "vonKarman"
	case Haack:
		return "haack"
	case Power:
		return "power"
	case Blunted:
		return "blunted"
	default:
		panic("unknown nose shape")
	}
}

// ParseNoseShape returns the shape for a configuration tag.
func ParseNoseShape(tag string) (NoseShape, error) {
	for s := Conical; s <= Blunted; s++ {
		if s.String() == tag {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown nose shape tag %q", tag)
}

// SurfaceRoughness defines the finish of the airframe.
type SurfaceRoughness uint8

const (
	// PolishedFinish for a mirror finish
	PolishedFinish SurfaceRoughness = iota + 1
	// PaintedFinish for a smooth painted surface
	PaintedFinish
	// UnfinishedFinish for raw airframe material
	UnfinishedFinish
	// RoughFinish for unsanded, rough surfaces
	RoughFinish
)

func (r SurfaceRoughness) String() string {
	switch r {
	case PolishedFinish:
		return "polished"
	case PaintedFinish:
		return "painted"
	case UnfinishedFinish:
		return "unfinished"
	case RoughFinish:
		return "rough"
	default:
		panic("unknown surface roughness")
	}
}

// roughnessFactor multiplies the skin friction coefficient.
func (r SurfaceRoughness) roughnessFactor() float64 {
	switch r {
	case PolishedFinish:
		return 1.0
	case PaintedFinish:
		return 1.1
	case UnfinishedFinish:
		return 1.25
	case RoughFinish:
		return 1.5
	default:
		panic("unknown surface roughness")
	}
}

// FinSet is a trapezoidal fin set. Dimensions are per fin.
type FinSet struct {
	Count         int
	RootChord     float64 // m
	TipChord      float64 // m
	Span          float64 // m, semi-span from the body wall
	SweepDistance float64 // m, leading edge sweep at the tip
	Thickness     float64 // m
}

// PlanformArea returns the planform area of a single fin.
func (f FinSet) PlanformArea() float64 {
	return (f.RootChord + f.TipChord) * f.Span / 2
}

// AspectRatio returns the fin aspect ratio 2s/(Cr+Ct).
func (f FinSet) AspectRatio() float64 {
	return 2 * f.Span / (f.RootChord + f.TipChord)
}

// Boattail is an optional tapered tail section.
type Boattail struct {
	Length      float64 // m
	EndDiameter float64 // m
}

// RocketGeometry is immutable during a flight.
type RocketGeometry struct {
	BodyRadius float64 // m
	BodyLength float64 // m, without the nose
	NoseLength float64 // m
	NoseShape  NoseShape
	Fins       FinSet
	Boattail   *Boattail
	Roughness  SurfaceRoughness
}

// TotalLength returns nose plus body length, plus the boattail when present.
func (g RocketGeometry) TotalLength() float64 {
	l := g.NoseLength + g.BodyLength
	if g.Boattail != nil {
		l += g.Boattail.Length
	}
	return l
}

// ReferenceArea returns the body cross section used to normalize the
// aerodynamic coefficients.
func (g RocketGeometry) ReferenceArea() float64 {
	return math.Pi * g.BodyRadius * g.BodyRadius
}

// Diameter returns the body diameter, i.e. one caliber.
func (g RocketGeometry) Diameter() float64 {
	return 2 * g.BodyRadius
}

// Validate checks the geometry at construction so the engine never
// starts from an impossible vehicle.
func (g RocketGeometry) Validate() error {
	if g.BodyRadius <= 0 || g.BodyLength <= 0 || g.NoseLength <= 0 {
		return fmt.Errorf("non-positive body dimensions (R=%f L=%f nose=%f)", g.BodyRadius, g.BodyLength, g.NoseLength)
	}
	if g.NoseShape < Conical || g.NoseShape > Blunted {
		return fmt.Errorf("unknown nose shape tag %d", g.NoseShape)
	}
	if g.Fins.Count < 3 {
		return fmt.Errorf("a stable rocket needs at least 3 fins, got %d", g.Fins.Count)
	}
	if g.Fins.RootChord <= 0 || g.Fins.Span <= 0 || g.Fins.Thickness <= 0 {
		return fmt.Errorf("non-positive fin dimensions (Cr=%f s=%f t=%f)", g.Fins.RootChord, g.Fins.Span, g.Fins.Thickness)
	}
	if g.Fins.TipChord < 0 || g.Fins.SweepDistance < 0 {
		return fmt.Errorf("negative fin tip chord or sweep")
	}
	if g.Boattail != nil && (g.Boattail.Length <= 0 || g.Boattail.EndDiameter <= 0 || g.Boattail.EndDiameter >= g.Diameter()) {
		return fmt.Errorf("boattail must taper down from the body diameter")
	}
	return nil
}

// MassComponent is a point mass at an axial station measured from the nose tip.
type MassComponent struct {
	Name     string
	Mass     float64 // kg
	Position float64 // m from nose tip
}

// RocketMass is the dry mass breakdown of the vehicle. The motor casing
// is included here; propellant is tracked by the flight state.
type RocketMass struct {
	Nose     MassComponent
	Body     MassComponent
	Fins     MassComponent
	Recovery MassComponent
	Casing   MassComponent
}

// Components returns the breakdown as a slice for mass-weighted sums.
func (m RocketMass) Components() []MassComponent {
	return []MassComponent{m.Nose, m.Body, m.Fins, m.Recovery, m.Casing}
}

// DryMass returns the summed component masses.
func (m RocketMass) DryMass() (total float64) {
	for _, c := range m.Components() {
		total += c.Mass
	}
	return
}

// CenterOfGravity returns the mass-weighted CG with the provided extra
// propellant mass concentrated at the casing station.
func (m RocketMass) CenterOfGravity(propellant float64) float64 {
	total, moment := propellant, propellant*m.Casing.Position
	for _, c := range m.Components() {
		total += c.Mass
		moment += c.Mass * c.Position
	}
	if total == 0 {
		return 0
	}
	return moment / total
}

// Validate rejects a massless vehicle.
func (m RocketMass) Validate() error {
	if m.DryMass() <= 0 {
		return fmt.Errorf("dry mass must be positive, got %f", m.DryMass())
	}
	for _, c := range m.Components() {
		if c.Mass < 0 || c.Position < 0 {
			return fmt.Errorf("component %s has negative mass or position", c.Name)
		}
	}
	return nil
}

// WindConfig describes the ground wind for a flight.
type WindConfig struct {
	Speed         float64 // m/s at 10 m
	DirectionDeg  float64 // degrees clockwise from north, direction the wind blows from
	GustAmplitude float64 // m/s
}

// Configuration is the full launch scenario handed to the flight engine.
// Angles are in degrees here, at the outer surface; the engine converts
// to radians on construction.
type Configuration struct {
	Name           string
	Geometry       RocketGeometry
	Mass           RocketMass
	Motor          *Motor
	Recovery       *RecoveryConfig
	Stages         []*Stage // empty for a single-stage flight
	RailLength     float64  // m
	InclinationDeg float64  // degrees from vertical
	HeadingDeg     float64  // degrees clockwise from north
	BaseAltitude   float64  // m ASL of the launch site
	Wind           WindConfig
	GroundTemp     float64 // K, 0 means ISA standard
	GroundPressure float64 // Pa, 0 means ISA standard
}

// Validate surfaces configuration errors immediately, before any
// propagation starts.
func (c Configuration) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("geometry: %s", err)
	}
	if err := c.Mass.Validate(); err != nil {
		return fmt.Errorf("mass: %s", err)
	}
	if c.RailLength < 0 {
		return fmt.Errorf("negative rail length")
	}
	if c.Wind.Speed < 0 || c.Wind.GustAmplitude < 0 {
		return fmt.Errorf("negative wind speed or gust amplitude")
	}
	if c.Recovery != nil {
		if err := c.Recovery.Validate(); err != nil {
			return fmt.Errorf("recovery: %s", err)
		}
	}
	for i, stage := range c.Stages {
		if err := stage.Validate(); err != nil {
			return fmt.Errorf("stage %d: %s", i, err)
		}
	}
	return nil
}

// FlightLogInit initializes the logger of a flight.
func FlightLogInit(name string) kitlog.Logger {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "vehicle", name)
	return klog
}
