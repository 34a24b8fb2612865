package launchsim

import "math"

/* Barrowman center of pressure and a component drag build-up. */

// noseCPFraction returns the CP station of the nose as a fraction of the
// nose length, per shape.
func noseCPFraction(s NoseShape) float64 {
	switch s {
	case Conical:
		return 2.0 / 3.0
	case Ogive:
		return 0.466
	case Elliptical:
		return 1.0 / 3.0
	case VonKarman, Haack:
		return 0.437
	case Power:
		return 0.5
	case Blunted:
		return 0.4
	default:
		return 0.466 // ogive fallback
	}
}

// nosePressureCoefficient feeds the pressure drag component, per shape.
func nosePressureCoefficient(s NoseShape) float64 {
	switch s {
	case Conical:
		return 0.08
	case Ogive:
		return 0.02
	case Parabolic:
		return 0.03
	case Elliptical:
		return 0.05
	case VonKarman, Haack:
		return 0.01
	case Power:
		return 0.04
	case Blunted:
		return 0.12
	default:
		return 0.02
	}
}

// CPResult carries the normal-force slope and center of pressure of the
// full vehicle.
type CPResult struct {
	CNAlpha float64 // per radian
	CP      float64 // m from the nose tip
}

// CenterOfPressure sums the Barrowman contributions of the nose, the
// optional boattail transition, and the fin set. The cylindrical body
// contributes nothing in the subsonic regime.
func CenterOfPressure(g RocketGeometry) CPResult {
	type contribution struct {
		cnα float64
		x   float64
	}
	contribs := make([]contribution, 0, 3)

	// Nose.
	contribs = append(contribs, contribution{2, noseCPFraction(g.NoseShape) * g.NoseLength})

	// Boattail as a reducing transition.
	if g.Boattail != nil {
		d1 := g.Diameter()
		d2 := g.Boattail.EndDiameter
		ratio := d2 / d1
		cnα := 2 * (ratio*ratio - 1)
		xc := g.Boattail.Length * (1 + ratio + ratio*ratio) / (3 * (1 + ratio))
		contribs = append(contribs, contribution{cnα, g.NoseLength + g.BodyLength + xc})
	}

	// Fin set with body interference.
	f := g.Fins
	d := g.Diameter()
	ℓ := math.Sqrt(f.Span*f.Span + math.Pow(f.SweepDistance+f.TipChord/2-f.RootChord/2, 2))
	cnαFins := 4 * float64(f.Count) * math.Pow(f.Span/d, 2) /
		(1 + math.Sqrt(1+math.Pow(2*ℓ/(f.RootChord+f.TipChord), 2)))
	k := 1 + g.BodyRadius/(f.Span+g.BodyRadius)
	cnαFins *= k
	xf := f.SweepDistance*(f.RootChord+2*f.TipChord)/(3*(f.RootChord+f.TipChord)) +
		(f.RootChord+f.TipChord-f.RootChord*f.TipChord/(f.RootChord+f.TipChord))/6
	finStation := g.NoseLength + g.BodyLength - f.RootChord
	contribs = append(contribs, contribution{cnαFins, finStation + xf})

	var sumCNα, sumMoment float64
	for _, c := range contribs {
		sumCNα += c.cnα
		sumMoment += c.cnα * c.x
	}
	if sumCNα == 0 {
		return CPResult{0, 0}
	}
	return CPResult{sumCNα, sumMoment / sumCNα}
}

// DragBreakdown is the component-resolved drag coefficient, all terms
// normalized by the reference area.
type DragBreakdown struct {
	Friction float64
	Pressure float64
	Base     float64
	Wave     float64
	Induced  float64
}

// Total returns the summed drag coefficient.
func (d DragBreakdown) Total() float64 {
	return d.Friction + d.Pressure + d.Base + d.Wave + d.Induced
}

// DragCoefficient evaluates the drag build-up at the provided Mach
// number, Reynolds number and angle of attack (radians).
func DragCoefficient(g RocketGeometry, mach, reynolds, α float64) DragBreakdown {
	var d DragBreakdown
	aRef := g.ReferenceArea()

	// Skin friction over the wetted area.
	var cf float64
	if reynolds <= 0 {
		cf = 0
	} else if reynolds < 1e4 {
		cf = 1.328 / math.Sqrt(reynolds) // laminar
	} else {
		l10 := math.Log10(reynolds)
		cf = 0.455 / math.Pow(l10, 2.58) // turbulent
	}
	if mach > 0.3 && mach < 1 {
		cf /= math.Sqrt(1 - mach*mach) // Prandtl-Glauert
	}
	cf *= g.Roughness.roughnessFactor()
	bodyWetted := 2 * math.Pi * g.BodyRadius * (g.BodyLength + 0.7*g.NoseLength)
	finWetted := 2 * float64(g.Fins.Count) * g.Fins.PlanformArea()
	fineness := (g.NoseLength + g.BodyLength) / g.Diameter()
	bodyFactor := 1 + 60/math.Pow(fineness, 3) + 0.0025*fineness
	d.Friction = cf * (bodyWetted*bodyFactor + finWetted) / aRef

	// Pressure drag: nose shape plus fin leading edges.
	finLE := 0.5 * float64(g.Fins.Count) * g.Fins.Thickness * g.Fins.Span / aRef
	d.Pressure = nosePressureCoefficient(g.NoseShape) + finLE

	// Base drag.
	if mach < 1 {
		d.Base = 0.12 + 0.13*mach*mach
	} else {
		d.Base = 0.25 / mach
	}

	// Wave drag. The transonic ramp spans M=1 continuously, so the
	// 0.2/√(M²−1) form, singular at M=1, is only evaluated from M=1.2.
	switch {
	case mach < 0.8:
		d.Wave = 0
	case mach < 1.2:
		x := (mach - 0.8) / 0.4
		d.Wave = 0.2 * x * x
	default:
		d.Wave = 0.2 / math.Sqrt(mach*mach-1)
	}

	// Induced drag from angle of attack. The quadratic lift-line term is
	// only valid at small angles; past ~20° the fins are stalled and the
	// term is held at its stall value.
	ar := g.Fins.AspectRatio()
	if ar > 0 {
		const e = 0.85
		const stallAoA = 0.35
		if α > stallAoA {
			α = stallAoA
		}
		d.Induced = math.Pow(2*α, 2) / (math.Pi * ar * e)
	}
	return d
}

// AeroForces is the instantaneous aerodynamic force and moment set, in
// the world frame.
type AeroForces struct {
	Drag          []float64 // N
	Moment        []float64 // N·m, restoring, world frame axis
	AngleOfAttack float64   // rad
	Mach          float64
	Cd            float64
}

// ComputeAeroForces evaluates drag and the restoring moment for a
// relative airspeed vRel (vehicle velocity minus wind), the body axis in
// the world frame, the ambient sample, and the CG station.
func ComputeAeroForces(g RocketGeometry, vRel, bodyAxis []float64, amb AtmosphereSample, xCG float64) AeroForces {
	out := AeroForces{Drag: []float64{0, 0, 0}, Moment: []float64{0, 0, 0}}
	v := Norm(vRel)
	if v < 1e-6 {
		return out
	}
	vHat := Unit(vRel)
	out.Mach = v / amb.SpeedOfSound

	// Angle of attack between the body axis and the airflow.
	cosα := Dot(bodyAxis, vHat)
	if cosα > 1 {
		cosα = 1
	} else if cosα < -1 {
		cosα = -1
	}
	out.AngleOfAttack = math.Acos(cosα)

	reynolds := amb.Density * v * g.TotalLength() / amb.Viscosity
	cd := DragCoefficient(g, out.Mach, reynolds, out.AngleOfAttack)
	out.Cd = cd.Total()

	q := 0.5 * amb.Density * v * v
	dragMag := q * out.Cd * g.ReferenceArea()
	out.Drag = Scaled(vHat, -dragMag)

	// Restoring moment about the CG, along (body_axis × v̂): with the CP
	// aft of the CG it turns the body axis toward the airflow and so
	// reduces α.
	if v > 0.1 && out.AngleOfAttack > 1e-3 {
		cp := CenterOfPressure(g)
		arm := cp.CP - xCG
		momentMag := q * cp.CNAlpha * out.AngleOfAttack * g.ReferenceArea() * arm
		axis := Cross(bodyAxis, vHat)
		if Norm(axis) > 1e-9 {
			out.Moment = Scaled(Unit(axis), momentMag)
		}
	}
	return out
}
