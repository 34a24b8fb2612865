package launchsim

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestSeaLevel(t *testing.T) {
	amb := NewAtmosphere().Sample(0)
	if !floats.EqualWithinAbs(amb.Pressure, 101325, 1) {
		t.Fatalf("sea level pressure %f", amb.Pressure)
	}
	if !floats.EqualWithinAbs(amb.Temperature, 288.15, 0.1) {
		t.Fatalf("sea level temperature %f", amb.Temperature)
	}
	if !floats.EqualWithinAbs(amb.Density, 1.225, 0.001) {
		t.Fatalf("sea level density %f", amb.Density)
	}
	if !floats.EqualWithinAbs(amb.SpeedOfSound, 340.3, 1) {
		t.Fatalf("sea level speed of sound %f", amb.SpeedOfSound)
	}
	if !floats.EqualWithinAbs(amb.Gravity, 9.80665, 1e-6) {
		t.Fatalf("sea level gravity %f", amb.Gravity)
	}
}

func TestLapseRate(t *testing.T) {
	atm := NewAtmosphere()
	amb := atm.Sample(5000)
	if !floats.EqualWithinAbs(amb.Temperature, 288.15-6.5e-3*5000, 1e-9) {
		t.Fatalf("temperature at 5 km: %f", amb.Temperature)
	}
	if amb.Pressure >= 101325 || amb.Density >= 1.225 {
		t.Fatal("pressure and density must drop with altitude")
	}
}

func TestTropopauseContinuity(t *testing.T) {
	atm := NewAtmosphere()
	below := atm.Sample(TropopauseAltitude - 1e-6)
	above := atm.Sample(TropopauseAltitude + 1e-6)
	if !floats.EqualWithinAbs(below.Pressure, above.Pressure, 1) {
		t.Fatalf("pressure discontinuity at the tropopause: %f vs %f", below.Pressure, above.Pressure)
	}
	if !floats.EqualWithinAbs(below.Temperature, above.Temperature, 0.01) {
		t.Fatalf("temperature discontinuity at the tropopause")
	}
	// Isothermal above.
	t15 := atm.Sample(15000).Temperature
	t20 := atm.Sample(20000).Temperature
	if !floats.EqualWithinAbs(t15, t20, 1e-9) {
		t.Fatal("stratosphere should be isothermal")
	}
}

func TestGravityFalloff(t *testing.T) {
	if Gravity(0) != StandardGravity {
		t.Fatal("surface gravity fail")
	}
	if g := Gravity(10000); g >= StandardGravity || g < 9.7 {
		t.Fatalf("gravity at 10 km: %f", g)
	}
}

func TestSutherland(t *testing.T) {
	amb := NewAtmosphere().Sample(0)
	// Dynamic viscosity of air at 288 K is about 1.79e-5 Pa·s.
	if !floats.EqualWithinAbs(amb.Viscosity, 1.79e-5, 0.05e-5) {
		t.Fatalf("viscosity %e", amb.Viscosity)
	}
}

func TestGroundOverride(t *testing.T) {
	atm := NewAtmosphereWithGround(303.15, 99000)
	amb := atm.Sample(0)
	if amb.Temperature != 303.15 || amb.Pressure != 99000 {
		t.Fatal("ground override fail")
	}
	if math.IsNaN(atm.Sample(-400).Density) {
		t.Fatal("extrapolation below ground must stay finite")
	}
}
