package launchsim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func g10Fins() FinSet {
	return FinSet{
		Count:         3,
		RootChord:     0.100,
		TipChord:      0.050,
		Span:          0.080,
		SweepDistance: 0.030,
		Thickness:     0.003,
	}
}

func TestFlutterVelocity(t *testing.T) {
	fa, err := NewFlutterAnalyzer(g10Fins(), Materials["G10"], NewAtmosphere(), 0)
	require.NoError(t, err)
	vf := fa.FlutterVelocity()
	require.Greater(t, vf, 100.0)

	res := fa.Analyze(150)
	require.GreaterOrEqual(t, res.SafetyFactor, 1.5)
	require.Contains(t, []FlutterStatus{FlutterExcellent, FlutterGood}, res.Status)
}

func TestThickerFinFluttersLater(t *testing.T) {
	atm := NewAtmosphere()
	prev := 0.0
	for _, thickness := range []float64{0.002, 0.003, 0.004, 0.006} {
		fins := g10Fins()
		fins.Thickness = thickness
		fa, err := NewFlutterAnalyzer(fins, Materials["G10"], atm, 0)
		require.NoError(t, err)
		vf := fa.FlutterVelocity()
		require.Greater(t, vf, prev, "flutter velocity must grow with thickness")
		prev = vf
	}
}

func TestFlutterAltitudeEffect(t *testing.T) {
	atm := NewAtmosphere()
	low, _ := NewFlutterAnalyzer(g10Fins(), Materials["G10"], atm, 0)
	high, _ := NewFlutterAnalyzer(g10Fins(), Materials["G10"], atm, 8000)
	// Thinner air flutters later.
	require.Greater(t, high.FlutterVelocity(), low.FlutterVelocity())
}

func TestFlutterStatusLadder(t *testing.T) {
	fa, err := NewFlutterAnalyzer(g10Fins(), Materials["G10"], NewAtmosphere(), 0)
	require.NoError(t, err)
	vf := fa.FlutterVelocity()
	require.Equal(t, FlutterExcellent, fa.Analyze(vf/2.5).Status)
	require.Equal(t, FlutterGood, fa.Analyze(vf/1.7).Status)
	require.Equal(t, FlutterAdequate, fa.Analyze(vf/1.3).Status)
	require.Equal(t, FlutterMarginal, fa.Analyze(vf/1.1).Status)
	require.Equal(t, FlutterUnsafe, fa.Analyze(vf*1.2).Status)
}

func TestRequiredThickness(t *testing.T) {
	fa, err := NewFlutterAnalyzer(g10Fins(), Materials["G10"], NewAtmosphere(), 0)
	require.NoError(t, err)
	// The inverse solve round-trips through the forward formula.
	target := 300.0
	thickness := fa.RequiredThickness(target)
	require.Greater(t, thickness, 0.0)

	fins := g10Fins()
	fins.Thickness = thickness
	check, err := NewFlutterAnalyzer(fins, Materials["G10"], NewAtmosphere(), 0)
	require.NoError(t, err)
	require.InDelta(t, target, check.FlutterVelocity(), 1)
}

func TestFlutterValidation(t *testing.T) {
	fins := g10Fins()
	fins.Thickness = 0
	_, err := NewFlutterAnalyzer(fins, Materials["G10"], NewAtmosphere(), 0)
	require.Error(t, err, "zero thickness would blow up the cubed inverse")

	_, err = NewFlutterAnalyzer(g10Fins(), Material{Name: "vacuum"}, NewAtmosphere(), 0)
	require.Error(t, err)
}

func TestMaterialTable(t *testing.T) {
	for name, m := range Materials {
		require.NoError(t, m.Validate(), name)
		require.Equal(t, name, m.Name)
	}
	require.Equal(t, CompositeMaterial, Materials["G10"].Category)
}
