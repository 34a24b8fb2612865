package launchsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const scenarioTOML = `
[rocket]
name = "test-bird"

[geometry]
body_radius = 0.0125
body_length = 0.30
nose_length = 0.07
nose_shape = "ogive"

[fins]
count = 3
root_chord = 0.05
tip_chord = 0.03
span = 0.04
sweep = 0.02
thickness = 0.003

[mass]
nose = 0.008
nose_position = 0.05
body = 0.018
body_position = 0.22
fins = 0.006
fins_position = 0.34
recovery = 0.004
recovery_position = 0.12
casing = 0.0122
casing_position = 0.345

[motor]
designation = "C6"

[recovery]
main_diameter = 0.25
main_cd = 0.8

[launch]
rail_length = 1.0
inclination = 2.0
heading = 45.0

[wind]
speed = 3.0
direction = 270.0
gust_amplitude = 0.5
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bird.toml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioTOML), 0644))

	cfg, err := LoadScenario(path)
	require.NoError(t, err)
	require.Equal(t, "test-bird", cfg.Name)
	require.Equal(t, Ogive, cfg.Geometry.NoseShape)
	require.Equal(t, 3, cfg.Geometry.Fins.Count)
	require.Equal(t, Motors["C6"], cfg.Motor)
	require.NotNil(t, cfg.Recovery)
	require.False(t, cfg.Recovery.DualDeploy)
	require.Equal(t, 1.0, cfg.RailLength)
	require.Equal(t, 3.0, cfg.Wind.Speed)

	// The loaded scenario flies.
	f, err := NewFlight(cfg)
	require.NoError(t, err)
	f.SetStepSize(5e-3)
	res := f.Propagate()
	require.Equal(t, Landed, res.Phase)
}

func TestLoadScenarioMissing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadScenarioBadShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	bad := []byte(`
[geometry]
nose_shape = "pointy"
`)
	require.NoError(t, os.WriteFile(path, bad, 0644))
	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestExportConfigUseless(t *testing.T) {
	require.True(t, ExportConfig{}.IsUseless())
	require.False(t, ExportConfig{AsCSV: true}.IsUseless())
	require.False(t, ExportConfig{AsJSON: true}.IsUseless())
}

func TestExportedTrajectory(t *testing.T) {
	dir := t.TempDir()
	config = _simconfig{outputDir: dir}
	cfgLoaded = true
	defer func() { cfgLoaded = false; config = _simconfig{outputDir: "."} }()

	cfg := alphaIIIConfig()
	f, err := NewFlightWithExport(cfg, ExportConfig{Filename: "alpha", AsCSV: true})
	require.NoError(t, err)
	f.SetStepSize(5e-3)
	f.Propagate()

	data, err := os.ReadFile(filepath.Join(dir, "trajectory-alpha.csv"))
	require.NoError(t, err)
	require.Contains(t, string(data), "t,x,y,z,vx,vy,vz,propellant,phase")
	require.Greater(t, len(data), 1000)
}
