package launchsim

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadScenario reads a launch scenario TOML file into a Configuration.
// The expected sections mirror the Configuration fields: [geometry],
// [fins], [mass], [motor], [recovery], [launch], [wind].
func LoadScenario(path string) (Configuration, error) {
	var cfg Configuration
	v := viper.New()
	if strings.HasSuffix(path, ".toml") {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(path)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("%s: %s", path, err)
	}

	cfg.Name = v.GetString("rocket.name")
	if cfg.Name == "" {
		cfg.Name = "unnamed"
	}

	shape, err := ParseNoseShape(v.GetString("geometry.nose_shape"))
	if err != nil {
		return cfg, err
	}
	cfg.Geometry = RocketGeometry{
		BodyRadius: v.GetFloat64("geometry.body_radius"),
		BodyLength: v.GetFloat64("geometry.body_length"),
		NoseLength: v.GetFloat64("geometry.nose_length"),
		NoseShape:  shape,
		Roughness:  PaintedFinish,
		Fins: FinSet{
			Count:         v.GetInt("fins.count"),
			RootChord:     v.GetFloat64("fins.root_chord"),
			TipChord:      v.GetFloat64("fins.tip_chord"),
			Span:          v.GetFloat64("fins.span"),
			SweepDistance: v.GetFloat64("fins.sweep"),
			Thickness:     v.GetFloat64("fins.thickness"),
		},
	}
	if bl := v.GetFloat64("geometry.boattail_length"); bl > 0 {
		cfg.Geometry.Boattail = &Boattail{bl, v.GetFloat64("geometry.boattail_end_diameter")}
	}

	cfg.Mass = RocketMass{
		Nose:     MassComponent{"nose", v.GetFloat64("mass.nose"), v.GetFloat64("mass.nose_position")},
		Body:     MassComponent{"body", v.GetFloat64("mass.body"), v.GetFloat64("mass.body_position")},
		Fins:     MassComponent{"fins", v.GetFloat64("mass.fins"), v.GetFloat64("mass.fins_position")},
		Recovery: MassComponent{"recovery", v.GetFloat64("mass.recovery"), v.GetFloat64("mass.recovery_position")},
		Casing:   MassComponent{"casing", v.GetFloat64("mass.casing"), v.GetFloat64("mass.casing_position")},
	}

	designation := v.GetString("motor.designation")
	if m, found := Motors[designation]; found {
		cfg.Motor = m
	} else {
		cfg.Motor, err = NewMotor(designation,
			v.GetFloat64("motor.casing_mass"),
			v.GetFloat64("motor.propellant_mass"),
			v.GetFloat64("motor.burn_time"),
			v.GetFloat64("motor.average_thrust"), nil)
		if err != nil {
			return cfg, err
		}
	}

	if v.IsSet("recovery.main_diameter") {
		rec := RecoveryConfig{
			DualDeploy:         v.GetBool("recovery.dual_deploy"),
			Main:               Canopy{v.GetFloat64("recovery.main_diameter"), v.GetFloat64("recovery.main_cd")},
			Drogue:             Canopy{v.GetFloat64("recovery.drogue_diameter"), v.GetFloat64("recovery.drogue_cd")},
			MainDeployAltitude: v.GetFloat64("recovery.main_deploy_altitude"),
		}
		cfg.Recovery = &rec
	}

	cfg.RailLength = v.GetFloat64("launch.rail_length")
	cfg.InclinationDeg = v.GetFloat64("launch.inclination")
	cfg.HeadingDeg = v.GetFloat64("launch.heading")
	cfg.BaseAltitude = v.GetFloat64("launch.base_altitude")
	cfg.GroundTemp = v.GetFloat64("launch.ground_temperature")
	cfg.GroundPressure = v.GetFloat64("launch.ground_pressure")

	cfg.Wind = WindConfig{
		Speed:         v.GetFloat64("wind.speed"),
		DirectionDeg:  v.GetFloat64("wind.direction"),
		GustAmplitude: v.GetFloat64("wind.gust_amplitude"),
	}

	return cfg, cfg.Validate()
}
