package launchsim

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _simconfig{outputDir: "."}
)

// _simconfig is a "hidden" struct, just use `simConfig`
type _simconfig struct {
	outputDir  string
	stepSize   float64
	testExport bool
}

func (c _simconfig) String() string {
	return fmt.Sprintf("[launchsim:config] output: %s step: %f", c.outputDir, c.stepSize)
}

// simConfig returns the launchsim configuration. The configuration file is
// optional: without LAUNCHSIM_CONFIG everything falls back to defaults, so
// the library stays usable with zero setup.
func simConfig() _simconfig {
	if cfgLoaded {
		return config
	}
	confPath := os.Getenv("LAUNCHSIM_CONFIG")
	if confPath == "" {
		cfgLoaded = true
		return config
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("[launchsim:warning] %s/conf.toml not found, using defaults\n", confPath)
		cfgLoaded = true
		return config
	}
	outputDir := viper.GetString("general.output_path")
	if outputDir == "" {
		outputDir = "."
	}
	stepSize := viper.GetFloat64("sim.step_size")
	testExport := viper.GetBool("general.test_export")
	cfgLoaded = true
	config = _simconfig{outputDir: outputDir, stepSize: stepSize, testExport: testExport}
	return config
}
