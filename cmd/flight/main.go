package main

import (
	"flag"
	"fmt"
	"log"

	launchsim "github.com/Ret-tree/launchsim"
)

// Reads the scenario file, propagates the flight and prints its summary
// along with the static stability and flutter analyses of the vehicle.

const defaultScenario = "~~unset~~"

var (
	scenario string
	export   bool
	stepSize float64
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "flight scenario TOML file")
	flag.BoolVar(&export, "export", false, "export the trajectory as CSV")
	flag.Float64Var(&stepSize, "step", launchsim.DefaultStepSize, "integration step size (s)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	cfg, err := launchsim.LoadScenario(scenario)
	if err != nil {
		log.Fatalf("%s", err)
	}
	conf := launchsim.ExportConfig{Filename: cfg.Name, AsCSV: export, Timestamp: true}
	flight, err := launchsim.NewFlightWithExport(cfg, conf)
	if err != nil {
		log.Fatalf("%s", err)
	}
	flight.SetStepSize(stepSize)
	res := flight.Propagate()

	fmt.Printf("\n=== %s ===\n", cfg.Name)
	fmt.Printf("apogee        %8.1f m @ %5.2f s\n", res.Apogee, res.ApogeeTime)
	fmt.Printf("max velocity  %8.1f m/s (M%.2f)\n", res.MaxVelocity, res.MaxMach)
	fmt.Printf("max accel     %8.1f m/s²\n", res.MaxAcceleration)
	fmt.Printf("flight time   %8.1f s\n", res.FlightTime)
	fmt.Printf("landing speed %8.1f m/s\n", res.LandingSpeed)
	if res.RailExitSpeed > 0 {
		fmt.Printf("rail exit     %8.1f m/s\n", res.RailExitSpeed)
	}
	fmt.Println("events:")
	for _, ev := range res.Events {
		fmt.Printf("  %7.2f s  %-14s alt %7.1f m  v %6.1f m/s\n", ev.Time, ev.Type, ev.Altitude, ev.Velocity)
	}
	if res.ErrKind != launchsim.NoFlightError {
		fmt.Printf("terminated: %s\n", res.ErrKind)
	}

	// Static analyses on the same vehicle.
	if stab, err := launchsim.AnalyzeStability(cfg.Geometry, cfg.Mass, cfg.Motor.PropellantMass); err == nil {
		fmt.Printf("stability     %.2f cal (%s)\n", stab.Margin, stab.Class)
	}
	if fa, err := launchsim.NewFlutterAnalyzer(cfg.Geometry.Fins, launchsim.Materials["G10"], flight.Atm, res.Apogee/2); err == nil {
		fl := fa.Analyze(res.MaxVelocity)
		fmt.Printf("flutter       %.0f m/s, SF %.2f (%s)\n", fl.FlutterVelocity, fl.SafetyFactor, fl.Status)
	}
}
