package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	launchsim "github.com/Ret-tree/launchsim"
)

// Runs the dispersion study of a scenario and prints the statistics.

const defaultScenario = "~~unset~~"

var (
	scenario string
	trials   int
	batch    int
	seed     int64
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "flight scenario TOML file")
	flag.IntVar(&trials, "trials", 100, "number of dispersion trials")
	flag.IntVar(&batch, "batch", 8, "concurrent trial bound")
	flag.Int64Var(&seed, "seed", 1, "base seed of the per-trial streams")
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

	mc := launchsim.NewMonteCarlo(cfg, launchsim.DefaultVariation(), trials)
	mc.BatchSize = batch
	mc.Seed = seed

	// Ctrl-C stops dispatching; in-flight trials complete.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		mc.Cancel()
	}()

	res := mc.Run()

	fmt.Printf("\n=== %s: %d trials (%d ok, %d failed) ===\n", cfg.Name, res.Trials, res.Successes, res.Failures)
	printMetric := func(name, unit string, m launchsim.MetricSummary) {
		fmt.Printf("%-16s %8.1f ± %6.1f %s  [%.1f, %.1f]  p5 %.1f  p95 %.1f\n",
			name, m.Mean, m.StdDev, unit, m.Min, m.Max, m.P5, m.P95)
	}
	printMetric("apogee", "m", res.Apogee)
	printMetric("flight time", "s", res.FlightTime)
	printMetric("landing speed", "m/s", res.LandingSpeed)
	printMetric("landing distance", "m", res.LandingDistance)
	fmt.Printf("landing ellipse  east %.1f±%.1f m, north %.1f±%.1f m\n",
		res.Ellipse.EastMean, res.Ellipse.SigmaEast, res.Ellipse.NorthMean, res.Ellipse.SigmaNorth)
	for kind, n := range res.FailureKinds {
		fmt.Printf("failure mode %-20s %d\n", kind, n)
	}
	fmt.Println("apogee histogram:")
	for _, bin := range res.ApogeeHistogram {
		if bin.Count == 0 {
			continue
		}
		fmt.Printf("  %7.1f-%7.1f m ", bin.Low, bin.High)
		for i := 0; i < bin.Count; i++ {
			fmt.Print("▪")
		}
		fmt.Println()
	}
}
