package launchsim

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

var exportWg sync.WaitGroup

// ExportConfig configures the exporting of a propagation.
type ExportConfig struct {
	Filename  string
	AsCSV     bool
	AsJSON    bool
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsJSON
}

// createTrajectoryCSVFile returns a file which requires a defer close statement!
func createTrajectoryCSVFile(conf ExportConfig) *os.File {
	filename := fmt.Sprintf("%s/trajectory-%s.csv", simConfig().outputDir, conf.Filename)
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/trajectory-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", simConfig().outputDir, conf.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are t, x, y, z, vx, vy, vz, propellant, phase. Positions in m, velocities in m/s.
t,x,y,z,vx,vy,vz,propellant,phase
`, time.Now().UTC()))
	return f
}

type exportedState struct {
	T          float64   `json:"t"`
	R          []float64 `json:"r"`
	V          []float64 `json:"v"`
	Propellant float64   `json:"propellant"`
	Phase      string    `json:"phase"`
}

// StreamStates streams the states of a propagation to the configured files.
func StreamStates(conf ExportConfig, stateChan <-chan FlightState) {
	var fCSV *os.File
	var jsonStates []exportedState
	if conf.AsCSV {
		fCSV = createTrajectoryCSVFile(conf)
		defer fCSV.Close()
	}
	for state := range stateChan {
		if conf.AsCSV {
			fCSV.WriteString(fmt.Sprintf("%f,%f,%f,%f,%f,%f,%f,%f,%s\n",
				state.T, state.R[0], state.R[1], state.R[2],
				state.V[0], state.V[1], state.V[2], state.Propellant, state.Phase))
		}
		if conf.AsJSON {
			jsonStates = append(jsonStates, exportedState{state.T, state.R, state.V, state.Propellant, state.Phase.String()})
		}
	}
	if conf.AsJSON {
		fJSON, err := os.Create(fmt.Sprintf("%s/trajectory-%s.json", simConfig().outputDir, conf.Filename))
		if err != nil {
			panic(err)
		}
		defer fJSON.Close()
		if marsh, err := json.Marshal(jsonStates); err != nil {
			panic(err)
		} else {
			fJSON.Write(marsh)
		}
	}
}
