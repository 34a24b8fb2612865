package launchsim

// Shared test vehicle: an Alpha III class ogive three-fin rocket on a C6.

func alphaIIIGeometry() RocketGeometry {
	return RocketGeometry{
		BodyRadius: 0.0125,
		BodyLength: 0.30,
		NoseLength: 0.07,
		NoseShape:  Ogive,
		Roughness:  PaintedFinish,
		Fins: FinSet{
			Count:         3,
			RootChord:     0.05,
			TipChord:      0.03,
			Span:          0.04,
			SweepDistance: 0.02,
			Thickness:     0.003,
		},
	}
}

func alphaIIIMass() RocketMass {
	return RocketMass{
		Nose:     MassComponent{"nose", 0.008, 0.05},
		Body:     MassComponent{"body", 0.018, 0.22},
		Fins:     MassComponent{"fins", 0.006, 0.34},
		Recovery: MassComponent{"recovery", 0.004, 0.12},
		Casing:   MassComponent{"casing", 0.0122, 0.345},
	}
}

func alphaIIIConfig() Configuration {
	return Configuration{
		Name:           "alpha-iii",
		Geometry:       alphaIIIGeometry(),
		Mass:           alphaIIIMass(),
		Motor:          Motors["C6"],
		Recovery:       &RecoveryConfig{Main: Canopy{Diameter: 0.25, DragCoefficient: 0.8}},
		RailLength:     1.0,
		InclinationDeg: 0,
		HeadingDeg:     0,
	}
}

func eventTimes(events []FlightEvent, kind string) []float64 {
	var ts []float64
	for _, ev := range events {
		if ev.Type == kind {
			ts = append(ts, ev.Time)
		}
	}
	return ts
}

func hasEvent(events []FlightEvent, kind string) bool {
	return len(eventTimes(events, kind)) > 0
}
