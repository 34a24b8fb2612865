package launchsim

import "math"

// WindModel produces the wind velocity seen by the vehicle. The gust
// term is a deterministic sinusoid standing in for a real turbulence
// spectrum; it is kept behind this type so a Dryden or von Kármán
// filter can replace it without touching the integrator.
type WindModel struct {
	BaseSpeed     float64 // m/s at the 10 m reference height
	FromDirection float64 // rad clockwise from north
	GustAmplitude float64 // m/s
}

// NewWindModel builds a wind model from the outer-surface configuration.
func NewWindModel(cfg WindConfig) WindModel {
	return WindModel{
		BaseSpeed:     cfg.Speed,
		FromDirection: Deg2rad(cfg.DirectionDeg),
		GustAmplitude: cfg.GustAmplitude,
	}
}

// VelocityAt returns the world-frame wind velocity at an altitude and a
// simulation time. The base speed follows an altitude power law; gusts
// ride on top of it along the same direction.
func (w WindModel) VelocityAt(altitude, t float64) []float64 {
	if w.BaseSpeed == 0 && w.GustAmplitude == 0 {
		return []float64{0, 0, 0}
	}
	y := altitude
	if y < 10 {
		y = 10
	}
	speed := w.BaseSpeed * math.Pow(y/10, 0.15)
	speed += w.GustAmplitude * (math.Sin(0.5*t) + 0.5*math.Sin(1.3*t))
	return WindVector(speed, w.FromDirection)
}

// SpeedAt returns the scalar wind speed at an altitude, gusts excluded.
// The recovery drift estimate integrates over this profile.
func (w WindModel) SpeedAt(altitude float64) float64 {
	y := altitude
	if y < 10 {
		y = 10
	}
	return w.BaseSpeed * math.Pow(y/10, 0.15)
}
