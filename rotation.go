package launchsim

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// RailAttitude returns the attitude quaternion of a vehicle sitting on a
// launch rail tilted by inclination (radians from vertical) toward the
// provided heading (radians clockwise from north). A zero inclination
// returns the identity: body +y up.
func RailAttitude(inclination, heading float64) Quaternion {
	if inclination == 0 {
		return IdentityQuaternion()
	}
	// Tilt axis lies in the horizontal plane, perpendicular to the heading.
	// North is world -z, east is world +x.
	sh, ch := math.Sincos(heading)
	axis := []float64{-ch, 0, -sh}
	return NewQuaternionFromAxisAngle(axis, inclination)
}

// RailDirection returns the world-frame unit vector along the rail for the
// provided inclination and heading.
func RailDirection(inclination, heading float64) []float64 {
	return RailAttitude(inclination, heading).Rotate([]float64{0, 1, 0})
}

// WindVector returns the world-frame wind velocity for a speed and a
// direction the wind blows from, in radians clockwise from north. The
// rotation runs through R2 about the vertical.
func WindVector(speed, fromDirection float64) []float64 {
	// A north wind (0 rad) comes *from* north, so it carries the vehicle
	// south (+z here since north is -z).
	from := []float64{math.Sin(fromDirection), 0, -math.Cos(fromDirection)}
	blowing := MxV33(R2(math.Pi), from)
	return Scaled(Unit(blowing), speed)
}
