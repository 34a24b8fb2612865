package launchsim

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 1 / deg2rad
)

// Norm returns the Norm of a given vector which is supposed to be 3x1.
func Norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the Unit vector of a given vector.
func Unit(a []float64) (b []float64) {
	n := Norm(a)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// Sign returns the Sign of a given number.
func Sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// Dot performs the inner product.
func Dot(a, b []float64) float64 {
	rtn := 0.
	for i := 0; i < len(a); i++ {
		rtn += a[i] * b[i]
	}
	return rtn
}

// Cross performs the Cross product.
func Cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// Scaled returns a scaled copy of the provided vector.
func Scaled(a []float64, s float64) []float64 {
	return []float64{a[0] * s, a[1] * s, a[2] * s}
}

// Added returns the sum of the two provided vectors.
func Added(a, b []float64) []float64 {
	return []float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Subbed returns the difference of the two provided vectors.
func Subbed(a, b []float64) []float64 {
	return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// Quaternion is a Hamilton-convention attitude quaternion (w, x, y, z).
// The flight engine renormalizes it after each committed step, so its
// norm stays at one throughout a propagation.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion returns the no-rotation quaternion.
func IdentityQuaternion() Quaternion {
	return Quaternion{1, 0, 0, 0}
}

// NewQuaternionFromAxisAngle returns the unit quaternion rotating by angle θ about the provided axis.
func NewQuaternionFromAxisAngle(axis []float64, θ float64) Quaternion {
	u := Unit(axis)
	s, c := math.Sincos(θ / 2)
	return Quaternion{c, u[0] * s, u[1] * s, u[2] * s}.Normalized()
}

// NewQuaternionFromEuler returns the quaternion for ZYX intrinsic angles (yaw→pitch→roll).
func NewQuaternionFromEuler(roll, pitch, yaw float64) Quaternion {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)
	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// Norm returns the norm of this quaternion.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized returns a unit-norm copy. A zero quaternion normalizes to
// the identity instead of signalling, so callers must not rely on the
// direction being preserved in that case.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return IdentityQuaternion()
	}
	return Quaternion{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// Conjugate returns the conjugate of this quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{q.W, -q.X, -q.Y, -q.Z}
}

// Mul performs the Hamilton product q ⊗ r.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Rotate rotates the provided vector by this quaternion: q ⊗ (0, v) ⊗ q*.
func (q Quaternion) Rotate(v []float64) []float64 {
	p := q.Mul(Quaternion{0, v[0], v[1], v[2]}).Mul(q.Conjugate())
	return []float64{p.X, p.Y, p.Z}
}

// Euler returns the ZYX intrinsic angles of this quaternion.
// The gimbal-lock branch returns pitch = ±π/2.
func (q Quaternion) Euler() (roll, pitch, yaw float64) {
	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	if sinp > 1 {
		sinp = 1
	} else if sinp < -1 {
		sinp = -1
	}
	pitch = math.Asin(sinp)
	roll = math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
	yaw = math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
	return
}

// KinematicRate returns dq/dt = ½·q⊗(0,ω) for a body-frame angular velocity.
func (q Quaternion) KinematicRate(ω []float64) Quaternion {
	r := q.Mul(Quaternion{0, ω[0], ω[1], ω[2]})
	return Quaternion{r.W / 2, r.X / 2, r.Y / 2, r.Z / 2}
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat64.Dense, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}
