package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// dualQuaternion is the Pose implementation. The real part is the rotation and the dual part is
// half the translation multiplied onto the rotation.
type dualQuaternion struct {
	dualquat.Number
}

// newDualQuaternion returns a dual quaternion whose real part is the identity. The zero value of
// dualquat.Number is not a valid rigid transform, so this should be used instead.
func newDualQuaternion() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

func dualQuaternionFromPose(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q
	}
	q := newDualQuaternion()
	q.Real = p.Quaternion()
	q.setTranslation(p.Point())
	return q
}

// setTranslation sets the translation against the current rotation.
func (q *dualQuaternion) setTranslation(pt r3.Vector) {
	q.Dual = quat.Mul(quat.Number{Imag: pt.X / 2, Jmag: pt.Y / 2, Kmag: pt.Z / 2}, q.Real)
}

// Point recovers the translation as 2 * dual * conj(real).
func (q *dualQuaternion) Point() r3.Vector {
	t := quat.Mul(quat.Scale(2, q.Dual), quat.Conj(q.Real))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Quaternion returns the rotation quaternion.
func (q *dualQuaternion) Quaternion() quat.Number {
	return q.Real
}

// AxisAngles returns the rotation as an R4 axis angle.
func (q *dualQuaternion) AxisAngles() *R4AA {
	aa := QuatToR4AA(q.Real)
	return &aa
}
