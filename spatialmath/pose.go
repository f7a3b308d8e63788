// Package spatialmath defines spatial mathematical operations.
// Poses are backed by unit dual quaternions; translations are in meters and angles in radians.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
type Pose interface {
	Point() r3.Vector
	Quaternion() quat.Number
	AxisAngles() *R4AA
}

// NewZeroPose returns a pose at (0,0,0) with the identity orientation.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPoseFromPoint makes a pose that has the identity orientation and is translated by point.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.setTranslation(point)
	return q
}

// NewPose makes a pose from a point and an axis angle orientation. A nil orientation is the identity.
func NewPose(point r3.Vector, aa *R4AA) Pose {
	q := newDualQuaternion()
	if aa != nil {
		q.Real = aa.ToQuat()
	}
	q.setTranslation(point)
	return q
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// In other words, B is expressed in A's frame.
func Compose(a, b Pose) Pose {
	return &dualQuaternion{dualquat.Mul(dualQuaternionFromPose(a).Number, dualQuaternionFromPose(b).Number)}
}

// PoseInverse returns the inverse of a pose.
func PoseInverse(p Pose) Pose {
	q := dualQuaternionFromPose(p)
	return &dualQuaternion{dualquat.Number{
		Real: quat.Conj(q.Real),
		Dual: quat.Conj(q.Dual),
	}}
}

// PoseBetween returns the difference between two Poses, i.e. the pose that takes a to b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseAlmostEqual returns whether two poses are equal up to floating point imprecision.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps returns whether two poses are within epsilon of one another in translation
// and in rotation.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	if !R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) {
		return false
	}
	between := quat.Mul(quat.Conj(a.Quaternion()), b.Quaternion())
	return Float64AlmostEqual(QuatToR4AA(between).Theta, 0, epsilon)
}

// PoseString renders a pose for log output.
func PoseString(p Pose) string {
	pt := p.Point()
	aa := p.AxisAngles()
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f Theta:%.4f RX:%.4f RY:%.4f RZ:%.4f}",
		pt.X, pt.Y, pt.Z, aa.Theta, aa.RX, aa.RY, aa.RZ)
}
