package referenceframe

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "go.viam.com/motionsequence/spatialmath"
)

const planarArmJSON = `{
	"name": "planar",
	"links": [
		{"id": "base", "parent": "world"},
		{"id": "link1", "parent": "j1", "translation": {"x": 1}},
		{"id": "tcp", "parent": "j2", "translation": {"x": 1}}
	],
	"joints": [
		{"id": "j1", "type": "revolute", "parent": "base", "axis": {"z": 1}, "min": -3.14, "max": 3.14, "max_velocity": 1.5},
		{"id": "j2", "type": "revolute", "parent": "link1", "axis": {"z": 1}, "min": -3.14, "max": 3.14},
		{"id": "finger", "type": "prismatic", "parent": "tcp", "axis": {"y": 1}, "min": 0, "max": 0.05}
	],
	"groups": [
		{"name": "manipulator", "joints": ["j1", "j2"], "tip": "tcp", "solver": true},
		{"name": "gripper", "joints": ["finger"]}
	]
}`

func TestUnmarshalModelJSON(t *testing.T) {
	model, err := UnmarshalModelJSON([]byte(planarArmJSON), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Name(), test.ShouldEqual, "planar")
	test.That(t, model.ActiveJoints(), test.ShouldResemble, []string{"j1", "j2", "finger"})

	limit, err := model.JointLimit("finger")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, limit, test.ShouldResemble, Limit{Min: 0, Max: 0.05})

	vel, ok := model.MaxVelocity("j1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, vel, test.ShouldEqual, 1.5)
	_, ok = model.MaxVelocity("j2")
	test.That(t, ok, test.ShouldBeFalse)

	manipulator, err := model.JointModelGroup("manipulator")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, manipulator.HasSolver(), test.ShouldBeTrue)
	tip, err := manipulator.SolverTipFrame()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tip, test.ShouldEqual, "tcp")

	gripper, err := model.JointModelGroup("gripper")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gripper.HasSolver(), test.ShouldBeFalse)
	_, err = gripper.SolverTipFrame()
	test.That(t, err, test.ShouldNotBeNil)

	_, err = model.JointModelGroup("legs")
	test.That(t, err, test.ShouldBeError, NewUnknownGroupError("legs"))
	test.That(t, model.HasJointModelGroup("legs"), test.ShouldBeFalse)

	renamed, err := UnmarshalModelJSON([]byte(planarArmJSON), "other")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, renamed.Name(), test.ShouldEqual, "other")

	_, err = UnmarshalModelJSON(nil, "")
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)
}

func TestFramePose(t *testing.T) {
	model, err := UnmarshalModelJSON([]byte(planarArmJSON), "")
	test.That(t, err, test.ShouldBeNil)

	for _, tc := range []struct {
		name      string
		positions map[string]float64
		expected  r3.Vector
	}{
		{"home", map[string]float64{}, r3.Vector{X: 2}},
		{"shoulder up", map[string]float64{"j1": math.Pi / 2}, r3.Vector{Y: 2}},
		{"elbow up", map[string]float64{"j2": math.Pi / 2}, r3.Vector{X: 1, Y: 1}},
		{"folded", map[string]float64{"j1": math.Pi / 2, "j2": -math.Pi / 2}, r3.Vector{X: 1, Y: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := model.FramePosition(tc.positions, "tcp")
			test.That(t, err, test.ShouldBeNil)
			test.That(t, spatial.R3VectorAlmostEqual(pos, tc.expected, 1e-9), test.ShouldBeTrue)
		})
	}

	// The finger slides along the rotated Y axis of the tcp.
	pos, err := model.FramePosition(map[string]float64{"j1": math.Pi / 2, "finger": 0.05}, "finger")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pos, r3.Vector{X: -0.05, Y: 2}, 1e-9), test.ShouldBeTrue)

	// Out of bounds inputs still produce a pose.
	pos, err = model.FramePosition(map[string]float64{"finger": 1}, "finger")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pos, r3.Vector{X: 2, Y: 1}, 1e-9), test.ShouldBeTrue)

	world, err := model.FramePose(nil, World)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.PoseAlmostEqual(world, spatial.NewZeroPose()), test.ShouldBeTrue)

	_, err = model.FramePose(nil, "elbow")
	test.That(t, err, test.ShouldBeError, NewFrameMissingError("elbow"))
}

func TestValidatePositions(t *testing.T) {
	model, err := UnmarshalModelJSON([]byte(planarArmJSON), "")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, model.ValidatePositions(map[string]float64{"j1": 1, "finger": 0.01}), test.ShouldBeNil)

	err = model.ValidatePositions(map[string]float64{"j1": 4, "finger": 0.01})
	var oob *OutOfBoundsError
	test.That(t, errors.As(err, &oob), test.ShouldBeTrue)
	test.That(t, oob.Frame, test.ShouldEqual, "j1")

	test.That(t, model.ValidatePositions(map[string]float64{"tcp": 0}), test.ShouldNotBeNil)
}

func TestModelConfigErrors(t *testing.T) {
	t.Run("cycle", func(t *testing.T) {
		cfg := &ModelConfigJSON{Links: []LinkConfig{
			{ID: "a", Parent: "b"},
			{ID: "b", Parent: "a"},
		}}
		_, err := cfg.ParseConfig("cycle")
		test.That(t, errors.Is(err, ErrCircularReference), test.ShouldBeTrue)
	})

	t.Run("missing parent", func(t *testing.T) {
		cfg := &ModelConfigJSON{Links: []LinkConfig{{ID: "a", Parent: "nowhere"}}}
		_, err := cfg.ParseConfig("orphan")
		test.That(t, err, test.ShouldBeError, NewParentFrameMissingError("a", "nowhere"))
	})

	t.Run("reserved word", func(t *testing.T) {
		cfg := &ModelConfigJSON{Links: []LinkConfig{{ID: World, Parent: World}}}
		_, err := cfg.ParseConfig("reserved")
		test.That(t, err, test.ShouldBeError, NewReservedWordError("frame", World))
	})

	t.Run("unknown joint type", func(t *testing.T) {
		cfg := &ModelConfigJSON{Joints: []JointConfig{{ID: "j", Type: "spherical", Parent: World, Axis: r3.Vector{Z: 1}}}}
		_, err := cfg.ParseConfig("spherical")
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("group with unknown joint", func(t *testing.T) {
		cfg := &ModelConfigJSON{
			Joints: []JointConfig{{ID: "j", Type: RevoluteJoint, Parent: World, Axis: r3.Vector{Z: 1}, Min: -1, Max: 1}},
			Groups: []GroupConfig{{Name: "g", Joints: []string{"k"}}},
		}
		_, err := cfg.ParseConfig("bad group")
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("solver tip missing", func(t *testing.T) {
		cfg := &ModelConfigJSON{
			Joints: []JointConfig{{ID: "j", Type: RevoluteJoint, Parent: World, Axis: r3.Vector{Z: 1}, Min: -1, Max: 1}},
			Groups: []GroupConfig{{Name: "g", Joints: []string{"j"}, Tip: "tool", Solver: true}},
		}
		_, err := cfg.ParseConfig("no tip")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestModelString(t *testing.T) {
	model, err := UnmarshalModelJSON([]byte(planarArmJSON), "")
	test.That(t, err, test.ShouldBeNil)
	out := model.String()
	for _, want := range []string{"planar", "link1", "j2", "[-3.140, 3.140]", "1.500", "X:1.000, Y:0.000, Z:0.000", "manipulator", "gripper"} {
		test.That(t, out, test.ShouldContainSubstring, want)
	}
}
