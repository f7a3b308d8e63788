package referenceframe

import (
	stderrors "errors"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	spatial "go.viam.com/motionsequence/spatialmath"
)

// JointModelGroup is a named subset of a model's joints that can be planned for as a unit.
type JointModelGroup struct {
	Name       string
	JointNames []string

	// TipFrame is the frame at the working end of the group. It is only meaningful when the group
	// has a pose solver.
	TipFrame string
	solver   bool
}

// HasSolver reports whether the group has a pose solver attached.
func (g *JointModelGroup) HasSolver() bool {
	return g != nil && g.solver
}

// SolverTipFrame returns the tip frame of the group's solver.
func (g *JointModelGroup) SolverTipFrame() (string, error) {
	if !g.HasSolver() {
		return "", errors.Errorf("group %q has no solver", g.Name)
	}
	return g.TipFrame, nil
}

// RobotModel is a tree of frames rooted at World together with the joint model groups defined on it.
type RobotModel struct {
	name    string
	frames  map[string]Frame
	parents map[string]string

	// joints in declaration order.
	joints        []string
	maxVelocities map[string]float64
	groups        map[string]*JointModelGroup
}

// NewRobotModel creates an empty model.
func NewRobotModel(name string) *RobotModel {
	return &RobotModel{
		name:          name,
		frames:        map[string]Frame{},
		parents:       map[string]string{},
		maxVelocities: map[string]float64{},
		groups:        map[string]*JointModelGroup{},
	}
}

// Name returns the name of this model.
func (m *RobotModel) Name() string {
	return m.name
}

// AddFrame attaches a frame to the named parent. Frames with one degree of freedom are joints.
func (m *RobotModel) AddFrame(frame Frame, parent string) error {
	if frame.Name() == World {
		return NewReservedWordError("frame", World)
	}
	if _, ok := m.frames[frame.Name()]; ok {
		return NewDuplicateFrameError(frame.Name())
	}
	m.frames[frame.Name()] = frame
	m.parents[frame.Name()] = parent
	if len(frame.DoF()) == 1 {
		m.joints = append(m.joints, frame.Name())
	}
	return nil
}

// SetMaxVelocity records the velocity bound of a joint, in rad/s or m/s.
func (m *RobotModel) SetMaxVelocity(joint string, maxVelocity float64) error {
	if _, err := m.JointLimit(joint); err != nil {
		return err
	}
	m.maxVelocities[joint] = maxVelocity
	return nil
}

// AddGroup registers a joint model group. Every joint and the tip frame must already be part of the model.
func (m *RobotModel) AddGroup(name string, jointNames []string, tipFrame string, solver bool) error {
	if _, ok := m.groups[name]; ok {
		return errors.Errorf("cannot have more than one group with name %q", name)
	}
	for _, joint := range jointNames {
		if _, err := m.JointLimit(joint); err != nil {
			return errors.Wrapf(err, "group %q", name)
		}
	}
	if solver {
		if _, ok := m.frames[tipFrame]; !ok {
			return errors.Wrapf(NewFrameMissingError(tipFrame), "tip of group %q", name)
		}
	}
	m.groups[name] = &JointModelGroup{
		Name:       name,
		JointNames: append([]string(nil), jointNames...),
		TipFrame:   tipFrame,
		solver:     solver,
	}
	return nil
}

// Validate checks that every frame reaches World without cycles.
func (m *RobotModel) Validate() error {
	var errAll error
	for name := range m.frames {
		if _, err := m.chainToWorld(name); err != nil {
			multierr.AppendInto(&errAll, err)
		}
	}
	return errAll
}

// JointModelGroup returns the group with the given name.
func (m *RobotModel) JointModelGroup(name string) (*JointModelGroup, error) {
	group, ok := m.groups[name]
	if !ok {
		return nil, NewUnknownGroupError(name)
	}
	return group, nil
}

// HasJointModelGroup reports whether a group with the given name exists.
func (m *RobotModel) HasJointModelGroup(name string) bool {
	_, ok := m.groups[name]
	return ok
}

// ActiveJoints returns the names of all joints in declaration order.
func (m *RobotModel) ActiveJoints() []string {
	return append([]string(nil), m.joints...)
}

// JointLimit returns the position limit of a joint.
func (m *RobotModel) JointLimit(joint string) (Limit, error) {
	frame, ok := m.frames[joint]
	if !ok || len(frame.DoF()) != 1 {
		return Limit{}, errors.Errorf("no joint named %q in model %q", joint, m.name)
	}
	return frame.DoF()[0], nil
}

// MaxVelocity returns the velocity bound of a joint, if one was configured.
func (m *RobotModel) MaxVelocity(joint string) (float64, bool) {
	v, ok := m.maxVelocities[joint]
	return v, ok
}

// ValidatePositions returns every joint position that lies outside of its limits.
func (m *RobotModel) ValidatePositions(positions map[string]float64) error {
	var errAll error
	for joint, value := range positions {
		limit, err := m.JointLimit(joint)
		if err != nil {
			multierr.AppendInto(&errAll, err)
			continue
		}
		if !limit.Contains(value) {
			multierr.AppendInto(&errAll, &OutOfBoundsError{Frame: joint, Value: value, Limit: limit})
		}
	}
	return errAll
}

// FramePose computes the pose of the named frame in World. Joints missing from positions are taken
// at zero. Out of bounds positions are not an error here, use ValidatePositions for that.
func (m *RobotModel) FramePose(positions map[string]float64, frameName string) (spatial.Pose, error) {
	if frameName == World {
		return spatial.NewZeroPose(), nil
	}
	chain, err := m.chainToWorld(frameName)
	if err != nil {
		return nil, err
	}

	pose := spatial.NewZeroPose()
	for i := len(chain) - 1; i >= 0; i-- {
		frame := m.frames[chain[i]]
		var inputs []Input
		if len(frame.DoF()) == 1 {
			inputs = []Input{{positions[frame.Name()]}}
		}
		tf, err := frame.Transform(inputs)
		if tf == nil {
			return nil, err
		}
		var oob *OutOfBoundsError
		if err != nil && !stderrors.As(err, &oob) {
			return nil, err
		}
		pose = spatial.Compose(pose, tf)
	}
	return pose, nil
}

// FramePosition is FramePose reduced to the translation.
func (m *RobotModel) FramePosition(positions map[string]float64, frameName string) (r3.Vector, error) {
	pose, err := m.FramePose(positions, frameName)
	if err != nil {
		return r3.Vector{}, err
	}
	return pose.Point(), nil
}

// chainToWorld returns the frame names from frameName up to, but excluding, World.
func (m *RobotModel) chainToWorld(frameName string) ([]string, error) {
	if _, ok := m.frames[frameName]; !ok {
		return nil, NewFrameMissingError(frameName)
	}
	chain := []string{}
	seen := map[string]bool{}
	for curr := frameName; curr != World; curr = m.parents[curr] {
		if seen[curr] {
			return nil, ErrCircularReference
		}
		seen[curr] = true
		if _, ok := m.frames[curr]; !ok {
			return nil, NewParentFrameMissingError(chain[len(chain)-1], curr)
		}
		chain = append(chain, curr)
	}
	return chain, nil
}
