package blend

import (
	"context"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/referenceframe"
)

// robotStateEqualityEpsilon is the tolerance under which two waypoints are the same state.
const robotStateEqualityEpsilon = 1e-4

var (
	// ErrNoRobotModel is returned when a builder is used without a robot model.
	ErrNoRobotModel = errors.New("no robot model set")
	// ErrNoBlender is returned when a blend is needed but the builder has no blender.
	ErrNoBlender = errors.New("no blender set")
)

// PlanComponentsBuilder assembles the trajectories of a sequence. Consecutive trajectories of the same
// group are joined into one trajectory, either by appending or by blending, and a change of group
// starts a new trajectory.
type PlanComponentsBuilder struct {
	model   *referenceframe.RobotModel
	blender TrajectoryBlender

	tail   *motionplan.RobotTrajectory
	closed []*motionplan.RobotTrajectory
}

// NewPlanComponentsBuilder returns a builder for the given model. blender may be nil as long as no
// trajectory is appended with a positive blend radius.
func NewPlanComponentsBuilder(model *referenceframe.RobotModel, blender TrajectoryBlender) *PlanComponentsBuilder {
	return &PlanComponentsBuilder{model: model, blender: blender}
}

// SetModel sets the robot model.
func (b *PlanComponentsBuilder) SetModel(model *referenceframe.RobotModel) {
	b.model = model
}

// SetBlender sets the blender used for positive blend radii.
func (b *PlanComponentsBuilder) SetBlender(blender TrajectoryBlender) {
	b.blender = blender
}

// Append adds traj to the plan. blendRadius is the radius of the junction between the trajectory
// appended before and traj; values <= 0 join without blending.
func (b *PlanComponentsBuilder) Append(
	ctx context.Context,
	scene motionplan.Scene,
	traj *motionplan.RobotTrajectory,
	blendRadius float64,
) error {
	if b.model == nil {
		return ErrNoRobotModel
	}
	if traj == nil {
		return errors.New("cannot append a nil trajectory")
	}
	if b.tail == nil {
		b.tail = traj.Clone()
		return nil
	}

	if blendRadius <= 0 {
		if b.tail.GroupName() != traj.GroupName() {
			b.closed = append(b.closed, b.tail)
			b.tail = traj.Clone()
			return nil
		}
		return appendWithStrictTimeIncrease(b.tail, traj)
	}
	return b.blend(ctx, scene, traj, blendRadius)
}

func (b *PlanComponentsBuilder) blend(
	ctx context.Context,
	scene motionplan.Scene,
	traj *motionplan.RobotTrajectory,
	blendRadius float64,
) error {
	if b.blender == nil {
		return ErrNoBlender
	}
	if traj.GroupName() != b.tail.GroupName() {
		return &BlendingFailedError{
			GroupName: b.tail.GroupName(),
			Err:       errors.Errorf("cannot blend group %q into group %q", traj.GroupName(), b.tail.GroupName()),
		}
	}
	group, err := b.model.JointModelGroup(b.tail.GroupName())
	if err != nil {
		return err
	}
	tip, err := group.SolverTipFrame()
	if err != nil {
		return &BlendingFailedError{GroupName: group.Name, Err: err}
	}

	resp, err := b.blender.Blend(ctx, scene, BlendRequest{
		First:       b.tail,
		Second:      traj,
		BlendRadius: blendRadius,
		GroupName:   group.Name,
		LinkName:    tip,
	})
	if err != nil {
		return &BlendingFailedError{GroupName: group.Name, Err: err}
	}

	merged := resp.First.Clone()
	if err := appendWithStrictTimeIncrease(merged, resp.Blend); err != nil {
		return err
	}
	if err := appendWithStrictTimeIncrease(merged, resp.Second); err != nil {
		return err
	}
	b.tail = merged
	return nil
}

// Build returns the assembled trajectories in order.
func (b *PlanComponentsBuilder) Build() []*motionplan.RobotTrajectory {
	out := append([]*motionplan.RobotTrajectory(nil), b.closed...)
	if b.tail != nil {
		out = append(out, b.tail)
	}
	return out
}

// Reset drops everything appended so far.
func (b *PlanComponentsBuilder) Reset() {
	b.tail = nil
	b.closed = nil
}

// appendWithStrictTimeIncrease appends source to result. When source starts in the state result ends
// in, the repeated waypoint is skipped so time strictly increases over the junction. Otherwise source
// is appended right after result's last waypoint.
func appendWithStrictTimeIncrease(result, source *motionplan.RobotTrajectory) error {
	if source == nil || source.Empty() {
		return nil
	}
	if result.Empty() || !waypointsEqual(result.LastWaypoint(), source.FirstWaypoint()) {
		return result.Append(source, 0)
	}
	return result.AppendFrom(source, 1, 0)
}

func waypointsEqual(a, b motionplan.TrajectoryPoint) bool {
	if len(a.Positions) != len(b.Positions) || !floats.EqualApprox(a.Positions, b.Positions, robotStateEqualityEpsilon) {
		return false
	}
	if len(a.Velocities) == 0 || len(b.Velocities) == 0 {
		return true
	}
	return len(a.Velocities) == len(b.Velocities) && floats.EqualApprox(a.Velocities, b.Velocities, robotStateEqualityEpsilon)
}
