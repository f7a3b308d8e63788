package blend

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/motionplan/limits"
	"go.viam.com/motionsequence/referenceframe"
)

// WindowBlender cuts both trajectories where the tip leaves the blend sphere around their junction
// and bridges the gap with a joint space linear transition. The transition is as fast as the joint
// velocity limits allow.
type WindowBlender struct {
	model        *referenceframe.RobotModel
	jointLimits  *limits.JointLimitsContainer
	samplingTime float64
}

// NewWindowBlender returns a blender whose transitions are sampled every samplingTime seconds.
func NewWindowBlender(
	model *referenceframe.RobotModel,
	jointLimits *limits.JointLimitsContainer,
	samplingTime float64,
) (*WindowBlender, error) {
	if model == nil {
		return nil, ErrNoRobotModel
	}
	if samplingTime <= 0 {
		return nil, errors.Errorf("sampling time must be positive, got %f", samplingTime)
	}
	if jointLimits == nil {
		jointLimits = limits.NewJointLimitsContainer()
	}
	return &WindowBlender{model: model, jointLimits: jointLimits, samplingTime: samplingTime}, nil
}

// Blend implements TrajectoryBlender.
func (wb *WindowBlender) Blend(ctx context.Context, scene motionplan.Scene, req BlendRequest) (BlendResponse, error) {
	if err := wb.validateRequest(req); err != nil {
		return BlendResponse{}, err
	}
	if err := ctx.Err(); err != nil {
		return BlendResponse{}, err
	}

	junction, err := wb.model.FramePosition(req.First.PositionMap(req.First.Len()-1), req.LinkName)
	if err != nil {
		return BlendResponse{}, err
	}

	// last waypoint of First outside of the sphere
	firstCut := -1
	for i := req.First.Len() - 1; i >= 0; i-- {
		outside, err := wb.outsideSphere(req.First, i, req.LinkName, junction, req.BlendRadius)
		if err != nil {
			return BlendResponse{}, err
		}
		if outside {
			firstCut = i
			break
		}
	}
	if firstCut < 0 {
		return BlendResponse{}, errors.Errorf("first trajectory lies completely inside the blend sphere of radius %f", req.BlendRadius)
	}

	// first waypoint of Second outside of the sphere
	secondCut := -1
	for i := 0; i < req.Second.Len(); i++ {
		outside, err := wb.outsideSphere(req.Second, i, req.LinkName, junction, req.BlendRadius)
		if err != nil {
			return BlendResponse{}, err
		}
		if outside {
			secondCut = i
			break
		}
	}
	if secondCut < 0 {
		return BlendResponse{}, errors.Errorf("second trajectory lies completely inside the blend sphere of radius %f", req.BlendRadius)
	}

	first := motionplan.NewRobotTrajectory(req.First.GroupName(), req.First.JointNames())
	for i := 0; i <= firstCut; i++ {
		if err := first.AddSuffixWaypoint(req.First.Waypoint(i)); err != nil {
			return BlendResponse{}, err
		}
	}
	second := motionplan.NewRobotTrajectory(req.Second.GroupName(), req.Second.JointNames())
	offset := req.Second.WaypointDurationFromStart(secondCut)
	for i := secondCut; i < req.Second.Len(); i++ {
		wp := req.Second.Waypoint(i)
		wp.TimeFromStart -= offset
		if err := second.AddSuffixWaypoint(wp); err != nil {
			return BlendResponse{}, err
		}
	}
	transition, err := wb.transition(req.First.Waypoint(firstCut), req.Second.Waypoint(secondCut), req.First)
	if err != nil {
		return BlendResponse{}, err
	}
	return BlendResponse{First: first, Blend: transition, Second: second}, nil
}

func (wb *WindowBlender) validateRequest(req BlendRequest) error {
	if req.First == nil || req.Second == nil || req.First.Empty() || req.Second.Empty() {
		return errors.New("cannot blend empty trajectories")
	}
	if req.BlendRadius <= 0 {
		return errors.Errorf("blend radius must be positive, got %f", req.BlendRadius)
	}
	if req.First.GroupName() != req.GroupName || req.Second.GroupName() != req.GroupName {
		return errors.Errorf("trajectories of groups %q and %q cannot be blended as group %q",
			req.First.GroupName(), req.Second.GroupName(), req.GroupName)
	}
	if !floats.EqualApprox(req.First.LastWaypoint().Positions, req.Second.FirstWaypoint().Positions, robotStateEqualityEpsilon) {
		return errors.New("second trajectory does not start where the first one ends")
	}
	return nil
}

func (wb *WindowBlender) outsideSphere(
	traj *motionplan.RobotTrajectory,
	i int,
	link string,
	center r3.Vector,
	radius float64,
) (bool, error) {
	pos, err := wb.model.FramePosition(traj.PositionMap(i), link)
	if err != nil {
		return false, err
	}
	return pos.Sub(center).Norm() > radius, nil
}

// transition moves linearly in joint space from start to end, sampled every samplingTime seconds.
// Both end points are part of the result.
func (wb *WindowBlender) transition(start, end motionplan.TrajectoryPoint, like *motionplan.RobotTrajectory) (*motionplan.RobotTrajectory, error) {
	joints := like.JointNames()
	delta := make([]float64, len(start.Positions))
	floats.SubTo(delta, end.Positions, start.Positions)

	duration := wb.samplingTime
	for i, name := range joints {
		limit, ok := wb.jointLimits.Limit(name)
		if !ok || !limit.HasVelocityLimits {
			continue
		}
		duration = math.Max(duration, math.Abs(delta[i])/limit.MaxVelocity)
	}
	steps := int(math.Ceil(duration / wb.samplingTime))
	duration = float64(steps) * wb.samplingTime

	velocity := make([]float64, len(delta))
	floats.ScaleTo(velocity, 1/duration, delta)

	out := motionplan.NewRobotTrajectory(like.GroupName(), joints)
	for k := 0; k <= steps; k++ {
		frac := float64(k) / float64(steps)
		positions := make([]float64, len(delta))
		floats.AddScaledTo(positions, start.Positions, frac, delta)
		p := motionplan.TrajectoryPoint{Positions: positions, TimeFromStart: frac * duration}
		if k > 0 && k < steps {
			p.Velocities = append([]float64(nil), velocity...)
		}
		if err := out.AddSuffixWaypoint(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}
