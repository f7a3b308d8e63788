// Package jointinterp implements a planning pipeline that moves a group in a straight line in joint
// space, timed against the joint limits.
package jointinterp

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/motionplan/limits"
	"go.viam.com/motionsequence/referenceframe"
)

// PlannerID is the id requests may name to select this planner.
const PlannerID = "PTP_JOINT"

// Planner is a motionplan.PlanningPipeline that interpolates linearly between the start state and
// the first set of joint goal constraints.
type Planner struct {
	logger       logging.Logger
	model        *referenceframe.RobotModel
	jointLimits  *limits.JointLimitsContainer
	samplingTime float64
}

// NewPlanner returns a planner sampling its trajectories every samplingTime seconds.
func NewPlanner(
	logger logging.Logger,
	model *referenceframe.RobotModel,
	jointLimits *limits.JointLimitsContainer,
	samplingTime float64,
) (*Planner, error) {
	if model == nil {
		return nil, errors.New("planner needs a robot model")
	}
	if samplingTime <= 0 {
		return nil, errors.Errorf("sampling time must be positive, got %f", samplingTime)
	}
	if jointLimits == nil {
		jointLimits = limits.NewJointLimitsContainer()
	}
	return &Planner{logger: logger, model: model, jointLimits: jointLimits, samplingTime: samplingTime}, nil
}

// GeneratePlan implements motionplan.PlanningPipeline. Invalid requests are answered with an error
// code; an error is only returned when the planner cannot be called at all.
func (p *Planner) GeneratePlan(
	ctx context.Context,
	scene motionplan.Scene,
	req motionplan.MotionPlanRequest,
) (resp motionplan.MotionPlanResponse, err error) {
	start := time.Now()
	resp.ErrorCode = motionplan.ErrorCodeFailure
	defer func() { resp.PlanningTime = time.Since(start) }()

	if ctx.Err() != nil {
		resp.ErrorCode = motionplan.ErrorCodeTimedOut
		return resp, nil
	}
	if req.PlannerID != "" && req.PlannerID != PlannerID {
		p.logger.Warnf("planner id %q is not supported, using %s", req.PlannerID, PlannerID)
	}

	group, err := p.model.JointModelGroup(req.GroupName)
	if err != nil {
		p.logger.CDebugw(ctx, "unknown group", "group", req.GroupName)
		resp.ErrorCode = motionplan.ErrorCodeInvalidGroupName
		return resp, nil
	}

	startState := req.StartState
	if startState.IsEmpty() {
		if scene == nil {
			return resp, errors.New("request has no start state and no scene was given")
		}
		startState = scene.CurrentState()
	}
	from, code := p.startPositions(group, startState)
	if code != motionplan.ErrorCodeSuccess {
		resp.ErrorCode = code
		return resp, nil
	}
	to, code := p.goalPositions(group, req.GoalConstraints, from)
	if code != motionplan.ErrorCodeSuccess {
		resp.ErrorCode = code
		return resp, nil
	}

	velScale, err := scalingFactor(req.MaxVelocityScalingFactor)
	if err != nil {
		p.logger.Warnw("invalid velocity scaling factor", "error", err)
		resp.ErrorCode = motionplan.ErrorCodeInvalidMotionPlan
		return resp, nil
	}
	accScale, err := scalingFactor(req.MaxAccelerationScalingFactor)
	if err != nil {
		p.logger.Warnw("invalid acceleration scaling factor", "error", err)
		resp.ErrorCode = motionplan.ErrorCodeInvalidMotionPlan
		return resp, nil
	}

	traj, err := p.interpolate(group, from, to, velScale, accScale)
	if err != nil {
		return resp, err
	}
	if ctx.Err() != nil {
		resp.ErrorCode = motionplan.ErrorCodeTimedOut
		return resp, nil
	}
	p.logger.CDebugf(ctx, "planned %d waypoints for group %q over %.3fs", traj.Len(), group.Name, traj.Duration())
	resp.Trajectory = traj
	resp.ErrorCode = motionplan.ErrorCodeSuccess
	return resp, nil
}

func (p *Planner) startPositions(group *referenceframe.JointModelGroup, state motionplan.RobotState) ([]float64, motionplan.ErrorCode) {
	known := state.PositionMap()
	out := make([]float64, len(group.JointNames))
	for i, name := range group.JointNames {
		pos, ok := known[name]
		if !ok {
			p.logger.Debugw("start state misses a joint", "joint", name)
			return nil, motionplan.ErrorCodeInvalidRobotState
		}
		if !p.jointLimits.VerifyPositionLimit(name, pos) {
			p.logger.Debugw("start state violates the position limits", "joint", name, "position", pos)
			return nil, motionplan.ErrorCodeInvalidRobotState
		}
		out[i] = pos
	}
	return out, motionplan.ErrorCodeSuccess
}

// goalPositions takes the goal from the first constraint set. Joints without a constraint keep
// their start position.
func (p *Planner) goalPositions(
	group *referenceframe.JointModelGroup,
	goals []motionplan.Constraints,
	from []float64,
) ([]float64, motionplan.ErrorCode) {
	if len(goals) == 0 || len(goals[0].JointConstraints) == 0 {
		return nil, motionplan.ErrorCodeInvalidGoalConstraints
	}
	index := make(map[string]int, len(group.JointNames))
	for i, name := range group.JointNames {
		index[name] = i
	}
	out := append([]float64(nil), from...)
	for _, c := range goals[0].JointConstraints {
		i, ok := index[c.JointName]
		if !ok {
			p.logger.Debugw("goal constrains a joint outside of the group", "joint", c.JointName, "group", group.Name)
			return nil, motionplan.ErrorCodeInvalidGoalConstraints
		}
		if !p.jointLimits.VerifyPositionLimit(c.JointName, c.Position) {
			p.logger.Debugw("goal violates the position limits", "joint", c.JointName, "position", c.Position)
			return nil, motionplan.ErrorCodeInvalidGoalConstraints
		}
		out[i] = c.Position
	}
	return out, motionplan.ErrorCodeSuccess
}

func scalingFactor(f float64) (float64, error) {
	switch {
	case f == 0:
		return 1, nil
	case f < 0 || f > 1:
		return 0, errors.Errorf("scaling factor must be in (0, 1], got %f", f)
	default:
		return f, nil
	}
}

func (p *Planner) interpolate(
	group *referenceframe.JointModelGroup,
	from, to []float64,
	velScale, accScale float64,
) (*motionplan.RobotTrajectory, error) {
	delta := make([]float64, len(from))
	floats.SubTo(delta, to, from)

	// the slowest joint sets the cruise time and the slowest ramp sets the ramp time
	var cruise, ramp float64
	for i, name := range group.JointNames {
		maxVel, maxAcc := math.Inf(1), math.Inf(1)
		if l, ok := p.jointLimits.Limit(name); ok {
			if l.HasVelocityLimits {
				maxVel = l.MaxVelocity * velScale
			}
			if l.HasAccelerationLimits {
				maxAcc = l.MaxAcceleration * accScale
			}
		}
		d, r := minimumTime(math.Abs(delta[i]), maxVel, maxAcc)
		cruise = math.Max(cruise, d-r)
		ramp = math.Max(ramp, r)
	}

	traj := motionplan.NewRobotTrajectory(group.Name, group.JointNames)
	if floats.Norm(delta, math.Inf(1)) == 0 {
		err := traj.AddSuffixWaypoint(motionplan.TrajectoryPoint{
			Positions:  from,
			Velocities: make([]float64, len(from)),
		})
		return traj, err
	}

	duration := cruise + ramp
	steps := int(math.Ceil(duration/p.samplingTime - 1e-9))
	if steps < 1 {
		steps = 1
	}
	prof := profile{duration: float64(steps) * p.samplingTime, ramp: ramp}
	for k := 0; k <= steps; k++ {
		t := float64(k) * p.samplingTime
		if k == steps {
			t = prof.duration
		}
		positions := make([]float64, len(from))
		floats.AddScaledTo(positions, from, prof.position(t), delta)
		velocities := make([]float64, len(from))
		floats.ScaleTo(velocities, prof.velocity(t), delta)
		if err := traj.AddSuffixWaypoint(motionplan.TrajectoryPoint{
			Positions:     positions,
			Velocities:    velocities,
			TimeFromStart: t,
		}); err != nil {
			return nil, err
		}
	}
	return traj, nil
}
