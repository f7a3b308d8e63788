package sequence

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"

	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/motionplan/blend"
	"go.viam.com/motionsequence/referenceframe"
)

const (
	arm     = "manipulator"
	gripper = "gripper"
)

const planarArmJSON = `{
	"name": "planar",
	"links": [
		{"id": "link1", "parent": "j1", "translation": {"x": 1}},
		{"id": "tcp", "parent": "j2", "translation": {"x": 1}}
	],
	"joints": [
		{"id": "j1", "type": "revolute", "parent": "world", "axis": {"z": 1}, "min": -3.14, "max": 3.14, "max_velocity": 1.5},
		{"id": "j2", "type": "revolute", "parent": "link1", "axis": {"z": 1}, "min": -3.14, "max": 3.14},
		{"id": "finger", "type": "prismatic", "parent": "tcp", "axis": {"y": 1}, "min": 0, "max": 0.05}
	],
	"groups": [
		{"name": "manipulator", "joints": ["j1", "j2"], "tip": "tcp", "solver": true},
		{"name": "gripper", "joints": ["finger"]}
	]
}`

func testModel(t *testing.T) *referenceframe.RobotModel {
	t.Helper()
	model, err := referenceframe.UnmarshalModelJSON([]byte(planarArmJSON), "")
	test.That(t, err, test.ShouldBeNil)
	return model
}

func testScene() *motionplan.PlanningScene {
	return motionplan.NewPlanningScene("test", motionplan.RobotState{JointState: motionplan.JointState{
		Name:     []string{"j1", "j2", "finger"},
		Position: []float64{0, 0, 0},
	}})
}

type recordingBlender struct {
	requests []blend.BlendRequest
}

// Blend keeps both trajectories as they are.
func (rb *recordingBlender) Blend(ctx context.Context, scene motionplan.Scene, req blend.BlendRequest) (blend.BlendResponse, error) {
	rb.requests = append(rb.requests, req)
	return blend.BlendResponse{First: req.First, Second: req.Second}, nil
}

func newTestManager(t *testing.T, opts ...Option) (*CommandListManager, *observer.ObservedLogs) {
	t.Helper()
	logger, logs := logging.NewObservedTestLogger(t)
	clm, err := NewCommandListManager(logger, testModel(t), nil, opts...)
	test.That(t, err, test.ShouldBeNil)
	return clm, logs
}

// straightLine is a pipeline that moves from the start state to the goal in two waypoints one second
// apart. Every request it receives is recorded.
type straightLine struct {
	model    *referenceframe.RobotModel
	requests []motionplan.MotionPlanRequest
	// fail maps a call index to the code returned for it.
	fail map[int]motionplan.ErrorCode
	err  map[int]error
}

func newStraightLine(t *testing.T) *straightLine {
	t.Helper()
	return &straightLine{model: testModel(t), fail: map[int]motionplan.ErrorCode{}, err: map[int]error{}}
}

func (sl *straightLine) GeneratePlan(
	ctx context.Context,
	scene motionplan.Scene,
	req motionplan.MotionPlanRequest,
) (motionplan.MotionPlanResponse, error) {
	call := len(sl.requests)
	sl.requests = append(sl.requests, req)
	if err, ok := sl.err[call]; ok {
		return motionplan.MotionPlanResponse{}, err
	}
	if code, ok := sl.fail[call]; ok {
		return motionplan.MotionPlanResponse{ErrorCode: code}, nil
	}

	group, err := sl.model.JointModelGroup(req.GroupName)
	if err != nil {
		return motionplan.MotionPlanResponse{ErrorCode: motionplan.ErrorCodeInvalidGroupName}, nil
	}
	startState := req.StartState
	if startState.IsEmpty() {
		startState = scene.CurrentState()
	}
	known := startState.PositionMap()
	from := make([]float64, len(group.JointNames))
	for i, name := range group.JointNames {
		from[i] = known[name]
	}
	to := append([]float64(nil), from...)
	for _, c := range req.GoalConstraints[0].JointConstraints {
		for i, name := range group.JointNames {
			if name == c.JointName {
				to[i] = c.Position
			}
		}
	}

	traj := motionplan.NewRobotTrajectory(group.Name, group.JointNames)
	if err := traj.AddSuffixWaypoint(motionplan.TrajectoryPoint{Positions: from}); err != nil {
		return motionplan.MotionPlanResponse{}, err
	}
	if err := traj.AddSuffixWaypoint(motionplan.TrajectoryPoint{Positions: to, TimeFromStart: 1}); err != nil {
		return motionplan.MotionPlanResponse{}, err
	}
	return motionplan.MotionPlanResponse{Trajectory: traj, ErrorCode: motionplan.ErrorCodeSuccess}, nil
}

func item(group string, radius float64, goal map[string]float64) motionplan.MotionSequenceItem {
	c := motionplan.Constraints{}
	for name, pos := range goal {
		c.JointConstraints = append(c.JointConstraints, motionplan.JointConstraint{JointName: name, Position: pos})
	}
	return motionplan.MotionSequenceItem{
		Request:     motionplan.MotionPlanRequest{GroupName: group, GoalConstraints: []motionplan.Constraints{c}},
		BlendRadius: radius,
	}
}

func withStart(it motionplan.MotionSequenceItem, positions map[string]float64) motionplan.MotionSequenceItem {
	for name, pos := range positions {
		it.Request.StartState.JointState.Name = append(it.Request.StartState.JointState.Name, name)
		it.Request.StartState.JointState.Position = append(it.Request.StartState.JointState.Position, pos)
	}
	return it
}

func sequenceOf(items ...motionplan.MotionSequenceItem) motionplan.MotionSequenceRequest {
	return motionplan.MotionSequenceRequest{Items: items}
}

// timedTrajectory returns an arm trajectory with one waypoint per time, moving j1 by 0.1 per waypoint.
func timedTrajectory(t *testing.T, times ...float64) *motionplan.RobotTrajectory {
	t.Helper()
	traj := motionplan.NewRobotTrajectory(arm, []string{"j1", "j2"})
	for i, tm := range times {
		err := traj.AddSuffixWaypoint(motionplan.TrajectoryPoint{Positions: []float64{0.1 * float64(i), 0}, TimeFromStart: tm})
		test.That(t, err, test.ShouldBeNil)
	}
	return traj
}

func times(traj *motionplan.RobotTrajectory) []float64 {
	out := make([]float64, traj.Len())
	for i := range out {
		out[i] = traj.WaypointDurationFromStart(i)
	}
	return out
}
