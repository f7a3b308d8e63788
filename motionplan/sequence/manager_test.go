package sequence

import (
	"context"
	"errors"
	"testing"

	"go.viam.com/test"

	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/motionplan/jointinterp"
	"go.viam.com/motionsequence/motionplan/limits"
)

func TestSolveEmptySequence(t *testing.T) {
	clm, logs := newTestManager(t)
	pipeline := newStraightLine(t)
	meta := NewPlanMeta()
	out, err := clm.SolveWithMeta(context.Background(), testScene(), pipeline, motionplan.MotionSequenceRequest{}, meta)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldNotBeNil)
	test.That(t, out, test.ShouldBeEmpty)
	test.That(t, pipeline.requests, test.ShouldBeEmpty)
	test.That(t, logs.Len(), test.ShouldEqual, 0)
	test.That(t, meta.Items, test.ShouldEqual, 0)
}

func TestSolveValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("negative radius anywhere", func(t *testing.T) {
		for idx := 0; idx < 3; idx++ {
			items := []motionplan.MotionSequenceItem{
				item(arm, 0.1, map[string]float64{"j1": 0.5}),
				item(arm, 0.1, map[string]float64{"j1": 1}),
				item(arm, 0, map[string]float64{"j1": 1.5}),
			}
			items[idx].BlendRadius = -0.1
			clm, _ := newTestManager(t)
			pipeline := newStraightLine(t)
			_, err := clm.Solve(ctx, testScene(), pipeline, sequenceOf(items...))
			test.That(t, errors.Is(err, ErrNegativeBlendRadius), test.ShouldBeTrue)
			test.That(t, pipeline.requests, test.ShouldBeEmpty)
		}
	})

	t.Run("last radius not zero", func(t *testing.T) {
		clm, _ := newTestManager(t)
		pipeline := newStraightLine(t)
		_, err := clm.Solve(ctx, testScene(), pipeline, sequenceOf(
			item(arm, 0.1, map[string]float64{"j1": 0.5}),
			item(arm, 0.2, map[string]float64{"j1": 1}),
		))
		test.That(t, errors.Is(err, ErrLastBlendRadiusNotZero), test.ShouldBeTrue)
		test.That(t, pipeline.requests, test.ShouldBeEmpty)

		_, err = clm.Solve(ctx, testScene(), pipeline, sequenceOf(item(arm, 0.2, map[string]float64{"j1": 1})))
		test.That(t, errors.Is(err, ErrLastBlendRadiusNotZero), test.ShouldBeTrue)
	})

	t.Run("start state on a later request of a group", func(t *testing.T) {
		clm, _ := newTestManager(t)
		pipeline := newStraightLine(t)
		_, err := clm.Solve(ctx, testScene(), pipeline, sequenceOf(
			withStart(item(arm, 0, map[string]float64{"j1": 0.5}), map[string]float64{"j1": 0, "j2": 0}),
			item(gripper, 0, map[string]float64{"finger": 0.02}),
			withStart(item(arm, 0, map[string]float64{"j1": 1}), map[string]float64{"j1": 0.5}),
		))
		test.That(t, errors.Is(err, ErrStartStateAlreadySet), test.ShouldBeTrue)
		var sse *StartStateSetError
		test.That(t, errors.As(err, &sse), test.ShouldBeTrue)
		test.That(t, sse.GroupName, test.ShouldEqual, arm)
		test.That(t, sse.Index, test.ShouldEqual, 2)
		test.That(t, pipeline.requests, test.ShouldBeEmpty)
	})

	t.Run("velocity only start state counts as set", func(t *testing.T) {
		later := item(arm, 0, map[string]float64{"j1": 1})
		later.Request.StartState.JointState.Velocity = []float64{0}
		err := checkStartStates(sequenceOf(item(arm, 0, map[string]float64{"j1": 0.5}), later))
		test.That(t, errors.Is(err, ErrStartStateAlreadySet), test.ShouldBeTrue)
	})

	t.Run("first request of each group may set a start state", func(t *testing.T) {
		err := checkStartStates(sequenceOf(
			withStart(item(arm, 0, map[string]float64{"j1": 0.5}), map[string]float64{"j1": 0, "j2": 0}),
			withStart(item(gripper, 0, map[string]float64{"finger": 0.02}), map[string]float64{"finger": 0}),
			item(arm, 0, map[string]float64{"j1": 1}),
		))
		test.That(t, err, test.ShouldBeNil)

		// a single item is never checked
		err = checkStartStates(sequenceOf(withStart(item(arm, 0, nil), map[string]float64{"j1": 0})))
		test.That(t, err, test.ShouldBeNil)
	})
}

func TestExtractBlendRadii(t *testing.T) {
	clm, logs := newTestManager(t)

	radii := clm.extractBlendRadii(sequenceOf(
		item(arm, 0.1, nil),
		item(arm, 0.2, nil),
		item(gripper, 0.3, nil),
		item(gripper, 0.4, nil),
		item(gripper, 0, nil),
	))
	// arm -> arm keeps its radius, arm -> gripper changes group, gripper has no solver
	test.That(t, radii, test.ShouldResemble, []float64{0.1, 0, 0, 0, 0})
	test.That(t, logs.FilterMessageSnippet("Invalid blend radii between commands: [1] and [2]").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessageSnippet("Invalid blend radii between commands: [2] and [3]").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessageSnippet("Invalid blend radii between commands: [3] and [4]").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessageSnippet("Blending between different groups").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessageSnippet("without solver").Len(), test.ShouldEqual, 2)

	// zero radii are valid without a warning
	logs.TakeAll()
	radii = clm.extractBlendRadii(sequenceOf(item(arm, 0, nil), item(gripper, 0, nil)))
	test.That(t, radii, test.ShouldResemble, []float64{0, 0})
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	test.That(t, clm.extractBlendRadii(sequenceOf(item(arm, 0, nil))), test.ShouldResemble, []float64{0})
}

func TestSolveChainsStartStates(t *testing.T) {
	clm, _ := newTestManager(t, WithBlender(&recordingBlender{}))
	pipeline := newStraightLine(t)
	initial := map[string]float64{"j1": 0.2, "j2": 0.1}
	req := sequenceOf(
		withStart(item(arm, 0, map[string]float64{"j1": 0.5}), initial),
		item(gripper, 0, map[string]float64{"finger": 0.02}),
		item(arm, 0, map[string]float64{"j2": 1}),
		item(gripper, 0, map[string]float64{"finger": 0.04}),
	)
	out, err := clm.Solve(context.Background(), testScene(), pipeline, req)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(pipeline.requests), test.ShouldEqual, 4)

	// the first request of each group keeps what the caller gave
	test.That(t, pipeline.requests[0].StartState.PositionMap(), test.ShouldResemble, initial)
	test.That(t, pipeline.requests[1].StartState.IsEmpty(), test.ShouldBeTrue)
	// later requests start where their group ended
	test.That(t, pipeline.requests[2].StartState.PositionMap(), test.ShouldResemble, map[string]float64{"j1": 0.5, "j2": 0.1})
	test.That(t, pipeline.requests[3].StartState.PositionMap(), test.ShouldResemble, map[string]float64{"finger": 0.02})

	// the caller's request is untouched
	test.That(t, req.Items[2].Request.StartState.IsEmpty(), test.ShouldBeTrue)

	// every group change starts a new trajectory
	test.That(t, len(out), test.ShouldEqual, 4)
	test.That(t, out[0].GroupName(), test.ShouldEqual, arm)
	test.That(t, out[1].GroupName(), test.ShouldEqual, gripper)
	test.That(t, out[2].LastWaypoint().Positions, test.ShouldResemble, []float64{0.5, 1})
}

func TestSolvePlanningFailure(t *testing.T) {
	req := sequenceOf(
		item(arm, 0, map[string]float64{"j1": 0.5}),
		item(arm, 0, map[string]float64{"j1": 1}),
		item(arm, 0, map[string]float64{"j1": 1.5}),
	)

	t.Run("error code", func(t *testing.T) {
		clm, _ := newTestManager(t)
		pipeline := newStraightLine(t)
		pipeline.fail[1] = motionplan.ErrorCodePlanningFailed
		out, err := clm.Solve(context.Background(), testScene(), pipeline, req)
		test.That(t, out, test.ShouldBeNil)
		test.That(t, errors.Is(err, ErrPlanningFailure), test.ShouldBeTrue)
		var ppe *PlanningPipelineError
		test.That(t, errors.As(err, &ppe), test.ShouldBeTrue)
		test.That(t, ppe.Index, test.ShouldEqual, 1)
		test.That(t, ppe.Code, test.ShouldEqual, motionplan.ErrorCodePlanningFailed)
		// fail fast
		test.That(t, len(pipeline.requests), test.ShouldEqual, 2)
	})

	t.Run("call failure", func(t *testing.T) {
		clm, logs := newTestManager(t)
		pipeline := newStraightLine(t)
		callErr := errors.New("pipeline unavailable")
		pipeline.err[0] = callErr
		_, err := clm.Solve(context.Background(), testScene(), pipeline, req)
		var ppe *PlanningPipelineError
		test.That(t, errors.As(err, &ppe), test.ShouldBeTrue)
		test.That(t, ppe.Index, test.ShouldEqual, 0)
		test.That(t, ppe.Code, test.ShouldEqual, motionplan.ErrorCodeFailure)
		test.That(t, errors.Is(err, callErr), test.ShouldBeTrue)
		test.That(t, logs.FilterMessageSnippet("planning pipeline failed").Len(), test.ShouldEqual, 1)
	})

	t.Run("success without trajectory", func(t *testing.T) {
		clm, _ := newTestManager(t)
		empty := motionplan.PlanningPipelineFunc(func(
			ctx context.Context, scene motionplan.Scene, req motionplan.MotionPlanRequest,
		) (motionplan.MotionPlanResponse, error) {
			return motionplan.MotionPlanResponse{ErrorCode: motionplan.ErrorCodeSuccess}, nil
		})
		_, err := clm.Solve(context.Background(), testScene(), empty, req)
		test.That(t, errors.Is(err, ErrPlanningFailure), test.ShouldBeTrue)
	})
}

func TestSolveOverlappingRadii(t *testing.T) {
	// the tip moves on a circle of radius 2, so 0.05 rad apart is 0.1 m apart
	clm, _ := newTestManager(t, WithBlender(&recordingBlender{}))
	pipeline := newStraightLine(t)
	_, err := clm.Solve(context.Background(), testScene(), pipeline, sequenceOf(
		item(arm, 0.1, map[string]float64{"j1": 0}),
		item(arm, 0.1, map[string]float64{"j1": 0.05}),
		item(arm, 0, map[string]float64{"j1": 0.1}),
	))
	test.That(t, errors.Is(err, ErrOverlappingBlendRadii), test.ShouldBeTrue)
	var obr *OverlappingBlendRadiiError
	test.That(t, errors.As(err, &obr), test.ShouldBeTrue)
	test.That(t, obr.First, test.ShouldEqual, 0)
	test.That(t, obr.Second, test.ShouldEqual, 1)
	test.That(t, err.Error(), test.ShouldContainSubstring, "[0] and [1]")

	// far enough apart
	blender := &recordingBlender{}
	clm, _ = newTestManager(t, WithBlender(blender))
	out, err := clm.Solve(context.Background(), testScene(), newStraightLine(t), sequenceOf(
		item(arm, 0.1, map[string]float64{"j1": 0.5}),
		item(arm, 0.1, map[string]float64{"j1": 1}),
		item(arm, 0, map[string]float64{"j1": 1.5}),
	))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(out), test.ShouldEqual, 1)
	test.That(t, len(blender.requests), test.ShouldEqual, 2)
}

func TestCheckForOverlappingRadii(t *testing.T) {
	clm, _ := newTestManager(t)
	same := func() motionplan.MotionPlanResponse {
		return motionplan.MotionPlanResponse{Trajectory: timedTrajectory(t, 0, 1), ErrorCode: motionplan.ErrorCodeSuccess}
	}

	// fewer than three responses never overlap
	err := clm.checkForOverlappingRadii([]motionplan.MotionPlanResponse{same(), same()}, []float64{1, 0}, nil)
	test.That(t, err, test.ShouldBeNil)
	err = clm.checkForOverlappingRadii([]motionplan.MotionPlanResponse{same()}, []float64{0}, nil)
	test.That(t, err, test.ShouldBeNil)

	err = clm.checkForOverlappingRadii([]motionplan.MotionPlanResponse{same(), same(), same()}, []float64{0.1, 0.1, 0}, nil)
	test.That(t, errors.Is(err, ErrOverlappingBlendRadii), test.ShouldBeTrue)

	// zero radii never overlap
	err = clm.checkForOverlappingRadii([]motionplan.MotionPlanResponse{same(), same(), same()}, []float64{0, 0, 0}, nil)
	test.That(t, err, test.ShouldBeNil)

	// boundaries 0 and 2 share a position but only adjacent boundaries are compared
	endAt := func(j1 float64) motionplan.MotionPlanResponse {
		traj := motionplan.NewRobotTrajectory(arm, []string{"j1", "j2"})
		test.That(t, traj.AddSuffixWaypoint(motionplan.TrajectoryPoint{Positions: []float64{j1, 0}}), test.ShouldBeNil)
		return motionplan.MotionPlanResponse{Trajectory: traj, ErrorCode: motionplan.ErrorCodeSuccess}
	}
	err = clm.checkForOverlappingRadii(
		[]motionplan.MotionPlanResponse{endAt(0), endAt(1.5), endAt(0), endAt(1.5)},
		[]float64{0.5, 0.01, 0.5, 0},
		nil,
	)
	test.That(t, err, test.ShouldBeNil)
	overlap, err := clm.checkRadiiForOverlap(endAt(0).Trajectory, 0.5, endAt(0).Trajectory, 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, overlap, test.ShouldBeTrue)

	t.Run("checkRadiiForOverlap", func(t *testing.T) {
		a := timedTrajectory(t, 0, 1)
		overlap, err := clm.checkRadiiForOverlap(a, 0, a, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, overlap, test.ShouldBeFalse)

		overlap, err = clm.checkRadiiForOverlap(a, 0.01, a, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, overlap, test.ShouldBeTrue)

		g := motionplan.NewRobotTrajectory(gripper, []string{"finger"})
		test.That(t, g.AddSuffixWaypoint(motionplan.TrajectoryPoint{Positions: []float64{0}}), test.ShouldBeNil)
		overlap, err = clm.checkRadiiForOverlap(a, 10, g, 10)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, overlap, test.ShouldBeFalse)

		// ends at j1 = 0.1 and j1 = 0.6, about 1 m apart
		b := timedTrajectory(t, 0, 1)
		b.RemoveWaypoint(1)
		err = b.AddSuffixWaypoint(motionplan.TrajectoryPoint{Positions: []float64{0.6, 0}, TimeFromStart: 1})
		test.That(t, err, test.ShouldBeNil)
		overlap, err = clm.checkRadiiForOverlap(a, 0.4, b, 0.4)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, overlap, test.ShouldBeFalse)
		overlap, err = clm.checkRadiiForOverlap(a, 0.6, b, 0.6)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, overlap, test.ShouldBeTrue)
	})
}

func TestSolveBlendRadiusAttachment(t *testing.T) {
	blender := &recordingBlender{}
	clm, _ := newTestManager(t, WithBlender(blender))
	_, err := clm.Solve(context.Background(), testScene(), newStraightLine(t), sequenceOf(
		item(arm, 0, map[string]float64{"j1": 0.5}),
		item(arm, 0.3, map[string]float64{"j1": 1}),
		item(arm, 0, map[string]float64{"j1": 1.5}),
	))
	test.That(t, err, test.ShouldBeNil)
	// the radius of boundary 1 is applied when the third trajectory is appended
	test.That(t, len(blender.requests), test.ShouldEqual, 1)
	test.That(t, blender.requests[0].BlendRadius, test.ShouldEqual, 0.3)
	test.That(t, blender.requests[0].GroupName, test.ShouldEqual, arm)
	test.That(t, blender.requests[0].LinkName, test.ShouldEqual, "tcp")
	test.That(t, blender.requests[0].Second.LastWaypoint().Positions[0], test.ShouldAlmostEqual, 1.5)
}

func TestSolveRemovesDuplicateTimes(t *testing.T) {
	first := timedTrajectory(t, 0, 0.5)
	second := motionplan.NewRobotTrajectory(arm, []string{"j1", "j2"})
	for _, p := range []motionplan.TrajectoryPoint{
		{Positions: []float64{0.3, 0}, TimeFromStart: 0},
		{Positions: []float64{0.4, 0}, TimeFromStart: 0.5},
	} {
		test.That(t, second.AddSuffixWaypoint(p), test.ShouldBeNil)
	}
	responses := []*motionplan.RobotTrajectory{first, second}
	var calls int
	pipeline := motionplan.PlanningPipelineFunc(func(
		ctx context.Context, scene motionplan.Scene, req motionplan.MotionPlanRequest,
	) (motionplan.MotionPlanResponse, error) {
		traj := responses[calls]
		calls++
		return motionplan.MotionPlanResponse{Trajectory: traj, ErrorCode: motionplan.ErrorCodeSuccess}, nil
	})

	clm, logs := newTestManager(t)
	out, err := clm.Solve(context.Background(), testScene(), pipeline, sequenceOf(
		item(arm, 0, nil),
		item(arm, 0, nil),
	))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(out), test.ShouldEqual, 1)
	// the second segment starts elsewhere, so it is appended at [0.5, 1.0]
	test.That(t, times(out[0]), test.ShouldResemble, []float64{0, 0.5, 1.0})
	test.That(t, logs.FilterMessage("Removed duplicate point at time=0.500000").Len(), test.ShouldEqual, 1)
}

func TestRemoveDuplicatePoints(t *testing.T) {
	clm, logs := newTestManager(t)

	pair := timedTrajectory(t, 0, 0.5, 0.5, 1.0)
	run := timedTrajectory(t, 0, 0.5, 0.5, 0.5, 1.0)
	tail := timedTrajectory(t, 0, 1, 1, 1)
	clean := timedTrajectory(t, 0, 0.25, 0.5)
	clm.removeDuplicatePoints([]*motionplan.RobotTrajectory{pair, run, tail, clean}, nil)

	test.That(t, times(pair), test.ShouldResemble, []float64{0, 0.5, 1.0})
	test.That(t, times(run), test.ShouldResemble, []float64{0, 0.5, 1.0})
	test.That(t, times(tail), test.ShouldResemble, []float64{0, 1})
	test.That(t, times(clean), test.ShouldResemble, []float64{0, 0.25, 0.5})
	// the first waypoint of a run survives
	test.That(t, run.Waypoint(1).Positions[0], test.ShouldAlmostEqual, 0.1)
	test.That(t, logs.FilterMessageSnippet("Removed duplicate point").Len(), test.ShouldEqual, 5)
}

func TestSolveSingleItemMatchesPipeline(t *testing.T) {
	model := testModel(t)
	jointLimits, err := limits.AggregateJointLimits(model, nil)
	test.That(t, err, test.ShouldBeNil)
	planner, err := jointinterp.NewPlanner(logging.NewTestLogger(t), model, jointLimits, 0.1)
	test.That(t, err, test.ShouldBeNil)

	it := withStart(item(arm, 0, map[string]float64{"j1": 1, "j2": -0.5}), map[string]float64{"j1": 0, "j2": 0})
	direct, err := planner.GeneratePlan(context.Background(), testScene(), it.Request)
	test.That(t, err, test.ShouldBeNil)

	clm, _ := newTestManager(t)
	out, err := clm.Solve(context.Background(), testScene(), planner, sequenceOf(it))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(out), test.ShouldEqual, 1)
	test.That(t, out[0].Len(), test.ShouldEqual, direct.Trajectory.Len())
	for i := 0; i < out[0].Len(); i++ {
		test.That(t, out[0].Waypoint(i), test.ShouldResemble, direct.Trajectory.Waypoint(i))
	}
}

func TestSolveWithWindowBlender(t *testing.T) {
	model := testModel(t)
	// with acceleration limits, blending saves the time spent stopping at the junction
	lims, err := limits.Load(model, map[string]interface{}{
		limits.JointLimitsKey: map[string]interface{}{
			"j1": map[string]interface{}{"max_acceleration": 3.0},
		},
	})
	test.That(t, err, test.ShouldBeNil)
	planner, err := jointinterp.NewPlanner(logging.NewTestLogger(t), model, lims.JointLimits, 0.1)
	test.That(t, err, test.ShouldBeNil)
	logger := logging.NewTestLogger(t)
	clm, err := NewCommandListManager(logger, model, lims, WithSamplingTime(0.1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, clm.Limits(), test.ShouldEqual, lims)

	req := sequenceOf(
		item(arm, 0, map[string]float64{"j1": 1.5}),
		item(arm, 0, map[string]float64{"j1": 3}),
	)
	meta := NewPlanMeta()
	stopped, err := clm.SolveWithMeta(context.Background(), testScene(), planner, req, meta)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(stopped), test.ShouldEqual, 1)
	test.That(t, meta.Counters("GeneratePlan").Calls(), test.ShouldEqual, 2)
	test.That(t, meta.Counters("Solve").Calls(), test.ShouldEqual, 1)
	test.That(t, meta.Items, test.ShouldEqual, 2)
	test.That(t, meta.SolveID, test.ShouldNotBeEmpty)

	req.Items[0].BlendRadius = 0.5
	blended, err := clm.Solve(context.Background(), testScene(), planner, req)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(blended), test.ShouldEqual, 1)
	test.That(t, blended[0].Duration(), test.ShouldBeLessThan, stopped[0].Duration())
	test.That(t, blended[0].LastWaypoint().Positions[0], test.ShouldAlmostEqual, 3)
	for i := 1; i < blended[0].Len(); i++ {
		test.That(t, blended[0].WaypointDurationFromStart(i), test.ShouldBeGreaterThan, blended[0].WaypointDurationFromStart(i-1))
	}
}

func TestNewCommandListManager(t *testing.T) {
	_, err := NewCommandListManager(logging.NewTestLogger(t), nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewCommandListManager(logging.NewTestLogger(t), testModel(t), nil, WithSamplingTime(0))
	test.That(t, err, test.ShouldNotBeNil)
}
