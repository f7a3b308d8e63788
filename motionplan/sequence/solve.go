package sequence

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/motionsequence/motionplan"
)

// solveSequenceItems plans every item in order. Each request after the first of its group starts
// where the most recent response of that group ended.
func (clm *CommandListManager) solveSequenceItems(
	ctx context.Context,
	scene motionplan.Scene,
	pipeline motionplan.PlanningPipeline,
	req motionplan.MotionSequenceRequest,
	meta *PlanMeta,
) ([]motionplan.MotionPlanResponse, error) {
	ctx, span := trace.StartSpan(ctx, "sequence::solveSequenceItems")
	defer span.End()
	defer meta.DeferTiming("solveSequenceItems", time.Now())

	responses := make([]motionplan.MotionPlanResponse, 0, len(req.Items))
	for i, item := range req.Items {
		planReq := item.Request.Clone()
		if err := setStartState(responses, planReq.GroupName, &planReq.StartState); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := pipeline.GeneratePlan(ctx, scene, planReq)
		meta.AddTiming("GeneratePlan", time.Since(start))
		if err != nil {
			clm.logger.Errorw("Generating a plan with planning pipeline failed.", "index", i, "error", err)
			resp.ErrorCode = motionplan.ErrorCodeFailure
		}
		if resp.ErrorCode != motionplan.ErrorCodeSuccess {
			return nil, &PlanningPipelineError{Index: i, Code: resp.ErrorCode, Err: err}
		}
		if resp.Trajectory == nil || resp.Trajectory.Empty() {
			return nil, &PlanningPipelineError{
				Index: i,
				Code:  motionplan.ErrorCodeFailure,
				Err:   errors.New("pipeline reported success without a trajectory"),
			}
		}
		responses = append(responses, resp)
		clm.logger.CDebugf(ctx, "Solved [%d/%d]", i+1, len(req.Items))
	}
	return responses, nil
}

// previousEndState returns the last waypoint of the most recent response for group.
func previousEndState(responses []motionplan.MotionPlanResponse, group string) (motionplan.RobotState, bool, error) {
	for i := len(responses) - 1; i >= 0; i-- {
		if responses[i].Trajectory.GroupName() != group {
			continue
		}
		state, err := responses[i].Trajectory.LastWaypointAsStartState()
		return state, true, err
	}
	return motionplan.RobotState{}, false, nil
}

func setStartState(responses []motionplan.MotionPlanResponse, group string, startState *motionplan.RobotState) error {
	state, found, err := previousEndState(responses, group)
	if err != nil {
		return err
	}
	if found {
		*startState = state
	}
	return nil
}
