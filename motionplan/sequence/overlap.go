package sequence

import (
	"time"

	"go.viam.com/motionsequence/motionplan"
)

// checkForOverlappingRadii compares the blend spheres of adjacent boundaries only. Boundary i is
// never compared against boundary i+2 or later.
func (clm *CommandListManager) checkForOverlappingRadii(
	responses []motionplan.MotionPlanResponse,
	radii []float64,
	meta *PlanMeta,
) error {
	defer meta.DeferTiming("checkForOverlappingRadii", time.Now())
	if len(responses) < 3 {
		return nil
	}
	for i := 0; i < len(responses)-2; i++ {
		overlap, err := clm.checkRadiiForOverlap(responses[i].Trajectory, radii[i], responses[i+1].Trajectory, radii[i+1])
		if err != nil {
			return err
		}
		if overlap {
			return &OverlappingBlendRadiiError{First: i, Second: i + 1}
		}
	}
	return nil
}

// checkRadiiForOverlap reports whether the spheres around the end points of trajA and trajB touch.
// The end points are the tip frame positions of the last waypoints.
func (clm *CommandListManager) checkRadiiForOverlap(
	trajA *motionplan.RobotTrajectory,
	radiusA float64,
	trajB *motionplan.RobotTrajectory,
	radiusB float64,
) (bool, error) {
	if trajA.GroupName() != trajB.GroupName() {
		return false, nil
	}
	sumRadii := radiusA + radiusB
	if sumRadii == 0 {
		return false, nil
	}

	group, err := clm.model.JointModelGroup(trajA.GroupName())
	if err != nil {
		return false, err
	}
	blendFrame, err := group.SolverTipFrame()
	if err != nil {
		return false, err
	}
	endA, err := clm.model.FramePosition(trajA.PositionMap(trajA.Len()-1), blendFrame)
	if err != nil {
		return false, err
	}
	endB, err := clm.model.FramePosition(trajB.PositionMap(trajB.Len()-1), blendFrame)
	if err != nil {
		return false, err
	}
	return endA.Sub(endB).Norm() <= sumRadii, nil
}
