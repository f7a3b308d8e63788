package sequence

import (
	"go.viam.com/motionsequence/motionplan"
)

// extractBlendRadii returns one radius per item. Radius i belongs to the boundary between item i and
// item i+1, so the last radius is always zero. Radii that cannot be blended are set to zero.
func (clm *CommandListManager) extractBlendRadii(req motionplan.MotionSequenceRequest) []float64 {
	radii := make([]float64, len(req.Items))
	for i := 0; i < len(radii)-1; i++ {
		if clm.isInvalidBlendRadii(req.Items[i], req.Items[i+1]) {
			clm.logger.Warnf("Invalid blend radii between commands: [%d] and [%d] => Blend radii set to zero", i, i+1)
			continue
		}
		radii[i] = req.Items[i].BlendRadius
	}
	return radii
}

func (clm *CommandListManager) isInvalidBlendRadii(itemA, itemB motionplan.MotionSequenceItem) bool {
	if itemA.BlendRadius == 0 {
		return false
	}
	if itemA.Request.GroupName != itemB.Request.GroupName {
		clm.logger.Warnf("Blending between different groups (in this case: %q and %q) not allowed",
			itemA.Request.GroupName, itemB.Request.GroupName)
		return true
	}
	group, err := clm.model.JointModelGroup(itemA.Request.GroupName)
	if !group.HasSolver() {
		clm.logger.Warnw("Blending for groups without solver not allowed", "group", itemA.Request.GroupName, "error", err)
		return true
	}
	return false
}
