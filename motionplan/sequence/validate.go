package sequence

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/motionsequence/motionplan"
)

func checkForNegativeRadii(req motionplan.MotionSequenceRequest) error {
	item, index, found := lo.FindIndexOf(req.Items, func(item motionplan.MotionSequenceItem) bool {
		return item.BlendRadius < 0
	})
	if found {
		return errors.Wrapf(ErrNegativeBlendRadius, "item [%d] has blend radius %f", index, item.BlendRadius)
	}
	return nil
}

func checkLastBlendRadiusZero(req motionplan.MotionSequenceRequest) error {
	if len(req.Items) == 0 {
		return nil
	}
	last := req.Items[len(req.Items)-1]
	if last.BlendRadius != 0 {
		return errors.Wrapf(ErrLastBlendRadiusNotZero, "last item has blend radius %f", last.BlendRadius)
	}
	return nil
}

// checkStartStates allows an explicit start state only on the first request of each group. Later
// requests start where the previous request of their group ended.
func checkStartStates(req motionplan.MotionSequenceRequest) error {
	if len(req.Items) <= 1 {
		return nil
	}
	for _, group := range groupNames(req) {
		if err := checkStartStatesOfGroup(req, group); err != nil {
			return err
		}
	}
	return nil
}

func checkStartStatesOfGroup(req motionplan.MotionSequenceRequest, group string) error {
	first := true
	for i, item := range req.Items {
		if item.Request.GroupName != group {
			continue
		}
		if first {
			first = false
			continue
		}
		if !item.Request.StartState.IsEmpty() {
			return &StartStateSetError{GroupName: group, Index: i}
		}
	}
	return nil
}

// groupNames returns the distinct group names in order of first appearance.
func groupNames(req motionplan.MotionSequenceRequest) []string {
	return lo.Uniq(lo.Map(req.Items, func(item motionplan.MotionSequenceItem, _ int) string {
		return item.Request.GroupName
	}))
}
