package sequence

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/motionplan/blend"
)

var (
	// ErrNegativeBlendRadius is returned when any item has a blend radius below zero.
	ErrNegativeBlendRadius = errors.New("all blending radii must be non negative")
	// ErrLastBlendRadiusNotZero is returned when the final item of a sequence asks to be blended.
	ErrLastBlendRadiusNotZero = errors.New("the blend radius of the last item must be zero")
	// ErrStartStateAlreadySet is matched by every StartStateSetError.
	ErrStartStateAlreadySet = errors.New("only the first request of a group may have a start state")
	// ErrPlanningFailure is matched by every PlanningPipelineError.
	ErrPlanningFailure = errors.New("could not solve request")
	// ErrOverlappingBlendRadii is matched by every OverlappingBlendRadiiError.
	ErrOverlappingBlendRadii = errors.New("overlapping blend radii")
	// ErrBlendingFailed is matched when the blender rejects a junction.
	ErrBlendingFailed = blend.ErrBlendingFailed
)

// StartStateSetError reports a request that sets a start state although an earlier request of the
// same group exists.
type StartStateSetError struct {
	GroupName string
	Index     int
}

func (e *StartStateSetError) Error() string {
	return fmt.Sprintf("only the first request is allowed to have a start state, but request [%d] for group %q has one",
		e.Index, e.GroupName)
}

// Is matches ErrStartStateAlreadySet.
func (e *StartStateSetError) Is(target error) bool {
	return target == ErrStartStateAlreadySet
}

// PlanningPipelineError reports the item the pipeline failed on. Err is set when the pipeline call
// itself failed.
type PlanningPipelineError struct {
	Index int
	Code  motionplan.ErrorCode
	Err   error
}

func (e *PlanningPipelineError) Error() string {
	msg := fmt.Sprintf("%s [%d]: error code %s", ErrPlanningFailure, e.Index, e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrPlanningFailure.
func (e *PlanningPipelineError) Is(target error) bool {
	return target == ErrPlanningFailure
}

func (e *PlanningPipelineError) Unwrap() error {
	return e.Err
}

// OverlappingBlendRadiiError names the two boundaries whose blend spheres overlap.
type OverlappingBlendRadiiError struct {
	First  int
	Second int
}

func (e *OverlappingBlendRadiiError) Error() string {
	return fmt.Sprintf("overlapping blend radii between command [%d] and [%d]", e.First, e.Second)
}

// Is matches ErrOverlappingBlendRadii.
func (e *OverlappingBlendRadiiError) Is(target error) bool {
	return target == ErrOverlappingBlendRadii
}
