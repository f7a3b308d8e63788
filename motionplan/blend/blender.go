// Package blend joins consecutive trajectories of a motion sequence, either by appending them or by
// replacing the junction between them with a smooth transition.
package blend

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/motionsequence/motionplan"
)

// BlendRequest asks for the junction between First and Second to be blended. The blend region is the
// sphere of BlendRadius meters around the position of LinkName where First ends.
//
//nolint:revive
type BlendRequest struct {
	First       *motionplan.RobotTrajectory
	Second      *motionplan.RobotTrajectory
	BlendRadius float64
	GroupName   string
	LinkName    string
}

// BlendResponse holds the trimmed input trajectories and the transition between them. Each
// trajectory starts at time zero and Blend starts where First ends and ends where Second starts.
//
//nolint:revive
type BlendResponse struct {
	First  *motionplan.RobotTrajectory
	Blend  *motionplan.RobotTrajectory
	Second *motionplan.RobotTrajectory
}

// A TrajectoryBlender replaces the junction of two trajectories with a transition.
type TrajectoryBlender interface {
	Blend(ctx context.Context, scene motionplan.Scene, req BlendRequest) (BlendResponse, error)
}

// ErrBlendingFailed is matched by every BlendingFailedError.
var ErrBlendingFailed = errors.New("blending failed")

// BlendingFailedError is returned when the blender rejects a junction.
type BlendingFailedError struct {
	GroupName string
	Err       error
}

func (e *BlendingFailedError) Error() string {
	if e.Err == nil {
		return ErrBlendingFailed.Error()
	}
	return ErrBlendingFailed.Error() + ": " + e.Err.Error()
}

// Is matches ErrBlendingFailed.
func (e *BlendingFailedError) Is(target error) bool {
	return target == ErrBlendingFailed
}

func (e *BlendingFailedError) Unwrap() error {
	return e.Err
}
