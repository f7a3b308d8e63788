package motionplan

import (
	"fmt"
	"time"
)

// ErrorCode is the outcome reported by a planning pipeline.
type ErrorCode int32

// Error codes a pipeline may report.
const (
	ErrorCodeSuccess                ErrorCode = 1
	ErrorCodeFailure                ErrorCode = 99999
	ErrorCodePlanningFailed         ErrorCode = -1
	ErrorCodeInvalidMotionPlan      ErrorCode = -2
	ErrorCodeTimedOut               ErrorCode = -6
	ErrorCodePreempted              ErrorCode = -7
	ErrorCodeStartStateInCollision  ErrorCode = -10
	ErrorCodeStartStateViolatesPath ErrorCode = -11
	ErrorCodeGoalInCollision        ErrorCode = -12
	ErrorCodeInvalidGroupName       ErrorCode = -15
	ErrorCodeInvalidGoalConstraints ErrorCode = -16
	ErrorCodeInvalidRobotState      ErrorCode = -17
	ErrorCodeInvalidLinkName        ErrorCode = -18
	ErrorCodeNoIKSolution           ErrorCode = -31
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeSuccess:                "SUCCESS",
	ErrorCodeFailure:                "FAILURE",
	ErrorCodePlanningFailed:         "PLANNING_FAILED",
	ErrorCodeInvalidMotionPlan:      "INVALID_MOTION_PLAN",
	ErrorCodeTimedOut:               "TIMED_OUT",
	ErrorCodePreempted:              "PREEMPTED",
	ErrorCodeStartStateInCollision:  "START_STATE_IN_COLLISION",
	ErrorCodeStartStateViolatesPath: "START_STATE_VIOLATES_PATH_CONSTRAINTS",
	ErrorCodeGoalInCollision:        "GOAL_IN_COLLISION",
	ErrorCodeInvalidGroupName:       "INVALID_GROUP_NAME",
	ErrorCodeInvalidGoalConstraints: "INVALID_GOAL_CONSTRAINTS",
	ErrorCodeInvalidRobotState:      "INVALID_ROBOT_STATE",
	ErrorCodeInvalidLinkName:        "INVALID_LINK_NAME",
	ErrorCodeNoIKSolution:           "NO_IK_SOLUTION",
}

func (code ErrorCode) String() string {
	if name, ok := errorCodeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int32(code))
}

// MotionPlanResponse is the answer of a planning pipeline to a single request.
type MotionPlanResponse struct {
	Trajectory   *RobotTrajectory
	ErrorCode    ErrorCode
	PlanningTime time.Duration
}
