package motionplan

// JointConstraint asks for a joint to end within [Position-ToleranceBelow, Position+ToleranceAbove].
type JointConstraint struct {
	JointName      string  `json:"joint_name"`
	Position       float64 `json:"position"`
	ToleranceAbove float64 `json:"tolerance_above"`
	ToleranceBelow float64 `json:"tolerance_below"`
	Weight         float64 `json:"weight"`
}

// Constraints is one set of goal constraints. A request is satisfied by reaching any one set.
type Constraints struct {
	Name             string            `json:"name,omitempty"`
	JointConstraints []JointConstraint `json:"joint_constraints,omitempty"`
}

// MotionPlanRequest is a single request to a planning pipeline.
type MotionPlanRequest struct {
	GroupName                    string        `json:"group_name"`
	PlannerID                    string        `json:"planner_id,omitempty"`
	StartState                   RobotState    `json:"start_state"`
	GoalConstraints              []Constraints `json:"goal_constraints"`
	MaxVelocityScalingFactor     float64       `json:"max_velocity_scaling_factor,omitempty"`
	MaxAccelerationScalingFactor float64       `json:"max_acceleration_scaling_factor,omitempty"`
	// AllowedPlanningTime is in seconds. Zero leaves the choice to the pipeline.
	AllowedPlanningTime float64 `json:"allowed_planning_time,omitempty"`
}

// Clone returns a deep copy of the request.
func (req MotionPlanRequest) Clone() MotionPlanRequest {
	out := req
	out.StartState = req.StartState.Clone()
	if req.GoalConstraints != nil {
		out.GoalConstraints = make([]Constraints, len(req.GoalConstraints))
		for i, c := range req.GoalConstraints {
			out.GoalConstraints[i] = Constraints{Name: c.Name, JointConstraints: cloneSlice(c.JointConstraints)}
		}
	}
	return out
}

// MotionSequenceItem is one request of a sequence together with the radius used to blend it into
// the next request. A radius of zero means the motion comes to a stop before the next one starts.
type MotionSequenceItem struct {
	Request     MotionPlanRequest `json:"req"`
	BlendRadius float64           `json:"blend_radius"`
}

// MotionSequenceRequest is an ordered list of sequence items.
type MotionSequenceRequest struct {
	Items []MotionSequenceItem `json:"items"`
}
