package motionplan

import "context"

// Scene is the world a request is planned in. It is passed through untouched to the pipeline and
// the blender.
type Scene interface {
	Name() string
	// CurrentState is the robot state a request with an empty start state starts from.
	CurrentState() RobotState
}

// PlanningScene is a basic Scene.
type PlanningScene struct {
	name  string
	state RobotState
}

// NewPlanningScene returns a scene with the given current robot state.
func NewPlanningScene(name string, current RobotState) *PlanningScene {
	return &PlanningScene{name: name, state: current.Clone()}
}

// Name returns the scene's name.
func (ps *PlanningScene) Name() string {
	return ps.name
}

// CurrentState returns a copy of the scene's robot state.
func (ps *PlanningScene) CurrentState() RobotState {
	return ps.state.Clone()
}

// PlanningPipeline solves a single motion plan request. A returned error means the call itself
// failed; otherwise the response's ErrorCode reports whether a plan was found. Timeouts and
// cancellation are the pipeline's own business.
type PlanningPipeline interface {
	GeneratePlan(ctx context.Context, scene Scene, req MotionPlanRequest) (MotionPlanResponse, error)
}

// PlanningPipelineFunc adapts a function to a PlanningPipeline.
type PlanningPipelineFunc func(ctx context.Context, scene Scene, req MotionPlanRequest) (MotionPlanResponse, error)

// GeneratePlan calls f.
func (f PlanningPipelineFunc) GeneratePlan(ctx context.Context, scene Scene, req MotionPlanRequest) (MotionPlanResponse, error) {
	return f(ctx, scene, req)
}
