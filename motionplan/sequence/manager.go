// Package sequence solves motion sequences: ordered lists of motion plan requests that are planned
// one after the other and joined into continuous trajectories.
package sequence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/motionplan/blend"
	"go.viam.com/motionsequence/motionplan/limits"
	"go.viam.com/motionsequence/referenceframe"
)

// DefaultSamplingTime is the sampling time, in seconds, of the default blender's transitions.
const DefaultSamplingTime = 0.1

// CommandListManager validates, plans and joins motion sequences. It holds no state between calls to
// Solve, so one manager may serve concurrent solves as long as its blender does.
type CommandListManager struct {
	logger       logging.Logger
	model        *referenceframe.RobotModel
	limits       *limits.Limits
	blender      blend.TrajectoryBlender
	samplingTime float64
}

// Option configures a CommandListManager.
type Option func(*CommandListManager)

// WithBlender replaces the default WindowBlender.
func WithBlender(blender blend.TrajectoryBlender) Option {
	return func(clm *CommandListManager) {
		clm.blender = blender
	}
}

// WithSamplingTime sets the sampling time of the default blender.
func WithSamplingTime(samplingTime float64) Option {
	return func(clm *CommandListManager) {
		clm.samplingTime = samplingTime
	}
}

// NewCommandListManager returns a manager for the given model. lims may be nil, in which case the
// default blender runs without joint limits.
func NewCommandListManager(
	logger logging.Logger,
	model *referenceframe.RobotModel,
	lims *limits.Limits,
	opts ...Option,
) (*CommandListManager, error) {
	if model == nil {
		return nil, blend.ErrNoRobotModel
	}
	if lims == nil {
		lims = &limits.Limits{JointLimits: limits.NewJointLimitsContainer()}
	}
	clm := &CommandListManager{
		logger:       logger,
		model:        model,
		limits:       lims,
		samplingTime: DefaultSamplingTime,
	}
	for _, opt := range opts {
		opt(clm)
	}
	if clm.blender == nil {
		wb, err := blend.NewWindowBlender(model, lims.JointLimits, clm.samplingTime)
		if err != nil {
			return nil, errors.Wrap(err, "cannot create default blender")
		}
		clm.blender = wb
	}
	return clm, nil
}

// Limits returns the limits the manager was created with.
func (clm *CommandListManager) Limits() *limits.Limits {
	return clm.limits
}

// Solve plans every item of req with pipeline and returns the joined trajectories, one per run of
// consecutive items of the same group. An empty request yields an empty result. Any failure aborts
// the whole solve without a partial result.
func (clm *CommandListManager) Solve(
	ctx context.Context,
	scene motionplan.Scene,
	pipeline motionplan.PlanningPipeline,
	req motionplan.MotionSequenceRequest,
) ([]*motionplan.RobotTrajectory, error) {
	return clm.SolveWithMeta(ctx, scene, pipeline, req, nil)
}

// SolveWithMeta is Solve recording timing information into meta, which may be nil.
func (clm *CommandListManager) SolveWithMeta(
	ctx context.Context,
	scene motionplan.Scene,
	pipeline motionplan.PlanningPipeline,
	req motionplan.MotionSequenceRequest,
	meta *PlanMeta,
) ([]*motionplan.RobotTrajectory, error) {
	ctx, span := trace.StartSpan(ctx, "sequence::Solve")
	defer span.End()
	start := time.Now()
	defer meta.DeferTiming("Solve", start)

	solveID := uuid.NewString()
	span.AddAttributes(
		trace.StringAttribute("solve_id", solveID),
		trace.Int64Attribute("items", int64(len(req.Items))),
	)
	if meta != nil {
		meta.SolveID = solveID
		meta.Items = len(req.Items)
		defer func() { meta.Duration = time.Since(start) }()
	}

	if len(req.Items) == 0 {
		return []*motionplan.RobotTrajectory{}, nil
	}
	if pipeline == nil {
		return nil, errors.New("no planning pipeline given")
	}
	clm.logger.CDebugw(ctx, "solving motion sequence", "solve_id", solveID, "items", len(req.Items))

	if err := clm.validate(req, meta); err != nil {
		return nil, err
	}

	responses, err := clm.solveSequenceItems(ctx, scene, pipeline, req, meta)
	if err != nil {
		return nil, err
	}

	radii := clm.extractBlendRadii(req)
	if err := clm.checkForOverlappingRadii(responses, radii, meta); err != nil {
		return nil, err
	}

	trajectories, err := clm.compose(ctx, scene, responses, radii, meta)
	if err != nil {
		return nil, err
	}

	clm.removeDuplicatePoints(trajectories, meta)
	clm.logger.CDebugw(ctx, "solved motion sequence",
		"solve_id", solveID, "trajectories", len(trajectories), "duration", time.Since(start))
	return trajectories, nil
}

func (clm *CommandListManager) validate(req motionplan.MotionSequenceRequest, meta *PlanMeta) error {
	defer meta.DeferTiming("validate", time.Now())
	if err := checkForNegativeRadii(req); err != nil {
		return err
	}
	if err := checkLastBlendRadiusZero(req); err != nil {
		return err
	}
	return checkStartStates(req)
}

// compose joins the responses with a builder owned by this call.
func (clm *CommandListManager) compose(
	ctx context.Context,
	scene motionplan.Scene,
	responses []motionplan.MotionPlanResponse,
	radii []float64,
	meta *PlanMeta,
) ([]*motionplan.RobotTrajectory, error) {
	defer meta.DeferTiming("compose", time.Now())
	builder := blend.NewPlanComponentsBuilder(clm.model, clm.blender)
	for i, resp := range responses {
		// The radius of boundary i-1 is attached to the second trajectory of the blend, hence i-1.
		radius := 0.
		if i > 0 {
			radius = radii[i-1]
		}
		if err := builder.Append(ctx, scene, resp.Trajectory, radius); err != nil {
			return nil, errors.Wrapf(err, "cannot append trajectory [%d]", i)
		}
	}
	return builder.Build(), nil
}
