package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/motionsequence/config"
	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan"
	"go.viam.com/motionsequence/motionplan/jointinterp"
	"go.viam.com/motionsequence/motionplan/sequence"
	"go.viam.com/motionsequence/referenceframe"
)

// planContext holds everything shared by the solves of one invocation. The manager and planner
// keep no per-solve state, so sequences are solved concurrently against the same instances.
type planContext struct {
	logger  logging.Logger
	model   *referenceframe.RobotModel
	manager *sequence.CommandListManager
	planner *jointinterp.Planner
	scene   motionplan.Scene
}

func newPlanContext(cfg *config.Config, logger logging.Logger, joints []string) (*planContext, error) {
	model, err := cfg.LoadModel()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load model %q", cfg.ModelPath())
	}
	lims, err := cfg.LoadLimits(model)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load limits")
	}
	planner, err := jointinterp.NewPlanner(logger.Sublogger("jointinterp"), model, lims.JointLimits, cfg.SamplingTime)
	if err != nil {
		return nil, err
	}
	manager, err := sequence.NewCommandListManager(
		logger.Sublogger("sequence"), model, lims, sequence.WithSamplingTime(cfg.SamplingTime))
	if err != nil {
		return nil, err
	}
	pc := &planContext{logger: logger, model: model, manager: manager, planner: planner}
	state, err := startState(pc, joints)
	if err != nil {
		return nil, errors.Wrap(err, "invalid start state")
	}
	pc.scene = motionplan.NewPlanningScene(model.Name(), state)
	return pc, nil
}

// sequenceResult is the outcome of solving one sequence file.
type sequenceResult struct {
	File         string                        `json:"file"`
	SolveID      string                        `json:"solve_id"`
	Trajectories []*motionplan.RobotTrajectory `json:"trajectories"`

	items int
	meta  *sequence.PlanMeta
}

func (pc *planContext) solveFile(ctx context.Context, path string) (*sequenceResult, error) {
	req, err := config.ReadSequence(path)
	if err != nil {
		return nil, err
	}
	meta := sequence.NewPlanMeta()
	trajectories, err := pc.manager.SolveWithMeta(ctx, pc.scene, pc.planner, req, meta)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot solve %q", path)
	}
	pc.logger.Infow("solved sequence", "file", path, "solve_id", meta.SolveID,
		"items", len(req.Items), "trajectories", len(trajectories), "duration", meta.Duration)
	return &sequenceResult{
		File:         path,
		SolveID:      meta.SolveID,
		Trajectories: trajectories,
		items:        len(req.Items),
		meta:         meta,
	}, nil
}

// solveFiles solves every file concurrently. The first failure cancels the remaining solves.
func (pc *planContext) solveFiles(ctx context.Context, paths []string) ([]*sequenceResult, error) {
	results := make([]*sequenceResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := pc.solveFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func solveAction(c *cli.Context, logger logging.Logger) error {
	if c.NArg() == 0 {
		return errors.New("at least one sequence file is required")
	}
	cfg, err := readConfig(c, logger)
	if err != nil {
		return err
	}
	pc, err := newPlanContext(cfg, logger, c.StringSlice(flagJoint))
	if err != nil {
		return err
	}

	paths := c.Args().Slice()
	latest := newResultSet(paths)
	run := func(ctx context.Context, files []string) error {
		results, err := pc.solveFiles(ctx, files)
		if err != nil {
			return err
		}
		writeSummary(c.App.ErrWriter, results)
		if c.Bool(flagTiming) {
			for _, res := range results {
				fmt.Fprintf(c.App.ErrWriter, "%s (%s)\n", res.File, res.SolveID)
				res.meta.OutputTiming(c.App.ErrWriter)
			}
		}
		latest.update(results...)
		return writeResults(c.App.Writer, c.String(flagOutput), latest.document())
	}

	if err := run(c.Context, paths); err != nil {
		if !c.Bool(flagWatch) {
			return err
		}
		logger.Error(err)
	}
	if !c.Bool(flagWatch) {
		return nil
	}
	return watchSequences(c.Context, logger, paths, func(ctx context.Context, path string) {
		if err := run(ctx, []string{path}); err != nil {
			logger.Error(err)
		}
	})
}

// resultSet keeps the latest result of every sequence file in argument order, so re-solving one
// file under --watch rewrites the document for all of them.
type resultSet struct {
	paths   []string
	results map[string]*sequenceResult
}

func newResultSet(paths []string) *resultSet {
	return &resultSet{paths: paths, results: map[string]*sequenceResult{}}
}

func (rs *resultSet) update(results ...*sequenceResult) {
	for _, res := range results {
		rs.results[res.File] = res
	}
}

// document is the single result when one file was given, otherwise the array of every solved
// file's result.
func (rs *resultSet) document() interface{} {
	if len(rs.paths) == 1 {
		return rs.results[rs.paths[0]]
	}
	solved := make([]*sequenceResult, 0, len(rs.paths))
	for _, path := range rs.paths {
		if res, ok := rs.results[path]; ok {
			solved = append(solved, res)
		}
	}
	return solved
}

// writeResults writes doc as JSON to the file at output, or to w when output is empty.
func writeResults(w io.Writer, output string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return err
	}
	return os.WriteFile(output, data, 0o600)
}

func writeSummary(w io.Writer, results []*sequenceResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Sequence", "Items", "Trajectory", "Group", "Waypoints", "Duration", "Solve Time"})
	for _, res := range results {
		for i, traj := range res.Trajectories {
			t.AppendRow(table.Row{
				res.File,
				res.items,
				i,
				traj.GroupName(),
				traj.Len(),
				fmt.Sprintf("%.3fs", traj.Duration()),
				res.meta.Duration.Round(time.Microsecond),
			})
		}
		t.AppendSeparator()
	}
	t.Render()
}
