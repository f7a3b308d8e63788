// Package main plans motion sequences from JSON files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/motionsequence/config"
	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan"
)

const (
	flagConfig  = "config"
	flagDebug   = "debug"
	flagLogFile = "log-file"
	flagOutput  = "output"
	flagJoint   = "joint"
	flagTiming  = "timing"
	flagWatch   = "watch"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	var logger logging.Logger
	var closeLog func() error

	return &cli.App{
		Name:      "plan-sequence",
		Usage:     "plan motion sequences and join them into continuous trajectories",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotated every 10MB",
			},
		},
		Before: func(c *cli.Context) error {
			logger = logging.NewBlankLogger("plan-sequence")
			logger.SetLevel(logging.INFO)
			logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			if path := c.String(flagLogFile); path != "" {
				fileAppender := logging.NewFileAppender(path, 10, 3)
				logger.AddAppender(fileAppender)
				closeLog = fileAppender.Close
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if logger == nil {
				return nil
			}
			//nolint:errcheck
			logger.Sync()
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "solve",
				Usage:     "solve one or more motion sequence files",
				ArgsUsage: "<sequence.json>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write the planned trajectories to `FILE` instead of stdout, rewritten with every file's latest result under --watch",
					},
					&cli.StringSliceFlag{
						Name:  flagJoint,
						Usage: "start position of a joint as `NAME=VALUE`, repeatable",
					},
					&cli.BoolFlag{
						Name:  flagTiming,
						Usage: "print how long each solve phase took",
					},
					&cli.BoolFlag{
						Name:  flagWatch,
						Usage: "solve again whenever a sequence file changes",
					},
				},
				Action: func(c *cli.Context) error {
					return solveAction(c, logger)
				},
			},
			{
				Name:  "describe",
				Usage: "print the frames and groups of the configured model",
				Action: func(c *cli.Context) error {
					cfg, err := readConfig(c, logger)
					if err != nil {
						return err
					}
					model, err := cfg.LoadModel()
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, model.String())
					return nil
				},
			},
			{
				Name:      "schema",
				Usage:     "print the JSON schema of a document",
				ArgsUsage: "<" + strings.Join(schemaNames(), "|") + ">",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					schema, ok := config.Schemas[name]
					if !ok {
						return errors.Errorf("unknown schema %q, expected one of %v", name, schemaNames())
					}
					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(schema)
				},
			},
		},
	}
}

func schemaNames() []string {
	names := make([]string, 0, len(config.Schemas))
	for name := range config.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func readConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		return nil, errors.New("a config file is required, set it with --config")
	}
	cfg, err := config.Read(path, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", path)
	}
	if !c.Bool(flagDebug) {
		logger.SetLevel(cfg.LogLevel)
	}
	return cfg, nil
}

// startState places every joint at zero, clamped into its limits, unless overridden by a
// NAME=VALUE entry.
func startState(pc *planContext, overrides []string) (motionplan.RobotState, error) {
	positions := map[string]float64{}
	for _, name := range pc.model.ActiveJoints() {
		limit, err := pc.model.JointLimit(name)
		if err != nil {
			return motionplan.RobotState{}, err
		}
		positions[name] = clamp(0, limit.Min, limit.Max)
	}
	for _, entry := range overrides {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return motionplan.RobotState{}, errors.Errorf("joint position %q is not of the form NAME=VALUE", entry)
		}
		if _, known := positions[name]; !known {
			return motionplan.RobotState{}, errors.Errorf("unknown joint %q", name)
		}
		pos, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return motionplan.RobotState{}, errors.Wrapf(err, "joint %q", name)
		}
		positions[name] = pos
	}
	if err := pc.model.ValidatePositions(positions); err != nil {
		return motionplan.RobotState{}, err
	}

	state := motionplan.RobotState{}
	for _, name := range pc.model.ActiveJoints() {
		state.JointState.Name = append(state.JointState.Name, name)
		state.JointState.Position = append(state.JointState.Position, positions[name])
	}
	return state, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
