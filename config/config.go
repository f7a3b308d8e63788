// Package config defines the configuration of the plan-sequence tool.
package config

import (
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/motionsequence/logging"
	"go.viam.com/motionsequence/motionplan/limits"
	"go.viam.com/motionsequence/referenceframe"
)

// DefaultSamplingTime is used when no sampling time is configured.
const DefaultSamplingTime = 0.1

// Config describes the robot a sequence is planned for.
type Config struct {
	// ModelFile is the JSON kinematic model. Relative paths are resolved against the directory of the
	// config file.
	ModelFile string `json:"model_file"`
	ModelName string `json:"model_name,omitempty"`
	// PlanningParams holds the joint_limits and cartesian_limits overrides.
	PlanningParams map[string]interface{} `json:"robot_description_planning,omitempty"`
	// SamplingTime is the time between generated waypoints in seconds.
	SamplingTime float64       `json:"sampling_time,omitempty"`
	LogLevel     logging.Level `json:"log_level,omitempty"`

	ConfigFilePath string `json:"-"`
}

// NewConfigValidationFieldRequiredError returns an error for a required field that is not set.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return errors.Errorf("error validating %q: %q is required", path, field)
}

// Validate returns every problem of the config.
func (c *Config) Validate(path string) error {
	var errAll error
	if c.ModelFile == "" {
		multierr.AppendInto(&errAll, NewConfigValidationFieldRequiredError(path, "model_file"))
	}
	if c.SamplingTime < 0 {
		multierr.AppendInto(&errAll, errors.Errorf("error validating %q: sampling_time must not be negative, got %f", path, c.SamplingTime))
	}
	for key := range c.PlanningParams {
		if key != limits.JointLimitsKey && key != limits.CartesianLimitsKey {
			multierr.AppendInto(&errAll, errors.Errorf("error validating %q: unknown planning parameter %q", path, key))
		}
	}
	return errAll
}

// ModelPath returns the model file path resolved against the config file's directory.
func (c *Config) ModelPath() string {
	if c.ModelFile == "" || filepath.IsAbs(c.ModelFile) || c.ConfigFilePath == "" {
		return c.ModelFile
	}
	return filepath.Join(filepath.Dir(c.ConfigFilePath), c.ModelFile)
}

// LoadModel parses the configured model file.
func (c *Config) LoadModel() (*referenceframe.RobotModel, error) {
	return referenceframe.ParseModelJSONFile(c.ModelPath(), c.ModelName)
}

// LoadLimits aggregates the limits of model with the configured planning parameters.
func (c *Config) LoadLimits(model *referenceframe.RobotModel) (*limits.Limits, error) {
	return limits.Load(model, c.PlanningParams)
}
