package referenceframe

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "go.viam.com/motionsequence/spatialmath"
)

// ModelConfigJSON represents all supported fields in a kinematics JSON file.
type ModelConfigJSON struct {
	Name   string        `json:"name"`
	Links  []LinkConfig  `json:"links"`
	Joints []JointConfig `json:"joints"`
	Groups []GroupConfig `json:"groups"`
}

// LinkConfig describes a fixed offset from a parent frame.
type LinkConfig struct {
	ID          string        `json:"id"`
	Parent      string        `json:"parent"`
	Translation r3.Vector     `json:"translation"`
	Orientation *spatial.R4AA `json:"orientation,omitempty"`
}

// JointConfig describes a revolute or prismatic joint. Limits are in radians or meters.
type JointConfig struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Parent      string    `json:"parent"`
	Axis        r3.Vector `json:"axis"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	MaxVelocity float64   `json:"max_velocity,omitempty"`
}

// GroupConfig describes a joint model group.
type GroupConfig struct {
	Name   string   `json:"name"`
	Joints []string `json:"joints"`
	Tip    string   `json:"tip,omitempty"`
	Solver bool     `json:"solver"`
}

// Joint types.
const (
	RevoluteJoint  = "revolute"
	PrismaticJoint = "prismatic"
)

// UnmarshalModelJSON will parse the given JSON data into a robot model. modelName sets the name of
// the model and falls back to the name in the JSON when empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*RobotModel, error) {
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	cfg := &ModelConfigJSON{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(modelName)
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string) (*RobotModel, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}

// ParseConfig converts the config into a RobotModel.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (*RobotModel, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	model := NewRobotModel(modelName)

	for _, link := range cfg.Links {
		frame, err := NewStaticFrame(link.ID, spatial.NewPose(link.Translation, link.Orientation))
		if err != nil {
			return nil, err
		}
		if err := model.AddFrame(frame, link.Parent); err != nil {
			return nil, err
		}
	}

	for _, joint := range cfg.Joints {
		if joint.Min > joint.Max {
			return nil, errors.Errorf("joint %q has min %v greater than max %v", joint.ID, joint.Min, joint.Max)
		}
		limit := Limit{Min: joint.Min, Max: joint.Max}
		var frame Frame
		var err error
		switch joint.Type {
		case RevoluteJoint:
			frame, err = NewRotationalFrame(joint.ID, joint.Axis, limit)
		case PrismaticJoint:
			frame, err = NewTranslationalFrame(joint.ID, joint.Axis, limit)
		default:
			return nil, errors.Errorf("unsupported joint type %q for joint %q", joint.Type, joint.ID)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", joint.ID)
		}
		if err := model.AddFrame(frame, joint.Parent); err != nil {
			return nil, err
		}
		if joint.MaxVelocity > 0 {
			if err := model.SetMaxVelocity(joint.ID, joint.MaxVelocity); err != nil {
				return nil, err
			}
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}

	for _, group := range cfg.Groups {
		if err := model.AddGroup(group.Name, group.Joints, group.Tip, group.Solver); err != nil {
			return nil, err
		}
	}
	return model, nil
}
