package limits

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/motionsequence/referenceframe"
)

// Parameter keys below the planning namespace.
const (
	JointLimitsKey     = "joint_limits"
	CartesianLimitsKey = "cartesian_limits"
)

// Limits is the full set of limits for a robot.
type Limits struct {
	JointLimits     *JointLimitsContainer
	CartesianLimits CartesianLimits
}

// jointLimitOverride distinguishes unset parameters from zero values.
type jointLimitOverride struct {
	HasPositionLimits     *bool    `json:"has_position_limits"`
	MinPosition           *float64 `json:"min_position"`
	MaxPosition           *float64 `json:"max_position"`
	HasVelocityLimits     *bool    `json:"has_velocity_limits"`
	MaxVelocity           *float64 `json:"max_velocity"`
	HasAccelerationLimits *bool    `json:"has_acceleration_limits"`
	MaxAcceleration       *float64 `json:"max_acceleration"`
	HasDecelerationLimits *bool    `json:"has_deceleration_limits"`
	MaxDeceleration       *float64 `json:"max_deceleration"`
}

type limitParams struct {
	JointLimits     map[string]jointLimitOverride `json:"joint_limits"`
	CartesianLimits *CartesianLimits              `json:"cartesian_limits"`
}

func decode(input, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           output,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// AggregateJointLimits starts from the limits in the model for every active joint and applies the
// overrides found under the joint_limits key of params. Overrides may narrow the model's position
// and velocity limits but never widen them. Acceleration and deceleration only come from params.
func AggregateJointLimits(model *referenceframe.RobotModel, params map[string]interface{}) (*JointLimitsContainer, error) {
	var decoded limitParams
	if err := decode(params, &decoded); err != nil {
		return nil, errors.Wrap(err, "cannot decode limit parameters")
	}
	for name := range decoded.JointLimits {
		if _, err := model.JointLimit(name); err != nil {
			return nil, errors.Wrapf(err, "limits given for unknown joint %q", name)
		}
	}

	container := NewJointLimitsContainer()
	for _, name := range model.ActiveJoints() {
		bounds, err := model.JointLimit(name)
		if err != nil {
			return nil, err
		}
		limit := JointLimit{
			HasPositionLimits: true,
			MinPosition:       bounds.Min,
			MaxPosition:       bounds.Max,
		}
		if v, ok := model.MaxVelocity(name); ok && v > 0 {
			limit.HasVelocityLimits = true
			limit.MaxVelocity = v
		}
		if override, ok := decoded.JointLimits[name]; ok {
			if limit, err = applyOverride(name, limit, override); err != nil {
				return nil, err
			}
		}
		if err := container.AddLimit(name, limit); err != nil {
			return nil, err
		}
	}
	return container, nil
}

func applyOverride(name string, limit JointLimit, o jointLimitOverride) (JointLimit, error) {
	modelLimit := limit
	if o.HasPositionLimits != nil && !*o.HasPositionLimits {
		limit.HasPositionLimits = false
	}
	if o.MinPosition != nil {
		if modelLimit.HasPositionLimits && *o.MinPosition < modelLimit.MinPosition {
			return limit, errors.Errorf("min_position %f of joint %q is below the model limit %f", *o.MinPosition, name, modelLimit.MinPosition)
		}
		limit.HasPositionLimits = true
		limit.MinPosition = *o.MinPosition
	}
	if o.MaxPosition != nil {
		if modelLimit.HasPositionLimits && *o.MaxPosition > modelLimit.MaxPosition {
			return limit, errors.Errorf("max_position %f of joint %q is above the model limit %f", *o.MaxPosition, name, modelLimit.MaxPosition)
		}
		limit.HasPositionLimits = true
		limit.MaxPosition = *o.MaxPosition
	}
	if o.HasVelocityLimits != nil && !*o.HasVelocityLimits {
		limit.HasVelocityLimits = false
	}
	if o.MaxVelocity != nil {
		if modelLimit.HasVelocityLimits && *o.MaxVelocity > modelLimit.MaxVelocity {
			return limit, errors.Errorf("max_velocity %f of joint %q is above the model limit %f", *o.MaxVelocity, name, modelLimit.MaxVelocity)
		}
		limit.HasVelocityLimits = true
		limit.MaxVelocity = *o.MaxVelocity
	}
	if o.MaxAcceleration != nil {
		limit.HasAccelerationLimits = o.HasAccelerationLimits == nil || *o.HasAccelerationLimits
		limit.MaxAcceleration = *o.MaxAcceleration
	}
	if o.MaxDeceleration != nil {
		if *o.MaxDeceleration > 0 {
			return limit, errors.Errorf("max_deceleration of joint %q must not be positive, got %f", name, *o.MaxDeceleration)
		}
		limit.HasDecelerationLimits = o.HasDecelerationLimits == nil || *o.HasDecelerationLimits
		limit.MaxDeceleration = *o.MaxDeceleration
	}
	return limit, nil
}

// Load aggregates the joint limits and decodes the cartesian limits found in params. Cartesian
// limits are optional but validated when present.
func Load(model *referenceframe.RobotModel, params map[string]interface{}) (*Limits, error) {
	jointLimits, err := AggregateJointLimits(model, params)
	if err != nil {
		return nil, err
	}
	out := &Limits{JointLimits: jointLimits}

	var decoded limitParams
	if err := decode(params, &decoded); err != nil {
		return nil, errors.Wrap(err, "cannot decode limit parameters")
	}
	if decoded.CartesianLimits != nil {
		if err := decoded.CartesianLimits.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid cartesian limits")
		}
		out.CartesianLimits = *decoded.CartesianLimits
	}
	return out, nil
}
