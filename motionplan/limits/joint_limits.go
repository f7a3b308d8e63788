// Package limits aggregates the joint and cartesian limits a motion is planned and timed against.
package limits

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// JointLimit bounds a single joint. A bound is only meaningful when its Has flag is set.
// Deceleration is expressed as a non-positive number.
type JointLimit struct {
	HasPositionLimits     bool    `json:"has_position_limits"`
	MinPosition           float64 `json:"min_position"`
	MaxPosition           float64 `json:"max_position"`
	HasVelocityLimits     bool    `json:"has_velocity_limits"`
	MaxVelocity           float64 `json:"max_velocity"`
	HasAccelerationLimits bool    `json:"has_acceleration_limits"`
	MaxAcceleration       float64 `json:"max_acceleration"`
	HasDecelerationLimits bool    `json:"has_deceleration_limits"`
	MaxDeceleration       float64 `json:"max_deceleration"`
}

// Validate checks the internal consistency of the limit.
func (jl JointLimit) Validate() error {
	if jl.HasPositionLimits && jl.MinPosition > jl.MaxPosition {
		return errors.Errorf("min_position %f is greater than max_position %f", jl.MinPosition, jl.MaxPosition)
	}
	if jl.HasVelocityLimits && jl.MaxVelocity <= 0 {
		return errors.Errorf("max_velocity must be positive, got %f", jl.MaxVelocity)
	}
	if jl.HasAccelerationLimits && jl.MaxAcceleration <= 0 {
		return errors.Errorf("max_acceleration must be positive, got %f", jl.MaxAcceleration)
	}
	if jl.HasDecelerationLimits && jl.MaxDeceleration > 0 {
		return errors.Errorf("max_deceleration must not be positive, got %f", jl.MaxDeceleration)
	}
	return nil
}

// JointLimitsContainer holds one JointLimit per joint name.
type JointLimitsContainer struct {
	limits map[string]JointLimit
}

// NewJointLimitsContainer returns an empty container.
func NewJointLimitsContainer() *JointLimitsContainer {
	return &JointLimitsContainer{limits: map[string]JointLimit{}}
}

// AddLimit adds the limit of a joint. Each joint may only be added once.
func (c *JointLimitsContainer) AddLimit(jointName string, limit JointLimit) error {
	if _, ok := c.limits[jointName]; ok {
		return errors.Errorf("limit for joint %q already added", jointName)
	}
	if err := limit.Validate(); err != nil {
		return errors.Wrapf(err, "joint %q", jointName)
	}
	c.limits[jointName] = limit
	return nil
}

// HasLimit reports whether the joint has a limit.
func (c *JointLimitsContainer) HasLimit(jointName string) bool {
	_, ok := c.limits[jointName]
	return ok
}

// Limit returns the limit of a joint.
func (c *JointLimitsContainer) Limit(jointName string) (JointLimit, bool) {
	l, ok := c.limits[jointName]
	return l, ok
}

// Len returns the number of joints with a limit.
func (c *JointLimitsContainer) Len() int {
	return len(c.limits)
}

// JointNames returns the limited joints in sorted order.
func (c *JointLimitsContainer) JointNames() []string {
	names := make([]string, 0, len(c.limits))
	for name := range c.limits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommonLimit returns the most restrictive combination of the limits of the given joints.
// Joints without a limit are ignored.
func (c *JointLimitsContainer) CommonLimit(jointNames []string) JointLimit {
	common := JointLimit{
		MinPosition:     math.Inf(-1),
		MaxPosition:     math.Inf(1),
		MaxVelocity:     math.Inf(1),
		MaxAcceleration: math.Inf(1),
		MaxDeceleration: math.Inf(-1),
	}
	for _, name := range jointNames {
		l, ok := c.limits[name]
		if !ok {
			continue
		}
		if l.HasPositionLimits {
			common.HasPositionLimits = true
			common.MinPosition = math.Max(common.MinPosition, l.MinPosition)
			common.MaxPosition = math.Min(common.MaxPosition, l.MaxPosition)
		}
		if l.HasVelocityLimits {
			common.HasVelocityLimits = true
			common.MaxVelocity = math.Min(common.MaxVelocity, l.MaxVelocity)
		}
		if l.HasAccelerationLimits {
			common.HasAccelerationLimits = true
			common.MaxAcceleration = math.Min(common.MaxAcceleration, l.MaxAcceleration)
		}
		if l.HasDecelerationLimits {
			common.HasDecelerationLimits = true
			common.MaxDeceleration = math.Max(common.MaxDeceleration, l.MaxDeceleration)
		}
	}
	return common
}

// VerifyPositionLimit reports whether position is within the joint's position limits. A joint without
// position limits accepts every position.
func (c *JointLimitsContainer) VerifyPositionLimit(jointName string, position float64) bool {
	l, ok := c.limits[jointName]
	if !ok || !l.HasPositionLimits {
		return true
	}
	return position >= l.MinPosition && position <= l.MaxPosition
}

// VerifyVelocityLimit reports whether |velocity| is within the joint's velocity limit.
func (c *JointLimitsContainer) VerifyVelocityLimit(jointName string, velocity float64) bool {
	l, ok := c.limits[jointName]
	if !ok || !l.HasVelocityLimits {
		return true
	}
	return math.Abs(velocity) <= l.MaxVelocity
}
