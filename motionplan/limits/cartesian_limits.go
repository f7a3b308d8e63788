package limits

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// CartesianLimits bound the motion of a tip frame. Translational values are in m/s and m/s^2, the
// rotational velocity in rad/s. MaxTransDec is non-positive.
type CartesianLimits struct {
	MaxTransVel float64 `json:"max_trans_vel"`
	MaxTransAcc float64 `json:"max_trans_acc"`
	MaxTransDec float64 `json:"max_trans_dec"`
	MaxRotVel   float64 `json:"max_rot_vel"`
}

// IsZero reports whether no cartesian limit is set.
func (cl CartesianLimits) IsZero() bool {
	return cl == CartesianLimits{}
}

// Validate returns every inconsistency of the limits.
func (cl CartesianLimits) Validate() error {
	var err error
	if cl.MaxTransVel <= 0 {
		err = multierr.Append(err, errors.Errorf("max_trans_vel must be positive, got %f", cl.MaxTransVel))
	}
	if cl.MaxTransAcc <= 0 {
		err = multierr.Append(err, errors.Errorf("max_trans_acc must be positive, got %f", cl.MaxTransAcc))
	}
	if cl.MaxTransDec >= 0 {
		err = multierr.Append(err, errors.Errorf("max_trans_dec must be negative, got %f", cl.MaxTransDec))
	}
	if cl.MaxRotVel <= 0 {
		err = multierr.Append(err, errors.Errorf("max_rot_vel must be positive, got %f", cl.MaxRotVel))
	}
	return err
}
