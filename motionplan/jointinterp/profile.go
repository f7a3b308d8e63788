package jointinterp

import "math"

// profile is a synchronized trapezoidal time scaling s(t) from 0 to 1 over duration seconds, with
// constant acceleration during the first and last ramp seconds. ramp == 0 is a constant velocity.
type profile struct {
	duration float64
	ramp     float64
}

// minimumTime returns the shortest duration and ramp that move a joint by distance within the
// given velocity and acceleration bounds. Zero or infinite bounds are treated as absent.
func minimumTime(distance, maxVel, maxAcc float64) (duration, ramp float64) {
	hasVel := maxVel > 0 && !math.IsInf(maxVel, 1)
	hasAcc := maxAcc > 0 && !math.IsInf(maxAcc, 1)
	switch {
	case distance == 0:
		return 0, 0
	case hasVel && hasAcc:
		if distance >= maxVel*maxVel/maxAcc {
			ramp = maxVel / maxAcc
			return distance/maxVel + ramp, ramp
		}
		ramp = math.Sqrt(distance / maxAcc)
		return 2 * ramp, ramp
	case hasVel:
		return distance / maxVel, 0
	case hasAcc:
		ramp = math.Sqrt(distance / maxAcc)
		return 2 * ramp, ramp
	default:
		return 0, 0
	}
}

// peak returns the normalized velocity during the cruise phase.
func (p profile) peak() float64 {
	return 1 / (p.duration - p.ramp)
}

func (p profile) position(t float64) float64 {
	sv := p.peak()
	switch {
	case t <= 0:
		return 0
	case t >= p.duration:
		return 1
	case t < p.ramp:
		return 0.5 * sv / p.ramp * t * t
	case t <= p.duration-p.ramp:
		return sv * (t - p.ramp/2)
	default:
		rest := p.duration - t
		return 1 - 0.5*sv/p.ramp*rest*rest
	}
}

func (p profile) velocity(t float64) float64 {
	sv := p.peak()
	switch {
	case t <= 0 || t >= p.duration:
		return 0
	case t < p.ramp:
		return sv * t / p.ramp
	case t <= p.duration-p.ramp:
		return sv
	default:
		return sv * (p.duration - t) / p.ramp
	}
}
