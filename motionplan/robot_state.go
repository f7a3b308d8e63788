// Package motionplan defines the requests, robot states and trajectories exchanged between a
// motion sequence and the planners that solve its individual segments.
package motionplan

// JointState holds named joint values. Position, Velocity and Effort are either empty or indexed
// like Name.
type JointState struct {
	Name     []string  `json:"name,omitempty"`
	Position []float64 `json:"position,omitempty"`
	Velocity []float64 `json:"velocity,omitempty"`
	Effort   []float64 `json:"effort,omitempty"`
}

// RobotState is the state a request starts from.
type RobotState struct {
	JointState JointState `json:"joint_state"`
}

// IsEmpty reports whether no field of the state is set.
func (s RobotState) IsEmpty() bool {
	js := s.JointState
	return len(js.Name) == 0 && len(js.Position) == 0 && len(js.Velocity) == 0 && len(js.Effort) == 0
}

// PositionMap returns the joint positions keyed by joint name.
func (s RobotState) PositionMap() map[string]float64 {
	positions := make(map[string]float64, len(s.JointState.Name))
	for i, name := range s.JointState.Name {
		if i < len(s.JointState.Position) {
			positions[name] = s.JointState.Position[i]
		}
	}
	return positions
}

// Clone returns a deep copy of the state.
func (s RobotState) Clone() RobotState {
	return RobotState{JointState: JointState{
		Name:     cloneSlice(s.JointState.Name),
		Position: cloneSlice(s.JointState.Position),
		Velocity: cloneSlice(s.JointState.Velocity),
		Effort:   cloneSlice(s.JointState.Effort),
	}}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}
