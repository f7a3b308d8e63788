package motionplan

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// TrajectoryPoint is a single waypoint. TimeFromStart is in seconds from the first waypoint of the
// owning trajectory.
type TrajectoryPoint struct {
	Positions     []float64 `json:"positions"`
	Velocities    []float64 `json:"velocities,omitempty"`
	TimeFromStart float64   `json:"time_from_start"`
}

func (p TrajectoryPoint) clone() TrajectoryPoint {
	return TrajectoryPoint{
		Positions:     cloneSlice(p.Positions),
		Velocities:    cloneSlice(p.Velocities),
		TimeFromStart: p.TimeFromStart,
	}
}

// RobotTrajectory is a timed sequence of waypoints for the joints of one group.
type RobotTrajectory struct {
	groupName  string
	jointNames []string
	points     []TrajectoryPoint
}

// NewRobotTrajectory returns an empty trajectory for the given group and joints.
func NewRobotTrajectory(groupName string, jointNames []string) *RobotTrajectory {
	return &RobotTrajectory{groupName: groupName, jointNames: cloneSlice(jointNames)}
}

// GroupName returns the group this trajectory moves.
func (rt *RobotTrajectory) GroupName() string {
	return rt.groupName
}

// JointNames returns the joints each waypoint's positions are indexed by.
func (rt *RobotTrajectory) JointNames() []string {
	return cloneSlice(rt.jointNames)
}

// Len returns the number of waypoints.
func (rt *RobotTrajectory) Len() int {
	return len(rt.points)
}

// Empty reports whether the trajectory has no waypoints.
func (rt *RobotTrajectory) Empty() bool {
	return len(rt.points) == 0
}

// Waypoint returns a copy of waypoint i.
func (rt *RobotTrajectory) Waypoint(i int) TrajectoryPoint {
	return rt.points[i].clone()
}

// FirstWaypoint returns a copy of the first waypoint. It panics on an empty trajectory.
func (rt *RobotTrajectory) FirstWaypoint() TrajectoryPoint {
	return rt.Waypoint(0)
}

// LastWaypoint returns a copy of the last waypoint. It panics on an empty trajectory.
func (rt *RobotTrajectory) LastWaypoint() TrajectoryPoint {
	return rt.Waypoint(len(rt.points) - 1)
}

// WaypointDurationFromStart returns the time of waypoint i in seconds.
func (rt *RobotTrajectory) WaypointDurationFromStart(i int) float64 {
	return rt.points[i].TimeFromStart
}

// Duration returns the time of the last waypoint, or 0 for an empty trajectory.
func (rt *RobotTrajectory) Duration() float64 {
	if len(rt.points) == 0 {
		return 0
	}
	return rt.points[len(rt.points)-1].TimeFromStart
}

// AddSuffixWaypoint appends a waypoint as given.
func (rt *RobotTrajectory) AddSuffixWaypoint(p TrajectoryPoint) error {
	if len(p.Positions) != len(rt.jointNames) {
		return errors.Errorf("waypoint has %d positions but trajectory has %d joints", len(p.Positions), len(rt.jointNames))
	}
	if len(p.Velocities) != 0 && len(p.Velocities) != len(rt.jointNames) {
		return errors.Errorf("waypoint has %d velocities but trajectory has %d joints", len(p.Velocities), len(rt.jointNames))
	}
	rt.points = append(rt.points, p.clone())
	return nil
}

// RemoveWaypoint removes waypoint i, shifting later waypoints down by one.
func (rt *RobotTrajectory) RemoveWaypoint(i int) {
	rt.points = append(rt.points[:i], rt.points[i+1:]...)
}

// Append adds every waypoint of other, shifted so that other starts dt seconds after the end of rt.
func (rt *RobotTrajectory) Append(other *RobotTrajectory, dt float64) error {
	return rt.AppendFrom(other, 0, dt)
}

// AppendFrom adds the waypoints of other starting at index first. The spacing between appended
// waypoints is kept, and the first appended waypoint follows the end of rt by dt plus its spacing
// to the waypoint before it in other (or its own time when first is 0).
func (rt *RobotTrajectory) AppendFrom(other *RobotTrajectory, first int, dt float64) error {
	if err := rt.checkCompatible(other); err != nil {
		return err
	}
	if first < 0 || first > other.Len() {
		return errors.Errorf("cannot append from waypoint %d of a trajectory with %d waypoints", first, other.Len())
	}
	offset := rt.Duration() + dt
	if first > 0 {
		offset -= other.points[first-1].TimeFromStart
	}
	for _, p := range other.points[first:] {
		shifted := p.clone()
		shifted.TimeFromStart += offset
		rt.points = append(rt.points, shifted)
	}
	return nil
}

func (rt *RobotTrajectory) checkCompatible(other *RobotTrajectory) error {
	if len(rt.jointNames) != len(other.jointNames) {
		return errors.Errorf("cannot combine trajectories of group %q and %q with different joints", rt.groupName, other.groupName)
	}
	for i, name := range rt.jointNames {
		if other.jointNames[i] != name {
			return errors.Errorf("cannot combine trajectories of group %q and %q with different joints", rt.groupName, other.groupName)
		}
	}
	return nil
}

// Clone returns a deep copy of the trajectory.
func (rt *RobotTrajectory) Clone() *RobotTrajectory {
	out := NewRobotTrajectory(rt.groupName, rt.jointNames)
	out.points = make([]TrajectoryPoint, len(rt.points))
	for i, p := range rt.points {
		out.points[i] = p.clone()
	}
	return out
}

// PositionMap returns the positions of waypoint i keyed by joint name.
func (rt *RobotTrajectory) PositionMap(i int) map[string]float64 {
	positions := make(map[string]float64, len(rt.jointNames))
	for j, name := range rt.jointNames {
		positions[name] = rt.points[i].Positions[j]
	}
	return positions
}

// StateAt returns the robot state at waypoint i. Velocities are carried when present.
func (rt *RobotTrajectory) StateAt(i int) RobotState {
	p := rt.points[i]
	return RobotState{JointState: JointState{
		Name:     cloneSlice(rt.jointNames),
		Position: cloneSlice(p.Positions),
		Velocity: cloneSlice(p.Velocities),
	}}
}

// LastWaypointAsStartState returns the robot state at the last waypoint.
func (rt *RobotTrajectory) LastWaypointAsStartState() (RobotState, error) {
	if rt.Empty() {
		return RobotState{}, errors.Errorf("trajectory of group %q has no waypoints", rt.groupName)
	}
	return rt.StateAt(rt.Len() - 1), nil
}

func (rt *RobotTrajectory) String() string {
	return fmt.Sprintf("RobotTrajectory{group: %s, joints: %v, waypoints: %d, duration: %.3fs}",
		rt.groupName, rt.jointNames, len(rt.points), rt.Duration())
}

type trajectoryJSON struct {
	GroupName  string            `json:"group_name"`
	JointNames []string          `json:"joint_names"`
	Points     []TrajectoryPoint `json:"points"`
}

// MarshalJSON encodes the trajectory with its group, joints and waypoints.
func (rt *RobotTrajectory) MarshalJSON() ([]byte, error) {
	return json.Marshal(trajectoryJSON{GroupName: rt.groupName, JointNames: rt.jointNames, Points: rt.points})
}

// UnmarshalJSON decodes a trajectory written by MarshalJSON.
func (rt *RobotTrajectory) UnmarshalJSON(data []byte) error {
	var tj trajectoryJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	out := NewRobotTrajectory(tj.GroupName, tj.JointNames)
	for i, p := range tj.Points {
		if err := out.AddSuffixWaypoint(p); err != nil {
			return errors.Wrapf(err, "waypoint %d", i)
		}
	}
	*rt = *out
	return nil
}
