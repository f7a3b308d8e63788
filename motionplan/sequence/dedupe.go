package sequence

import (
	"time"

	"go.viam.com/motionsequence/motionplan"
)

// removeDuplicatePoints drops every waypoint whose time from start equals that of the waypoint before
// it, so that each trajectory's time strictly increases. A run of equal times collapses to its first
// waypoint.
func (clm *CommandListManager) removeDuplicatePoints(trajectories []*motionplan.RobotTrajectory, meta *PlanMeta) {
	defer meta.DeferTiming("removeDuplicatePoints", time.Now())
	for _, traj := range trajectories {
		for i := 0; i < traj.Len()-1; {
			if traj.WaypointDurationFromStart(i) == traj.WaypointDurationFromStart(i+1) {
				clm.logger.Warnf("Removed duplicate point at time=%f", traj.WaypointDurationFromStart(i))
				traj.RemoveWaypoint(i + 1)
				continue
			}
			i++
		}
	}
}
