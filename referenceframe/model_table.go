package referenceframe

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// String prints a table of every frame in the model, with columns of name, parent, limits and
// zero-input translation, followed by a table of the joint model groups.
func (m *RobotModel) String() string {
	names := make([]string, 0, len(m.frames))
	for name := range m.frames {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetTitle(m.name)
	t.AppendHeader(table.Row{"#", "Name", "Parent", "Limits", "Max Velocity", "Translation"})
	t.AppendRow(table.Row{"0", World, "", "", "", ""})
	for i, name := range names {
		frame := m.frames[name]
		limits, maxVel := "", ""
		inputs := make([]Input, len(frame.DoF()))
		if dof := frame.DoF(); len(dof) == 1 {
			limits = fmt.Sprintf("[%.3f, %.3f]", dof[0].Min, dof[0].Max)
			if v, ok := m.maxVelocities[name]; ok {
				maxVel = fmt.Sprintf("%.3f", v)
			}
		}
		translation := ""
		if pose, err := frame.Transform(inputs); pose != nil && err == nil {
			pt := pose.Point()
			translation = fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", pt.X, pt.Y, pt.Z)
		}
		t.AppendRow(table.Row{fmt.Sprintf("%d", i+1), name, m.parents[name], limits, maxVel, translation})
	}

	groupNames := make([]string, 0, len(m.groups))
	for name := range m.groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	g := table.NewWriter()
	g.AppendHeader(table.Row{"Group", "Joints", "Tip", "Solver"})
	for _, name := range groupNames {
		group := m.groups[name]
		g.AppendRow(table.Row{name, fmt.Sprintf("%v", group.JointNames), group.TipFrame, group.HasSolver()})
	}
	return t.Render() + "\n" + g.Render()
}
