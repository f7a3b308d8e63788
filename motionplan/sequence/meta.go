package sequence

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// InvocationCounters counts the calls of an operation and the time spent in it.
type InvocationCounters struct {
	calls     atomic.Int64
	timeNanos atomic.Int64
}

// PlanMeta is meta data about solving a sequence. A nil *PlanMeta records nothing.
type PlanMeta struct {
	SolveID  string
	Duration time.Duration
	Items    int

	timingMu sync.Mutex
	Timing   map[string]*InvocationCounters
}

// NewPlanMeta constructs PlanMeta.
func NewPlanMeta() *PlanMeta {
	return &PlanMeta{
		Timing: make(map[string]*InvocationCounters),
	}
}

// DeferTiming can be used as a one-liner for tracking a function invocation:
//
//	defer meta.DeferTiming("functionName", time.Now())
func (pm *PlanMeta) DeferTiming(opName string, start time.Time) {
	pm.AddTiming(opName, time.Since(start))
}

// AddTiming increments the invocation count and time spent for an operation.
func (pm *PlanMeta) AddTiming(opName string, dur time.Duration) {
	if pm == nil {
		return
	}
	pm.timingMu.Lock()
	defer pm.timingMu.Unlock()

	counters, exists := pm.Timing[opName]
	if !exists {
		counters = &InvocationCounters{}
		pm.Timing[opName] = counters
	}
	counters.calls.Inc()
	counters.timeNanos.Add(dur.Nanoseconds())
}

// Counters returns the counters of an operation, or nil if it never ran.
func (pm *PlanMeta) Counters(opName string) *InvocationCounters {
	if pm == nil {
		return nil
	}
	pm.timingMu.Lock()
	defer pm.timingMu.Unlock()
	return pm.Timing[opName]
}

// OutputTiming pretty-prints the timing information of a solve.
func (pm *PlanMeta) OutputTiming(outputWriter io.Writer) {
	//nolint:errcheck
	fmt.Fprintf(outputWriter, `Solve:							%v
  validate:						%v
  solveSequenceItems:			%v
    GeneratePlan:				%v
  checkForOverlappingRadii:		%v
  compose:						%v
  removeDuplicatePoints:		%v
`,
		pm.Counters("Solve"),
		pm.Counters("validate"),
		pm.Counters("solveSequenceItems"),
		pm.Counters("GeneratePlan"),
		pm.Counters("checkForOverlappingRadii"),
		pm.Counters("compose"),
		pm.Counters("removeDuplicatePoints"),
	)
}

// Calls returns the number of times an operation was invoked.
func (ic *InvocationCounters) Calls() int64 {
	if ic == nil {
		return 0
	}
	return ic.calls.Load()
}

// TotalTime returns the accumulated runtime of an operation.
func (ic *InvocationCounters) TotalTime() time.Duration {
	if ic == nil {
		return 0
	}
	return time.Duration(ic.timeNanos.Load())
}

// Average returns the average time spent per invocation, or zero when the operation never ran.
func (ic *InvocationCounters) Average() time.Duration {
	calls := ic.Calls()
	if calls == 0 {
		return 0
	}
	return ic.TotalTime() / time.Duration(calls)
}

func (ic *InvocationCounters) String() string {
	// Calls is fixed at three spaces, right aligned.
	return fmt.Sprintf("Calls: %3d Total time: %-13s Average time: %v",
		ic.Calls(), ic.TotalTime(), ic.Average())
}
