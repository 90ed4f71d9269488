package types

import "fmt"

// WorkerState tracks a worker through one phase.
type WorkerState int32

const (
	WorkerRunning WorkerState = iota
	WorkerDrained
	WorkerAtBarrier
	WorkerExited
)

func (s WorkerState) String() string {
	switch s {
	case WorkerRunning:
		return "running"
	case WorkerDrained:
		return "drained"
	case WorkerAtBarrier:
		return "at_barrier"
	case WorkerExited:
		return "exited"
	default:
		return fmt.Sprintf("WorkerState(%d)", int32(s))
	}
}

// DriverState tracks the driver through a run.
type DriverState int

const (
	DriverLoadInput DriverState = iota
	DriverDispatchMap
	DriverBarrier1
	DriverDeriveReduce
	DriverDispatchReduce
	DriverBarrier2
	DriverEmitOutput
	DriverDone
)

var driverStateNames = [...]string{
	DriverLoadInput:      "load_input",
	DriverDispatchMap:    "dispatch_map",
	DriverBarrier1:       "barrier_1",
	DriverDeriveReduce:   "derive_reduce",
	DriverDispatchReduce: "dispatch_reduce",
	DriverBarrier2:       "barrier_2",
	DriverEmitOutput:     "emit_output",
	DriverDone:           "done",
}

func (s DriverState) String() string {
	if s >= 0 && int(s) < len(driverStateNames) {
		return driverStateNames[s]
	}
	return fmt.Sprintf("DriverState(%d)", int(s))
}

// ScoreEntry is one candidate's similarity against the reference.
type ScoreEntry struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
