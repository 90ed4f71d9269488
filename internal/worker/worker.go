package worker

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"DocSim/internal/logger"
	"DocSim/internal/types"
)

// Source hands out tasks. ok is false once no more tasks will arrive.
type Source interface {
	Get() (task types.Task, ok bool)
}

// Rendezvous is the phase-end synchronization point.
type Rendezvous interface {
	Await() uint64
}

// Executor runs a single task in place.
type Executor interface {
	Execute(task types.Task) error
}

// TaskError reports a task that failed on a worker.
type TaskError struct {
	WorkerID string
	Task     types.Task
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("worker %s failed task %s: %v", e.WorkerID, e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Worker pulls tasks from a Source until it is drained, then waits at
// the phase Rendezvous. A worker runs a single phase.
type Worker struct {
	ID        string
	state     atomic.Int32
	completed atomic.Int64
	logger    *logger.Logger
}

func New(lg *logger.Logger) *Worker {
	id := "worker-" + uuid.New().String()[:8]
	return &Worker{
		ID:     id,
		logger: lg.With(id),
	}
}

func (w *Worker) State() types.WorkerState {
	return types.WorkerState(w.state.Load())
}

// Completed returns the number of tasks this worker executed successfully.
func (w *Worker) Completed() int64 {
	return w.completed.Load()
}

func (w *Worker) setState(s types.WorkerState) {
	w.state.Store(int32(s))
	w.logger.Debug("State changed: state=%s completed=%d", s, w.completed.Load())
}

// Run executes tasks from src with exec until src reports termination
// or a task fails. A failure is passed to fail and ends this worker's
// participation in the phase. Either way the worker waits at rv before
// returning.
func (w *Worker) Run(src Source, rv Rendezvous, exec Executor, fail func(error)) {
	w.setState(types.WorkerRunning)

	for {
		task, ok := src.Get()
		if !ok {
			break
		}
		if err := w.execute(exec, task); err != nil {
			w.logger.Error("Task failed: task=%s err=%v", task, err)
			fail(err)
			break
		}
		w.completed.Add(1)
	}

	w.setState(types.WorkerDrained)
	w.setState(types.WorkerAtBarrier)
	rv.Await()
	w.setState(types.WorkerExited)
}

func (w *Worker) execute(exec Executor, task types.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{WorkerID: w.ID, Task: task, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := exec.Execute(task); err != nil {
		return &TaskError{WorkerID: w.ID, Task: task, Err: err}
	}
	return nil
}
