package mapreduce

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"DocSim/internal/barrier"
	"DocSim/internal/logger"
	"DocSim/internal/queue"
	"DocSim/internal/types"
	"DocSim/internal/worker"
)

// Producer submits one phase's tasks through put. It must not call put
// after returning.
type Producer func(put func(types.Task) error) error

// PhaseStats summarizes a completed phase.
type PhaseStats struct {
	Phase     string
	Submitted int64
	Executed  int64
	PerWorker map[string]int64
	Elapsed   time.Duration
}

// Engine runs phases on a pool of replicated workers. Every phase gets
// its own queue, barrier and workers.
type Engine struct {
	numWorkers    int
	queueCapacity int
	logger        *logger.Logger
}

// NewEngine creates an engine with numWorkers workers per phase. A
// queueCapacity of 0 leaves the task queue unbounded.
func NewEngine(numWorkers, queueCapacity int, lg *logger.Logger) (*Engine, error) {
	if numWorkers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", numWorkers)
	}
	if queueCapacity < 0 {
		return nil, fmt.Errorf("queue capacity cannot be negative, got %d", queueCapacity)
	}
	return &Engine{
		numWorkers:    numWorkers,
		queueCapacity: queueCapacity,
		logger:        lg.With("engine"),
	}, nil
}

func (e *Engine) Workers() int {
	return e.numWorkers
}

// RunPhase submits the tasks from produce and executes them with exec.
// It returns after every worker has drained the queue and met the
// caller at the phase barrier.
//
// With an unbounded queue all tasks are queued and the queue closed
// before any worker starts. With a bounded queue the workers start
// first so the producer can make progress; termination is still only
// signalled by Close after the last Put.
//
// A failing task aborts the queue, so the remaining tasks are dropped
// and the phase returns the failure.
func (e *Engine) RunPhase(name string, produce Producer, exec worker.Executor) (*PhaseStats, error) {
	start := time.Now()

	q := queue.New(e.queueCapacity)
	b, err := barrier.New(e.numWorkers + 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s barrier: %w", name, err)
	}

	errs := &errorCollector{}
	fail := func(err error) {
		errs.add(err)
		if dropped := q.Abort(); dropped > 0 {
			e.logger.Warn("Phase aborted: phase=%s dropped=%d", name, dropped)
		}
	}

	workers := make([]*worker.Worker, e.numWorkers)
	for i := range workers {
		workers[i] = worker.New(e.logger)
	}

	var wg sync.WaitGroup
	spawn := func() {
		wg.Add(len(workers))
		for _, w := range workers {
			go func(w *worker.Worker) {
				defer wg.Done()
				w.Run(q, b, exec, fail)
			}(w)
		}
		e.logger.Debug("Workers started: phase=%s workers=%d", name, len(workers))
	}

	streaming := q.Cap() > 0
	if streaming {
		spawn()
	}

	var submitted int64
	perr := produce(func(task types.Task) error {
		if err := q.Put(task); err != nil {
			return err
		}
		submitted++
		return nil
	})
	switch {
	case perr == nil:
		q.Close()
	case errors.Is(perr, queue.ErrClosed) && q.Aborted():
		// A worker failed first; its error is already collected.
	default:
		errs.add(fmt.Errorf("failed to produce %s tasks: %w", name, perr))
		q.Abort()
	}
	e.logger.Debug("Queue closed: phase=%s submitted=%d", name, submitted)

	if !streaming {
		spawn()
	}

	b.Await()
	wg.Wait()

	stats := &PhaseStats{
		Phase:     name,
		Submitted: submitted,
		PerWorker: make(map[string]int64, len(workers)),
		Elapsed:   time.Since(start),
	}
	for _, w := range workers {
		n := w.Completed()
		stats.PerWorker[w.ID] = n
		stats.Executed += n
	}

	if err := errs.err(); err != nil {
		e.logger.Error("Phase failed: phase=%s submitted=%d executed=%d err=%v", name, stats.Submitted, stats.Executed, err)
		return stats, fmt.Errorf("%s phase failed: %w", name, err)
	}
	if stats.Executed != stats.Submitted {
		return stats, fmt.Errorf("%s phase lost tasks: submitted=%d executed=%d", name, stats.Submitted, stats.Executed)
	}

	e.logger.Info("Phase completed: phase=%s tasks=%d workers=%d elapsed=%s", name, stats.Submitted, len(workers), stats.Elapsed)
	return stats, nil
}

// errorCollector gathers failures reported concurrently by workers.
type errorCollector struct {
	mu   sync.Mutex
	errs []error
}

func (c *errorCollector) add(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *errorCollector) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.errs...)
}
