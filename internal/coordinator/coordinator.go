package coordinator

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"DocSim/internal/chunk"
	"DocSim/internal/config"
	"DocSim/internal/freq"
	"DocSim/internal/history"
	"DocSim/internal/logger"
	"DocSim/internal/mapreduce"
	"DocSim/internal/results"
	"DocSim/internal/similarity"
	"DocSim/internal/types"
	"DocSim/internal/worker"
)

// Report is the outcome of a run.
type Report struct {
	RunID          string
	Reference      string
	ReferenceIndex int
	Threshold      float64
	Candidates     []string
	Scores         []types.ScoreEntry // every non-reference candidate, input order
	Emitted        []types.ScoreEntry // scores above the threshold, input order
	MapStats       *mapreduce.PhaseStats
	ReduceStats    *mapreduce.PhaseStats
}

// Driver runs the map phase, derives reduce tasks from the finished
// frequency tables, runs the reduce phase and collects the results.
type Driver struct {
	opts   config.Options
	engine *mapreduce.Engine
	delims []rune
	runID  string
	logger *logger.Logger

	mu    sync.Mutex
	state types.DriverState
	trace []types.DriverState
}

// NewDriver creates a driver for one run.
func NewDriver(opts config.Options, lg *logger.Logger) (*Driver, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := "run-" + uuid.New().String()[:8]
	lg = lg.With(runID)

	engine, err := mapreduce.NewEngine(opts.Workers, opts.QueueCapacity, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	lg.Info("Driver initialized: workers=%d queue_cap=%d", opts.Workers, opts.QueueCapacity)
	return &Driver{
		opts:   opts,
		engine: engine,
		delims: similarity.DefaultDelimiters,
		runID:  runID,
		logger: lg,
	}, nil
}

func (d *Driver) RunID() string {
	return d.runID
}

// State returns the driver's current state.
func (d *Driver) State() types.DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Trace returns every state the driver has entered, in order.
func (d *Driver) Trace() []types.DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]types.DriverState(nil), d.trace...)
}

func (d *Driver) transition(s types.DriverState) {
	d.mu.Lock()
	d.state = s
	d.trace = append(d.trace, s)
	d.mu.Unlock()
	d.logger.Debug("Driver state: state=%s", s)
}

// Run computes the similarity of every candidate against the reference.
func (d *Driver) Run(in *config.Input) (*Report, error) {
	d.transition(types.DriverLoadInput)

	refIdx, err := in.ReferenceIndex()
	if err != nil {
		d.logger.Error("Invalid input: %v", err)
		return nil, err
	}

	tables := freq.NewSet(len(in.Candidates))
	scores := results.NewMap()
	scores.Seed(refIdx)
	exec := &worker.TableExecutor{Tables: tables, Results: scores}

	d.logger.Info("Input loaded: reference=%s index=%d candidates=%d fragment_size=%d threshold=%v",
		in.Reference, refIdx, len(in.Candidates), in.FragmentSize, in.Threshold)

	d.transition(types.DriverDispatchMap)
	mapStats, err := d.engine.RunPhase("map", d.barrierAfter(types.DriverBarrier1, func(put func(types.Task) error) error {
		for i, name := range in.Candidates {
			err := chunk.ReadFile(name, in.FragmentSize, d.delims, func(fragment string) error {
				return put(types.NewMapTask(i, fragment, d.delims))
			})
			if err != nil {
				return err
			}
		}
		return nil
	}), exec)
	if err != nil {
		return nil, err
	}

	d.transition(types.DriverDeriveReduce)
	tables.FreezeAll()

	d.transition(types.DriverDispatchReduce)
	reduceStats, err := d.engine.RunPhase("reduce", d.barrierAfter(types.DriverBarrier2, func(put func(types.Task) error) error {
		for i := range in.Candidates {
			if in.IsReference(i) {
				continue
			}
			if err := put(types.NewReduceTask(i, refIdx)); err != nil {
				return err
			}
		}
		return nil
	}), exec)
	if err != nil {
		return nil, err
	}

	d.transition(types.DriverEmitOutput)
	report := &Report{
		RunID:          d.runID,
		Reference:      in.Reference,
		ReferenceIndex: refIdx,
		Threshold:      in.Threshold,
		Candidates:     in.Candidates,
		MapStats:       mapStats,
		ReduceStats:    reduceStats,
	}
	for i, name := range in.Candidates {
		if in.IsReference(i) {
			continue
		}
		score, ok := scores.Get(i)
		if !ok {
			return nil, fmt.Errorf("missing score for candidate %s (index %d)", name, i)
		}
		entry := types.ScoreEntry{Index: i, Name: name, Score: score}
		report.Scores = append(report.Scores, entry)
		if score > in.Threshold {
			report.Emitted = append(report.Emitted, entry)
		}
	}

	d.transition(types.DriverDone)
	d.logger.Info("Run completed: scored=%d emitted=%d", len(report.Scores), len(report.Emitted))
	return report, nil
}

// barrierAfter moves the driver to state once produce has submitted
// the last task, i.e. when the driver heads for the phase barrier.
func (d *Driver) barrierAfter(state types.DriverState, produce mapreduce.Producer) mapreduce.Producer {
	return func(put func(types.Task) error) error {
		err := produce(put)
		d.transition(state)
		return err
	}
}

// WriteReport writes the result listing for r.
func WriteReport(w io.Writer, r *Report) error {
	return results.Write(w, r.Reference, r.Emitted)
}

// RunFiles loads the input file, runs the comparison and writes the
// listing to outputPath. When a history directory is configured the
// run is recorded there as well.
func (d *Driver) RunFiles(inputPath, outputPath string) (*Report, error) {
	in, err := config.LoadInput(inputPath)
	if err != nil {
		return nil, err
	}

	report, err := d.Run(in)
	if err != nil {
		return nil, err
	}

	if err := results.WriteFile(outputPath, report.Reference, report.Emitted); err != nil {
		d.logger.Error("Failed to write results: %v", err)
		return nil, err
	}
	d.logger.Info("Results written: path=%s entries=%d", outputPath, len(report.Emitted))

	if d.opts.HistoryDir != "" {
		if err := d.record(report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (d *Driver) record(r *Report) error {
	store, err := history.Open(d.opts.HistoryDir, d.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Append(&history.Record{
		RunID:      r.RunID,
		Reference:  r.Reference,
		Threshold:  r.Threshold,
		Workers:    d.opts.Workers,
		Candidates: len(r.Candidates),
		Results:    r.Scores,
		Emitted:    len(r.Emitted),
		Timestamp:  time.Now().UTC(),
	})
	return err
}
