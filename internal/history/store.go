package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	raft "github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb/v2"

	"DocSim/internal/logger"
	"DocSim/internal/types"
)

var (
	keyLastRun = []byte("last_run")
	keyRuns    = []byte("runs")
)

// Record is the outcome of one completed run.
type Record struct {
	RunID      string             `json:"run_id"`
	Reference  string             `json:"reference"`
	Threshold  float64            `json:"threshold"`
	Workers    int                `json:"workers"`
	Candidates int                `json:"candidates"`
	Results    []types.ScoreEntry `json:"results"`
	Emitted    int                `json:"emitted"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Store appends run records to a BoltDB-backed log.
type Store struct {
	bolt   *raftboltdb.BoltStore
	logs   raft.LogStore
	stable raft.StableStore
	index  *index
	logger *logger.Logger
}

// Open opens or creates the history database in dir.
func Open(dir string, lg *logger.Logger) (*Store, error) {
	lg = lg.With("history")

	if dir == "" {
		return nil, fmt.Errorf("history directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		lg.Error("Failed to create history directory: %v", err)
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	bolt, err := raftboltdb.NewBoltStore(filepath.Join(dir, "history.db"))
	if err != nil {
		lg.Error("Failed to open history store: %v", err)
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	s := &Store{
		bolt:   bolt,
		logs:   bolt,
		stable: bolt,
		index:  newIndex(),
		logger: lg,
	}
	if err := s.replay(); err != nil {
		bolt.Close()
		return nil, err
	}

	lg.Debug("History opened: dir=%s runs=%d", dir, s.index.len())
	return s, nil
}

// Append stores rec as the next log entry and returns its index.
func (s *Store) Append(rec *Record) (uint64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run record: %w", err)
	}
	entry, err := json.Marshal(&logEntry{
		Type:      "run",
		Operation: "complete",
		Data:      data,
		Timestamp: rec.Timestamp,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal log entry: %w", err)
	}

	last, err := s.logs.LastIndex()
	if err != nil {
		return 0, fmt.Errorf("failed to read last index: %w", err)
	}

	log := &raft.Log{
		Index:      last + 1,
		Term:       1,
		Type:       raft.LogCommand,
		Data:       entry,
		AppendedAt: time.Now(),
	}
	if err := s.logs.StoreLog(log); err != nil {
		return 0, fmt.Errorf("failed to store run record: %w", err)
	}
	if err := s.index.apply(log); err != nil {
		return 0, err
	}

	runs, err := s.Count()
	if err != nil {
		return 0, err
	}
	if err := s.stable.SetUint64(keyRuns, runs+1); err != nil {
		return 0, fmt.Errorf("failed to update run counter: %w", err)
	}
	if err := s.stable.Set(keyLastRun, []byte(rec.RunID)); err != nil {
		return 0, fmt.Errorf("failed to update last run: %w", err)
	}

	s.logger.Info("Run recorded: run_id=%s index=%d", rec.RunID, log.Index)
	return log.Index, nil
}

// Records returns every stored record in append order.
func (s *Store) Records() []*Record {
	return s.index.records()
}

// Lookup returns the record of runID.
func (s *Store) Lookup(runID string) (*Record, bool) {
	return s.index.get(runID)
}

// Last returns the most recently appended record.
func (s *Store) Last() (*Record, error) {
	id, err := s.stable.Get(keyLastRun)
	if err != nil {
		if errors.Is(err, raftboltdb.ErrKeyNotFound) {
			return nil, fmt.Errorf("no runs recorded")
		}
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}
	rec, ok := s.index.get(string(id))
	if !ok {
		return nil, fmt.Errorf("last run %s missing from log", id)
	}
	return rec, nil
}

// Count returns the number of recorded runs.
func (s *Store) Count() (uint64, error) {
	n, err := s.stable.GetUint64(keyRuns)
	if err != nil {
		if errors.Is(err, raftboltdb.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read run counter: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.bolt.Close()
}

func (s *Store) replay() error {
	first, err := s.logs.FirstIndex()
	if err != nil {
		return fmt.Errorf("failed to read first index: %w", err)
	}
	last, err := s.logs.LastIndex()
	if err != nil {
		return fmt.Errorf("failed to read last index: %w", err)
	}
	if last == 0 {
		return nil
	}

	for i := first; i <= last; i++ {
		var log raft.Log
		if err := s.logs.GetLog(i, &log); err != nil {
			return fmt.Errorf("failed to read log %d: %w", i, err)
		}
		if err := s.index.apply(&log); err != nil {
			s.logger.Warn("Skipping unreadable history entry: index=%d err=%v", i, err)
		}
	}
	return nil
}
