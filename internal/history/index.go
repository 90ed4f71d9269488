package history

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	raft "github.com/hashicorp/raft"
)

// logEntry is the envelope stored in each log's Data.
type logEntry struct {
	Type      string          `json:"type"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// index is the in-memory view rebuilt by applying the log in order.
type index struct {
	mu    sync.RWMutex
	runs  map[string]*Record
	order []string
}

func newIndex() *index {
	return &index{runs: make(map[string]*Record)}
}

func (ix *index) apply(log *raft.Log) error {
	if log.Type != raft.LogCommand {
		return nil
	}

	var entry logEntry
	if err := json.Unmarshal(log.Data, &entry); err != nil {
		return fmt.Errorf("failed to unmarshal log entry: %w", err)
	}

	switch entry.Type {
	case "run":
		return ix.applyRun(&entry)
	default:
		return fmt.Errorf("unknown log entry type: %s", entry.Type)
	}
}

func (ix *index) applyRun(entry *logEntry) error {
	switch entry.Operation {
	case "complete":
		var rec Record
		if err := json.Unmarshal(entry.Data, &rec); err != nil {
			return fmt.Errorf("invalid run record: %w", err)
		}

		ix.mu.Lock()
		defer ix.mu.Unlock()
		if _, exists := ix.runs[rec.RunID]; !exists {
			ix.order = append(ix.order, rec.RunID)
		}
		ix.runs[rec.RunID] = &rec
		return nil

	default:
		return fmt.Errorf("unknown run operation: %s", entry.Operation)
	}
}

func (ix *index) get(runID string) (*Record, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	rec, ok := ix.runs[runID]
	return rec, ok
}

func (ix *index) records() []*Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]*Record, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.runs[id])
	}
	return out
}

func (ix *index) len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.order)
}
