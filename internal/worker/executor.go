package worker

import (
	"fmt"

	"DocSim/internal/freq"
	"DocSim/internal/results"
	"DocSim/internal/similarity"
	"DocSim/internal/types"
)

// TableExecutor runs map tasks against per-document frequency tables
// and reduce tasks into a shared result map.
type TableExecutor struct {
	Tables  *freq.Set
	Results *results.Map
}

func (e *TableExecutor) Execute(task types.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	switch task.Kind {
	case types.KindMap:
		return e.executeMap(task.Map)
	case types.KindReduce:
		return e.executeReduce(task.Reduce)
	default:
		return fmt.Errorf("unknown task kind: %s", task.Kind)
	}
}

func (e *TableExecutor) executeMap(t *types.MapTask) error {
	table, err := e.Tables.Table(t.DocumentIndex)
	if err != nil {
		return err
	}
	for _, word := range similarity.Tokenize(t.Fragment, t.Delimiters) {
		if err := table.Increment(word); err != nil {
			return err
		}
	}
	return nil
}

func (e *TableExecutor) executeReduce(t *types.ReduceTask) error {
	if e.Results == nil {
		return fmt.Errorf("reduce task without a result map: doc=%d", t.DocumentIndex)
	}
	doc, err := e.Tables.Table(t.DocumentIndex)
	if err != nil {
		return err
	}
	ref, err := e.Tables.Table(t.ReferenceIndex)
	if err != nil {
		return err
	}
	if !doc.Frozen() || !ref.Frozen() {
		return fmt.Errorf("reduce before map phase completed: doc=%d ref=%d", t.DocumentIndex, t.ReferenceIndex)
	}

	return e.Results.Set(t.DocumentIndex, similarity.Score(doc, ref))
}
