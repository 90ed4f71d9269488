package types

import "fmt"

// TaskKind discriminates the payload carried by a Task.
type TaskKind int

const (
	KindMap TaskKind = iota
	KindReduce
)

func (k TaskKind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindReduce:
		return "reduce"
	default:
		return fmt.Sprintf("TaskKind(%d)", int(k))
	}
}

// MapTask is one delimiter-aligned fragment of one document.
type MapTask struct {
	DocumentIndex int
	Fragment      string
	Delimiters    []rune
}

// ReduceTask asks for the similarity of DocumentIndex against ReferenceIndex.
type ReduceTask struct {
	DocumentIndex  int
	ReferenceIndex int
}

// Task is a unit of work in the task queue. Exactly one of Map and
// Reduce is set, as indicated by Kind.
type Task struct {
	Kind   TaskKind
	Map    *MapTask
	Reduce *ReduceTask
}

// NewMapTask builds a map task for fragment of document doc.
func NewMapTask(doc int, fragment string, delims []rune) Task {
	return Task{
		Kind: KindMap,
		Map: &MapTask{
			DocumentIndex: doc,
			Fragment:      fragment,
			Delimiters:    delims,
		},
	}
}

// NewReduceTask builds a reduce task comparing doc against ref.
func NewReduceTask(doc, ref int) Task {
	return Task{
		Kind: KindReduce,
		Reduce: &ReduceTask{
			DocumentIndex:  doc,
			ReferenceIndex: ref,
		},
	}
}

// DocumentIndex returns the document the task operates on.
func (t Task) DocumentIndex() int {
	switch t.Kind {
	case KindMap:
		return t.Map.DocumentIndex
	case KindReduce:
		return t.Reduce.DocumentIndex
	default:
		return -1
	}
}

// Validate reports whether the payload matches the kind.
func (t Task) Validate() error {
	switch t.Kind {
	case KindMap:
		if t.Map == nil || t.Reduce != nil {
			return fmt.Errorf("map task must carry only a map payload")
		}
	case KindReduce:
		if t.Reduce == nil || t.Map != nil {
			return fmt.Errorf("reduce task must carry only a reduce payload")
		}
	default:
		return fmt.Errorf("unknown task kind: %s", t.Kind)
	}
	return nil
}

func (t Task) String() string {
	switch t.Kind {
	case KindMap:
		return fmt.Sprintf("map(doc=%d bytes=%d)", t.Map.DocumentIndex, len(t.Map.Fragment))
	case KindReduce:
		return fmt.Sprintf("reduce(doc=%d ref=%d)", t.Reduce.DocumentIndex, t.Reduce.ReferenceIndex)
	default:
		return t.Kind.String()
	}
}
