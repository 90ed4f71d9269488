package freq

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Table counts word occurrences for one document. Increment is safe for
// concurrent use. After the map phase the table is frozen and read
// without locking.
type Table struct {
	mu     sync.Mutex
	counts map[string]int
	frozen atomic.Bool
}

func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// Increment adds one occurrence of word, inserting it when absent.
func (t *Table) Increment(word string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen.Load() {
		return fmt.Errorf("increment of frozen table: word=%q", word)
	}
	t.counts[word]++
	return nil
}

// Freeze marks the table read-only. The caller must guarantee that no
// Increment is in flight, which the phase barrier provides.
func (t *Table) Freeze() {
	t.frozen.Store(true)
}

func (t *Table) Frozen() bool {
	return t.frozen.Load()
}

// Count returns the occurrences of word. Only valid once frozen.
func (t *Table) Count(word string) (int, bool) {
	n, ok := t.counts[word]
	return n, ok
}

// Distinct returns the number of unique words. Only valid once frozen.
func (t *Table) Distinct() int {
	return len(t.counts)
}

// Total returns the number of tokens counted. Only valid once frozen.
func (t *Table) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Words returns the table's words in sorted order. Only valid once frozen.
func (t *Table) Words() []string {
	words := make([]string, 0, len(t.counts))
	for w := range t.counts {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Range calls fn for every entry until fn returns false. Only valid once frozen.
func (t *Table) Range(fn func(word string, count int) bool) {
	for w, n := range t.counts {
		if !fn(w, n) {
			return
		}
	}
}

// Set holds one table per document index.
type Set struct {
	tables []*Table
}

// NewSet allocates n empty tables.
func NewSet(n int) *Set {
	tables := make([]*Table, n)
	for i := range tables {
		tables[i] = NewTable()
	}
	return &Set{tables: tables}
}

// Table returns the table for document index, or an error when the
// index is out of range.
func (s *Set) Table(index int) (*Table, error) {
	if index < 0 || index >= len(s.tables) {
		return nil, fmt.Errorf("document index out of range: index=%d documents=%d", index, len(s.tables))
	}
	return s.tables[index], nil
}

func (s *Set) Len() int {
	return len(s.tables)
}

// FreezeAll freezes every table in the set.
func (s *Set) FreezeAll() {
	for _, t := range s.tables {
		t.Freeze()
	}
}
