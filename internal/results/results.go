package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"DocSim/internal/types"
)

// ReferenceSentinel is the score recorded for the reference document.
const ReferenceSentinel = 100.0

// Map records one similarity score per document index. All writers
// share a single lock.
type Map struct {
	mu     sync.Mutex
	scores map[int]float64
}

func NewMap() *Map {
	return &Map{scores: make(map[int]float64)}
}

// Seed stores the sentinel score for the reference document.
func (m *Map) Seed(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[index] = ReferenceSentinel
}

// Set records the score for index. Each index may be written once.
func (m *Map) Set(index int, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, exists := m.scores[index]; exists {
		return fmt.Errorf("score already recorded: index=%d previous=%v", index, prev)
	}
	m.scores[index] = score
	return nil
}

func (m *Map) Get(index int) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score, ok := m.scores[index]
	return score, ok
}

func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scores)
}

// FormatScore renders score with exactly three fractional digits,
// truncating instead of rounding.
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	return intPart + "." + frac
}

// Write renders the result listing for reference to w.
func Write(w io.Writer, reference string, entries []types.ScoreEntry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Rezultate pentru: (%s)\n\n", reference)
	for _, e := range entries {
		fmt.Fprintf(bw, "%s (%s%%)\n", e.Name, FormatScore(e.Score))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// WriteFile writes the result listing to path, replacing any existing file.
func WriteFile(path, reference string, entries []types.ScoreEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	if err := Write(f, reference, entries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", path, err)
	}
	return nil
}
