package coordinator

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"DocSim/internal/config"
	"DocSim/internal/history"
	"DocSim/internal/logger"
	"DocSim/internal/types"
)

// writeDocs writes each document into dir and returns their paths in order.
func writeDocs(t testing.TB, dir string, docs map[string]string, order []string) []string {
	t.Helper()
	paths := make([]string, len(order))
	for i, name := range order {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(docs[name]), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		paths[i] = p
	}
	return paths
}

func newDriver(t testing.TB, workers, capacity int) *Driver {
	t.Helper()
	opts := config.DefaultOptions()
	opts.Workers = workers
	opts.QueueCapacity = capacity
	d, err := NewDriver(opts, logger.Discard())
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}
	return d
}

func TestEndToEndExample(t *testing.T) {
	dir := t.TempDir()
	paths := writeDocs(t, dir, map[string]string{"A": "the cat sat", "B": "the dog sat"}, []string{"A", "B"})

	in := &config.Input{Reference: paths[0], FragmentSize: 4, Threshold: 0, Candidates: paths}
	report, err := newDriver(t, 3, 0).Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Emitted) != 1 || report.Emitted[0].Name != paths[1] {
		t.Fatalf("Unexpected emitted entries: %+v", report.Emitted)
	}
	if math.Abs(report.Emitted[0].Score-200.0/9.0) > 1e-9 {
		t.Fatalf("Expected 22.222..., got %v", report.Emitted[0].Score)
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, report); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	want := "Rezultate pentru: (" + paths[0] + ")\n\n" + paths[1] + " (22.222%)\n"
	if buf.String() != want {
		t.Fatalf("Unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestThresholdFiltering(t *testing.T) {
	dir := t.TempDir()
	paths := writeDocs(t, dir, map[string]string{"A": "the cat sat", "B": "the dog sat"}, []string{"A", "B"})

	in := &config.Input{Reference: paths[0], FragmentSize: 4, Threshold: 50, Candidates: paths}
	report, err := newDriver(t, 2, 0).Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Emitted) != 0 {
		t.Fatalf("Expected B to be filtered, got %+v", report.Emitted)
	}
	if len(report.Scores) != 1 {
		t.Fatalf("Expected one scored candidate, got %+v", report.Scores)
	}
}

func TestReferenceNeverEmitted(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"ref": "alpha beta gamma",
		"x":   "alpha beta",
		"y":   "delta",
	}
	paths := writeDocs(t, dir, docs, []string{"x", "ref", "y"})

	// A negative threshold would let the 100 sentinel through if the
	// reference were not excluded.
	in := &config.Input{Reference: paths[1], FragmentSize: 3, Threshold: -1, Candidates: paths}
	report, err := newDriver(t, 4, 0).Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.ReferenceIndex != 1 {
		t.Fatalf("Expected reference index 1, got %d", report.ReferenceIndex)
	}
	for _, e := range report.Emitted {
		if e.Name == paths[1] {
			t.Fatalf("Reference document emitted: %+v", e)
		}
	}
	if len(report.Emitted) != 2 || report.Emitted[0].Name != paths[0] || report.Emitted[1].Name != paths[2] {
		t.Fatalf("Expected both candidates in input order, got %+v", report.Emitted)
	}
	if report.Emitted[1].Score != 0 {
		t.Fatalf("Disjoint document should score 0, got %v", report.Emitted[1].Score)
	}
}

func TestMissingReference(t *testing.T) {
	dir := t.TempDir()
	paths := writeDocs(t, dir, map[string]string{"A": "a", "B": "b"}, []string{"A", "B"})

	d := newDriver(t, 2, 0)
	_, err := d.Run(&config.Input{Reference: "nope", FragmentSize: 4, Candidates: paths})
	if !errors.Is(err, config.ErrReferenceNotFound) {
		t.Fatalf("Expected ErrReferenceNotFound, got %v", err)
	}
	if d.State() != types.DriverLoadInput {
		t.Fatalf("Driver advanced past load_input: %s", d.State())
	}
}

func TestMissingDocumentAbortsRun(t *testing.T) {
	dir := t.TempDir()
	paths := writeDocs(t, dir, map[string]string{"A": "a b c"}, []string{"A"})
	paths = append(paths, filepath.Join(dir, "missing.txt"))

	for _, capacity := range []int{0, 1} {
		_, err := newDriver(t, 2, capacity).Run(&config.Input{Reference: paths[0], FragmentSize: 2, Candidates: paths})
		if err == nil || !strings.Contains(err.Error(), "missing.txt") {
			t.Fatalf("cap=%d: expected I/O error naming the document, got %v", capacity, err)
		}
	}
}

// TestScoresIndependentOfPoolAndFragmentSize runs the same input with
// different worker counts, fragment sizes and queue modes.
func TestScoresIndependentOfPoolAndFragmentSize(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"a": "The quick brown fox jumps over the lazy dog.\nThe dog sleeps!",
		"b": "A quick brown dog jumps over the lazy fox. The fox sleeps",
		"c": "the the the the cat\tand the hat.",
		"d": "Nothing here overlaps at all",
	}
	paths := writeDocs(t, dir, docs, []string{"a", "b", "c", "d"})

	var baseline []types.ScoreEntry
	for _, workers := range []int{1, 2, 5} {
		for _, size := range []int{1, 7, 64, 4096} {
			for _, capacity := range []int{0, 3} {
				in := &config.Input{Reference: paths[0], FragmentSize: size, Threshold: 0, Candidates: paths}
				report, err := newDriver(t, workers, capacity).Run(in)
				if err != nil {
					t.Fatalf("workers=%d size=%d cap=%d: %v", workers, size, capacity, err)
				}
				if baseline == nil {
					baseline = report.Scores
					continue
				}
				for i := range baseline {
					if math.Abs(baseline[i].Score-report.Scores[i].Score) > 1e-9 {
						t.Fatalf("workers=%d size=%d cap=%d: %s scored %v, baseline %v",
							workers, size, capacity, report.Scores[i].Name, report.Scores[i].Score, baseline[i].Score)
					}
				}
			}
		}
	}
}

func TestDriverTrace(t *testing.T) {
	dir := t.TempDir()
	paths := writeDocs(t, dir, map[string]string{"A": "x y", "B": "y z"}, []string{"A", "B"})

	d := newDriver(t, 2, 0)
	if _, err := d.Run(&config.Input{Reference: paths[0], FragmentSize: 2, Candidates: paths}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []types.DriverState{
		types.DriverLoadInput,
		types.DriverDispatchMap,
		types.DriverBarrier1,
		types.DriverDeriveReduce,
		types.DriverDispatchReduce,
		types.DriverBarrier2,
		types.DriverEmitOutput,
		types.DriverDone,
	}
	if got := d.Trace(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Unexpected trace: %v", got)
	}
	if !strings.HasPrefix(d.RunID(), "run-") {
		t.Fatalf("Unexpected run id %q", d.RunID())
	}
}

func TestRunFilesWithHistory(t *testing.T) {
	dir := t.TempDir()
	paths := writeDocs(t, dir, map[string]string{"A": "the cat sat", "B": "the dog sat", "C": "cat"}, []string{"A", "B", "C"})

	input := filepath.Join(dir, "input.txt")
	src := paths[0] + " trailing\n10\n0\n3\n" + paths[0] + "\n" + paths[1] + " x\n" + paths[2] + "\n"
	if err := os.WriteFile(input, []byte(src), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	output := filepath.Join(dir, "out.txt")

	opts := config.DefaultOptions()
	opts.Workers = 3
	opts.HistoryDir = filepath.Join(dir, "history")
	d, err := NewDriver(opts, logger.Discard())
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}

	report, err := d.RunFiles(input, output)
	if err != nil {
		t.Fatalf("RunFiles failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	want := "Rezultate pentru: (" + paths[0] + ")\n\n" +
		paths[1] + " (22.222%)\n" +
		paths[2] + " (33.333%)\n"
	if string(data) != want {
		t.Fatalf("Unexpected output:\n%q\nwant\n%q", data, want)
	}

	store, err := history.Open(opts.HistoryDir, logger.Discard())
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	defer store.Close()

	last, err := store.Last()
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if last.RunID != report.RunID || last.Emitted != 2 || len(last.Results) != 2 || last.Workers != 3 {
		t.Fatalf("Unexpected history record: %+v", last)
	}
}

func BenchmarkRun(b *testing.B) {
	dir := b.TempDir()
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteString("lorem ipsum dolor sit amet. ")
	}
	docs := map[string]string{"a": sb.String(), "b": strings.ToUpper(sb.String()), "c": "ipsum"}
	paths := writeDocs(b, dir, docs, []string{"a", "b", "c"})
	in := &config.Input{Reference: paths[0], FragmentSize: 256, Candidates: paths}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := newDriver(b, 4, 0)
		if _, err := d.Run(in); err != nil {
			b.Fatalf("Run failed: %v", err)
		}
	}
}
