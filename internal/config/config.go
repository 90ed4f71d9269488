package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrReferenceNotFound is returned when the reference document is not
// among the candidates.
var ErrReferenceNotFound = errors.New("reference document not among candidates")

// Input is the parsed input file.
type Input struct {
	Reference    string   // name of the document every candidate is compared to
	FragmentSize int      // target fragment length in characters
	Threshold    float64  // minimum score, exclusive, for a candidate to be listed
	Candidates   []string // candidate document paths, in input order
}

// Options configure a run independently of the input file.
type Options struct {
	Workers       int
	QueueCapacity int // 0 means unbounded
	LogLevel      string
	HistoryDir    string // empty disables run history
}

// DefaultOptions returns the options used when no flag overrides them.
func DefaultOptions() Options {
	return Options{
		Workers:  1,
		LogLevel: "INFO",
	}
}

func (o Options) Validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", o.Workers)
	}
	if o.QueueCapacity < 0 {
		return fmt.Errorf("queue capacity cannot be negative, got %d", o.QueueCapacity)
	}
	return nil
}

// LoadInput reads and parses the input file at path.
func LoadInput(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer f.Close()

	in, err := ParseInput(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}
	return in, nil
}

// ParseInput parses the line-oriented input format:
//
//	<reference> [ignored]
//	<fragment size>
//	<threshold>
//	<candidate count N>
//	<candidate> [ignored]   (N lines)
func ParseInput(r io.Reader) (*Input, error) {
	sc := bufio.NewScanner(r)
	line := 0
	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("failed to read %s: %w", what, err)
			}
			return "", fmt.Errorf("line %d: missing %s", line+1, what)
		}
		line++
		return sc.Text(), nil
	}

	in := &Input{}

	text, err := next("reference document")
	if err != nil {
		return nil, err
	}
	if in.Reference, err = firstField(text, line, "reference document"); err != nil {
		return nil, err
	}

	if text, err = next("fragment size"); err != nil {
		return nil, err
	}
	if in.FragmentSize, err = strconv.Atoi(strings.TrimSpace(text)); err != nil {
		return nil, fmt.Errorf("line %d: invalid fragment size %q: %w", line, text, err)
	}
	if in.FragmentSize < 1 {
		return nil, fmt.Errorf("line %d: fragment size must be positive, got %d", line, in.FragmentSize)
	}

	if text, err = next("similarity threshold"); err != nil {
		return nil, err
	}
	if in.Threshold, err = strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
		return nil, fmt.Errorf("line %d: invalid similarity threshold %q: %w", line, text, err)
	}

	if text, err = next("candidate count"); err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid candidate count %q: %w", line, text, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("line %d: candidate count cannot be negative, got %d", line, count)
	}

	in.Candidates = make([]string, 0, count)
	for i := 0; i < count; i++ {
		if text, err = next(fmt.Sprintf("candidate %d of %d", i+1, count)); err != nil {
			return nil, err
		}
		name, err := firstField(text, line, "candidate document")
		if err != nil {
			return nil, err
		}
		in.Candidates = append(in.Candidates, name)
	}

	return in, nil
}

// ReferenceIndex returns the index of the reference among the
// candidates. When several candidates share the reference name the last
// one wins.
func (in *Input) ReferenceIndex() (int, error) {
	idx := -1
	for i, name := range in.Candidates {
		if name == in.Reference {
			idx = i
		}
	}
	if idx == -1 {
		return -1, fmt.Errorf("%w: reference=%s candidates=%d", ErrReferenceNotFound, in.Reference, len(in.Candidates))
	}
	return idx, nil
}

// IsReference reports whether candidate i carries the reference name.
func (in *Input) IsReference(i int) bool {
	return in.Candidates[i] == in.Reference
}

func firstField(text string, line int, what string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", fmt.Errorf("line %d: empty %s", line, what)
	}
	return fields[0], nil
}
