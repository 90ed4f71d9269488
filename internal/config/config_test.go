package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseInput(t *testing.T) {
	src := "a.txt extra tokens\n100\n12.5\n3\na.txt\nb.txt ignored\nc.txt\n"
	in, err := ParseInput(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseInput failed: %v", err)
	}
	if in.Reference != "a.txt" || in.FragmentSize != 100 || in.Threshold != 12.5 {
		t.Fatalf("Unexpected header: %+v", in)
	}
	if len(in.Candidates) != 3 || in.Candidates[1] != "b.txt" {
		t.Fatalf("Unexpected candidates: %v", in.Candidates)
	}

	idx, err := in.ReferenceIndex()
	if err != nil || idx != 0 {
		t.Fatalf("Expected reference index 0, got %d (%v)", idx, err)
	}
}

func TestParseInputErrors(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"blank reference": "   \n10\n0\n0\n",
		"bad size":        "a\nten\n0\n1\na\n",
		"zero size":       "a\n0\n0\n1\na\n",
		"bad threshold":   "a\n10\nhigh\n1\na\n",
		"bad count":       "a\n10\n0\nmany\n",
		"negative count":  "a\n10\n0\n-1\n",
		"short list":      "a\n10\n0\n3\na\nb\n",
	}
	for name, src := range cases {
		if _, err := ParseInput(strings.NewReader(src)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestReferenceIndex(t *testing.T) {
	in := &Input{Reference: "x", Candidates: []string{"a", "b"}}
	if _, err := in.ReferenceIndex(); !errors.Is(err, ErrReferenceNotFound) {
		t.Fatalf("Expected ErrReferenceNotFound, got %v", err)
	}

	dup := &Input{Reference: "a", Candidates: []string{"a", "b", "a"}}
	idx, err := dup.ReferenceIndex()
	if err != nil || idx != 2 {
		t.Fatalf("Expected last match at 2, got %d (%v)", idx, err)
	}
	if !dup.IsReference(0) || dup.IsReference(1) {
		t.Fatalf("IsReference mismatch")
	}
}

func TestLoadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("a\n10\n0\n1\na\n"), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	in, err := LoadInput(path)
	if err != nil {
		t.Fatalf("LoadInput failed: %v", err)
	}
	if in.Reference != "a" || len(in.Candidates) != 1 {
		t.Fatalf("Unexpected input: %+v", in)
	}

	if _, err := LoadInput(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("Expected error for missing file")
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("Default options invalid: %v", err)
	}
	if err := (Options{Workers: 0}).Validate(); err == nil {
		t.Fatalf("Expected error for zero workers")
	}
	if err := (Options{Workers: 2, QueueCapacity: -1}).Validate(); err == nil {
		t.Fatalf("Expected error for negative capacity")
	}
}
