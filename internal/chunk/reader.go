package chunk

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"DocSim/internal/similarity"
)

// Reader splits a document into fragments of roughly size runes that
// never end in the middle of a token: a fragment whose last rune is not
// a delimiter is extended up to and including the next delimiter.
type Reader struct {
	r      *bufio.Reader
	size   int
	delims []rune
	done   bool
}

// NewReader creates a fragment reader over r.
func NewReader(r io.Reader, size int, delims []rune) (*Reader, error) {
	if size < 1 {
		return nil, fmt.Errorf("fragment size must be positive, got %d", size)
	}
	if len(delims) == 0 {
		return nil, fmt.Errorf("delimiter set cannot be empty")
	}
	return &Reader{
		r:      bufio.NewReader(r),
		size:   size,
		delims: delims,
	}, nil
}

// Next returns the next fragment, or io.EOF when the document is
// exhausted.
func (c *Reader) Next() (string, error) {
	if c.done {
		return "", io.EOF
	}

	var sb strings.Builder
	var last rune
	n := 0
	for n < c.size {
		r, _, err := c.r.ReadRune()
		if err == io.EOF {
			c.done = true
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read fragment: %w", err)
		}
		sb.WriteRune(r)
		last = r
		n++
	}

	if n == 0 {
		return "", io.EOF
	}

	for !c.done && !similarity.IsDelimiter(last, c.delims) {
		r, _, err := c.r.ReadRune()
		if err == io.EOF {
			c.done = true
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to extend fragment: %w", err)
		}
		sb.WriteRune(r)
		last = r
	}

	return sb.String(), nil
}

// Each calls fn for every fragment until the document is exhausted or
// fn returns an error.
func (c *Reader) Each(fn func(fragment string) error) error {
	for {
		frag, err := c.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(frag); err != nil {
			return err
		}
	}
}

// ReadFile feeds every fragment of the file at path to fn.
func ReadFile(path string, size int, delims []rune, fn func(fragment string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open document %s: %w", path, err)
	}
	defer f.Close()

	r, err := NewReader(f, size, delims)
	if err != nil {
		return err
	}
	if err := r.Each(fn); err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return nil
}
