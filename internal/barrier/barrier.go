package barrier

import (
	"fmt"
	"sync"
)

// Barrier blocks a fixed number of parties until all of them have
// arrived, then releases them together and resets for the next
// generation.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	arrived    int
	generation uint64
}

// New creates a barrier for parties participants.
func New(parties int) (*Barrier, error) {
	if parties < 1 {
		return nil, fmt.Errorf("barrier needs at least one party, got %d", parties)
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b, nil
}

// Await blocks until all parties of the current generation have
// arrived. It returns the generation the caller took part in.
func (b *Barrier) Await() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return gen
	}

	for gen == b.generation {
		b.cond.Wait()
	}
	return gen
}

func (b *Barrier) Parties() int {
	return b.parties
}

// Waiting returns how many parties are blocked in the current generation.
func (b *Barrier) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrived
}

// Generation returns the number of completed rendezvous.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
