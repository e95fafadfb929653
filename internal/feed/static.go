package feed

import (
	"context"
	"errors"
	"sync"

	"healthchain/internal/vitals"
)

// ErrExhausted is returned by a non-cycling static source once all fixture
// readings have been consumed.
var ErrExhausted = errors.New("feed: static source exhausted")

// Static replays a fixed set of readings, cycling when configured. It backs
// the simulate command and deterministic tests.
type Static struct {
	mu       sync.Mutex
	readings []vitals.Reading
	idx      int
	cycle    bool
}

// NewStatic constructs a static source over the given readings.
func NewStatic(readings []vitals.Reading, cycle bool) *Static {
	return &Static{readings: readings, cycle: cycle}
}

// Next returns the next fixture reading.
func (s *Static) Next(ctx context.Context) (vitals.Reading, error) {
	if err := ctx.Err(); err != nil {
		return vitals.Reading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.readings) == 0 {
		return vitals.Reading{}, ErrExhausted
	}
	if s.idx >= len(s.readings) {
		if !s.cycle {
			return vitals.Reading{}, ErrExhausted
		}
		s.idx = 0
	}

	reading := s.readings[s.idx]
	s.idx++
	return reading, nil
}

var _ Source = (*Static)(nil)
