/*
 * History:
 * Fixed-size window of the most recent normalized sensor readings.
 * Appending a reading always evicts the oldest one, so the window
 * length never changes after it was filled.
 */

package history

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Smallest window the feature extractor can work with.
const MinSize = 3

var ErrWindowTooSmall = errors.New("history window too small")

type Buffer struct {
	values []float64
	head   int // index of the oldest reading, next slot to overwrite
}

// sleepFn is swapped out in tests.
var sleepFn = time.Sleep

func New(size int) (*Buffer, error) {
	if size < MinSize {
		return nil, fmt.Errorf("%w: need at least %d readings, got %d", ErrWindowTooSmall, MinSize, size)
	}
	return &Buffer{values: make([]float64, size)}, nil
}

/*
 * Fills every slot with a fresh reading, oldest first.
 * The settle delay is waited after each acquisition.
 */
func (b *Buffer) Fill(read func() (float64, error), settle time.Duration) error {
	for i := range b.values {
		value, err := read()
		if err != nil {
			return fmt.Errorf("initial reading %d/%d: %w", i+1, len(b.values), err)
		}
		b.values[i] = value
		log.Debugf("History: initial reading %d/%d: %.3f", i+1, len(b.values), value)
		sleepFn(settle)
	}
	b.head = 0
	return nil
}

// Append drops the oldest reading and stores value as the newest one.
func (b *Buffer) Append(value float64) {
	b.values[b.head] = value
	b.head = (b.head + 1) % len(b.values)
}

// Values returns a copy of the window in chronological order.
func (b *Buffer) Values() []float64 {
	out := make([]float64, len(b.values))
	n := copy(out, b.values[b.head:])
	copy(out[n:], b.values[:b.head])
	return out
}

// Last returns the newest reading.
func (b *Buffer) Last() float64 {
	return b.values[(b.head-1+len(b.values))%len(b.values)]
}

func (b *Buffer) Len() int {
	return len(b.values)
}
