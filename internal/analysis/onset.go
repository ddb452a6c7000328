// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"sync"

	applog "mirage/internal/log"
	"mirage/internal/spectrogram"
	"mirage/internal/transport"

	"gonum.org/v1/gonum/floats"
)

var logger = applog.New("analysis")

// Onset is published downstream for every detected onset.
type Onset struct {
	Type   string  `json:"type"` // always "event"
	Name   string  `json:"name"` // always "onset"
	Hop    int     `json:"hop"`
	Energy float64 `json:"energy"`
}

// OnsetDetector flags spectrogram columns whose mean power jumps relative to
// the previous column. It is a transport.Transport so it can sit alongside
// the other column sinks; a column with Hop 0 starts a new session.
type OnsetDetector struct {
	threshold      float64 // minimum mean power for an onset
	minEnergyRatio float64 // minimum increase over the previous column
	next           transport.Transport

	mu         sync.Mutex
	lastEnergy float64
	onsets     []int
}

// NewOnsetDetector returns a detector. next may be nil; otherwise every
// onset is also sent to it as an Onset.
func NewOnsetDetector(threshold, minEnergyRatio float64, next transport.Transport) (*OnsetDetector, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("onset threshold cannot be negative, got %g", threshold)
	}
	if minEnergyRatio <= 1 {
		return nil, fmt.Errorf("onset energy ratio must exceed 1, got %g", minEnergyRatio)
	}
	logger.Debugf("initialising onset detector (threshold: %.3g, min ratio: %.2f)", threshold, minEnergyRatio)
	return &OnsetDetector{
		threshold:      threshold,
		minEnergyRatio: minEnergyRatio,
		next:           next,
	}, nil
}

// Send implements transport.Transport. Values other than
// spectrogram.Column are ignored.
func (d *OnsetDetector) Send(data any) error {
	col, ok := data.(spectrogram.Column)
	if !ok || len(col.Power) == 0 {
		return nil
	}
	energy := floats.Sum(col.Power) / float64(len(col.Power))

	d.mu.Lock()
	if col.Hop == 0 {
		d.reset()
	}
	onset := energy > d.threshold &&
		(d.lastEnergy == 0 || energy/d.lastEnergy > d.minEnergyRatio)
	if onset {
		d.onsets = append(d.onsets, col.Hop)
	}
	d.lastEnergy = energy
	d.mu.Unlock()

	if onset && d.next != nil {
		if err := d.next.Send(Onset{Type: "event", Name: "onset", Hop: col.Hop, Energy: energy}); err != nil {
			return fmt.Errorf("sending onset at hop %d: %w", col.Hop, err)
		}
	}
	return nil
}

// Reset forgets all onsets seen so far.
func (d *OnsetDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *OnsetDetector) reset() {
	d.lastEnergy = 0
	d.onsets = d.onsets[:0]
}

// Onsets returns the hops flagged since the last reset.
func (d *OnsetDetector) Onsets() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.onsets...)
}

// Close is a no-op; the downstream transport is owned by the caller.
func (d *OnsetDetector) Close() error {
	return nil
}

var _ transport.Transport = (*OnsetDetector)(nil)
