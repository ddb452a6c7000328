// SPDX-License-Identifier: MIT
package spectrogram

import (
	"gonum.org/v1/gonum/floats"
)

// FrequencyBand is a named frequency range and its mean power over the
// filled columns of a spectrogram.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
	Power  float64
	Bins   int // number of bins whose centre falls in [LowHz, HighHz)
}

// DefaultBands returns the band layout used for summaries, capped at the
// Nyquist frequency of sampleRate.
func DefaultBands(sampleRate float64) []FrequencyBand {
	nyquist := sampleRate / 2
	bands := []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: nyquist + 1},
	}
	out := bands[:0]
	for _, b := range bands {
		if b.LowHz >= nyquist {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BandEnergies averages the power of the first frames columns over each of
// DefaultBands(sampleRate). windowSize is the transform length, so bin k
// sits at k*sampleRate/windowSize Hz.
func BandEnergies(b *Buffer, frames int, sampleRate float64, windowSize int) []FrequencyBand {
	bands := DefaultBands(sampleRate)
	if frames <= 0 || frames > b.hops {
		return bands
	}

	binHz := sampleRate / float64(windowSize)
	for bin := range b.bins {
		freq := float64(bin) * binHz
		row := b.data[bin*b.hops : bin*b.hops+frames]
		mean := floats.Sum(row) / float64(frames)
		for i := range bands {
			if freq >= bands[i].LowHz && freq < bands[i].HighHz {
				bands[i].Power += mean
				bands[i].Bins++
				break
			}
		}
	}
	for i := range bands {
		if bands[i].Bins > 0 {
			bands[i].Power /= float64(bands[i].Bins)
		}
	}
	return bands
}

// PeakBin returns the bin with the highest total power over the first
// frames columns.
func PeakBin(b *Buffer, frames int) int {
	if frames <= 0 || frames > b.hops {
		return 0
	}
	totals := make([]float64, b.bins)
	for bin := range b.bins {
		totals[bin] = floats.Sum(b.data[bin*b.hops : bin*b.hops+frames])
	}
	return floats.MaxIdx(totals)
}
