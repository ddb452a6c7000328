// SPDX-License-Identifier: MIT
package spectrogram

import (
	"errors"
	"testing"
)

func TestNewRejectsEmptyDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-1, 5}} {
		if _, err := New(dims[0], dims[1]); err == nil {
			t.Errorf("New(%d, %d): expected error", dims[0], dims[1])
		}
	}
}

func TestWriteColumnLayout(t *testing.T) {
	b, err := New(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.WriteColumn(2, []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	// bin*hops + hop
	want := map[int]float64{0*4 + 2: 1, 1*4 + 2: 2, 2*4 + 2: 3}
	for i, v := range b.Data() {
		if v != want[i] {
			t.Errorf("data[%d] = %g, want %g", i, v, want[i])
		}
	}
	if b.At(1, 2) != 2 {
		t.Errorf("At(1, 2) = %g, want 2", b.At(1, 2))
	}

	dst := make([]float64, 3)
	if err := b.ReadColumn(2, dst); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 1 || dst[1] != 2 || dst[2] != 3 {
		t.Errorf("ReadColumn = %v, want [1 2 3]", dst)
	}
}

func TestWriteColumnBounds(t *testing.T) {
	b, _ := New(4, 3)
	cases := []struct {
		name  string
		hop   int
		power []float64
	}{
		{"negative hop", -1, make([]float64, 3)},
		{"hop at capacity", 4, make([]float64, 3)},
		{"short column", 0, make([]float64, 2)},
		{"long column", 0, make([]float64, 4)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := b.WriteColumn(tc.hop, tc.power)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("err = %v, want ErrOutOfBounds", err)
			}
		})
	}
	for i, v := range b.Data() {
		if v != 0 {
			t.Fatalf("rejected write modified data[%d] = %g", i, v)
		}
	}
}

func TestWriteColumnZeroAllocs(t *testing.T) {
	b, _ := New(1292, 513)
	col := make([]float64, 513)
	allocs := testing.AllocsPerRun(100, func() {
		_ = b.WriteColumn(100, col)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in WriteColumn, got %.1f", allocs)
	}
}

func TestBandEnergiesAndPeak(t *testing.T) {
	const (
		rate   = 8000.0
		window = 16 // 500 Hz per bin
		hops   = 4
	)
	b, _ := New(hops, window/2+1)
	col := make([]float64, window/2+1)
	col[2] = 10 // 1000 Hz -> mid
	col[5] = 4  // 2500 Hz -> highMid
	for hop := range 2 {
		_ = b.WriteColumn(hop, col)
	}

	if peak := PeakBin(b, 2); peak != 2 {
		t.Errorf("PeakBin = %d, want 2", peak)
	}

	bands := BandEnergies(b, 2, rate, window)
	byName := map[string]FrequencyBand{}
	for _, band := range bands {
		byName[band.Name] = band
	}
	// mid covers bins 1..3 (500, 1000, 1500 Hz)
	if got := byName["mid"]; got.Bins != 3 || got.Power != 10.0/3 {
		t.Errorf("mid = %+v, want 3 bins and power %g", got, 10.0/3)
	}
	if got := byName["highMid"]; got.Bins != 4 || got.Power != 1 {
		t.Errorf("highMid = %+v, want 4 bins and power 1", got)
	}
}
