// SPDX-License-Identifier: MIT
package decoder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain runs src to completion and returns every event it sent.
func drain(t *testing.T, src Source) ([]Event, error) {
	t.Helper()
	events := make(chan Event, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- src.Decode(context.Background(), events)
		close(events)
	}()
	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	return got, <-errc
}

func samplesOf(events []Event) []float64 {
	var out []float64
	for _, ev := range events {
		if ev.Kind == Data {
			out = append(out, ev.Samples...)
		}
	}
	return out
}

func TestPCMSourceEventOrder(t *testing.T) {
	signal := Tone(440, 8000, 1)
	got, err := drain(t, NewPCMSource(signal, 8000, 3000))
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, Format, got[0].Kind)
	assert.Equal(t, 8000.0, got[0].SampleRate)
	assert.Equal(t, EndOfStream, got[len(got)-1].Kind)
	for _, ev := range got[1 : len(got)-1] {
		assert.Equal(t, Data, ev.Kind)
		assert.LessOrEqual(t, len(ev.Samples), 3000)
	}
	assert.Equal(t, signal, samplesOf(got))
}

func TestPCMSourceInvalidRate(t *testing.T) {
	got, err := drain(t, NewPCMSource(Silence(10), 0, 0))
	require.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Error, got[0].Kind)
}

func TestPCMSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event) // unbuffered: every send blocks until read
	done := make(chan error, 1)
	go func() { done <- NewPCMSource(Silence(1<<20), 8000, 16).Decode(ctx, events) }()

	<-events // format
	<-events // first data
	cancel()
	assert.NoError(t, <-done)
}

func writeWAV(t *testing.T, path string, rate, depth, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, depth, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: depth,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestWAVSourceDownmixesStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	const frames = 5000
	data := make([]int, 2*frames)
	for f := range frames {
		data[2*f] = 16384    // left  = 0.5
		data[2*f+1] = -16384 // right = -0.5
	}
	data[0], data[1] = 16384, 16384 // first frame = 0.5
	writeWAV(t, path, 22050, 16, 2, data)

	src, err := Open(path, 1024)
	require.NoError(t, err)
	got, err := drain(t, src)
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, Format, got[0].Kind)
	assert.Equal(t, 22050.0, got[0].SampleRate)
	assert.Equal(t, EndOfStream, got[len(got)-1].Kind)

	mono := samplesOf(got)
	require.Len(t, mono, frames)
	assert.InDelta(t, 0.5, mono[0], 1e-9)
	for _, v := range mono[1:] {
		assert.InDelta(t, 0.0, v, 1e-9)
	}
}

func TestWAVSourceMissingFile(t *testing.T) {
	src := &WAVSource{Path: filepath.Join(t.TempDir(), "missing.wav")}
	got, err := drain(t, src)
	require.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Error, got[0].Kind)
}

func TestOpenByExtension(t *testing.T) {
	src, err := Open("song.MP3", 0)
	require.NoError(t, err)
	assert.IsType(t, &MP3Source{}, src)

	src, err = Open("song.wav", 0)
	require.NoError(t, err)
	assert.IsType(t, &WAVSource{}, src)

	_, err = Open("song.flac", 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "format", Format.String())
	assert.Equal(t, "data", Data.String())
	assert.Equal(t, "eos", EndOfStream.String())
	assert.Equal(t, "error", Error.String())
}
