// SPDX-License-Identifier: MIT
package decoder

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions.
var ErrUnsupportedFormat = errors.New("decoder: unsupported file format")

// Open returns a source for the file at path, chosen by extension. The file
// itself is opened when the session starts.
func Open(path string, chunkFrames int) (Source, error) {
	if chunkFrames <= 0 {
		chunkFrames = DefaultChunkFrames
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return &WAVSource{Path: path, ChunkFrames: chunkFrames}, nil
	case ".mp3":
		return &MP3Source{Path: path, ChunkFrames: chunkFrames}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// WAVSource decodes integer PCM WAV files and downmixes them to mono.
type WAVSource struct {
	Path        string
	ChunkFrames int
}

// Decode implements Source.
func (s *WAVSource) Decode(ctx context.Context, events chan<- Event) error {
	file, err := os.Open(s.Path)
	if err != nil {
		return Fail(ctx, events, fmt.Errorf("failed to open wav file: %w", err))
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return Fail(ctx, events, fmt.Errorf("invalid wav file: %s", s.Path))
	}
	format := dec.Format()
	channels := format.NumChannels
	bitDepth := int(dec.BitDepth)
	if channels <= 0 || format.SampleRate <= 0 || bitDepth <= 0 {
		return Fail(ctx, events, fmt.Errorf("wav file %s has no usable format (channels=%d rate=%d depth=%d)",
			s.Path, channels, format.SampleRate, bitDepth))
	}

	if !Send(ctx, events, Event{Kind: Format, SampleRate: float64(format.SampleRate)}) {
		return nil
	}

	chunk := s.ChunkFrames
	if chunk <= 0 {
		chunk = DefaultChunkFrames
	}
	pcm := &audio.IntBuffer{
		Format: format,
		Data:   make([]int, chunk*channels),
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	for {
		n, err := dec.PCMBuffer(pcm)
		if n > 0 {
			mono := downmixInts(pcm.Data[:n], channels, bitDepth, scale)
			if !Send(ctx, events, Event{Kind: Data, Samples: mono}) {
				return nil
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return Fail(ctx, events, fmt.Errorf("error reading pcm data: %w", err))
		}
		if err != nil || n == 0 {
			break
		}
	}
	Send(ctx, events, Event{Kind: EndOfStream})
	return nil
}

// downmixInts averages interleaved integer frames into mono floats.
func downmixInts(data []int, channels, bitDepth int, scale float64) []float64 {
	frames := len(data) / channels
	mono := make([]float64, frames)
	for f := range frames {
		var sum float64
		for c := range channels {
			v := data[f*channels+c]
			if bitDepth == 8 {
				v -= 128 // 8-bit WAV is unsigned
			}
			sum += float64(v)
		}
		mono[f] = sum / float64(channels) * scale
	}
	return mono
}

// MP3Source decodes MP3 files. go-mp3 always yields 16-bit little-endian
// stereo, which is averaged down to mono.
type MP3Source struct {
	Path        string
	ChunkFrames int
}

const mp3FrameBytes = 4 // 2 channels x 16 bit

// Decode implements Source.
func (s *MP3Source) Decode(ctx context.Context, events chan<- Event) error {
	file, err := os.Open(s.Path)
	if err != nil {
		return Fail(ctx, events, fmt.Errorf("failed to open mp3 file: %w", err))
	}
	defer file.Close()

	dec, err := mp3.NewDecoder(file)
	if err != nil {
		return Fail(ctx, events, fmt.Errorf("failed to decode mp3 file: %w", err))
	}
	if !Send(ctx, events, Event{Kind: Format, SampleRate: float64(dec.SampleRate())}) {
		return nil
	}

	chunk := s.ChunkFrames
	if chunk <= 0 {
		chunk = DefaultChunkFrames
	}
	raw := make([]byte, chunk*mp3FrameBytes)

	for {
		n, err := io.ReadFull(dec, raw)
		if frames := n / mp3FrameBytes; frames > 0 {
			mono := make([]float64, frames)
			for f := range mono {
				l := int16(binary.LittleEndian.Uint16(raw[f*4:]))
				r := int16(binary.LittleEndian.Uint16(raw[f*4+2:]))
				mono[f] = (float64(l) + float64(r)) / 2 / 32768.0
			}
			if !Send(ctx, events, Event{Kind: Data, Samples: mono}) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return Fail(ctx, events, fmt.Errorf("error reading mp3 data: %w", err))
		}
	}
	Send(ctx, events, Event{Kind: EndOfStream})
	return nil
}
