// SPDX-License-Identifier: MIT
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"mirage/internal/pipeline"
	"mirage/internal/spectrogram"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0")).
			Width(12)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E05A5A")).
			Bold(true)
)

// barWidth is the length of a full-scale band bar.
const barWidth = 30

// Summary is everything shown for one analysed input.
type Summary struct {
	Path   string
	Config pipeline.Config
	Result *pipeline.Result
	Onsets []int // hops flagged by analysis.OnsetDetector; nil when disabled
	Err    error
}

// Render formats s for the terminal.
func Render(s Summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Path))
	b.WriteString("\n")

	if s.Err != nil {
		b.WriteString(errorStyle.Render("failed: " + s.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if s.Result == nil {
		b.WriteString(errorStyle.Render("no result"))
		b.WriteString("\n")
		return b.String()
	}

	res := s.Result
	hops := s.Config.HopCount()
	row(&b, "source", fmt.Sprintf("%.0f Hz -> %.0f Hz", res.SourceRate, s.Config.TargetRate))
	row(&b, "frames", fmt.Sprintf("%d / %d (%s)", res.Frames, hops, coverage(res.Frames, hops)))
	row(&b, "bins", fmt.Sprintf("%d (window %d, %s)", res.Bins, s.Config.WindowSize, s.Config.Transform))
	row(&b, "elapsed", res.Elapsed.Round(time.Microsecond).String())

	if res.Frames == 0 || res.Spectrogram == nil {
		return b.String()
	}

	if s.Onsets != nil {
		seconds := float64(res.Frames*s.Config.WindowSize) / s.Config.TargetRate
		row(&b, "onsets", fmt.Sprintf("%d (%.1f per minute)", len(s.Onsets), 60*float64(len(s.Onsets))/seconds))
	}

	peak := spectrogram.PeakBin(res.Spectrogram, res.Frames)
	row(&b, "peak", highlightStyle.Render(fmt.Sprintf("bin %d (%.1f Hz)",
		peak, float64(peak)*s.Config.TargetRate/float64(s.Config.WindowSize))))

	b.WriteString("\n")
	b.WriteString(renderBands(spectrogram.BandEnergies(res.Spectrogram, res.Frames, s.Config.TargetRate, s.Config.WindowSize)))
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), infoStyle.Render(value)))
	b.WriteString("\n")
}

func coverage(frames, hops int) string {
	if hops <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(frames)/float64(hops))
}

// renderBands draws one bar per band scaled in decibels relative to the
// loudest band, with a 60 dB floor.
func renderBands(bands []spectrogram.FrequencyBand) string {
	const floorDB = 60.0

	maxPower := 0.0
	for _, band := range bands {
		maxPower = math.Max(maxPower, band.Power)
	}

	var b strings.Builder
	for _, band := range bands {
		width := 0
		db := math.Inf(-1)
		if band.Power > 0 && maxPower > 0 {
			db = 10 * math.Log10(band.Power/maxPower)
			width = int(math.Round(barWidth * math.Max(0, 1+db/floorDB)))
		}
		label := fmt.Sprintf("%-8s %5.0f-%-5.0f", band.Name, band.LowHz, math.Min(band.HighHz, 99999))
		level := "   -inf dB"
		if !math.IsInf(db, -1) {
			level = fmt.Sprintf("%7.1f dB", db)
		}
		b.WriteString(infoStyle.Render(label))
		b.WriteString(" ")
		b.WriteString(highlightStyle.Render(strings.Repeat("█", width) + strings.Repeat(" ", barWidth-width)))
		b.WriteString(infoStyle.Render(level))
		b.WriteString("\n")
	}
	return b.String()
}
