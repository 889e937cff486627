package youtube

import (
	"fmt"
	"math"
	"strings"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

// RenderSRT renders cues as SubRip, numbered from 1. A cue's end is pulled back
// to the next cue's start when they overlap; the last cue keeps its end.
func RenderSRT(cues []model.Cue) string {
	var b strings.Builder

	for i, cue := range cues {
		end := cue.End
		if i+1 < len(cues) && cues[i+1].Start < end {
			end = cues[i+1].Start
		}

		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, SecondsToTimestamp(cue.Start), SecondsToTimestamp(end), cueText(cue.Text))
	}

	return b.String()
}

// cueText drops blank lines, which would otherwise end the SRT block early
func cueText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.Contains(text, "\n") {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// maxTimestampSeconds keeps the millisecond count well inside int64
const maxTimestampSeconds = 1e12

// SecondsToTimestamp formats seconds as HH:MM:SS,mmm
func SecondsToTimestamp(seconds float64) string {
	if !(seconds > 0) || math.IsInf(seconds, 1) {
		return "00:00:00,000"
	}
	seconds = min(seconds, maxTimestampSeconds)

	// floor to whole milliseconds, tolerating float error such as 1.001*1000 = 1000.9999
	total := int64(math.Floor(seconds*1000 + 1e-6))

	hours := total / 3_600_000
	minutes := total / 60_000 % 60
	secs := total / 1000 % 60
	millis := total % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
