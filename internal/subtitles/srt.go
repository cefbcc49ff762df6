package subtitles

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Cue is a single subtitle with timing in seconds.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
// Fractional milliseconds truncate rather than round so a cue never
// starts after the audio it labels.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	// The epsilon absorbs float representation error so a value like
	// 3725.999 lands on 999ms instead of 998.
	msTotal := int(seconds*1000 + 1e-6)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1000
	millis := msTotal % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT renders cues as an SRT document. Cue indices are assigned
// sequentially from 1 regardless of the Index fields; cues with empty
// text are skipped.
func WriteSRT(w io.Writer, cues []Cue) error {
	index := 0
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		index++
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			index, FormatTimestamp(cue.Start), FormatTimestamp(cue.End), text); err != nil {
			return fmt.Errorf("write srt cue: %w", err)
		}
	}
	return nil
}

// WriteFile writes cues to an SRT file, creating or truncating it.
func WriteFile(path string, cues []Cue) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create srt: %w", err)
	}
	if err := WriteSRT(f, cues); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ParseFile reads an SRT file back into cues. Malformed blocks are
// skipped rather than failing the whole file.
func ParseFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}

	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return nil, nil
	}

	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}

		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			continue
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			continue
		}
		start, err := parseTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := parseTimestamp(parts[1])
		if err != nil {
			continue
		}

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, nil
}

func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ".", ","))
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
