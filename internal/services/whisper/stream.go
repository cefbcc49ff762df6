package whisper

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// segmentLine matches whisper's verbose progress output, e.g.
// [01:23.450 --> 01:27.900]  こんにちは  or with hour fields present.
var segmentLine = regexp.MustCompile(`^\[(\d{1,2}:)?(\d{1,2}):(\d{2})\.(\d{3}) --> (\d{1,2}:)?(\d{1,2}):(\d{2})\.(\d{3})\]\s?(.*)$`)

type segmentParser struct {
	nextID int
}

func newSegmentParser() *segmentParser {
	return &segmentParser{}
}

// parseLine extracts a segment from one line of engine output.
// Non-segment lines are ignored. Segment lines whose text is empty or
// hallucinated boilerplate are dropped but still consume the engine's
// per-unit index, so emitted IDs keep the engine's own numbering and
// filtered units leave gaps.
func (p *segmentParser) parseLine(line string) (Segment, bool) {
	match := segmentLine.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if match == nil {
		return Segment{}, false
	}

	id := p.nextID
	p.nextID++

	text := strings.TrimSpace(match[9])
	if text == "" || isHallucination(text) {
		return Segment{}, false
	}

	return Segment{
		ID:    id,
		Start: roundTimestamp(parseClock(match[1], match[2], match[3], match[4])),
		End:   roundTimestamp(parseClock(match[5], match[6], match[7], match[8])),
		Text:  text,
	}, true
}

func parseClock(hours, minutes, seconds, millis string) float64 {
	var h int
	if hours != "" {
		h, _ = strconv.Atoi(strings.TrimSuffix(hours, ":"))
	}
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)
	return float64(h*3600+m*60+s) + float64(ms)/1000
}

// roundTimestamp reduces timestamps to two decimals so segment
// boundaries stay stable across engine runs.
func roundTimestamp(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}

// runStreaming executes a command and feeds each stdout line to onLine
// as it arrives. Stderr is collected for the error message.
func runStreaming(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: stdout pipe: %w", name, err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: start: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", name, err, detail)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	if scanErr != nil {
		return fmt.Errorf("%s: read output: %w", name, scanErr)
	}
	return nil
}
