package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Placeholder is shown when the position precedes the first line. It is
// distinct from the "no timeline" case, which Locate reports with ok=false.
const Placeholder = "…"

var timestampPattern = regexp.MustCompile(`^(\d+):(\d+(?:\.\d+)?)$`)

type TimedLine struct {
	TimeSeconds float64
	Text        string
}

// Timeline is an immutable, ascending sequence of timed lines. The zero
// value is a valid empty timeline.
type Timeline struct {
	lines []TimedLine
}

// NewTimeline copies and stably sorts lines, so equal timestamps keep their
// document order.
func NewTimeline(lines []TimedLine) Timeline {
	if len(lines) == 0 {
		return Timeline{}
	}

	sorted := make([]TimedLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeSeconds < sorted[j].TimeSeconds
	})

	return Timeline{lines: sorted}
}

func (t Timeline) Len() int      { return len(t.lines) }
func (t Timeline) IsEmpty() bool { return len(t.lines) == 0 }

func (t Timeline) Lines() []TimedLine {
	out := make([]TimedLine, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t Timeline) Line(index int) (TimedLine, bool) {
	if index < 0 || index >= len(t.lines) {
		return TimedLine{}, false
	}
	return t.lines[index], true
}

// Index returns the index of the last line whose time is <= position, or -1
// when position precedes the first line or the timeline is empty. Lines
// sharing a timestamp resolve to the later one.
func (t Timeline) Index(position float64) int {
	return sort.Search(len(t.lines), func(i int) bool {
		return t.lines[i].TimeSeconds > position
	}) - 1
}

// Locate returns the active line text at position. ok is false only when the
// timeline is empty.
func (t Timeline) Locate(position float64) (text string, ok bool) {
	if len(t.lines) == 0 {
		return "", false
	}

	idx := t.Index(position)
	if idx < 0 {
		return Placeholder, true
	}

	return t.lines[idx].Text, true
}

// Parse reads LRC-style text. Lines without a leading [mm:ss(.frac)] tag or
// with no text after the tag are skipped; Parse never fails.
func Parse(raw string) Timeline {
	if raw == "" {
		return Timeline{}
	}

	rows := strings.Split(raw, "\n")
	result := make([]TimedLine, 0, len(rows))

	for _, row := range rows {
		line, ok := parseLine(row)
		if !ok {
			continue
		}
		result = append(result, line)
	}

	return NewTimeline(result)
}

func parseLine(row string) (TimedLine, bool) {
	trimmed := strings.TrimSpace(row)
	if !strings.HasPrefix(trimmed, "[") {
		return TimedLine{}, false
	}

	end := strings.Index(trimmed, "]")
	if end < 0 {
		return TimedLine{}, false
	}

	text := strings.TrimSpace(trimmed[end+1:])
	if text == "" {
		return TimedLine{}, false
	}

	seconds, ok := parseTimestamp(trimmed[1:end])
	if !ok {
		return TimedLine{}, false
	}

	return TimedLine{TimeSeconds: seconds, Text: text}, true
}

func parseTimestamp(raw string) (float64, bool) {
	match := timestampPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, false
	}

	minutes, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, false
	}

	return minutes*60 + seconds, true
}

// Serialize writes the timeline back in the same text format Parse reads.
func (t Timeline) Serialize() string {
	var b strings.Builder
	for _, line := range t.lines {
		b.WriteString("[")
		b.WriteString(formatTimestamp(line.TimeSeconds))
		b.WriteString("]")
		b.WriteString(line.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func formatTimestamp(total float64) string {
	if total < 0 {
		total = 0
	}

	minutes := int64(total / 60)
	seconds := total - float64(minutes)*60
	if seconds < 0 {
		minutes--
		seconds = total - float64(minutes)*60
	}

	secText := strconv.FormatFloat(seconds, 'f', -1, 64)
	if seconds < 10 {
		secText = "0" + secText
	}

	return strconv.FormatInt(minutes, 10) + ":" + secText
}
