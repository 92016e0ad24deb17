package lyrics

import (
	"reflect"
	"testing"
)

func TestParseExample(t *testing.T) {
	got := Parse("[00:12.50]Hello\n[bad]ignored\n[01:05]World").Lines()
	want := []TimedLine{
		{TimeSeconds: 12.5, Text: "Hello"},
		{TimeSeconds: 65.0, Text: "World"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseSkipsInvalidLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty input", "", 0},
		{"only metadata tags", "[ar:Someone]\n[ti:Title]\n[length:03:20]\n[offset:+100]", 0},
		{"blank lines", "\n\n   \n", 0},
		{"empty text after tag", "[00:01.00]\n[00:02.00]   ", 0},
		{"no closing bracket", "[00:01.00 hello", 0},
		{"not at line start", "hello [00:01.00] world", 0},
		{"hours format rejected", "[01:02:03]too precise", 0},
		{"negative rejected", "[-1:00]nope", 0},
		{"surrounding whitespace", "   [00:03.5]  padded  ", 1},
		{"no fraction", "[2:03]ok", 1},
		{"garbage", "\x00\xff[[[]]]::..", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			timeline := Parse(tc.input)
			if timeline.Len() != tc.want {
				t.Errorf("Parse(%q) gave %d lines, want %d", tc.input, timeline.Len(), tc.want)
			}
		})
	}
}

func TestParseSortsAscending(t *testing.T) {
	lines := Parse("[00:10.00]third\n[00:01.00]first\n[00:05.00]second").Lines()
	for i := 1; i < len(lines); i++ {
		if lines[i-1].TimeSeconds > lines[i].TimeSeconds {
			t.Fatalf("lines not sorted: %+v", lines)
		}
	}
	if lines[0].Text != "first" || lines[2].Text != "third" {
		t.Errorf("unexpected order: %+v", lines)
	}
}

func TestLocateExample(t *testing.T) {
	timeline := NewTimeline([]TimedLine{
		{0.0, "A"},
		{5.0, "B"},
		{10.5, "C"},
	})

	tests := []struct {
		position float64
		want     string
	}{
		{4.9, "A"},
		{5.0, "B"},
		{-1, Placeholder},
		{100, "C"},
		{0, "A"},
		{10.49, "B"},
		{10.5, "C"},
	}

	for _, tc := range tests {
		got, ok := timeline.Locate(tc.position)
		if !ok {
			t.Fatalf("Locate(%v) reported no timeline", tc.position)
		}
		if got != tc.want {
			t.Errorf("Locate(%v) = %q, want %q", tc.position, got, tc.want)
		}
	}
}

func TestLocateEmpty(t *testing.T) {
	text, ok := Timeline{}.Locate(3)
	if ok || text != "" {
		t.Errorf("empty timeline Locate = %q, %v; want \"\", false", text, ok)
	}
}

func TestLocateDuplicateTimestamps(t *testing.T) {
	timeline := Parse("[00:01.00]first\n[00:01.00]second\n[00:02.00]third")
	got, _ := timeline.Locate(1.5)
	if got != "second" {
		t.Errorf("duplicate timestamps should resolve to the later line, got %q", got)
	}
}

func TestLocateMatchesLinearScan(t *testing.T) {
	timeline := Parse("[00:00.50]a\n[00:01.00]b\n[00:01.00]c\n[00:07.25]d\n[01:00.00]e")
	lines := timeline.Lines()

	for pos := -2.0; pos < 70; pos += 0.25 {
		want := Placeholder
		for _, line := range lines {
			if line.TimeSeconds <= pos {
				want = line.Text
			}
		}
		got, _ := timeline.Locate(pos)
		if got != want {
			t.Errorf("Locate(%v) = %q, linear scan says %q", pos, got, want)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	inputs := []string{
		"[00:12.50]Hello\n[01:05]World",
		"[00:00.01]tiny\n[10:59.999]late\n[00:59.5]almost a minute",
		"[3:07.123456]precise\n[3:07.123456]same time",
		"[ar:Meta]\n[00:05]x] with bracket",
	}

	for _, input := range inputs {
		first := Parse(input)
		second := Parse(first.Serialize())
		if !reflect.DeepEqual(first.Lines(), second.Lines()) {
			t.Errorf("round trip mismatch for %q:\n%+v\n%+v", input, first.Lines(), second.Lines())
		}
	}
}

func TestNewTimelineDoesNotAlias(t *testing.T) {
	src := []TimedLine{{1, "a"}}
	timeline := NewTimeline(src)
	src[0].Text = "mutated"

	got, _ := timeline.Locate(2)
	if got != "a" {
		t.Errorf("timeline should own its lines, got %q", got)
	}

	lines := timeline.Lines()
	lines[0].Text = "mutated"
	got, _ = timeline.Locate(2)
	if got != "a" {
		t.Errorf("Lines() should return a copy, got %q", got)
	}
}
