package lyrics

import (
	"strings"
	"testing"
	"time"
)

func TestParseLRC_Metadata(t *testing.T) {
	l, err := ParseLRC(strings.NewReader(`[ar:Miles Davis]
[ti:So What]
[al:Kind of Blue]
[by:someone]
[00:12.34]First line`))
	if err != nil {
		t.Fatalf("ParseLRC() error: %v", err)
	}
	if l.Artist != "Miles Davis" || l.Title != "So What" || l.Album != "Kind of Blue" {
		t.Errorf("metadata = %q / %q / %q", l.Artist, l.Title, l.Album)
	}
	if len(l.Lines) != 1 || l.Lines[0].Text != "First line" {
		t.Errorf("Lines = %+v", l.Lines)
	}
}

func TestParseLRC_Timestamps(t *testing.T) {
	tests := []struct {
		line string
		want time.Duration
	}{
		{"[00:12]Text", 12 * time.Second},
		{"[00:12.5]Text", 12*time.Second + 500*time.Millisecond},
		{"[00:12.34]Text", 12*time.Second + 340*time.Millisecond},
		{"[00:12.345]Text", 12*time.Second + 345*time.Millisecond},
		{"[00:12:34]Text", 12*time.Second + 340*time.Millisecond},
		{"[03:05.00]Text", 3*time.Minute + 5*time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			l, err := ParseLRC(strings.NewReader(tt.line))
			if err != nil {
				t.Fatal(err)
			}
			if len(l.Lines) != 1 {
				t.Fatalf("got %d lines, want 1", len(l.Lines))
			}
			if l.Lines[0].Time != tt.want {
				t.Errorf("Time = %v, want %v", l.Lines[0].Time, tt.want)
			}
		})
	}
}

func TestParseLRC_RepeatedLineIsSorted(t *testing.T) {
	l, err := ParseLRC(strings.NewReader(`[00:10.00]Verse
[00:30.00][01:30.00]Chorus
[01:00.00]Bridge`))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Verse", "Chorus", "Bridge", "Chorus"}
	if len(l.Lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(l.Lines), len(want))
	}
	for i, text := range want {
		if l.Lines[i].Text != text {
			t.Errorf("Lines[%d] = %q, want %q", i, l.Lines[i].Text, text)
		}
	}
}

func TestParseLRC_SkipsBlankAndUntimedLines(t *testing.T) {
	l, err := ParseLRC(strings.NewReader("\n   \nno timestamp\n[00:01.00]Kept\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Lines) != 1 || l.Lines[0].Text != "Kept" {
		t.Errorf("Lines = %+v", l.Lines)
	}
}

func TestFromPlain(t *testing.T) {
	l := FromPlain("One\n\n  Two  \n")

	if len(l.Lines) != 2 || l.Lines[1].Text != "Two" {
		t.Fatalf("Lines = %+v", l.Lines)
	}
	if l.IsSynced() {
		t.Error("plain lyrics should not be synced")
	}
}

func TestLineAt(t *testing.T) {
	l := &Lyrics{Lines: []Line{
		{Time: 10 * time.Second, Text: "a"},
		{Time: 20 * time.Second, Text: "b"},
		{Time: 30 * time.Second, Text: "c"},
	}}

	tests := []struct {
		pos  time.Duration
		want int
	}{
		{0, -1},
		{9 * time.Second, -1},
		{10 * time.Second, 0},
		{25 * time.Second, 1},
		{30 * time.Second, 2},
		{time.Hour, 2},
	}
	for _, tt := range tests {
		if got := l.LineAt(tt.pos); got != tt.want {
			t.Errorf("LineAt(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestLineAt_Unsynced(t *testing.T) {
	if got := FromPlain("a\nb").LineAt(time.Minute); got != -1 {
		t.Errorf("LineAt() = %d, want -1", got)
	}
	if got := (&Lyrics{}).LineAt(0); got != -1 {
		t.Errorf("empty LineAt() = %d, want -1", got)
	}
}
