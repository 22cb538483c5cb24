// Package lyrics finds and parses lyrics for the playing track.
package lyrics

import (
	"bufio"
	"cmp"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Line is a single lyric line. Time is zero for unsynced lyrics.
type Line struct {
	Time time.Duration
	Text string
}

// Lyrics holds parsed lyrics with optional metadata.
type Lyrics struct {
	Lines  []Line
	Title  string
	Artist string
	Album  string
}

var (
	// [mm:ss], [mm:ss.xx], [mm:ss.xxx] or [mm:ss:xx]
	timestampRe = regexp.MustCompile(`\[(\d+):(\d+)(?:[.:](\d+))?\]`)
	// [ar:Artist Name]
	metadataRe = regexp.MustCompile(`^\[([a-zA-Z]+):(.+)\]$`)
)

// ParseLRC reads LRC lyrics. A line may carry several timestamps; it is
// repeated once per timestamp. Lines come back sorted by time.
func ParseLRC(r io.Reader) (*Lyrics, error) {
	l := &Lyrics{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		l.parseLine(strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(l.Lines, func(a, b Line) int { return cmp.Compare(a.Time, b.Time) })
	return l, nil
}

// FromPlain builds unsynced lyrics from plain text, one line per
// non-blank line.
func FromPlain(text string) *Lyrics {
	l := &Lyrics{}
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			l.Lines = append(l.Lines, Line{Text: line})
		}
	}
	return l
}

func (l *Lyrics) parseLine(line string) {
	if line == "" {
		return
	}
	if m := metadataRe.FindStringSubmatch(line); m != nil {
		value := strings.TrimSpace(m[2])
		switch strings.ToLower(m[1]) {
		case "ar":
			l.Artist = value
		case "ti":
			l.Title = value
		case "al":
			l.Album = value
		}
		return
	}

	stamps := timestampRe.FindAllStringSubmatch(line, -1)
	if len(stamps) == 0 {
		return
	}
	locs := timestampRe.FindAllStringIndex(line, -1)
	text := strings.TrimSpace(line[locs[len(locs)-1][1]:])
	for _, m := range stamps {
		l.Lines = append(l.Lines, Line{Time: stampDuration(m), Text: text})
	}
}

// stampDuration converts a timestampRe match. The fraction is read as
// centiseconds when it has two digits, milliseconds otherwise.
func stampDuration(m []string) time.Duration {
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	d := time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if m[3] == "" {
		return d
	}
	frac, _ := strconv.Atoi(m[3])
	switch len(m[3]) {
	case 1:
		return d + time.Duration(frac)*100*time.Millisecond
	case 2:
		return d + time.Duration(frac)*10*time.Millisecond
	default:
		return d + time.Duration(frac)*time.Millisecond
	}
}

// IsSynced reports whether any line carries a timestamp.
func (l *Lyrics) IsSynced() bool {
	return slices.ContainsFunc(l.Lines, func(line Line) bool { return line.Time > 0 })
}

// LineAt returns the index of the line active at pos, or -1 before the
// first line and for unsynced lyrics.
func (l *Lyrics) LineAt(pos time.Duration) int {
	if !l.IsSynced() {
		return -1
	}
	// First line starting after pos.
	i, _ := slices.BinarySearchFunc(l.Lines, pos, func(line Line, t time.Duration) int {
		if line.Time <= t {
			return -1
		}
		return 1
	})
	return i - 1
}
