// Package search ranks tracks against free-text queries using trigram
// coverage, so "moment notice" finds "Moment's Notice" and "beyonce"
// finds "Beyoncé".
package search

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/llehouerou/ripple/internal/playlist"
)

// minCoverage is the fraction of a query word's trigrams an item must hold.
const minCoverage = 0.4

// Match is a scored hit into the indexed slice.
type Match struct {
	Index int
	Score float64
}

// Index holds the normalized text and trigrams of a fixed track list.
type Index struct {
	tracks []playlist.Track
	text   []string
	grams  []map[string]struct{}
}

// NewIndex indexes title, artist and album of every track.
func NewIndex(tracks []playlist.Track) *Index {
	ix := &Index{
		tracks: playlist.Clone(tracks),
		text:   make([]string, len(tracks)),
		grams:  make([]map[string]struct{}, len(tracks)),
	}
	for i, t := range tracks {
		ix.text[i] = normalize(strings.Join([]string{t.Title, t.Artist, t.Album}, " "))
		ix.grams[i] = trigrams(ix.text[i])
	}
	return ix
}

// Search returns the tracks matching every word of query, best first.
// An empty query returns every track in index order.
func (ix *Index) Search(query string) []playlist.Track {
	matches := ix.Match(query)
	out := make([]playlist.Track, len(matches))
	for i, m := range matches {
		out[i] = ix.tracks[m.Index]
	}
	return out
}

// Match scores every track against query. Ties keep index order.
func (ix *Index) Match(query string) []Match {
	words := strings.Fields(normalize(query))
	if len(words) == 0 {
		all := make([]Match, len(ix.tracks))
		for i := range all {
			all[i] = Match{Index: i}
		}
		return all
	}

	wordGrams := make([]map[string]struct{}, len(words))
	for i, w := range words {
		wordGrams[i] = trigrams(w)
	}

	var matches []Match
	for i := range ix.tracks {
		if score := ix.score(i, words, wordGrams); score > 0 {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return matches
}

// score averages per-word similarity; any word that misses zeroes it.
func (ix *Index) score(i int, words []string, wordGrams []map[string]struct{}) float64 {
	text := ix.text[i]
	total := 0.0
	for w, word := range words {
		// Too short for trigrams.
		if len([]rune(word)) <= 2 {
			if !strings.Contains(text, word) {
				return 0
			}
			total++
			continue
		}

		sim := coverage(wordGrams[w], ix.grams[i])
		if sim < minCoverage {
			return 0
		}
		if strings.Contains(text, word) {
			sim += 0.5
		}
		total += sim
	}
	return total / float64(len(words))
}

// normalize lowercases s and strips diacritics and apostrophes.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.NewReplacer("'", "", "’", "").Replace(folded)
	return strings.ToLower(folded)
}

// trigrams returns the rune trigrams of s padded with two spaces on each
// side. All-space trigrams are skipped.
func trigrams(s string) map[string]struct{} {
	if s == "" {
		return nil
	}
	r := []rune("  " + s + "  ")
	out := make(map[string]struct{}, len(r))
	for i := 0; i+3 <= len(r); i++ {
		tri := string(r[i : i+3])
		if strings.TrimSpace(tri) != "" {
			out[tri] = struct{}{}
		}
	}
	return out
}

// coverage is |query ∩ item| / |query|.
func coverage(query, item map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hit := 0
	for tri := range query {
		if _, ok := item[tri]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(query))
}
