package playback

import (
	"time"

	"github.com/llehouerou/ripple/internal/playlist"
)

// The functions below are pure state transitions. Service applies them,
// then issues engine commands and persists the result.

// nextIndex picks the queue index to advance to.
//
// Precedence: repeat (unless forceSkip) stays on the current index, shuffle
// picks a uniformly random index other than the current one when the queue
// has more than one track, otherwise the next index wrapping to 0.
// Returns false when the queue is empty or the current track is not in it.
func nextIndex(s State, forceSkip bool, intN func(int) int) (int, bool) {
	n := len(s.Queue)
	cur := s.CurrentIndex()
	if n == 0 || cur < 0 {
		return 0, false
	}

	switch {
	case s.Repeat && !forceSkip:
		return cur, true
	case s.Shuffle:
		i := intN(n)
		for n > 1 && i == cur {
			i = intN(n)
		}
		return i, true
	default:
		return (cur + 1) % n, true
	}
}

// previousIndex returns the index before the current one, wrapping from 0
// to the last track.
func previousIndex(s State) (int, bool) {
	n := len(s.Queue)
	cur := s.CurrentIndex()
	if n == 0 || cur < 0 {
		return 0, false
	}
	if cur == 0 {
		return n - 1, true
	}
	return cur - 1, true
}

// selectTrack makes t current and playing from the start.
// Returns false, with s unchanged, when t is already current.
func selectTrack(s State, t playlist.Track) (State, bool) {
	if s.Current != nil && s.Current.ID == t.ID {
		return s, false
	}
	s.Current = &t
	s.Playing = true
	s.LastPosition = 0
	return s, true
}

// clearTrack unloads the current track.
func clearTrack(s State) State {
	s.Current = nil
	s.Playing = false
	return s
}

// setPlaying updates the playing flag. Playing without a track is refused.
func setPlaying(s State, playing bool) (State, bool) {
	if playing && s.Current == nil {
		return s, false
	}
	if s.Playing == playing {
		return s, false
	}
	s.Playing = playing
	return s, true
}

func toggleShuffle(s State) State {
	s.Shuffle = !s.Shuffle
	if s.Shuffle {
		s.Repeat = false
	}
	return s
}

func toggleRepeat(s State) State {
	s.Repeat = !s.Repeat
	if s.Repeat {
		s.Shuffle = false
	}
	return s
}

// applyModes sets shuffle and repeat from startup preferences.
// Shuffle wins when both are requested.
func applyModes(s State, shuffle, repeat bool) State {
	s.Shuffle = shuffle
	s.Repeat = repeat && !shuffle
	return s
}

func setPosition(s State, pos time.Duration) State {
	s.LastPosition = max(pos, 0)
	return s
}
