package playlist

// Helpers over ordered track sequences. None of them enforce uniqueness
// on their own; callers pick the operation that matches their invariant.

// IndexOf returns the index of the first track with the given id, or -1.
func IndexOf(tracks []Track, id string) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether a track with the given id is present.
func Contains(tracks []Track, id string) bool {
	return IndexOf(tracks, id) >= 0
}

// Clone returns a copy of tracks. A nil input yields an empty slice.
func Clone(tracks []Track) []Track {
	result := make([]Track, len(tracks))
	copy(result, tracks)
	return result
}

// Without returns a new slice with every track matching id removed.
func Without(tracks []Track, id string) []Track {
	result := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != id {
			result = append(result, t)
		}
	}
	return result
}

// MoveToFront returns a new slice with t first and any other entry
// sharing its id removed.
func MoveToFront(tracks []Track, t Track) []Track {
	result := make([]Track, 0, len(tracks)+1)
	result = append(result, t)
	for _, existing := range tracks {
		if existing.ID != t.ID {
			result = append(result, existing)
		}
	}
	return result
}

// AppendUnique returns a new slice with the tracks from add appended,
// skipping ids already present in tracks or earlier in add.
func AppendUnique(tracks []Track, add ...Track) []Track {
	seen := make(map[string]struct{}, len(tracks)+len(add))
	result := make([]Track, 0, len(tracks)+len(add))
	for _, t := range tracks {
		seen[t.ID] = struct{}{}
		result = append(result, t)
	}
	for _, t := range add {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		result = append(result, t)
	}
	return result
}

// Move returns a new slice with the track at fromIndex moved to toIndex.
// Returns false if either index is out of bounds.
func Move(tracks []Track, fromIndex, toIndex int) ([]Track, bool) {
	if fromIndex < 0 || fromIndex >= len(tracks) {
		return nil, false
	}
	if toIndex < 0 || toIndex >= len(tracks) {
		return nil, false
	}
	result := Clone(tracks)
	if fromIndex == toIndex {
		return result, true
	}

	t := result[fromIndex]
	result = append(result[:fromIndex], result[fromIndex+1:]...)
	result = append(result[:toIndex], append([]Track{t}, result[toIndex:]...)...)
	return result, true
}
