package playlists

import "github.com/llehouerou/ripple/internal/playlist"

// The helpers below build a new registry slice for ReplaceAll. They hold
// the duplicate filtering the registry itself does not enforce.

// AddTracks returns a copy of playlists where every playlist whose id is
// in targetIDs has tracks appended, skipping tracks it already holds.
func AddTracks(playlists []Playlist, targetIDs []string, tracks []playlist.Track) []Playlist {
	targets := make(map[string]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		targets[id] = struct{}{}
	}

	result := clonePlaylists(playlists)
	for i := range result {
		if _, ok := targets[result[i].ID]; ok {
			result[i].Songs = playlist.AppendUnique(result[i].Songs, tracks...)
		}
	}
	return result
}

// RemoveTrack returns a copy of playlists with trackID removed from the
// playlist identified by playlistID.
func RemoveTrack(playlists []Playlist, playlistID, trackID string) []Playlist {
	result := clonePlaylists(playlists)
	for i := range result {
		if result[i].ID == playlistID {
			result[i].Songs = playlist.Without(result[i].Songs, trackID)
		}
	}
	return result
}

// MoveTrack returns a copy of playlists with one track of playlistID moved
// from index from to index to. Returns false if the playlist or an index
// is invalid.
func MoveTrack(playlists []Playlist, playlistID string, from, to int) ([]Playlist, bool) {
	result := clonePlaylists(playlists)
	for i := range result {
		if result[i].ID != playlistID {
			continue
		}
		moved, ok := playlist.Move(result[i].Songs, from, to)
		if !ok {
			return nil, false
		}
		result[i].Songs = moved
		return result, true
	}
	return nil, false
}
