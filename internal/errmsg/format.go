// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Media source operations
	OpSourceScan   Op = "scan media sources"
	OpSourceAssets Op = "list album tracks"

	// Playlist operations
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistRename   Op = "rename playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"
	OpPlaylistMove     Op = "move playlist item"

	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackResume Op = "resume playback"

	// Favorites and history
	OpFavoriteToggle Op = "update favorites"
	OpHistoryClear   Op = "clear history"

	// Settings
	OpSettingsToggle Op = "toggle setting"
	OpSettingsColor  Op = "set accent color"

	// Covers
	OpCoverSet Op = "set custom cover"

	// Lyrics
	OpLyricsFetch Op = "fetch lyrics"

	// Last.fm
	OpLastfmAuth  Op = "link Last.fm account"
	OpLastfmRetry Op = "submit pending scrobbles"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
