package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/playlists"
)

func PlaylistsCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:     "playlists",
		Aliases: []string{"pl"},
		Short:   "Manage playlists",
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaylistCreate, withApp(func(a *app.App) error {
				ListPlaylists(a, os.Stdout)
				return nil
			}))
		},
		SubCmds: []*cobra.Command{
			playlistCreateCmd(),
			playlistDeleteCmd(),
			playlistRenameCmd(),
			playlistAddCmd(),
			playlistRemoveCmd(),
			playlistFindCmd(),
		},
	}.ToCobra()
}

// ListPlaylists prints every playlist with its tracks.
func ListPlaylists(a *app.App, w io.Writer) {
	for _, pl := range a.Playlists.List() {
		fmt.Fprintf(w, "%s  %s (%d)\n", pl.ID, pl.Name, len(pl.Songs))
		for _, t := range pl.Songs {
			printTrack(w, "    ", t)
		}
	}
}

type playlistCreateParams struct {
	Name string `pos:"true" required:"true" help:"Playlist name."`
}

func playlistCreateCmd() *cobra.Command {
	return boa.CmdT[playlistCreateParams]{
		Use:         "create",
		Short:       "Create an empty playlist",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *playlistCreateParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaylistCreate, withApp(func(a *app.App) error {
				CreatePlaylist(a, os.Stdout, params.Name)
				return nil
			}))
		},
	}.ToCobra()
}

// CreatePlaylist creates an empty playlist under a fresh id and returns it.
func CreatePlaylist(a *app.App, w io.Writer, name string) string {
	id := uuid.NewString()
	a.Playlists.Create(playlists.Playlist{ID: id, Name: name, Songs: []playlist.Track{}})
	fmt.Fprintln(w, id)
	return id
}

type playlistIDParams struct {
	ID string `pos:"true" required:"true" help:"Playlist id."`
}

func playlistDeleteCmd() *cobra.Command {
	return boa.CmdT[playlistIDParams]{
		Use:         "delete",
		Aliases:     []string{"rm"},
		Short:       "Delete a playlist",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *playlistIDParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaylistDelete, withApp(func(a *app.App) error {
				if _, ok := a.Playlists.Get(params.ID); !ok {
					return fmt.Errorf("playlist %q not found", params.ID)
				}
				a.Playlists.Delete(params.ID)
				return nil
			}))
		},
	}.ToCobra()
}

type playlistRenameParams struct {
	ID   string `pos:"true" required:"true" help:"Playlist id."`
	Name string `pos:"true" required:"true" help:"New name."`
}

func playlistRenameCmd() *cobra.Command {
	return boa.CmdT[playlistRenameParams]{
		Use:         "rename",
		Short:       "Rename a playlist",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *playlistRenameParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaylistRename, withApp(func(a *app.App) error {
				if !a.Playlists.Rename(params.ID, params.Name) {
					return fmt.Errorf("playlist %q not found", params.ID)
				}
				return nil
			}))
		},
	}.ToCobra()
}

type playlistTracksParams struct {
	ID     string   `pos:"true" required:"true" help:"Playlist id."`
	Tracks []string `pos:"true" required:"true" help:"Track ids."`
}

func playlistAddCmd() *cobra.Command {
	return boa.CmdT[playlistTracksParams]{
		Use:         "add",
		Short:       "Append tracks to a playlist, skipping those already in it",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *playlistTracksParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaylistAddTrack, withApp(func(a *app.App) error {
				return AddToPlaylist(cmd.Context(), a, params.ID, params.Tracks)
			}))
		},
	}.ToCobra()
}

// AddToPlaylist resolves trackIDs and appends them to the playlist.
func AddToPlaylist(ctx context.Context, a *app.App, playlistID string, trackIDs []string) error {
	if _, ok := a.Playlists.Get(playlistID); !ok {
		return fmt.Errorf("playlist %q not found", playlistID)
	}
	tracks := make([]playlist.Track, 0, len(trackIDs))
	for _, id := range trackIDs {
		t, err := findTrack(ctx, a, id)
		if err != nil {
			return err
		}
		tracks = append(tracks, t)
	}
	a.Playlists.ReplaceAll(playlists.AddTracks(a.Playlists.List(), []string{playlistID}, tracks))
	return nil
}

func playlistRemoveCmd() *cobra.Command {
	return boa.CmdT[playlistTracksParams]{
		Use:         "remove",
		Short:       "Remove tracks from a playlist",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *playlistTracksParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaylistRemove, withApp(func(a *app.App) error {
				for _, id := range params.Tracks {
					a.Playlists.RemoveTrack(params.ID, id)
				}
				return nil
			}))
		},
	}.ToCobra()
}

type playlistFindParams struct {
	Track string `pos:"true" required:"true" help:"Track id."`
}

func playlistFindCmd() *cobra.Command {
	return boa.CmdT[playlistFindParams]{
		Use:         "find",
		Short:       "Show the first playlist containing a track",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *playlistFindParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaylistAddTrack, withApp(func(a *app.App) error {
				pl, ok := a.Playlists.FindContaining(params.Track)
				if !ok {
					return fmt.Errorf("no playlist contains %q", params.Track)
				}
				fmt.Fprintf(os.Stdout, "%s  %s\n", pl.ID, pl.Name)
				return nil
			}))
		},
	}.ToCobra()
}
