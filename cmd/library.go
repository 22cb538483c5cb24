package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/search"
)

func ScanCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "scan",
		Short: "List the albums found in the library sources",
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpSourceScan, withApp(func(a *app.App) error {
				return Scan(cmd.Context(), a, os.Stdout)
			}))
		},
	}.ToCobra()
}

type TracksParams struct {
	Album string `pos:"true" required:"true" help:"Album id (see scan)."`
}

func TracksCmd() *cobra.Command {
	return boa.CmdT[TracksParams]{
		Use:         "tracks",
		Short:       "List the tracks of an album",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *TracksParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpSourceAssets, withApp(func(a *app.App) error {
				return Tracks(cmd.Context(), a, os.Stdout, params.Album)
			}))
		},
	}.ToCobra()
}

// Scan prints one line per album followed by a summary.
func Scan(ctx context.Context, a *app.App, w io.Writer) error {
	albums, err := a.Media.Albums(ctx)
	if err != nil {
		return err
	}
	total := 0
	for _, al := range albums {
		fmt.Fprintf(w, "%s  %-30s %4d  %s\n", al.ID, al.Title, al.AssetCount, al.Path)
		total += al.AssetCount
	}
	fmt.Fprintf(w, "%s albums, %s tracks\n",
		humanize.Comma(int64(len(albums))), humanize.Comma(int64(total)))
	return nil
}

// Tracks prints the tracks of albumID with their durations.
func Tracks(ctx context.Context, a *app.App, w io.Writer, albumID string) error {
	tracks, err := a.Media.Assets(ctx, albumID)
	if err != nil {
		return err
	}
	var total time.Duration
	for i, t := range tracks {
		printTrack(w, fmt.Sprintf("%3d  %s  ", i, formatDuration(t.Duration)), t)
		total += t.Duration
	}
	fmt.Fprintf(w, "%d tracks, %s\n", len(tracks), formatDuration(total))
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// findTrack looks a track up by id in the queue, the collections and the
// media sources, in that order.
func findTrack(ctx context.Context, a *app.App, id string) (playlist.Track, error) {
	pools := [][]playlist.Track{
		a.Playback.Queue(),
		a.History.Tracks(),
		a.Favorites.Tracks(),
	}
	for _, pl := range a.Playlists.List() {
		pools = append(pools, pl.Songs)
	}
	for _, pool := range pools {
		if i := playlist.IndexOf(pool, id); i >= 0 {
			return pool[i], nil
		}
	}

	albums, err := a.Media.Albums(ctx)
	if err != nil {
		return playlist.Track{}, err
	}
	for _, al := range albums {
		tracks, err := a.Media.Assets(ctx, al.ID)
		if err != nil {
			return playlist.Track{}, err
		}
		if i := playlist.IndexOf(tracks, id); i >= 0 {
			return tracks[i], nil
		}
	}
	return playlist.Track{}, fmt.Errorf("track %q not found", id)
}

type SearchParams struct {
	Query []string `pos:"true" required:"true" help:"Words to look for in title, artist and album."`
	Play  bool     `short:"p" optional:"true" help:"Play the results as a new queue."`
}

func SearchCmd() *cobra.Command {
	return boa.CmdT[SearchParams]{
		Use:         "search",
		Short:       "Find tracks in the library sources",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *SearchParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpSourceScan, withApp(func(a *app.App) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				found, err := Search(ctx, a, os.Stdout, strings.Join(params.Query, " "))
				if err != nil || !params.Play || len(found) == 0 {
					return err
				}
				a.Playback.PlayQueue(found, 0)
				return listen(ctx, a, os.Stdout, false)
			}))
		},
	}.ToCobra()
}

// Search prints the library tracks matching query, best first.
func Search(ctx context.Context, a *app.App, w io.Writer, query string) ([]playlist.Track, error) {
	tracks, err := a.Media.Assets(ctx, "")
	if err != nil {
		return nil, err
	}
	found := search.NewIndex(tracks).Search(query)
	for _, t := range found {
		printTrack(w, "", t)
	}
	fmt.Fprintf(w, "%d matches\n", len(found))
	return found, nil
}
