package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
)

type PlayParams struct {
	Album string `short:"a" optional:"true" help:"Album id to play (see scan). Defaults to the first album." default:""`
	Index int    `short:"i" optional:"true" help:"Position in the album to start from." default:"0"`
}

func PlayCmd() *cobra.Command {
	return boa.CmdT[PlayParams]{
		Use:         "play",
		Short:       "Play an album from the media sources",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *PlayParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaybackStart, withApp(func(a *app.App) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				if err := StartAlbum(ctx, a, params.Album, params.Index); err != nil {
					return err
				}
				return listen(ctx, a, os.Stdout, false)
			}))
		},
	}.ToCobra()
}

func ResumeCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "resume",
		Short: "Continue the previous session where it stopped",
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpPlaybackResume, withApp(func(a *app.App) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				if cur := a.Playback.CurrentTrack(); cur != nil {
					printTrack(os.Stdout, "resuming ", *cur)
				}
				return listen(ctx, a, os.Stdout, true)
			}))
		},
	}.ToCobra()
}

// StartAlbum queues the tracks of albumID and plays the one at index.
// An empty albumID selects the first album.
func StartAlbum(ctx context.Context, a *app.App, albumID string, index int) error {
	if albumID == "" {
		albums, err := a.Media.Albums(ctx)
		if err != nil {
			return err
		}
		if len(albums) == 0 {
			return errors.New("no albums found in the configured library sources")
		}
		albumID = albums[0].ID
	}

	tracks, err := a.Media.Assets(ctx, albumID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(tracks) {
		return fmt.Errorf("index %d out of range, album has %d tracks", index, len(tracks))
	}
	a.Playback.PlayQueue(tracks, index)
	// PlayQueue ignores a track that is already current, as after a restart.
	a.Playback.SetIsPlaying(true)
	return nil
}

// listen runs the app and prints track changes and errors until ctx ends.
func listen(ctx context.Context, a *app.App, w io.Writer, resume bool) error {
	sub := a.Playback.Subscribe()
	go func() {
		for {
			select {
			case <-sub.Done:
				return
			case <-ctx.Done():
				return
			case e := <-sub.TrackChanged:
				if e.Current != nil {
					printTrack(w, "now playing ", *e.Current)
				}
			case e := <-sub.Error:
				fmt.Fprintln(w, errmsg.FormatWith(errmsg.Op(e.Operation), e.TrackID, e.Err))
			}
		}
	}()

	err := a.Run(ctx, resume)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
