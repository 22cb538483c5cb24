package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/lyrics"
	"github.com/llehouerou/ripple/internal/playlist"
)

type LyricsParams struct {
	Track string `pos:"true" optional:"true" help:"Track id. Defaults to the current track."`
}

func LyricsCmd() *cobra.Command {
	return boa.CmdT[LyricsParams]{
		Use:         "lyrics",
		Short:       "Print the lyrics of a track",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *LyricsParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpLyricsFetch, withApp(func(a *app.App) error {
				return Lyrics(cmd.Context(), a, os.Stdout, params.Track)
			}))
		},
	}.ToCobra()
}

// Lyrics prints the lyrics of the track with the given id, or of the
// current track when id is empty. For the current track the line at the
// saved position is marked.
func Lyrics(ctx context.Context, a *app.App, w io.Writer, id string) error {
	var (
		t   playlist.Track
		pos = time.Duration(-1)
	)
	if id == "" {
		st := a.Playback.Snapshot()
		if st.Current == nil {
			return errors.New("nothing is playing")
		}
		t, pos = *st.Current, st.LastPosition
	} else {
		var err error
		if t, err = findTrack(ctx, a, id); err != nil {
			return err
		}
	}

	l, origin, err := a.Lyrics.Fetch(ctx, t)
	if err != nil {
		return err
	}
	marked := -1
	if pos >= 0 {
		marked = l.LineAt(pos)
	}
	printLyrics(w, t, l, origin, marked)
	return nil
}

func printLyrics(w io.Writer, t playlist.Track, l *lyrics.Lyrics, origin lyrics.Origin, marked int) {
	fmt.Fprintf(w, "%s - %s (%s)\n\n", t.Title, t.DisplayArtist(), origin)
	synced := l.IsSynced()
	for i, line := range l.Lines {
		mark := "  "
		if i == marked {
			mark = "> "
		}
		if synced {
			fmt.Fprintf(w, "%s[%s] %s\n", mark, formatDuration(line.Time), line.Text)
		} else {
			fmt.Fprintf(w, "%s%s\n", mark, line.Text)
		}
	}
}
