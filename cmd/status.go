package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/state"
)

func StatusCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "status",
		Short: "Show the saved playback state",
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpInitialize, withApp(func(a *app.App) error {
				Status(a, os.Stdout)
				return nil
			}))
		},
	}.ToCobra()
}

// Status prints the current track, queue, modes and store details.
func Status(a *app.App, w io.Writer) {
	st := a.Playback.Snapshot()
	if st.Current == nil {
		fmt.Fprintln(w, "nothing selected")
	} else {
		printTrack(w, "current  ", *st.Current)
		fmt.Fprintf(w, "position %s / %s\n", formatDuration(st.LastPosition), formatDuration(st.Current.Duration))
	}
	index := st.CurrentIndex()
	if index >= 0 {
		fmt.Fprintf(w, "queue    %d of %d\n", index+1, len(st.Queue))
	} else {
		fmt.Fprintf(w, "queue    %d tracks\n", len(st.Queue))
	}
	fmt.Fprintf(w, "shuffle  %t\nrepeat   %t\n", st.Shuffle, st.Repeat)
	fmt.Fprintf(w, "history  %d  favourites %d  playlists %d\n",
		a.History.Len(), a.Favorites.Len(), len(a.Playlists.List()))

	path := a.Config.Database
	if path == "" {
		path, _ = state.DefaultPath()
	}
	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "state    %s, %s, saved %s\n",
			path, humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
	}
}
