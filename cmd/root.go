// Package cmd holds the ripple command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/config"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/logger"
	"github.com/llehouerou/ripple/internal/player"
	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/stderr"
)

var configPath string

// Root returns the top-level command.
func Root(version string) *cobra.Command {
	root := boa.CmdT[boa.NoParams]{
		Use:     "ripple",
		Short:   "Local music player with a persistent playback queue",
		Version: version,
		SubCmds: []*cobra.Command{
			PlayCmd(),
			ResumeCmd(),
			ScanCmd(),
			TracksCmd(),
			SearchCmd(),
			StatusCmd(),
			HistoryCmd(),
			FavoritesCmd(),
			PlaylistsCmd(),
			SettingsCmd(),
			CoverCmd(),
			LyricsCmd(),
			LastfmCmd(),
		},
	}.ToCobra()
	root.PersistentFlags().StringVar(&configPath, "config", "", "Extra config file, loaded after the standard locations.")
	return root
}

func paramEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

// exitOn prints err formatted for op and exits non-zero.
func exitOn(op errmsg.Op, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, errmsg.Format(op, err))
	os.Exit(1)
}

// withApp builds and hydrates an App, runs fn and tears everything down.
// Hydration failures are logged; the stores keep their defaults.
func withApp(fn func(a *app.App) error) error {
	engine := player.New()
	var extra []string
	if configPath != "" {
		extra = append(extra, configPath)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		engine.Close()
		return fmt.Errorf("load config: %w", err)
	}

	lc := cfg.GetLogConfig()
	logCloser, err := logger.Init(logger.Config{Level: lc.Level, Output: lc.Output})
	if err != nil {
		engine.Close()
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()

	// Audio backends print to fd 2; keep that out of the terminal when
	// logs go to a file.
	if !isStdStream(lc.Output) {
		restore, err := stderr.Redirect(func(line string) {
			log.Warn().Str("component", "audio").Msg(line)
		})
		if err != nil {
			log.Warn().Err(err).Str("component", "cli").Msg("stderr capture unavailable")
		} else {
			defer restore()
		}
	}

	a, err := app.New(cfg, engine)
	if err != nil {
		engine.Close()
		return err
	}
	if err := a.Hydrate(); err != nil {
		log.Warn().Err(err).Str("component", "cli").Msg("some state could not be restored")
	}

	return errors.Join(fn(a), a.Close())
}

func isStdStream(output string) bool {
	switch strings.ToLower(output) {
	case "", "stderr", "stdout":
		return true
	}
	return false
}

func printTrack(w io.Writer, prefix string, t playlist.Track) {
	fmt.Fprintf(w, "%s%s  %s - %s\n", prefix, t.ID, t.Title, t.DisplayArtist())
}
