package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
	"github.com/llehouerou/ripple/internal/lastfm"
)

const authTimeout = 5 * time.Minute

var errLastfmNotConfigured = errors.New("set lastfm.api_key and lastfm.api_secret in config.toml")

func LastfmCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "lastfm",
		Short: "Show the Last.fm scrobbling status",
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpLastfmAuth, withApp(func(a *app.App) error {
				return LastfmStatus(a, os.Stdout)
			}))
		},
		SubCmds: []*cobra.Command{
			boa.CmdT[boa.NoParams]{
				Use:   "login",
				Short: "Link a Last.fm account",
				RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
					exitOn(errmsg.OpLastfmAuth, withApp(func(a *app.App) error {
						ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
						defer stop()
						return LinkLastfm(ctx, a, os.Stdout, lastfm.OpenBrowser)
					}))
				},
			}.ToCobra(),
			boa.CmdT[boa.NoParams]{
				Use:   "logout",
				Short: "Unlink the Last.fm account",
				RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
					exitOn(errmsg.OpLastfmAuth, withApp(func(a *app.App) error {
						return UnlinkLastfm(a, os.Stdout)
					}))
				},
			}.ToCobra(),
			boa.CmdT[boa.NoParams]{
				Use:   "retry",
				Short: "Submit the scrobbles that failed earlier",
				RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
					exitOn(errmsg.OpLastfmRetry, withApp(func(a *app.App) error {
						return RetryScrobbles(a, os.Stdout)
					}))
				},
			}.ToCobra(),
		},
	}.ToCobra()
}

// LastfmStatus prints the linked account and the pending scrobbles.
func LastfmStatus(a *app.App, w io.Writer) error {
	if a.Scrobbler == nil {
		fmt.Fprintln(w, "not configured")
		return nil
	}
	session, ok, err := lastfm.LoadSession(a.State)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "not linked")
	} else if session.LinkedAt.IsZero() {
		fmt.Fprintf(w, "linked as %s\n", session.Username)
	} else {
		fmt.Fprintf(w, "linked as %s %s\n", session.Username, humanize.Time(session.LinkedAt))
	}
	fmt.Fprintf(w, "%d pending scrobbles\n", len(a.Scrobbler.Pending()))
	return nil
}

// LinkLastfm runs the browser authorization flow and stores the session.
func LinkLastfm(ctx context.Context, a *app.App, w io.Writer, openURL func(string) error) error {
	if a.Lastfm == nil {
		return errLastfmNotConfigured
	}

	srv, err := lastfm.StartAuthServer(fmt.Sprintf("127.0.0.1:%d", lastfm.AuthCallbackPort))
	if err != nil {
		return err
	}
	defer srv.Shutdown()

	token, err := a.Lastfm.GetToken()
	if err != nil {
		return err
	}
	url := a.Lastfm.GetAuthURL(token, srv.CallbackURL())
	fmt.Fprintf(w, "Authorize ripple at:\n  %s\n", url)
	if err := openURL(url); err != nil {
		log.Debug().Err(err).Str("component", "lastfm").Msg("could not open browser")
	}

	authorized, err := srv.WaitForToken(ctx, authTimeout)
	if err != nil {
		return err
	}
	session, err := a.Lastfm.GetSession(authorized)
	if err != nil {
		return err
	}
	session.LinkedAt = time.Now()
	lastfm.SaveSession(a.State, session)
	fmt.Fprintf(w, "linked as %s\n", session.Username)
	return nil
}

// UnlinkLastfm forgets the stored session.
func UnlinkLastfm(a *app.App, w io.Writer) error {
	if a.Lastfm == nil {
		return errLastfmNotConfigured
	}
	lastfm.SaveSession(a.State, lastfm.Session{})
	a.Lastfm.SetSessionKey("")
	fmt.Fprintln(w, "unlinked")
	return nil
}

// RetryScrobbles submits the pending scrobbles once.
func RetryScrobbles(a *app.App, w io.Writer) error {
	if a.Scrobbler == nil {
		return errLastfmNotConfigured
	}
	if !a.Lastfm.IsAuthenticated() {
		return lastfm.ErrNotAuthenticated
	}
	ok, failed := a.Scrobbler.Retry()
	fmt.Fprintf(w, "%d submitted, %d failed, %d pending\n", ok, failed, len(a.Scrobbler.Pending()))
	return nil
}
