package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
)

type HistoryParams struct {
	Clear bool `optional:"true" help:"Forget every played track."`
}

func HistoryCmd() *cobra.Command {
	return boa.CmdT[HistoryParams]{
		Use:         "history",
		Short:       "Show recently played tracks, most recent first",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *HistoryParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpHistoryClear, withApp(func(a *app.App) error {
				History(a, os.Stdout, params.Clear)
				return nil
			}))
		},
	}.ToCobra()
}

// History prints the history, or clears it.
func History(a *app.App, w io.Writer, clear bool) {
	if clear {
		n := a.History.Len()
		a.History.Clear()
		fmt.Fprintf(w, "cleared %d tracks\n", n)
		return
	}
	for _, t := range a.History.Tracks() {
		printTrack(w, "", t)
	}
}

type FavoritesParams struct {
	Toggle string `short:"t" optional:"true" help:"Track id to add or remove." default:""`
	Clear  bool   `optional:"true" help:"Remove every favourite."`
}

func FavoritesCmd() *cobra.Command {
	return boa.CmdT[FavoritesParams]{
		Use:         "favorites",
		Aliases:     []string{"favourites"},
		Short:       "Show or edit favourite tracks",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *FavoritesParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpFavoriteToggle, withApp(func(a *app.App) error {
				return Favorites(cmd.Context(), a, os.Stdout, params)
			}))
		},
	}.ToCobra()
}

// Favorites applies the requested edit, then prints the favourites.
func Favorites(ctx context.Context, a *app.App, w io.Writer, params *FavoritesParams) error {
	switch {
	case params.Clear:
		a.Favorites.Clear()
	case params.Toggle != "":
		t, err := findTrack(ctx, a, params.Toggle)
		if err != nil {
			return err
		}
		if a.Favorites.Toggle(t) {
			printTrack(w, "added ", t)
		} else {
			printTrack(w, "removed ", t)
		}
		return nil
	}
	for _, t := range a.Favorites.Tracks() {
		printTrack(w, "", t)
	}
	return nil
}
