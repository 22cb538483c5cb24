package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/ripple/internal/app"
	"github.com/llehouerou/ripple/internal/errmsg"
)

func SettingsCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "settings",
		Short: "Show or change preferences",
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpSettingsToggle, withApp(func(a *app.App) error {
				ShowSettings(a, os.Stdout)
				return nil
			}))
		},
		SubCmds: []*cobra.Command{
			settingsToggleCmd(),
			settingsColorCmd(),
			settingsResetCmd(),
		},
	}.ToCobra()
}

// ShowSettings prints every preference.
func ShowSettings(a *app.App, w io.Writer) {
	s := a.Settings.Get()
	fmt.Fprintf(w, "alwaysShuffle       %t\n", s.AlwaysShuffle)
	fmt.Fprintf(w, "alwaysRepeat        %t\n", s.AlwaysRepeat)
	fmt.Fprintf(w, "autoplayNext        %t\n", s.AutoplayNext)
	fmt.Fprintf(w, "showRandomCoverArt  %t\n", s.ShowRandomCoverArt)
	fmt.Fprintf(w, "resumeOnStartup     %t\n", s.ResumeOnStartup)
	fmt.Fprintf(w, "accentColor         %s\n", s.AccentColor)
	fmt.Fprintf(w, "accentPurple        %s\n", s.AccentPurple)
	fmt.Fprintf(w, "accentPink          %s\n", s.AccentPink)
}

type settingsToggleParams struct {
	Name string `pos:"true" required:"true" help:"Flag name, e.g. autoplayNext."`
}

func settingsToggleCmd() *cobra.Command {
	return boa.CmdT[settingsToggleParams]{
		Use:         "toggle",
		Short:       "Flip a boolean preference",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *settingsToggleParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpSettingsToggle, withApp(func(a *app.App) error {
				v, err := a.Settings.Toggle(params.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "%s  %t\n", params.Name, v)
				return nil
			}))
		},
	}.ToCobra()
}

type settingsColorParams struct {
	Name string `pos:"true" required:"true" help:"accentColor, accentPurple or accentPink."`
	Hex  string `pos:"true" required:"true" help:"Color as #rrggbb."`
}

func settingsColorCmd() *cobra.Command {
	return boa.CmdT[settingsColorParams]{
		Use:         "color",
		Short:       "Set an accent color",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *settingsColorParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpSettingsColor, withApp(func(a *app.App) error {
				return a.Settings.SetAccent(params.Name, params.Hex)
			}))
		},
	}.ToCobra()
}

func settingsResetCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "reset",
		Short: "Restore the default preferences",
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpSettingsToggle, withApp(func(a *app.App) error {
				a.Settings.Reset()
				return nil
			}))
		},
	}.ToCobra()
}

type coverParams struct {
	Track string `pos:"true" required:"true" help:"Track id."`
	URI   string `pos:"true" optional:"true" help:"Cover URI. Omit to remove the custom cover."`
}

func CoverCmd() *cobra.Command {
	return boa.CmdT[coverParams]{
		Use:         "cover",
		Short:       "Set or remove the custom cover of a track",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *coverParams, cmd *cobra.Command, args []string) {
			exitOn(errmsg.OpCoverSet, withApp(func(a *app.App) error {
				SetCover(a, os.Stdout, params.Track, params.URI)
				return nil
			}))
		},
	}.ToCobra()
}

// SetCover stores or removes a custom cover for trackID.
func SetCover(a *app.App, w io.Writer, trackID, uri string) {
	a.Overrides.Set(trackID, uri)
	if uri == "" {
		fmt.Fprintf(w, "%s  custom cover removed\n", trackID)
		return
	}
	fmt.Fprintf(w, "%s  %s\n", trackID, uri)
}
