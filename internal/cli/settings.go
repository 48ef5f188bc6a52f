// settings.go implements "intentional settings" for the global preferences.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/model"
)

func newSettingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change global preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			s, err := rt.store.LoadGlobalSettings(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), s, rt.clock.Now(), rt.location)
			return nil
		},
	})
	cmd.AddCommand(newSettingsSetCmd(root))
	return cmd
}

func printSettings(w io.Writer, s model.GlobalSettings, now time.Time, loc *time.Location) {
	fmt.Fprintf(w, "default delay:        %ds\n", s.DefaultDelay)
	fmt.Fprintf(w, "reflections enabled:  %t\n", s.EnableAll)
	if s.TemporaryDisableUntil != nil && now.Before(*s.TemporaryDisableUntil) {
		fmt.Fprintf(w, "paused until:         %s\n", s.TemporaryDisableUntil.In(loc).Format("Jan 02 15:04"))
	}
	fmt.Fprintf(w, "question rotation:    %t\n", s.QuestionRotationEnabled)
	fmt.Fprintf(w, "productive apps:      %t\n", s.ProductiveAppsEnabled)
	names := make([]string, 0, len(s.SelectedProductiveApps))
	for _, p := range s.SelectedProductiveApps {
		names = append(names, p.Name)
	}
	if len(names) > 0 {
		fmt.Fprintf(w, "selected alternatives: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "onboarding completed: %t\n", s.OnboardingCompleted)
	fmt.Fprintf(w, "dark mode:            %t\n", s.DarkModeEnabled)
	fmt.Fprintf(w, "sound:                %t\n", s.SoundEnabled)
}

type settingsSetOptions struct {
	defaultDelay int
	enableAll    bool
	pauseFor     time.Duration
	rotation     bool
	productive   bool
	selected     []string
	onboarding   bool
	darkMode     bool
	sound        bool
}

func newSettingsSetCmd(root *rootOptions) *cobra.Command {
	opts := &settingsSetOptions{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences; only the flags given are touched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()
			ctx := cmd.Context()

			s, err := rt.store.LoadGlobalSettings(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("default-delay") {
				if opts.defaultDelay <= 0 {
					return fmt.Errorf("default delay must be positive")
				}
				s.DefaultDelay = opts.defaultDelay
			}
			if flags.Changed("enable-all") {
				s.EnableAll = opts.enableAll
			}
			if flags.Changed("pause-for") {
				if opts.pauseFor <= 0 {
					s.TemporaryDisableUntil = nil
				} else {
					until := rt.clock.Now().Add(opts.pauseFor)
					s.TemporaryDisableUntil = &until
				}
			}
			if flags.Changed("rotation") {
				s.QuestionRotationEnabled = opts.rotation
			}
			if flags.Changed("productive-apps") {
				s.ProductiveAppsEnabled = opts.productive
			}
			if flags.Changed("select") {
				selected, err := selectProductive(opts.selected)
				if err != nil {
					return err
				}
				s.SelectedProductiveApps = selected
			}
			if flags.Changed("onboarding") {
				s.OnboardingCompleted = opts.onboarding
			}
			if flags.Changed("dark-mode") {
				s.DarkModeEnabled = opts.darkMode
			}
			if flags.Changed("sound") {
				s.SoundEnabled = opts.sound
			}

			if err := rt.store.SaveGlobalSettings(ctx, s); err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), s, rt.clock.Now(), rt.location)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.defaultDelay, "default-delay", model.DefaultDelaySeconds, "Countdown seconds for new apps")
	cmd.Flags().BoolVar(&opts.enableAll, "enable-all", true, "Run reflections at all")
	cmd.Flags().DurationVar(&opts.pauseFor, "pause-for", 0, "Pause reflections for a while, e.g. 30m; 0 resumes")
	cmd.Flags().BoolVar(&opts.rotation, "rotation", true, "Avoid repeating recent questions")
	cmd.Flags().BoolVar(&opts.productive, "productive-apps", true, "Offer productive alternatives")
	cmd.Flags().StringSliceVar(&opts.selected, "select", nil, "Productive apps to offer, at most three")
	cmd.Flags().BoolVar(&opts.onboarding, "onboarding", false, "Mark onboarding as completed")
	cmd.Flags().BoolVar(&opts.darkMode, "dark-mode", false, "Prefer the dark theme")
	cmd.Flags().BoolVar(&opts.sound, "sound", true, "Play sounds")
	return cmd
}

func selectProductive(names []string) ([]model.ProductiveApp, error) {
	if len(names) > model.MaxSelectedProductiveApps {
		return nil, fmt.Errorf("at most %d productive apps can be selected", model.MaxSelectedProductiveApps)
	}
	out := make([]model.ProductiveApp, 0, len(names))
	for _, n := range names {
		p, ok := apps.FindProductive(strings.TrimSpace(n))
		if !ok {
			return nil, fmt.Errorf("%q is not a productive app; try 'intentional apps search --productive'", n)
		}
		out = append(out, p)
	}
	return out, nil
}
