// Package cli defines Cobra command definitions for the intentional CLI.
// root.go holds the root command, which opens the dashboard on a terminal.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/launch"
	"github.com/intentional-app/intentional/internal/tui"
)

var version = "dev" // set via ldflags at build time

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&rootOptions{})
}

func newRootCmdWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intentional [url]",
		Short: "Pause and reflect before opening distracting apps",
		Long: `Intentional intercepts deep links to the apps you track, runs a short
countdown and asks a reflection question before letting you through.
Without arguments it opens the dashboard; with a deep link it starts
the reflection for that app.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// When not attached to a terminal, show help instead of the TUI.
			if !tui.IsTTY() {
				return cmd.Help()
			}
			return runTUI(cmd.Context(), opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory (default $INTENTIONAL_DATA_DIR or the user config dir)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Write debug entries to the diagnostic log")

	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newOpenCmd(opts))
	cmd.AddCommand(newAppsCmd(opts))
	cmd.AddCommand(newLinkCmd(opts))
	cmd.AddCommand(newSettingsCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newEventsCmd(opts))
	cmd.AddCommand(newQuestionsCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newResetCmd(opts))
	return cmd
}

func runTUI(ctx context.Context, opts *rootOptions, args []string) error {
	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.New(ctx, tui.Deps{
		Store:     rt.store,
		Apps:      rt.apps(),
		Questions: rt.questions(),
		Launcher:  launch.OS{},
		Env:       rt.cfg.DeepLinkEnvironment(),
		Clock:     rt.clock,
		Location:  rt.location,
		Events:    rt.events,
		Logger:    rt.logger,
	})
	if len(args) == 1 {
		// Buffered until the shell is up.
		app.HandleLink(args[0])
	}
	return tui.Run(ctx, app)
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
