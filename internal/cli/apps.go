// apps.go implements "intentional apps" for managing tracked apps.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/store"
)

func newAppsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List and manage tracked apps",
	}
	cmd.AddCommand(newAppsListCmd(root))
	cmd.AddCommand(newAppsAddCmd(root))
	cmd.AddCommand(newAppsRemoveCmd(root))
	cmd.AddCommand(newAppsSetCmd(root))
	cmd.AddCommand(newAppsSearchCmd())
	return cmd
}

func newAppsListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show tracked apps with their reflection stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			configs, err := rt.apps().List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(configs) == 0 {
				fmt.Fprintln(out, "No tracked apps. Add one with: intentional apps add <name>")
				return nil
			}
			for _, c := range configs {
				st, err := rt.store.UsageStats(cmd.Context(), c.ID)
				if err != nil {
					return err
				}
				state := "on"
				if !c.Enabled {
					state = "off"
				}
				fmt.Fprintf(out, "  %-16s  %-3s  %3ds  %-12s  %d reflections, %d completed, %d bypassed, avg %.0fs, last %s\n",
					c.Name, state, c.Delay(), c.QuestionCategory,
					st.TotalReflections, st.CompletedReflections, st.BypassedReflections, st.AverageReflectionTime,
					formatWhen(st.LastUsed, rt.location))
			}
			return nil
		},
	}
}

type addOptions struct {
	link        string
	delay       int
	bypassAfter int
	noBypass    bool
	category    string
}

func newAppsAddCmd(root *rootOptions) *cobra.Command {
	opts := &addOptions{}
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Track an app",
		Long: `Track an app by name. Apps from the popular catalog fill in their deep
link and question category; anything else needs --link.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()
			ctx := cmd.Context()

			defaultDelay := defaultDelay(ctx, rt.store)
			var cfg model.AppConfig
			if p, ok := apps.FindPopular(args[0]); ok && opts.link == "" {
				cfg = apps.FromPopular(p, defaultDelay)
			} else {
				if opts.link == "" {
					return fmt.Errorf("%q is not in the catalog; pass --link", args[0])
				}
				cfg = apps.NewConfig(args[0], opts.link, defaultDelay)
			}
			if cmd.Flags().Changed("delay") {
				cfg.DelaySeconds = opts.delay
			}
			if cmd.Flags().Changed("bypass-after") {
				cfg.BypassAfterSeconds = opts.bypassAfter
			}
			if opts.noBypass {
				cfg.AllowBypass = false
			}
			if opts.category != "" {
				cfg.QuestionCategory = model.Category(opts.category)
			}

			saved, err := rt.apps().Add(ctx, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tracking %s (%ds countdown)\n", saved.Name, saved.Delay())
			fmt.Fprintf(out, "Point your shortcut at: %s\n",
				deeplink.BuildLink(rt.cfg.DeepLinkEnvironment(), deeplink.ActionReflect, saved.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.link, "link", "", "Deep link that opens the app, e.g. myapp://")
	cmd.Flags().IntVar(&opts.delay, "delay", 0, "Countdown seconds")
	cmd.Flags().IntVar(&opts.bypassAfter, "bypass-after", apps.DefaultBypassAfterSeconds, "Seconds before bypass unlocks")
	cmd.Flags().BoolVar(&opts.noBypass, "no-bypass", false, "Never allow bypassing the countdown")
	cmd.Flags().StringVar(&opts.category, "category", "", "Question category: default, gratitude, productivity, mindfulness")
	return cmd
}

func defaultDelay(ctx context.Context, st store.Store) int {
	settings, err := st.LoadGlobalSettings(ctx)
	if err != nil {
		return model.DefaultDelaySeconds
	}
	return settings.DefaultDelay
}

// findApp resolves a name or id to a tracked app.
func findApp(ctx context.Context, svc *apps.Service, ref string) (model.AppConfig, error) {
	configs, err := svc.List(ctx)
	if err != nil {
		return model.AppConfig{}, err
	}
	if cfg := apps.FindByName(configs, ref); cfg != nil {
		return *cfg, nil
	}
	cfg, err := svc.Get(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return model.AppConfig{}, fmt.Errorf("no tracked app %q", ref)
	}
	return cfg, err
}

func newAppsRemoveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Stop tracking an app",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc := rt.apps()
			cfg, err := findApp(cmd.Context(), svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), cfg.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.Name)
			return nil
		},
	}
}

type setOptions struct {
	delay       int
	bypassAfter int
	allowBypass bool
	enabled     bool
	category    string
	link        string
	name        string
}

func newAppsSetCmd(root *rootOptions) *cobra.Command {
	opts := &setOptions{}
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Change the settings of a tracked app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc := rt.apps()
			cfg, err := findApp(cmd.Context(), svc, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("delay") {
				cfg.DelaySeconds = opts.delay
			}
			if flags.Changed("bypass-after") {
				cfg.BypassAfterSeconds = opts.bypassAfter
			}
			if flags.Changed("allow-bypass") {
				cfg.AllowBypass = opts.allowBypass
			}
			if flags.Changed("enabled") {
				cfg.Enabled = opts.enabled
			}
			if flags.Changed("category") {
				cfg.QuestionCategory = model.Category(opts.category)
			}
			if flags.Changed("link") {
				cfg.DeepLink = opts.link
			}
			if flags.Changed("name") {
				cfg.Name = opts.name
			}

			saved, err := svc.Update(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %ds countdown, bypass after %ds, enabled=%t, category=%s\n",
				saved.Name, saved.Delay(), saved.BypassAfterSeconds, saved.Enabled, saved.QuestionCategory)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.delay, "delay", 0, "Countdown seconds")
	cmd.Flags().IntVar(&opts.bypassAfter, "bypass-after", 0, "Seconds before bypass unlocks")
	cmd.Flags().BoolVar(&opts.allowBypass, "allow-bypass", true, "Allow bypassing the countdown")
	cmd.Flags().BoolVar(&opts.enabled, "enabled", true, "Run reflections for this app")
	cmd.Flags().StringVar(&opts.category, "category", "", "Question category")
	cmd.Flags().StringVar(&opts.link, "link", "", "Deep link that opens the app")
	cmd.Flags().StringVar(&opts.name, "name", "", "Rename the app")
	return cmd
}

func newAppsSearchCmd() *cobra.Command {
	var productive bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search the app catalogs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if productive {
				for _, p := range apps.SearchProductive(args[0]) {
					fmt.Fprintf(out, "  %-16s  %-12s  %s\n", p.Name, p.Category, p.Description)
				}
				return nil
			}
			for _, p := range apps.SearchPopular(args[0]) {
				fmt.Fprintf(out, "  %-16s  %-13s  %s\n", p.Name, p.Category, p.DeepLink)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&productive, "productive", false, "Search productive alternatives instead")
	return cmd
}

// formatWhen renders an optional timestamp.
func formatWhen(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "never"
	}
	return t.In(loc).Format("Jan 02 15:04")
}
