// open.go implements the "intentional open" command: a headless run of one
// deep link from routing through the final decision.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/launch"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/navigation"
	"github.com/intentional-app/intentional/internal/reflection"
	"github.com/intentional-app/intentional/internal/router"
)

// Decisions accepted by --decide.
const (
	decideProceed = "proceed"
	decideDecline = "decline"
)

type openOptions struct {
	answer string
	bypass bool
	cancel bool
	decide string
	fast   bool
	dryRun bool
}

func newOpenCmd(root *rootOptions) *cobra.Command {
	opts := &openOptions{}
	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Handle a deep link without the TUI",
		Long: `Route a deep link the way the OS would hand it over, run the countdown
in the terminal and apply a decision. --decide takes "proceed", "decline"
or the name of a productive alternative such as "Notes".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.answer, "answer", "", "Answer to the reflection question")
	cmd.Flags().BoolVar(&opts.bypass, "bypass", false, "Leave the countdown as soon as bypass unlocks")
	cmd.Flags().BoolVar(&opts.cancel, "cancel", false, "Cancel the reflection right away")
	cmd.Flags().StringVar(&opts.decide, "decide", decideProceed, "Decision after the reflection")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Do not wait for the countdown")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print links instead of opening them")
	return cmd
}

func runOpen(cmd *cobra.Command, root *rootOptions, opts *openOptions, rawURL string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	out := cmd.OutOrStdout()

	rt, err := openRuntime(root)
	if err != nil {
		return err
	}
	defer rt.Close()

	nav := &navigation.Recorder{}
	nav.Navigate(navigation.Dashboard, navigation.Params{})

	r := &router.Router{
		Env:    rt.cfg.DeepLinkEnvironment(),
		Store:  rt.store,
		Nav:    nav,
		Clock:  rt.clock,
		Events: rt.events,
		Logger: rt.logger,
	}
	res := r.Handle(ctx, rawURL)
	fmt.Fprintf(out, "outcome: %s\n", res.Outcome)

	switch res.Outcome {
	case router.OutcomeIgnored:
		return nil
	case router.OutcomeFailed:
		return fmt.Errorf("open %s: %w", rawURL, res.Err)
	case router.OutcomeUnhandled:
		return fmt.Errorf("open %s: not a reflect link", rawURL)
	case router.OutcomeNotFound:
		return fmt.Errorf("no tracked app matches %q", res.Intent.App)
	}

	if cur, _ := nav.Current(); cur.Screen == navigation.Reflection {
		if err := runReflection(ctx, out, rt, nav, opts, cur.Params); err != nil {
			return err
		}
	}

	if cur, _ := nav.Current(); cur.Screen == navigation.PostReflection {
		if err := decide(ctx, out, rt, nav, opts, cur.Params); err != nil {
			return err
		}
	}

	cur, _ := nav.Current()
	fmt.Fprintf(out, "screen: %s\n", cur.Screen)
	return nil
}

func runReflection(ctx context.Context, out io.Writer, rt *runtime, nav navigation.Dispatcher, opts *openOptions, p navigation.Params) error {
	c, err := reflection.Start(ctx, reflection.Deps{
		Store:     rt.store,
		Questions: rt.questions(),
		Nav:       nav,
		Clock:     rt.clock,
		Events:    rt.events,
		Logger:    rt.logger,
	}, p.AppID, p.TargetDeepLink)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "app: %s (%ds)\n", c.App().Name, c.Remaining())

	if opts.cancel {
		return c.Cancel(ctx)
	}

	var ticker reflection.Ticker
	if opts.fast {
		ticker = reflection.Immediate()
	} else {
		ticker = reflection.NewTicker(time.Second)
	}

	if opts.bypass {
		if err := reflection.RunUntilBypass(ctx, c, ticker); err != nil {
			return abandon(c, err)
		}
		fmt.Fprintf(out, "bypassed after %ds\n", c.Elapsed())
		return c.Bypass(ctx)
	}

	if err := reflection.RunCountdown(ctx, c, ticker); err != nil {
		return abandon(c, err)
	}
	fmt.Fprintf(out, "question: %s\n", c.Question())
	return c.Answer(ctx, opts.answer)
}

// abandon cancels the session after the countdown was interrupted.
func abandon(c *reflection.Controller, cause error) error {
	if !c.State().Terminal() {
		// The run context may already be done.
		_ = c.Cancel(context.Background())
	}
	return cause
}

func decide(ctx context.Context, out io.Writer, rt *runtime, nav navigation.Dispatcher, opts *openOptions, p navigation.Params) error {
	var launcher launch.Launcher = launch.OS{}
	if opts.dryRun {
		launcher = launch.DryRun{Print: func(link string) { fmt.Fprintf(out, "would open: %s\n", link) }}
	}
	d := &reflection.Decider{
		Store:    rt.store,
		Apps:     rt.apps(),
		Launcher: launcher,
		Nav:      nav,
		Clock:    rt.clock,
		Location: rt.location,
		Events:   rt.events,
		Logger:   rt.logger,
	}

	switch strings.ToLower(opts.decide) {
	case decideProceed, "":
		fmt.Fprintf(out, "opening %s\n", p.AppName)
		return d.Proceed(ctx, p)
	case decideDecline:
		d.Decline(ctx, p)
		return nil
	}

	alt, ok := pickAlternative(d.Alternatives(ctx), opts.decide)
	if !ok {
		return fmt.Errorf("%q is not one of the offered alternatives", opts.decide)
	}
	fmt.Fprintf(out, "opening %s instead\n", alt.Name)
	return d.ChooseAlternative(ctx, p, alt)
}

// pickAlternative matches name against the offered apps first and the full
// catalog second.
func pickAlternative(offered []model.ProductiveApp, name string) (model.ProductiveApp, bool) {
	for _, a := range offered {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return apps.FindProductive(name)
}
