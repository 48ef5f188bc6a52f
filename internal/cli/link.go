// link.go implements "intentional link", which prints the deep link a
// shortcut should open for a tracked app.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/deeplink"
)

func newLinkCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <name>",
		Short: "Print the reflection deep link for an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			// Untracked names still get a link; the router reports them later.
			name := args[0]
			if cfg, err := findApp(cmd.Context(), rt.apps(), name); err == nil {
				name = cfg.Name
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				deeplink.BuildLink(rt.cfg.DeepLinkEnvironment(), deeplink.ActionReflect, name))
			return nil
		},
	}
}
