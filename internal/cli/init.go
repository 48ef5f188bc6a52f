// init.go implements the "intentional init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/config"
	"github.com/intentional-app/intentional/internal/deeplink"
)

type initOptions struct {
	dev      bool
	timezone string
	memory   bool
}

func newInitCmd(root *rootOptions) *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and default configuration",
		Long: `Write config.yaml with defaults and create the database. Use --dev to
accept development tunnel links (exp://host:port/--/reflect?app=...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, root, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Use the development environment")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "IANA time zone for time-of-day rules")
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "Keep data in memory only")
	return cmd
}

func runInit(cmd *cobra.Command, root *rootOptions, opts *initOptions) error {
	out := cmd.OutOrStdout()
	dir := root.dataDir
	if dir == "" {
		var err error
		if dir, err = config.DataDir(); err != nil {
			return err
		}
	}

	// Check for an existing config.
	if _, statErr := os.Stat(filepath.Join(dir, "config.yaml")); statErr == nil {
		fmt.Fprintln(out, "Warning: config.yaml already exists.")
		fmt.Fprint(out, "Reinitialize? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.dev {
		cfg.Environment.Mode = string(deeplink.FamilyDevelopment)
	}
	if opts.memory {
		cfg.Storage.Backend = "memory"
	}
	cfg.Timezone = opts.timezone
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Opening the runtime creates the database and logs.
	rt, err := openRuntime(&rootOptions{dataDir: dir, verbose: root.verbose, clock: root.clock})
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Fprintf(out, "Initialized intentional in %s (%s)\n", dir, cfg.Environment.Mode)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  intentional apps add Instagram")
	fmt.Fprintln(out, "  intentional link Instagram")
	return nil
}
