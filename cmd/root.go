package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"LiveCanvas/internal/config"
	"LiveCanvas/internal/logging"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

type rootOptions struct {
	logLevel string
	host     hostOptions
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCommand()

// NewRootCommand builds the livecanvas command tree. Without a subcommand it
// hosts a board, or joins one when given a share link.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{logLevel: "info"}

	cmd := &cobra.Command{
		Use:   "livecanvas [share-link]",
		Short: "Draw together on a shared canvas over the local network",
		Long: `LiveCanvas is a shared whiteboard for the local network. One participant
hosts the relay and every open board draws on the same canvas.

Run 'livecanvas' to host a board, or 'livecanvas livecanvas://host:port' to
join one. Use 'livecanvas <command> --help' for details on a command.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Set(logging.New(cmd.ErrOrStderr(), opts.logLevel))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := rejectHostFlags(cmd); err != nil {
					return err
				}
				return runJoin(cmd, &joinOptions{link: args[0]})
			}
			return runHost(cmd, &opts.host)
		},
	}

	cmd.Annotations = map[string]string{"buildDate": buildDate, "commit": commit}
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level: debug, info, warn or error")
	bindHostFlags(cmd, &opts.host)

	cmd.AddCommand(newHostCommand(), newRelayCommand(), newJoinCommand(), newVersionCommand())
	return cmd
}

// rejectHostFlags fails when relay flags are combined with a share link,
// since joining starts no relay.
func rejectHostFlags(cmd *cobra.Command) error {
	for _, name := range []string{"addr", "advertise", "clipboard"} {
		if cmd.Flags().Changed(name) {
			return fmt.Errorf("flag --%s only applies when hosting, not when joining a share link", name)
		}
	}
	return nil
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig applies the environment and then an explicit --addr.
func loadConfig(addr string) (config.Config, error) {
	cfg, err := config.FromEnv(config.Default())
	if err != nil {
		return cfg, err
	}
	if addr = strings.TrimSpace(addr); addr != "" {
		cfg.Addr = addr
	}
	return cfg, cfg.Validate()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "livecanvas version %s\nBuild date: %s\nCommit: %s\n", version, buildDate, commit)
			return err
		},
	}
}
