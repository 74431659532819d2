package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"LiveCanvas/internal/logging"
	lnet "LiveCanvas/internal/net"
)

type joinOptions struct {
	link     string
	discover time.Duration
}

func newJoinCommand() *cobra.Command {
	opts := &joinOptions{}

	cmd := &cobra.Command{
		Use:   "join [share-link]",
		Short: "Open a board on someone else's relay",
		Long: `Join a canvas by its share link, for example livecanvas://192.168.1.20:8888.
Without a link, --discover browses the LAN for an advertised relay.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.link = args[0]
			}
			return runJoin(cmd, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.discover, "discover", 0, "Browse the LAN for a relay for this long when no link is given (e.g. 3s)")
	return cmd
}

// resolveLink returns the relay socket URL for opts.
func resolveLink(opts *joinOptions, discover func(time.Duration) ([]string, error)) (string, error) {
	link := opts.link
	if link == "" {
		if opts.discover <= 0 {
			return "", fmt.Errorf("no share link given; pass one or use --discover")
		}
		found, err := discover(opts.discover)
		if err != nil {
			return "", fmt.Errorf("discovery failed: %w", err)
		}
		if len(found) == 0 {
			return "", fmt.Errorf("no relay found on the local network")
		}
		link = found[0]
		logging.L().Info("[NET] discovered relay", "addr", link, "candidates", len(found))
	}
	return lnet.RelayURL(link)
}

func runJoin(cmd *cobra.Command, opts *joinOptions) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	url, err := resolveLink(opts, lnet.Discover)
	if err != nil {
		return err
	}
	logging.L().Info("[CLIENT] joining", "url", url)
	return newSession(cfg, url).run(cmd.Context(), "")
}
