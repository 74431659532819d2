package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"LiveCanvas/internal/config"
	"LiveCanvas/internal/logging"
	lnet "LiveCanvas/internal/net"
	"LiveCanvas/internal/protocol"
	"LiveCanvas/internal/relay"
)

type relayOptions struct {
	addr      string
	advertise bool
	clipboard bool
}

func bindRelayFlags(cmd *cobra.Command, opts *relayOptions) {
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Relay listen address (default :8888, or $LIVECANVAS_ADDR / $BACKEND_PORT)")
	cmd.Flags().BoolVar(&opts.advertise, "advertise", false, "Announce the relay on the LAN over mDNS")
	cmd.Flags().BoolVarP(&opts.clipboard, "clipboard", "b", false, "Copy the share link to the clipboard")
}

func newRelayCommand() *cobra.Command {
	opts := &relayOptions{}

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the broadcast relay without a board window",
		Long: `Run only the relay. Every frame a board sends is forwarded to all other
connected boards. Stop it with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelay(cmd, opts)
		},
	}
	bindRelayFlags(cmd, opts)
	return cmd
}

func runRelay(cmd *cobra.Command, opts *relayOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	l, err := startRelay(ctx, opts)
	if err != nil {
		return err
	}
	defer l.stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Relay listening on %s\n", l.socketURL)
	fmt.Fprintf(out, "Share link: %s\n", l.shareLink)

	<-ctx.Done()
	fmt.Fprintln(out, "Shutting down relay")
	return l.wait()
}

// liveRelay is a relay serving in the background.
type liveRelay struct {
	cfg       config.Config
	shareLink string
	// socketURL reaches the relay from this machine.
	socketURL string

	cancel context.CancelFunc
	done   chan error
	// stopAdvert withdraws the mDNS announcement, if any.
	stopAdvert func()
}

// startRelay listens, serves in the background and publishes the share link
// the way opts asks. The relay stops when ctx is cancelled or stop is called.
func startRelay(ctx context.Context, opts *relayOptions) (*liveRelay, error) {
	cfg, err := loadConfig(opts.addr)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	port, err := lnet.PortOf(ln.Addr().String())
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	shareHost, dialHost := relayHosts(cfg.Addr)

	ctx, cancel := context.WithCancel(ctx)
	l := &liveRelay{
		cfg:        cfg,
		shareLink:  lnet.ShareLink(shareHost, port),
		socketURL:  "ws://" + net.JoinHostPort(dialHost, strconv.Itoa(port)) + protocol.RouteSocket,
		cancel:     cancel,
		done:       make(chan error, 1),
		stopAdvert: func() {},
	}

	srv := relay.NewServer(cfg)
	go func() {
		l.done <- srv.Serve(ctx, ln)
	}()

	if opts.advertise {
		advert, err := lnet.Advertise(port)
		if err != nil {
			logging.L().Warn("[NET] mDNS advertisement failed", "err", err)
		} else {
			l.stopAdvert = func() {
				if err := advert.Shutdown(); err != nil {
					logging.L().Warn("[NET] stopping mDNS advertisement", "err", err)
				}
			}
		}
	}
	if opts.clipboard {
		if err := clipboard.WriteAll(l.shareLink); err != nil {
			logging.L().Warn("[NET] failed to copy share link to clipboard", "err", err)
		} else {
			logging.L().Info("[NET] share link copied to clipboard")
		}
	}
	return l, nil
}

// relayHosts picks the host other participants use and the host the local
// board dials. A wildcard listen address is shared as the LAN address and
// dialled over loopback; a named host is used for both.
func relayHosts(listenAddr string) (share, dial string) {
	host, _, _ := net.SplitHostPort(listenAddr)
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		return lnet.GetOutgoingIP(), "127.0.0.1"
	}
	return host, host
}

// stop withdraws the announcement and shuts the relay down.
func (l *liveRelay) stop() {
	l.stopAdvert()
	l.stopAdvert = func() {}
	l.cancel()
}

// wait stops the relay and returns the error it served with.
func (l *liveRelay) wait() error {
	l.stop()
	return <-l.done
}
