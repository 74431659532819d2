package cmd

import (
	"github.com/spf13/cobra"

	"LiveCanvas/internal/logging"
)

type hostOptions struct {
	relayOptions
}

func bindHostFlags(cmd *cobra.Command, opts *hostOptions) {
	bindRelayFlags(cmd, &opts.relayOptions)
}

func newHostCommand() *cobra.Command {
	opts := &hostOptions{}

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host a relay and open a board on it",
		Long: `Start the relay on this machine and open a board connected to it. Hand
the share link shown in the window to the other participants.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHost(cmd, opts)
		},
	}
	bindHostFlags(cmd, opts)
	return cmd
}

func runHost(cmd *cobra.Command, opts *hostOptions) error {
	l, err := startRelay(cmd.Context(), &opts.relayOptions)
	if err != nil {
		return err
	}
	logging.L().Info("[RELAY] hosting", "share", l.shareLink)

	s := newSession(l.cfg, l.socketURL)
	if err := s.run(cmd.Context(), l.shareLink); err != nil {
		_ = l.wait()
		return err
	}
	return l.wait()
}
