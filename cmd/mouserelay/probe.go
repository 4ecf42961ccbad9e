package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mouse-relay/internal/config"
	"github.com/mouse-relay/internal/discovery"
)

var (
	probeTarget  string
	probeTimeout time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Broadcast a discovery probe and list relays that answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		target := probeTarget
		if target == "" {
			target = net.JoinHostPort("255.255.255.255", strconv.Itoa(cfg.Network.Discovery.Port))
		}

		replies, err := discovery.Probe(cmd.Context(), target, cfg.Network.Discovery.Probe, cfg.Network.Discovery.Reply, probeTimeout)
		if err != nil {
			return err
		}
		if len(replies) == 0 {
			return fmt.Errorf("no relay answered on %s within %s", target, probeTimeout)
		}
		for _, r := range replies {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Addr, r.Token)
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeTarget, "target", "", "probe destination (default broadcast on the discovery port)")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 2*time.Second, "how long to wait for replies")
}
