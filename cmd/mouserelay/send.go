package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-relay/internal/config"
	"github.com/mouse-relay/internal/protocol"
)

var sendTo string

var sendCmd = &cobra.Command{
	Use:   "send <KEYWORD> [args...]",
	Short: "Send one command datagram to a relay",
	Example: `  mouserelay send LEFT_CLICK
  mouserelay send --to 192.168.1.20:5000 MOVE_DELTA 3,4
  mouserelay send VOICE_RAW scroll down`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to := sendTo
		if to == "" {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			to = net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Network.Command.Port))
		}

		keyword := strings.ToUpper(args[0])
		rest := args[1:]
		if keyword == protocol.KeywordVoice && len(rest) > 0 {
			rest = []string{strings.Join(rest, " ")}
		}
		payload := protocol.Format(keyword, rest...)
		if _, err := protocol.Parse(payload); err != nil {
			return err
		}

		conn, err := net.Dial("udp", to)
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", to, err)
		}
		defer conn.Close()
		if _, err := conn.Write([]byte(payload)); err != nil {
			return fmt.Errorf("failed to send to %s: %w", to, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %q to %s\n", payload, to)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "relay command address (default 127.0.0.1 on the configured command port)")
}
