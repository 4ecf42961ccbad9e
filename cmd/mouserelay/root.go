package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mouserelay",
	Short: "Remote pointer and keyboard relay",
	Long: `mouserelay receives short text commands over UDP (raw tokens or transcribed
speech) and turns them into pointer and keyboard actions on this machine. Clients
find it with a broadcast DISCOVER probe.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/default.yaml, or $MOUSERELAY_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(sendCmd)
}
