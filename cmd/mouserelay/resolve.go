package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-relay/internal/catalog"
	"github.com/mouse-relay/internal/config"
	"github.com/mouse-relay/internal/voice"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Classify a transcript offline and show what the relay would do",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cat, err := catalog.Default().WithSynonyms(cfg.Voice.ExtraSynonyms)
		if err != nil {
			return err
		}
		resolver := voice.NewResolver(cat, voice.WithThreshold(cfg.Voice.Threshold))
		res := resolver.Resolve(strings.Join(args, " "))

		verdict := "ignored"
		if res.Resolved {
			verdict = "actuate"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "text=%q action=%s score=%d exact=%t verdict=%s threshold=%d\n",
			res.Text, res.Action, res.Score, res.Exact, verdict, resolver.Threshold())
		if res.Action != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "synonyms=%s\n", strings.Join(cat.Synonyms(res.Action), " | "))
		}
		return nil
	},
}
