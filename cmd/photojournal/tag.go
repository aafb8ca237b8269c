package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Oxyrus/photojournal/internal/imagecodec"
)

var tagCmd = &cobra.Command{
	Use:   "tag <file>",
	Short: "Print generated tags for an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if taken, ok := imagecodec.TakenAt(raw); ok {
			fmt.Fprintf(out, "taken: %s\n", taken.In(cfg.Location).Format(time.RFC3339))
		}

		tagger, err := newTagger(cmd.Context())
		if err != nil {
			return err
		}

		tags := tagger.GenerateTagsFromBytes(cmd.Context(), raw)
		if len(tags) == 0 {
			fmt.Fprintln(out, "tags: (none)")
			return nil
		}
		fmt.Fprintf(out, "tags: %s\n", strings.Join(tags, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
}
