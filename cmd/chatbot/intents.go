package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pesanmasa/chatbot/internal/engine/catalog"
	"github.com/pesanmasa/chatbot/internal/engine/vocabulary"
)

func newIntentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "intents",
		Short: "List catalog intents and check them against the label vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(a.cfg.Data.IntentsPath)
			if err != nil {
				return err
			}
			vocab, err := vocabulary.Load(a.cfg.Data.LabelsPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tTAG\tPATTERNS\tRESPONSES")
			for _, rec := range cat.Records() {
				index := "-"
				if i, ok := vocab.Index(rec.Tag); ok {
					index = fmt.Sprint(i)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", index, rec.Tag, len(rec.Patterns), len(rec.Responses))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			var missing []string
			for _, tag := range vocab.Tags() {
				if _, ok := cat.ResponsesFor(tag); !ok {
					missing = append(missing, tag)
				}
			}
			fmt.Fprintf(out, "\n%d intents, %d labels\n", cat.Len(), vocab.Len())
			if len(missing) > 0 {
				fmt.Fprintf(out, "labels without responses (answered with the fallback): %v\n", missing)
			}
			return nil
		},
	}
}
