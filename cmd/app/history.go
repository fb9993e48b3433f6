package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, historyLazy)
			if err != nil {
				return err
			}
			defer closeApp(a)

			runs, err := a.service.ListRuns(context.Background(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTATUS\tWRITTEN\tSTARTED\tOUTPUT\tERROR")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\t%s\n",
					r.ID, r.Status, r.Written, r.Total,
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.OutputDir, r.Error)
			}
			_ = w.Flush()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "limit")
	return cmd
}
