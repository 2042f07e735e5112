package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marta/sleuth/config"
	"github.com/marta/sleuth/internal/db"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent investigation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(config.DatabasePath())
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := database.RecentRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSERVICE\tPHASE\tITER\tPR\tSUMMARY")
		for _, r := range runs {
			pr := r.PRURL
			if pr == "" {
				pr = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				humanize.Time(r.StartedAt), r.Service, r.Phase, r.Iterations, pr, condense(r.Summary, 60))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "how many runs to show")
	rootCmd.AddCommand(historyCmd)
}

// condense reduces a summary to one table cell.
func condense(s string, n int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > n {
		return line[:n-3] + "..."
	}
	return line
}
