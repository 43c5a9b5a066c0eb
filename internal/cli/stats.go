package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show patient totals and visit counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.svc.DashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Patients:          %d\nVisits today:      %d\nVisits this month: %d\n\n",
				stats.TotalPatients, stats.TodayCount, stats.MonthCount)
			if err := table(out, "DAY\tVISITS", func(w io.Writer) {
				for _, b := range stats.WeeklyStats {
					fmt.Fprintf(w, "%s\t%d\n", b.Label, b.Count)
				}
			}); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return table(out, "MONTH\tVISITS", func(w io.Writer) {
				for _, b := range stats.YearlyStats {
					fmt.Fprintf(w, "%s\t%d\n", b.Label, b.Count)
				}
			})
		},
	}
}
