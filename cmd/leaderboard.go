package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SaugatGautam100/courseplex-sub001/ledger"
)

var leaderboardJSON bool

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the daily, weekly, monthly and lifetime leaderboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		in, err := ledger.LoadInputs(cmd.Context(), a.st)
		if err != nil {
			return err
		}
		boards := in.Leaderboards(time.Now(), a.opts)
		if leaderboardJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(boards)
		}
		printBoards(os.Stdout, boards)
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().BoolVar(&leaderboardJSON, "json", false, "print JSON instead of tables")
	rootCmd.AddCommand(leaderboardCmd)
}

func printBoards(w io.Writer, b ledger.Leaderboards) {
	sections := []struct {
		title   string
		entries []ledger.Entry
	}{
		{"🏆 Today", b.Daily},
		{"🏆 This week", b.Weekly},
		{"🏆 This month", b.Monthly},
		{"🏆 All time", b.Lifetime},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "%s\n", s.title)
		if len(s.entries) == 0 {
			fmt.Fprintln(w, "   (no earnings yet)")
		}
		for i, e := range s.entries {
			fmt.Fprintf(w, "   %2d. %-24s %12.2f\n", i+1, e.Name, e.Earnings)
		}
		fmt.Fprintln(w)
	}
}
