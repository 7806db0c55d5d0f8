package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan DRIVE [PATH]",
	Short: "Index the files under PATH into a drive",
	Long:  "Index the files under PATH into a drive. Without PATH the drive's last scan path is rescanned.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("scan")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		var path string
		if len(args) == 2 {
			path = args[1]
		}

		summary, err := a.ScanDrive(cmd.Context(), args[0], path, progressPrinter())
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Printf("Indexed %d file(s), %s, from %s in %s\n",
			summary.FileCount,
			formatBytes(summary.TotalSize),
			summary.ScanPath,
			summary.Duration.Truncate(time.Millisecond),
		)
		return nil
	},
}

// clear command
var clearCmd = &cobra.Command{
	Use:   "clear DRIVE",
	Short: "Remove every indexed file of a drive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("clear")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		removed, err := a.ClearDriveIndex(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d file(s) from the index\n", removed)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View scan history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("history")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		runs, err := a.ScanHistory(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No scans recorded.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				duration = r.FinishedAt.Time.Sub(r.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				r.ID,
				r.DriveName,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.FileCount,
				duration,
				r.ScanPath,
				r.Error,
			)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of scans to show")
}
