package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"drive-indexer/internal/category"
	"drive-indexer/internal/driveidx"
)

// search command
var searchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search indexed file names",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		categories, _ := cmd.Flags().GetStringArray("category")
		drives, _ := cmd.Flags().GetStringArray("drive")
		for _, c := range categories {
			if !category.IsKnown(c) {
				return fmt.Errorf("unknown category %q: see `di categories`", c)
			}
		}

		a, err := newApp("search")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		var query string
		if len(args) > 0 {
			query = args[0]
		}

		results, err := a.SearchFiles(query, categories, drives)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No files found.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.DriveName, r.FilePath, formatBytes(r.FileSize), r.Category)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if len(results) == driveidx.SearchLimit {
			fmt.Fprintf(os.Stderr, "Showing the first %d matches; narrow the query to see more.\n", driveidx.SearchLimit)
		}
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats DRIVE",
	Short: "Show a drive's files by category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("stats")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		drive, stats, err := a.GetFileStats(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s files, %s, last scanned %s\n\n",
			drive.Name, humanize.Comma(drive.FileCount), formatBytes(drive.TotalSize), lastScanned(drive))
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\t%s\t\n", s.Category, s.Count, formatBytes(s.TotalSize))
		}
		return tw.Flush()
	},
}

// df command
var dfCmd = &cobra.Command{
	Use:   "df PATH",
	Short: "Show the capacity of the volume holding PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("df")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		space, err := a.ProbeDiskSpace(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Total: %s\nUsed:  %s\nFree:  %s\n", formatBytes(space.Total), formatBytes(space.Used), formatBytes(space.Free))
		return nil
	},
}

// categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List file categories",
	Run: func(cmd *cobra.Command, args []string) {
		for _, g := range category.Groups() {
			fmt.Println(g.Name)
			for _, label := range g.Labels {
				fmt.Printf("  %s\n", label)
			}
		}
		fmt.Println(category.Other)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringArrayP("category", "c", nil, "Only match this category (repeatable)")
	searchCmd.Flags().StringArrayP("drive", "D", nil, "Only search this drive (repeatable)")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dfCmd)
	rootCmd.AddCommand(categoriesCmd)
}
