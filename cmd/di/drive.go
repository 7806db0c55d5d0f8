package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"drive-indexer/internal/driveidx"
)

// drive command
var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Manage drives",
}

var driveAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a drive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("drive add")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		drive, err := a.CreateDrive(args[0], description)
		if err != nil {
			return err
		}
		fmt.Printf("Added drive %s (%s)\n", drive.Name, drive.ID)
		return nil
	},
}

var driveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drives",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("drive list")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		drives, err := a.ListDrives()
		if err != nil {
			return err
		}
		if len(drives) == 0 {
			fmt.Println("No drives registered.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tFILES\tSIZE\tFREE\tLAST SCAN\tPATH")
		for _, d := range drives {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
				d.Name, d.FileCount, formatBytes(d.TotalSize), formatBytes(d.FreeSpace), lastScanned(d), d.ScanPath)
		}
		return tw.Flush()
	},
}

var driveEditCmd = &cobra.Command{
	Use:   "edit DRIVE",
	Short: "Rename a drive or change its description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var upd driveidx.DriveUpdate
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			upd.Name = &name
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			upd.Description = &description
		}
		if upd.Name == nil && upd.Description == nil {
			return fmt.Errorf("nothing to change: pass --name or --description")
		}

		a, err := newApp("drive edit")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		drive, err := a.UpdateDrive(args[0], upd)
		if err != nil {
			return err
		}
		fmt.Printf("Updated drive %s\n", drive.Name)
		return nil
	},
}

var driveRmCmd = &cobra.Command{
	Use:   "rm DRIVE",
	Short: "Remove a drive and its index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("drive rm")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.DeleteDrive(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed drive %s\n", args[0])
		return nil
	},
}

var driveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which drives are connected",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("drive status")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		results, err := a.LocateDrives(cmd.Context())
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No drives registered.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSTATUS\tPATH")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Drive.Name, locationStatus(r.Location, r.Err), r.Drive.ScanPath)
		}
		return tw.Flush()
	},
}

var driveLocateCmd = &cobra.Command{
	Use:   "locate DRIVE",
	Short: "Find where a drive is mounted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("drive locate")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		drive, loc, err := a.LocateDrive(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !loc.Connected {
			fmt.Printf("%s is not connected\n", drive.Name)
			return nil
		}
		fmt.Printf("%s is mounted at %s (%d/%d sampled files found)\n", drive.Name, loc.MountPath, loc.Matched, loc.Sampled)
		return nil
	},
}

func locationStatus(loc *driveidx.Location, err error) string {
	switch {
	case err != nil:
		return "error: " + err.Error()
	case loc.Connected:
		return "connected"
	default:
		return "offline"
	}
}

func init() {
	driveCmd.AddCommand(driveAddCmd)
	driveAddCmd.Flags().StringP("description", "d", "", "Drive description")
	driveCmd.AddCommand(driveListCmd)
	driveCmd.AddCommand(driveEditCmd)
	driveEditCmd.Flags().String("name", "", "New drive name")
	driveEditCmd.Flags().StringP("description", "d", "", "New drive description")
	driveCmd.AddCommand(driveRmCmd)
	driveCmd.AddCommand(driveStatusCmd)
	driveCmd.AddCommand(driveLocateCmd)

	rootCmd.AddCommand(driveCmd)
}
