package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drive-indexer/internal/app"
)

// catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Back up and restore the catalog",
}

var catalogBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a catalog snapshot to the vault",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("catalog backup")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		version, err := a.BackupCatalog()
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded catalog snapshot (version %d)\n", version)
		return nil
	},
}

var catalogRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Download the catalog snapshot from the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if cfg.Encryption.Type != "none" {
			if passphrase, err = readPassphrase("Passphrase: "); err != nil {
				return err
			}
		}

		path, err := app.RestoreCatalog(cfg, passphrase, out)
		if err != nil {
			return err
		}
		fmt.Printf("Catalog restored to %s\n", path)
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogBackupCmd)
	catalogCmd.AddCommand(catalogRestoreCmd)
	catalogRestoreCmd.Flags().String("out", "", "Write the catalog here instead of the configured database file")

	rootCmd.AddCommand(catalogCmd)
}
