package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Shreehariballakkuraya/ScanPOS/database/seeders"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/database"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/migration"
)

// scanpos migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB) //nolint:errcheck

		fmt.Println("Running migrations…")
		n, err := migration.New(database.DB, os.Stdout).Run()
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Nothing to migrate.")
		}
		return nil
	},
}

// scanpos migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB) //nolint:errcheck

		fmt.Println("Rolling back last batch…")
		n, err := migration.New(database.DB, os.Stdout).Rollback()
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Nothing to roll back.")
		}
		return nil
	},
}

// scanpos migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB) //nolint:errcheck

		rows, err := migration.New(database.DB, os.Stdout).Status()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, s := range rows {
			ran, batch := "no", "-"
			if s.Ran {
				ran, batch = "yes", fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, ran, batch)
		}
		return w.Flush()
	},
}

// scanpos seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user and the demo catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB) //nolint:errcheck

		fmt.Println("Running seeders…")
		return seeders.RunAll(database.DB, os.Stdout)
	},
}
