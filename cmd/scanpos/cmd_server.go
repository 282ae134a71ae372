package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Shreehariballakkuraya/ScanPOS/internal/kernel"
	"github.com/Shreehariballakkuraya/ScanPOS/internal/server"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/cache"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/database"
)

// scanpos serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		flush := bootLogger()
		defer flush()

		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close(database.DB) //nolint:errcheck

		store, closeCache := bootCache()
		defer closeCache()

		k := kernel.NewHTTPKernel(database.DB, store)
		defer k.Shutdown()
		return server.Start(k.Handler())
	},
}

// scanpos route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Handlers are never invoked here, so no database is needed.
		infos := kernel.NewHTTPKernel(nil, cache.Nop{}).Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
