package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vhm205/speckit-dash-sub001/internal/config"
	"github.com/vhm205/speckit-dash-sub001/internal/db"
	"github.com/vhm205/speckit-dash-sub001/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show mirror status",
	Long: `Display the current status of the SQLite mirror.

Shows:
  - Mirror file location and size
  - Number of mirrored records per kind
  - Last modified time`,
	Run: func(cmd *cobra.Command, args []string) {
		root, err := resolveRoot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg, err := config.Load(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		dbPath := cfg.DatabasePath(root)
		info, err := os.Stat(dbPath)
		if os.IsNotExist(err) {
			fmt.Printf("\n%s Mirror not initialized\n", ui.RenderWarn("⚠"))
			fmt.Printf("   Run 'skd sync' to create the mirror\n\n")
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking mirror: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()

		counts := []struct {
			label string
			count func() (int, error)
		}{
			{"Projects", database.GetProjectCount},
			{"Features", database.GetFeatureCount},
			{"Tasks", database.GetTaskCount},
			{"Entities", database.GetEntityCount},
			{"Requirements", database.GetRequirementCount},
			{"Plans", database.GetPlanCount},
			{"Research decisions", database.GetResearchCount},
		}

		// Format file size
		size := info.Size()
		sizeStr := fmt.Sprintf("%d bytes", size)
		if size > 1024*1024 {
			sizeStr = fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
		} else if size > 1024 {
			sizeStr = fmt.Sprintf("%.1f KB", float64(size)/1024)
		}

		fmt.Printf("\n%s Speckit Mirror Status\n\n", ui.RenderAccent("📊"))
		fmt.Printf("Location: %s\n", dbPath)
		fmt.Printf("Size: %s\n", sizeStr)
		for _, c := range counts {
			n, err := c.count()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error counting %s: %v\n", c.label, err)
				os.Exit(1)
			}
			fmt.Printf("%s: %d\n", c.label, n)
		}
		fmt.Printf("Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
