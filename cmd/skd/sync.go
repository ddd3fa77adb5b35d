package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vhm205/speckit-dash-sub001/internal/config"
	"github.com/vhm205/speckit-dash-sub001/internal/db"
	docsync "github.com/vhm205/speckit-dash-sub001/internal/sync"
	"github.com/vhm205/speckit-dash-sub001/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Full sync of feature documents into the mirror",
	Long: `Sync all feature documents to the SQLite mirror.

This performs a full sync:
  1. Walks specs/NNN-name directories under the project root
  2. Parses spec, tasks, data-model, plan and research documents
  3. Upserts feature records and their children
  4. Prunes features whose directory was removed`,
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

		specsDir := filepath.Join(root, "specs")
		if _, err := os.Stat(specsDir); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: specs directory not found at %s\n", specsDir)
			fmt.Fprintf(os.Stderr, "Run 'skd init' to scaffold the project\n")
			os.Exit(1)
		}

		dbPath := cfg.DatabasePath(root)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating database directory: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := database.InitSchema(); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing schema: %v\n", err)
			os.Exit(1)
		}

		syncer := docsync.New(database, root, nil)

		fmt.Printf("%s Syncing from %s...\n", ui.RenderAccent("🔄"), specsDir)
		start := time.Now()

		result, err := syncer.FullSync(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during sync: %v\n", err)
			os.Exit(1)
		}

		elapsed := time.Since(start)
		taskCount, _ := database.GetTaskCount()
		reqCount, _ := database.GetRequirementCount()

		fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("✓"), elapsed.Round(time.Millisecond))
		fmt.Printf("   Features: %d\n", result.Synced)
		fmt.Printf("   Tasks: %d\n", taskCount)
		fmt.Printf("   Requirements: %d\n", reqCount)
		fmt.Printf("   Mirror: %s\n", dbPath)

		if len(result.Errors) > 0 {
			fmt.Printf("\n%s %d feature(s) failed:\n", ui.RenderWarn("⚠"), len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("   %s\n", e)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
