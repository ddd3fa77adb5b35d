package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vhm205/speckit-dash-sub001/internal/config"
	"github.com/vhm205/speckit-dash-sub001/internal/db"
	"github.com/vhm205/speckit-dash-sub001/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "advanced",
	Short:   "Export mirrored records as JSONL",
	Long: `Write every mirrored feature as one JSON object per line.

Each line inlines a feature with its tasks, entities, requirements,
plan and research decisions, ordered by feature number. Useful for
piping into jq or snapshotting mirror state:

  skd export | jq '.feature.name'
  skd export -o snapshot.jsonl`,
	Run: func(cmd *cobra.Command, args []string) {
		outPath, _ := cmd.Flags().GetString("output")

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
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: mirror not initialized at %s\n", dbPath)
			fmt.Fprintf(os.Stderr, "Run 'skd sync' first\n")
			os.Exit(1)
		}

		database, err := db.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()

		project, err := database.GetProjectByRoot(root)
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Fprintf(os.Stderr, "Error: no project synced for %s\n", root)
			fmt.Fprintf(os.Stderr, "Run 'skd sync' first\n")
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving project: %v\n", err)
			os.Exit(1)
		}

		out := io.Writer(os.Stdout)
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		count, err := database.ExportJSONL(cmd.Context(), project.ID, out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during export: %v\n", err)
			os.Exit(1)
		}

		if outPath != "" {
			fmt.Printf("%s Exported %d feature(s) to %s\n", ui.RenderPass("✓"), count, outPath)
		} else {
			fmt.Fprintf(os.Stderr, "Exported %d feature(s)\n", count)
		}
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
