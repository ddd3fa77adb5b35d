package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vhm205/speckit-dash-sub001/internal/config"
	"github.com/vhm205/speckit-dash-sub001/internal/ui"
)

var (
	rootDir string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "skd",
	Short: "Mirror spec-kit documents into a queryable SQLite database",
	Long: `skd keeps a SQLite mirror of a spec-kit document tree.

Feature documents under specs/NNN-name/ (spec.md, tasks.md, data-model.md,
plan.md, research.md) are parsed into structured records so agents and
tools can query feature state with SQL instead of re-reading markdown.

Quick start:
  skd init                    Scaffold .skd/ and a default config
  skd sync                    One-shot sync of all feature directories
  skd watch                   Watch for changes and sync continuously
  skd status                  Show mirror statistics
  skd export                  Dump mirrored records as JSONL`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColorEnabled(false)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "",
		"project root (default: nearest directory with .skd.yaml, .skd/ or specs/)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable styled output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)
}

// resolveRoot returns the absolute project root. The --root flag wins;
// otherwise the nearest ancestor of the working directory carrying a
// project marker is used, falling back to the working directory itself.
func resolveRoot() (string, error) {
	if rootDir != "" {
		return filepath.Abs(rootDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		for _, marker := range []string{config.ConfigFileName, ".skd", "specs"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}
