package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vhm205/speckit-dash-sub001/internal/config"
	"github.com/vhm205/speckit-dash-sub001/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "sync",
	Short:   "Initialize skd in the current project",
	Long: `Initialize skd for a spec-kit project.

Creates the project layout:
  .skd.yaml     Configuration with commented defaults
  .skd/         Mirror database location
  specs/        Feature document tree (if missing)

An existing config is kept unless you confirm the overwrite or pass
--force.`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		root := rootDir
		if root == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			root = cwd
		}
		root, err := filepath.Abs(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfgPath := filepath.Join(root, config.ConfigFileName)
		if _, err := os.Stat(cfgPath); err == nil {
			overwrite := force
			if !overwrite && ui.IsInteractive() {
				err := huh.NewConfirm().
					Title("Config file already exists").
					Description(fmt.Sprintf("Overwrite %s with defaults?", cfgPath)).
					Affirmative("Overwrite").
					Negative("Keep existing").
					Value(&overwrite).
					Run()
				if err != nil {
					overwrite = false
				}
			}
			if !overwrite {
				fmt.Printf("%s Keeping existing config at %s\n", ui.RenderWarn("⚠"), cfgPath)
				fmt.Printf("   Use --force to overwrite non-interactively\n")
				return
			}
			if err := os.Remove(cfgPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing old config: %v\n", err)
				os.Exit(1)
			}
		}

		for _, dir := range []string{".skd", "specs"} {
			if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
				os.Exit(1)
			}
		}

		if err := config.WriteDefault(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Initialized skd in %s\n", ui.RenderPass("✓"), root)
		fmt.Printf("   Config: %s\n", cfgPath)
		fmt.Printf("   Mirror: %s\n", filepath.Join(root, config.DefaultDatabasePath))
		fmt.Printf("\nNext steps:\n")
		fmt.Printf("   Add feature documents under specs/NNN-name/\n")
		fmt.Printf("   Run 'skd sync' or 'skd watch'\n")
	},
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing config without prompting")
	rootCmd.AddCommand(initCmd)
}
