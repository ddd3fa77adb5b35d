package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vhm205/speckit-dash-sub001/internal/config"
	"github.com/vhm205/speckit-dash-sub001/internal/daemon"
	"github.com/vhm205/speckit-dash-sub001/internal/dashboard"
	"github.com/vhm205/speckit-dash-sub001/internal/db"
	docsync "github.com/vhm205/speckit-dash-sub001/internal/sync"
	"github.com/vhm205/speckit-dash-sub001/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "sync",
	Short:   "Watch for document changes and sync continuously (foreground)",
	Long: `Run the sync daemon in foreground mode.

The daemon will:
  1. Perform a full sync on startup
  2. Watch specs/ recursively for document changes
  3. Debounce rapid saves per path
  4. Sync each settled change into the mirror

With --dashboard, a WebSocket server broadcasts change events and sync
results to connected clients:

  skd watch --dashboard              # Feed on default port 8080
  skd watch --dashboard --port 9000  # Feed on custom port

Connect with a WebSocket client:
  ws://localhost:8080/ws

With --log-file, daemon output goes to a rotating log file instead of
stderr.`,
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

		// Flags override config when set explicitly.
		enableDash := cfg.Dashboard.Enabled
		if cmd.Flags().Changed("dashboard") {
			enableDash, _ = cmd.Flags().GetBool("dashboard")
		}
		port := cfg.Dashboard.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		logFile := cfg.LogFilePath(root)
		if cmd.Flags().Changed("log-file") {
			logFile, _ = cmd.Flags().GetString("log-file")
			if logFile != "" && !filepath.IsAbs(logFile) {
				logFile = filepath.Join(root, logFile)
			}
		}

		logWriter := io.Writer(os.Stderr)
		if logFile != "" {
			if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating log directory: %v\n", err)
				os.Exit(1)
			}
			logWriter = &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAgeDays,
			}
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

		syncer := docsync.New(database, root,
			log.New(logWriter, "[sync] ", log.LstdFlags))

		dcfg := daemon.DefaultConfig()
		dcfg.DebounceInterval = cfg.Debounce()
		dcfg.Logger = log.New(logWriter, "[daemon] ", log.LstdFlags)

		var server *dashboard.Server
		if enableDash {
			server = dashboard.NewServer(&dashboard.Config{
				Port:   port,
				Logger: log.New(logWriter, "[dashboard] ", log.LstdFlags),
			})
			if err := server.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to start dashboard: %v\n", err)
				os.Exit(1)
			}
			dcfg.Notifier = dashboard.NewHandler(server,
				log.New(logWriter, "[dashboard] ", log.LstdFlags))
		}

		d, err := daemon.NewWithConfig(syncer, root, dcfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating daemon: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Starting watch daemon...\n", ui.RenderAccent("🚀"))
		fmt.Printf("   Specs dir: %s\n", specsDir)
		fmt.Printf("   Mirror: %s\n", dbPath)
		fmt.Printf("   Debounce: %v\n", cfg.Debounce())
		if logFile != "" {
			fmt.Printf("   Log file: %s\n", logFile)
		}
		if server != nil {
			fmt.Printf("   Dashboard: ws://localhost:%d/ws\n", port)
			fmt.Printf("   Health check: http://localhost:%d/health\n", port)
		}
		fmt.Printf("\nPress Ctrl+C to stop\n\n")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// Start daemon (this blocks until the context is canceled)
		if err := d.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Daemon stopped with error: %v\n", err)
			os.Exit(1)
		}

		if server != nil {
			fmt.Println("\nShutting down dashboard server...")
			if err := server.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Println("Watch daemon stopped")
	},
}

func init() {
	watchCmd.Flags().Bool("dashboard", false, "serve the WebSocket activity feed")
	watchCmd.Flags().IntP("port", "p", config.DefaultPort, "dashboard port")
	watchCmd.Flags().String("log-file", "", "rotate daemon logs to this file instead of stderr")
	rootCmd.AddCommand(watchCmd)
}
