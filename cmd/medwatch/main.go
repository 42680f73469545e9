package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/medwatch/medwatch/internal/config"
	"github.com/medwatch/medwatch/internal/pipeline"
	"github.com/medwatch/medwatch/internal/search"
	"github.com/medwatch/medwatch/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "medwatch",
	Short:   "Scheduled MedTech market intelligence reports",
	Long:    "medwatch gathers topic-tagged news, writes an executive report with an AI backend (or a deterministic fallback), and delivers it as an HTML email.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("medwatch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/medwatch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure topics, email delivery, and the AI backend token env var.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Topics: %d\n", len(cfg.Topics))
		for _, t := range cfg.Topics {
			fmt.Printf("  %s (%d keywords, %d feeds)\n", t.Name, len(t.Keywords), len(t.Feeds))
		}

		fmt.Println("\nAI backend:")
		if cfg.HasAIBackend() {
			fmt.Printf("  Configured (%s via %s)\n", cfg.LLM.Model, cfg.LLM.BaseURL)
		} else {
			fmt.Printf("  Not configured — set %s (runs will use the basic report)\n", cfg.LLM.TokenEnv)
		}

		fmt.Println("\nEmail delivery:")
		if cfg.CanSendEmail() {
			fmt.Printf("  Configured (%s, %d recipient(s))\n", cfg.Email.SMTPHost, len(cfg.Email.Recipients))
		} else {
			fmt.Println("  Not configured — reports will only be saved locally")
		}

		fmt.Printf("\nOutput directory: %s\n", cfg.Output.Dir)
		return nil
	},
}

// --- search command ---

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run the topic search and print results without generating a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := search.NewAggregator(
			search.NewClient(),
			time.Duration(cfg.Search.CooldownSeconds)*time.Second,
		).WithFeeds(search.NewFeedParser())

		window := search.ParseWindow(cfg.Search.Window)
		results, stats := agg.Aggregate(context.Background(), cfg.Topics, cfg.Search.ResultsPerQuery, window)

		for _, topic := range cfg.Topics {
			articles := results[topic.Name]
			fmt.Printf("\n%s (%d articles)\n", topic.Name, len(articles))
			for _, a := range articles {
				fmt.Printf("  - %s\n    %s | %s\n", a.Title, a.Source, a.Link)
			}
		}

		fmt.Printf("\n%d unique articles across %d categories (%d failed searches)\n",
			stats.Articles, stats.Categories, stats.Failures)
		return nil
	},
}

// --- run command ---

var (
	noEmail   bool
	basicMode bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: gather -> enrich -> report -> format -> save -> deliver",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg, pipeline.Options{NoEmail: noEmail, Basic: basicMode})
		result := p.Run(context.Background())

		failed := false
		for i, step := range result.Steps {
			fmt.Printf("\nStage %d: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
				failed = true
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if result.ReportPath != "" {
			fmt.Printf("\nReport saved: %s\n", result.ReportPath)
		}
		if failed {
			return fmt.Errorf("pipeline finished with errors")
		}
		fmt.Println("\nPipeline complete! Run 'medwatch serve' to preview reports.")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&noEmail, "no-email", false, "Skip email delivery")
	runCmd.Flags().BoolVar(&basicMode, "basic", false, "Skip the AI backend and use the deterministic report")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local report preview server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg.Output.Dir, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}
