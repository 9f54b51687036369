package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	log.SetPrefix("food-protocol: ")
	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:     "food-protocol",
		Short:   "Ingest daily diet diary entries into structured protocol data",
		Version: Version,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(tdeeCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// executeRun loads the food database, discovers diary files and runs the
// pipeline. Shared by every subcommand.
func executeRun(cmd *cobra.Command, cfg config) (*RunResult, *Resolver, error) {
	db, err := LoadFoodDB(cfg.FoodsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load food database: %w", err)
	}
	log.Printf("loaded %d foods from %s", db.Len(), cfg.FoodsPath)

	raws, err := DiscoverRawEntries(cfg.LogDir)
	if err != nil {
		return nil, nil, err
	}
	if len(raws) == 0 {
		return nil, nil, fmt.Errorf("no diary files found in %s", cfg.LogDir)
	}
	log.Printf("found %d diary files in %s", len(raws), cfg.LogDir)

	pipeline := NewPipeline(db, cfg.FuzzyThreshold)
	run, err := pipeline.Run(cmd.Context(), raws)
	if err != nil {
		return nil, nil, err
	}

	for _, pe := range run.Errors {
		log.Printf("skipped %s: %v", pe.Source, &pe)
	}
	for _, w := range run.Warnings {
		log.Printf("warning %s: %s: %q", w.Source, w.Reason, w.Line)
	}
	log.Printf("resolved %d entries, %d missing food names", len(run.Entries), len(run.Missing))
	return run, pipeline.resolver, nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Parse and resolve all diary entries, write JSON and markdown artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			run, _, err := executeRun(cmd, cfg)
			if err != nil {
				return err
			}

			summary := Aggregate(run.Entries, Window{})
			tdee := BuildTdeeReport(run.Entries, Window{}, cfg.TdeeWindowDays)
			if err := WriteRunArtifacts(cfg.OutDir, run, summary, tdee); err != nil {
				return err
			}
			log.Printf("wrote artifacts to %s", cfg.OutDir)
			return nil
		},
	}
}

func tdeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tdee",
		Short: "Print the current energy-expenditure estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if n, _ := cmd.Flags().GetInt("window"); n >= 2 {
				cfg.TdeeWindowDays = n
			}
			run, _, err := executeRun(cmd, cfg)
			if err != nil {
				return err
			}

			report := BuildTdeeReport(run.Entries, Window{}, cfg.TdeeWindowDays)
			fmt.Print(TdeeMarkdown(report))
			return nil
		},
	}

	cmd.Flags().IntP("window", "w", 0, "Rolling window length in days")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Run the pipeline and save the result into a SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			run, _, err := executeRun(cmd, cfg)
			if err != nil {
				return err
			}

			store, err := NewSQLiteStore(cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveRun(run); err != nil {
				return err
			}
			log.Printf("saved run %s to %s", run.ID, cfg.SQLitePath)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline and serve the result over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.ListenAddr = addr
			}
			run, resolver, err := executeRun(cmd, cfg)
			if err != nil {
				return err
			}

			router := gin.Default()
			router.SetTrustedProxies(nil)
			NewHandler(run, resolver, cfg.TdeeWindowDays).registerRoutes(router)

			log.Printf("listening on %s", cfg.ListenAddr)
			return router.Run(cfg.ListenAddr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (host:port)")
	return cmd
}
