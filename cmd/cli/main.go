package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pluscatalog/catalog-service/config"
	"github.com/pluscatalog/catalog-service/internal/storage"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
	dryRun  bool

	store storage.Store
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalog-service",
	Short: "Catalog Service CLI - operator portal crawler",
	Long: `A CLI tool for crawling the operator portal and reconciling the scraped
device, offer and photo data into the catalog database. The crawl command walks
the configured segments; the discover command fills in sibling SKUs afterwards.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "crawl into an in-memory store instead of the database")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()

	cmdNeedsStore := cmd.Name() == "crawl" || cmd.Name() == "discover"
	if !cmdNeedsStore {
		return nil
	}

	if cfg == nil {
		return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
	}

	if dryRun {
		store = storage.NewMemory()
		logger.Info().Msg("Dry run: using in-memory store")
		return nil
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	pg, err := storage.NewPostgres(context.Background(), storage.PoolConfig{
		URL:             dbURL,
		MaxConnections:  cfg.Database.MaxConnections,
		MinConnections:  cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	store = pg
	logger.Info().Msg("Database connected")
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Always prefer console format for CLI use
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stdout
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: noColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
