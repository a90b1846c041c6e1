package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string

	cfg *config.Config
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "epichart",
	Short: "Render daily COVID-19 case charts for Chinese cities",
	Long: `Epichart reads per-city daily case counts from CSV files and renders trend,
classification and per-district bar charts as PNG images. Each render is recorded in a
local SQLite database and can be published to MQTT or Home Assistant.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config, else info)")
}

// setup loads the config and configures logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = loadConfig(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logLevel
	if level == "" {
		level = cfg.GetLogLevel()
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stderr)

	return nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.GetDatabase()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// selectCities returns the configured cities named by ids, or all of them
func selectCities(ids []string) ([]config.City, error) {
	if len(ids) == 0 {
		return cfg.Cities, nil
	}

	cities := make([]config.City, 0, len(ids))
	for _, id := range ids {
		city, ok := cfg.City(id)
		if !ok {
			return nil, fmt.Errorf("unknown city: %s (available: %v)", id, cfg.CityIDs())
		}
		cities = append(cities, city)
	}
	return cities, nil
}
