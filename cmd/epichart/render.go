package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jgoulah/epichart/internal/chart"
	"github.com/jgoulah/epichart/internal/database"
	"github.com/jgoulah/epichart/internal/dataset"
	"github.com/jgoulah/epichart/pkg/models"
	"github.com/spf13/cobra"
)

var renderNoHistory bool

var renderCmd = &cobra.Command{
	Use:   "render [city...]",
	Short: "Render charts for the configured cities",
	Long: `Loads each city's CSV files, restricts them to the configured date range and writes
the overall, classification and per-district charts to {output_dir}/{city id}/.
Charts without enough data are skipped. With no arguments every configured city is rendered.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderNoHistory, "no-history", false, "Do not record the render in the database")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Render started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cities, err := selectCities(args)
	if err != nil {
		return err
	}

	rendering := chart.NewRendering(cfg.Fonts, log)
	composer := chart.NewComposer(rendering, cfg.GetOutputDir(), log)

	var history *historyWriter
	if !renderNoHistory {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		history = &historyWriter{db: db, runID: uuid.NewString()}
	}

	total := 0
	for _, city := range cities {
		fmt.Printf("\n%s (%s)\n", city.Name, city.ID)

		prepared, err := dataset.Prepare(city, cfg.GetDataDir(), log.WithField("prefix", city.ID))
		if err != nil {
			return fmt.Errorf("preparing %s: %w", city.ID, err)
		}

		artifacts, err := composer.DrawCity(city, prepared.Daily)
		if err != nil {
			return fmt.Errorf("drawing %s: %w", city.ID, err)
		}

		latest := prepared.Latest()
		fmt.Printf("  %d days, latest %s: %d confirmed, %d asymptomatic\n",
			len(prepared.Daily), latest.Date.Format("2006-01-02"), latest.Confirmed, latest.Asymptomatic)
		if len(artifacts) == 0 {
			fmt.Println("  no charts, not enough data")
		}
		for _, a := range artifacts {
			fmt.Printf("  ✓ %s (%s)\n", a.Path, humanize.Bytes(uint64(a.Bytes)))
		}
		total += len(artifacts)

		if history != nil {
			if err := history.record(city.ID, prepared, artifacts); err != nil {
				return err
			}
		}
	}

	fmt.Printf("\nRendered %d charts for %d cities\n", total, len(cities))
	if history != nil {
		fmt.Printf("Run ID: %s\n", history.runID)
	}
	return nil
}

// historyWriter records the renders of one run
type historyWriter struct {
	db    *database.DB
	runID string
}

func (h *historyWriter) record(city string, prepared *dataset.Prepared, artifacts []chart.Artifact) error {
	report := models.NewReport(h.runID, city, len(prepared.Daily), prepared.Latest())
	if err := h.db.InsertReport(&report); err != nil {
		return fmt.Errorf("recording report for %s: %w", city, err)
	}

	figures := make([]models.Figure, len(artifacts))
	for i, a := range artifacts {
		figures[i] = models.Figure{RunID: h.runID, City: city, Kind: string(a.Kind), Path: a.Path, Bytes: a.Bytes}
	}
	if err := h.db.InsertFigures(figures); err != nil {
		return fmt.Errorf("recording figures for %s: %w", city, err)
	}
	return nil
}
