package main

import (
	"fmt"

	"github.com/jgoulah/epichart/internal/chart"
	"github.com/jgoulah/epichart/internal/dataset"
	"github.com/jgoulah/epichart/pkg/models"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <city>",
	Short: "Summarize a city's data and the charts it would produce",
	Long: `Loads and filters a city's CSV files without drawing anything, then prints the
series peaks, the latest day and which charts have enough data to be rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cities, err := selectCities(args)
	if err != nil {
		return err
	}
	city := cities[0]

	prepared, err := dataset.Prepare(city, cfg.GetDataDir(), log.WithField("prefix", city.ID))
	if err != nil {
		return fmt.Errorf("preparing %s: %w", city.ID, err)
	}
	rows := prepared.Daily
	latest := prepared.Latest()

	fmt.Printf("%s (%s)\n", city.Name, city.ID)
	fmt.Printf("Range:     %s .. %s (%d days)\n",
		rows[0].Date.Format("2006-01-02"), latest.Date.Format("2006-01-02"), len(rows))
	fmt.Printf("Districts: %d\n", len(city.Districts))
	fmt.Printf("Events:    %d\n", len(city.Events))
	fmt.Printf("Residents: %d\n", len(prepared.Residents))

	fmt.Println("\n----------------------------------------")
	fmt.Printf("%-12s  %10s  %10s\n", "Series", "Peak", "Latest")
	fmt.Println("----------------------------------------")
	for _, s := range []struct {
		name string
		get  func(models.Daily) int
	}{
		{"confirmed", func(d models.Daily) int { return d.Confirmed }},
		{"asymptomatic", func(d models.Daily) int { return d.Asymptomatic }},
		{"from risk", func(d models.Daily) int { return d.ConfirmedFromRisk }},
		{"mild", func(d models.Daily) int { return d.Mild }},
		{"severe", func(d models.Daily) int { return d.Severe }},
		{"critical", func(d models.Daily) int { return d.Critical }},
		{"death", func(d models.Daily) int { return d.Death }},
		{"in hospital", func(d models.Daily) int { return d.InHospital }},
	} {
		fmt.Printf("%-12s  %10d  %10d\n", s.name, dataset.Max(dataset.Column(rows, s.get)), s.get(latest))
	}

	planned := make(map[chart.Kind]bool)
	for _, k := range chart.Plan(city, rows) {
		planned[k] = true
	}
	fmt.Println("\nCharts:")
	for _, k := range chart.Kinds {
		mark := "✗"
		if planned[k] {
			mark = "✓"
		}
		fmt.Printf("  %s %s\n", mark, k.Filename())
	}

	return nil
}
