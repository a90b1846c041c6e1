package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	residentsDate     string
	residentsDistrict string
)

var residentsCmd = &cobra.Command{
	Use:   "residents <city>",
	Short: "Show the reported residences of a day",
	Long: `Prints the residences reported for a city on one day, sorted by classification,
district and residence. Defaults to the latest day with residence data.`,
	Args: cobra.ExactArgs(1),
	RunE: runResidents,
}

func init() {
	residentsCmd.Flags().StringVar(&residentsDate, "date", "", "Day to show (YYYY-MM-DD, default: latest)")
	residentsCmd.Flags().StringVar(&residentsDistrict, "district", "", "Only show one district")
	rootCmd.AddCommand(residentsCmd)
}

func runResidents(cmd *cobra.Command, args []string) error {
	cities, err := selectCities(args)
	if err != nil {
		return err
	}
	city := cities[0]
	if city.FileResidents == "" {
		return fmt.Errorf("%s has no residents file configured", city.ID)
	}

	prepared, err := dataset.Prepare(city, cfg.GetDataDir(), log.WithField("prefix", city.ID))
	if err != nil {
		return fmt.Errorf("preparing %s: %w", city.ID, err)
	}
	if len(prepared.Residents) == 0 {
		fmt.Printf("No residents found for %s in %s..%s\n", city.ID, city.DateRange.From, city.DateRange.To)
		return nil
	}

	var day time.Time
	if residentsDate != "" {
		d, err := config.ParseDate(residentsDate)
		if err != nil {
			return fmt.Errorf("parsing --date: %w", err)
		}
		day = d.Time
	} else {
		day = prepared.Residents[len(prepared.Residents)-1].Date
	}

	rows := dataset.Residents(prepared.Residents, day, residentsDistrict)
	fmt.Printf("%s %s: %d residences\n", city.Name, day.Format("2006-01-02"), len(rows))
	fmt.Println("----------------------------------------")
	for _, r := range rows {
		fmt.Println(strings.ReplaceAll(r.Label, "\n", "  "))
	}
	return nil
}
