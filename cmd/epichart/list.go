package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	listCity    string
	listLimit   int
	listFigures bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded renders",
	Long:  `Displays the render history stored in the database, newest first.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listCity, "city", "", "Filter by city id")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Limit number of renders shown (0 = no limit)")
	listCmd.Flags().BoolVar(&listFigures, "figures", false, "Show the charts written by each render")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	reports, err := db.ListReports(listCity, listLimit)
	if err != nil {
		return fmt.Errorf("listing renders: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("No renders found")
		return nil
	}

	fmt.Println("------------------------------------------------------------------------------")
	fmt.Printf("%-10s  %-10s  %-12s  %8s  %8s  %-16s  %s\n",
		"Run", "City", "Latest", "Positive", "Severe", "Rendered", "Published")
	fmt.Println("------------------------------------------------------------------------------")

	for _, r := range reports {
		published := ""
		if r.Published {
			published = "✓"
		}
		fmt.Printf("%-10s  %-10s  %-12s  %8s  %8d  %-16s  %s\n",
			shortID(r.RunID), r.City, r.LatestDate.Format("2006-01-02"),
			humanize.Comma(int64(r.Positive())), r.Severe, humanize.Time(r.CreatedAt), published)

		if !listFigures {
			continue
		}
		figures, err := db.ListFigures(r.RunID, r.City)
		if err != nil {
			return fmt.Errorf("listing figures: %w", err)
		}
		for _, f := range figures {
			fmt.Printf("    %s (%s)\n", f.Path, humanize.Bytes(uint64(f.Bytes)))
		}
	}

	fmt.Println("------------------------------------------------------------------------------")
	fmt.Printf("%d renders\n", len(reports))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
