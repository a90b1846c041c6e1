package main

import (
	"fmt"
	"time"

	"github.com/jgoulah/epichart/internal/publisher"
	"github.com/jgoulah/epichart/pkg/models"
	"github.com/spf13/cobra"
)

var (
	publishCity  string
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish render reports to MQTT and Home Assistant",
	Long: `Reads recorded renders from the database and publishes the latest day's counts of each
to the MQTT broker and/or the Home Assistant states API.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishCity, "city", "", "City to publish (default: all cities)")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all reports (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of reports to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant, log)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var reports []models.Report
	if publishAll {
		reports, err = db.ListReports(publishCity, 0)
	} else {
		reports, err = db.ListUnpublished(publishCity)
	}
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}

	if len(reports) == 0 {
		if publishAll {
			fmt.Println("No reports found")
		} else {
			fmt.Println("No unpublished reports found")
		}
		return nil
	}

	if publishLimit > 0 && len(reports) > publishLimit {
		reports = reports[:publishLimit]
		fmt.Printf("Limiting to %d reports (--limit flag)\n", publishLimit)
	}

	fmt.Printf("Publishing %d reports...\n", len(reports))
	published := 0
	for i, r := range reports {
		fmt.Printf("[%d/%d] Publishing %s %s (%d positive)... ",
			i+1, len(reports), r.City, r.LatestDate.Format("2006-01-02"), r.Positive())
		if err := pub.Publish(cmd.Context(), r); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(r.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nSuccessfully published %d/%d reports\n", published, len(reports))
	return nil
}
