package main

import (
	"fmt"

	"github.com/jgoulah/epichart/internal/chart"
	"github.com/spf13/cobra"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "Show the CJK font charts will be drawn with",
	RunE:  runFonts,
}

func init() {
	rootCmd.AddCommand(fontsCmd)
}

func runFonts(cmd *cobra.Command, args []string) error {
	fmt.Println("Configured:")
	for _, p := range cfg.Fonts.Paths {
		fmt.Printf("  %s\n", p)
	}

	if cfg.Fonts.Discover {
		fmt.Println("Discovered (fc-list :lang=zh):")
		found := chart.DiscoverFonts(log)
		if len(found) == 0 {
			fmt.Println("  none")
		}
		for _, p := range found {
			fmt.Printf("  %s\n", p)
		}
	}

	r := chart.NewRendering(cfg.Fonts, log)
	if r.FontFile == "" {
		fmt.Println("\nUsing: Liberation Sans (no CJK glyphs)")
	} else {
		fmt.Printf("\nUsing: %s\n", r.FontFile)
	}
	fmt.Printf("DPI:   %d\n", r.DPI)
	return nil
}
