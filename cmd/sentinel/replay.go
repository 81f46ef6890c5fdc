package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"CupSentinel/internal/model"
)

func newReplayCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a seed file, detect every company and write annotated charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedPath == "" {
				return fmt.Errorf("--seed-path is required")
			}
			a, err := loadApp()
			if err != nil {
				return err
			}

			bar := progressbar.NewOptions(-1,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Replaying"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]█[reset]",
					SaucerHead:    "[green]█[reset]",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
			stats, err := a.warmStart(cmd.Context(), func() { bar.Add(1) })
			if err != nil {
				return err
			}
			bar.Finish()
			fmt.Printf("\nreplayed %d rows, %d appended, %d skipped\n\n", stats.Rows, stats.Appended, stats.Skipped)

			results, err := a.verdicts(model.Companies())
			if err != nil {
				return err
			}
			printVerdicts(results)

			if outDir == "" {
				return nil
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, c := range model.Companies() {
				path := filepath.Join(outDir, c.Symbol()+".png")
				if err := a.renderTo(c, true, path); err != nil {
					if errors.Is(err, model.ErrInsufficientData) {
						continue
					}
					return err
				}
			}
			fmt.Printf("charts written to %s\n", outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "directory for annotated charts")
	return cmd
}
