package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"CupSentinel/internal/model"
)

func newRenderCmd() *cobra.Command {
	var (
		output   string
		annotate bool
	)
	cmd := &cobra.Command{
		Use:   "render <company>",
		Short: "Warm-start from the seed and write one company's chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := model.ParseCompany(args[0])
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			if _, err := a.warmStart(cmd.Context(), nil); err != nil {
				return err
			}
			if output == "" {
				output = c.Symbol() + ".png"
			}
			if err := a.renderTo(c, annotate, output); err != nil {
				return err
			}
			fmt.Printf("chart written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG path (default <SYMBOL>.png)")
	cmd.Flags().BoolVar(&annotate, "annotate", true, "overlay landmarks when a pattern is detected")
	return cmd
}

// renderTo writes c's chart to path, annotated when requested and possible.
func (a *app) renderTo(c model.Company, annotate bool, path string) error {
	var det *model.DetectionResult
	if annotate {
		res, err := a.detector.Detect(c)
		if err != nil && !errors.Is(err, model.ErrInsufficientData) {
			return err
		}
		det = res
	}
	art, err := a.renderer.Render(c, det)
	if err != nil {
		return err
	}
	return os.WriteFile(path, art.Data, 0o644)
}
