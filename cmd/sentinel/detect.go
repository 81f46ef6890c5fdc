package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"CupSentinel/internal/model"
)

func newDetectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "detect [company...]",
		Short: "Warm-start from the seed and report a verdict per company",
		RunE: func(cmd *cobra.Command, args []string) error {
			companies, err := parseCompanies(args)
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
			return a.detect(companies, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	return cmd
}

// parseCompanies resolves CLI arguments, defaulting to every company.
func parseCompanies(args []string) ([]model.Company, error) {
	if len(args) == 0 {
		return model.Companies(), nil
	}
	out := make([]model.Company, 0, len(args))
	for _, arg := range args {
		c, err := model.ParseCompany(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// verdict is one row of detect output; Error is set when no verdict exists.
type verdict struct {
	*model.DetectionResult
	Error string `json:"error,omitempty"`
}

func (a *app) verdicts(companies []model.Company) ([]verdict, error) {
	out := make([]verdict, 0, len(companies))
	for _, c := range companies {
		res, err := a.detector.Detect(c)
		switch {
		case err == nil:
			out = append(out, verdict{DetectionResult: res})
		case errors.Is(err, model.ErrInsufficientData):
			out = append(out, verdict{DetectionResult: &model.DetectionResult{Company: c, Landmarks: []model.Landmark{}}, Error: err.Error()})
		default:
			return nil, err
		}
	}
	return out, nil
}

func (a *app) detect(companies []model.Company, format string) error {
	results, err := a.verdicts(companies)
	if err != nil {
		return err
	}
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	printVerdicts(results)
	return nil
}

func printVerdicts(results []verdict) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Company", "Symbol", "Samples", "Pattern", "Confidence", "Note"}),
	)
	for _, r := range results {
		note := r.Reason
		if r.Error != "" {
			note = r.Error
		}
		pattern := "no"
		if r.Detected {
			pattern = "YES"
		}
		table.Append([]string{
			string(r.Company),
			r.Company.Symbol(),
			fmt.Sprintf("%d", r.Points),
			pattern,
			fmt.Sprintf("%.0f%%", r.Confidence*100),
			note,
		})
	}
	table.Render()
}

