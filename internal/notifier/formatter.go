package notifier

import (
	"fmt"
	"html"
	"strings"

	"CupSentinel/internal/model"
)

const landmarkTime = "01-02 15:04"

// FormatPatternAlert announces a newly detected cup-and-handle.
func FormatPatternAlert(res *model.DetectionResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("☕ <b>Cup and handle: %s (%s)</b>\n\n", res.Company, res.Company.Symbol()))
	writeLandmarks(&b, res)
	b.WriteString(fmt.Sprintf("\nConfidence: %.0f%%\n", res.Confidence*100))
	return b.String()
}

// FormatDetection renders a verdict in reply to /detect.
func FormatDetection(res *model.DetectionResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>%s (%s)</b> | %d samples, smoothing %d\n\n",
		res.Company, res.Company.Symbol(), res.Points, res.SmoothingWindow))
	if !res.Detected {
		b.WriteString(fmt.Sprintf("No pattern: %s\n", res.Reason))
		return b.String()
	}
	b.WriteString("Pattern detected ✅\n")
	writeLandmarks(&b, res)
	b.WriteString(fmt.Sprintf("Confidence: %.0f%%\n", res.Confidence*100))
	return b.String()
}

func writeLandmarks(b *strings.Builder, res *model.DetectionResult) {
	for _, l := range res.Landmarks {
		b.WriteString(fmt.Sprintf("  %-10s %s  %.2f\n", l.Role, l.Time.Format(landmarkTime), l.Price))
	}
}

// FormatCompanies lists the tracked companies with their sample counts.
func FormatCompanies(counts map[model.Company]int) string {
	var b strings.Builder
	b.WriteString("📋 <b>Tracked companies</b>\n\n")
	for _, c := range model.Companies() {
		b.WriteString(fmt.Sprintf("%s (%s): %d samples\n", c, c.Symbol(), counts[c]))
	}
	return b.String()
}

// FormatError explains a failed command.
func FormatError(err error) string {
	return "❌ " + html.EscapeString(err.Error())
}

// HelpText lists the supported chat commands.
func HelpText() string {
	return "Commands:\n• /detect &lt;company&gt;\n• /companies"
}
