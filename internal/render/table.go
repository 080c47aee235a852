package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// FormatDigitsWithCommas implements spec.md §8 property #9: insert a comma
// every three digits from the right, leaving shorter numbers untouched.
func FormatDigitsWithCommas(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteString(",")
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

var tableColumns = []string{"Date", "Input", "Cached", "Output", "Reasoning", "Total", "Cost (USD)"}

// Table renders a day-by-day summary as a bordered ASCII table, the same
// texture lipgloss-bordered widgets elsewhere in the project use for
// terminal output.
func Table(doc Document) string {
	var b strings.Builder

	widths := columnWidths(doc)
	writeRow(&b, widths, headerStyle, tableColumns...)
	writeSeparator(&b, widths)

	for _, d := range doc.Daily {
		writeRow(&b, widths, lipgloss.NewStyle(),
			d.Date,
			FormatDigitsWithCommas(d.DisplayInputTokens),
			FormatDigitsWithCommas(d.CachedInputTokens),
			FormatDigitsWithCommas(d.OutputTokens),
			FormatDigitsWithCommas(d.ReasoningOutputTokens),
			FormatDigitsWithCommas(d.TotalTokens),
			fmt.Sprintf("$%.2f", d.CostUSD),
		)
	}

	writeSeparator(&b, widths)
	writeRow(&b, widths, totalStyle,
		"Total",
		FormatDigitsWithCommas(doc.Totals.DisplayInputTokens),
		FormatDigitsWithCommas(doc.Totals.CachedInputTokens),
		FormatDigitsWithCommas(doc.Totals.OutputTokens),
		FormatDigitsWithCommas(doc.Totals.ReasoningOutputTokens),
		FormatDigitsWithCommas(doc.Totals.TotalTokens),
		fmt.Sprintf("$%.2f", doc.Totals.CostUSD),
	)

	if len(doc.Totals.MissingPricing) > 0 {
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(fmt.Sprintf("missing pricing: %s", strings.Join(doc.Totals.MissingPricing, ", "))))
		b.WriteString("\n")
	}

	return b.String()
}

func columnWidths(doc Document) []int {
	widths := make([]int, len(tableColumns))
	for i, h := range tableColumns {
		widths[i] = len(h)
	}
	rows := [][]string{{
		"Total",
		FormatDigitsWithCommas(doc.Totals.DisplayInputTokens),
		FormatDigitsWithCommas(doc.Totals.CachedInputTokens),
		FormatDigitsWithCommas(doc.Totals.OutputTokens),
		FormatDigitsWithCommas(doc.Totals.ReasoningOutputTokens),
		FormatDigitsWithCommas(doc.Totals.TotalTokens),
		fmt.Sprintf("$%.2f", doc.Totals.CostUSD),
	}}
	for _, d := range doc.Daily {
		rows = append(rows, []string{
			d.Date,
			FormatDigitsWithCommas(d.DisplayInputTokens),
			FormatDigitsWithCommas(d.CachedInputTokens),
			FormatDigitsWithCommas(d.OutputTokens),
			FormatDigitsWithCommas(d.ReasoningOutputTokens),
			FormatDigitsWithCommas(d.TotalTokens),
			fmt.Sprintf("$%.2f", d.CostUSD),
		})
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func writeRow(b *strings.Builder, widths []int, style lipgloss.Style, cells ...string) {
	b.WriteString(borderStyle.Render("| "))
	for i, cell := range cells {
		padded := cell + strings.Repeat(" ", widths[i]-len(cell))
		b.WriteString(style.Render(padded))
		b.WriteString(borderStyle.Render(" | "))
	}
	b.WriteString("\n")
}

func writeSeparator(b *strings.Builder, widths []int) {
	b.WriteString(borderStyle.Render("+"))
	for _, w := range widths {
		b.WriteString(borderStyle.Render(strings.Repeat("-", w+2)))
		b.WriteString(borderStyle.Render("+"))
	}
	b.WriteString("\n")
}
