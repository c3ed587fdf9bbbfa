package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/zentrum/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Display layouts.
const (
	DateLayout      = "02.01.2006"
	TimestampLayout = "02.01.2006 15:04"
)

// RenderBadge renders the verification badge for status.
func RenderBadge(status model.Status) string {
	switch status {
	case model.StatusValid:
		return ValidBadgeStyle.Render(string(status))
	case model.StatusInvalid:
		return InvalidBadgeStyle.Render(string(status))
	default:
		return UnverifiedBadgeStyle.Render(string(model.StatusUnverified))
	}
}

// RenderIssues lists verification issues in the order they were reported.
// It returns an empty string when there are none.
func RenderIssues(issues []model.VerificationIssue) string {
	if len(issues) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(BoldStyle.Render(fmt.Sprintf("Verification Issues (%d)", len(issues))))
	b.WriteString("\n")
	for _, issue := range issues {
		label := SeverityStyle(issue.Severity).Bold(true).Render(fmt.Sprintf("%-7s", issue.Severity))
		b.WriteString("  " + label + " " + issue.Message)
		if issue.Field != "" {
			b.WriteString(" " + SubtleStyle.Render(issue.Field))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDetail renders a full extraction with its Berufe in document order.
func RenderDetail(e *model.Extraction) string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(FormatTitle(e.SourceFileName))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", RenderBadge(e.Status()), SubtleStyle.Render("ID "+e.ID))
	fmt.Fprintf(&b, "Extracted %s, %d Berufe\n", formatTimestamp(e), len(e.Berufe))
	if e.Verification != nil {
		fmt.Fprintf(&b, "Verified %s\n", e.Verification.VerifiedAt.Local().Format(TimestampLayout))
	}

	if issues := RenderIssues(verificationIssues(e)); issues != "" {
		b.WriteString("\n")
		b.WriteString(issues)
	}

	for i, beruf := range e.Berufe {
		b.WriteString("\n")
		b.WriteString(RenderBeruf(i, beruf))
	}
	return b.String()
}

// RenderBeruf renders one Beruf numbered from index+1.
func RenderBeruf(index int, beruf model.Beruf) string {
	var b strings.Builder

	header := BoldStyle.Render(fmt.Sprintf("%d. %s", index+1, beruf.Beschreibung))
	tags := make([]string, 0, len(beruf.BerufNr))
	for _, nr := range beruf.BerufNr {
		tags = append(tags, "#"+strconv.Itoa(nr))
	}
	if len(tags) > 0 {
		header += " " + InfoStyle.Render(strings.Join(tags, " "))
	}
	b.WriteString(header + "\n")

	for _, pb := range beruf.PruefungsBereich {
		b.WriteString("   " + lipgloss.NewStyle().Foreground(PrimaryColor).Render(pb.Name) + "\n")
		for _, a := range pb.Aufgaben {
			b.WriteString("     - " + a.Name + "\n")
			if a.Struktur != "" {
				b.WriteString("       " + SubtleStyle.Render(a.Struktur) + "\n")
			}
			if line := formatAufgabeDetails(a); line != "" {
				b.WriteString("       " + line + "\n")
			}
		}
	}
	return b.String()
}

func formatAufgabeDetails(a model.Aufgabe) string {
	var parts []string
	if a.Termin != nil {
		parts = append(parts,
			"Datum: "+FormatDate(a.Termin.Datum),
			orDash(a.Termin.UhrzeitVon)+" - "+orDash(a.Termin.UhrzeitBis),
			fmt.Sprintf("%d min", a.Termin.Dauer))
	}
	if a.Hilfmittel != "" {
		parts = append(parts, "Hilfsmittel: "+a.Hilfmittel)
	}
	return strings.Join(parts, "  ")
}

// FormatDate renders a YYYY-MM-DD date as dd.mm.yyyy, "-" when missing and
// the raw value when it cannot be parsed.
func FormatDate(datum string) string {
	if datum == "" {
		return "-"
	}
	t := model.Termin{Datum: datum}
	d, ok := t.Date()
	if !ok {
		return datum
	}
	return d.Format(DateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderList renders extraction summaries as a table in the given order.
func RenderList(items []model.ExtractionSummary) string {
	if len(items) == 0 {
		return SubtleStyle.Render("No extractions yet. Upload a PDF with: zentrum upload <file.pdf>") + "\n"
	}

	headers := []string{"FILE", "EXTRACTED", "BERUFE", "ID"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.SourceFileName,
			item.ExtractedAt.Local().Format(TimestampLayout),
			strconv.Itoa(item.BerufeCount),
			item.ID,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(headers, widths, BoldStyle))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(renderRow(row, widths, lipgloss.NewStyle()))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = TableCellStyle.Render(style.Width(widths[i]).Render(cell))
	}
	return strings.TrimRight(strings.Join(rendered, ""), " ")
}

func formatTimestamp(e *model.Extraction) string {
	if e.ExtractedAt.IsZero() {
		return "-"
	}
	return e.ExtractedAt.Local().Format(TimestampLayout)
}

func verificationIssues(e *model.Extraction) []model.VerificationIssue {
	if e.Verification == nil {
		return nil
	}
	return e.Verification.Issues
}
