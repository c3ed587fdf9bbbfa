// Package export writes extractions to files for use outside the client.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/zentrum/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	BerufeSheet       = "Berufe"
	VerificationSheet = "Verification"
)

var berufeHeaders = []string{
	"Nr.",
	"Beruf",
	"BerufNr",
	"Prüfungsbereich",
	"Aufgabe",
	"Struktur",
	"Datum",
	"Von",
	"Bis",
	"Dauer (min)",
	"Hilfsmittel",
}

var verificationHeaders = []string{"Severity", "Field", "Message"}

// WriteXLSX writes e as a workbook with one row per Aufgabe on the Berufe
// sheet and the verification outcome on the Verification sheet. Berufe without
// any Aufgabe still get a row so the document order stays visible.
func WriteXLSX(w io.Writer, e *model.Extraction) error {
	if e == nil {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Debug("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", BerufeSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(VerificationSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeBerufe(f, e.Berufe); err != nil {
		return err
	}
	if err := writeVerification(f, e.Verification); err != nil {
		return err
	}

	idx, err := f.GetSheetIndex(BerufeSheet)
	if err != nil {
		return fmt.Errorf("failed to find sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeBerufe(f *excelize.File, berufe []model.Beruf) error {
	if err := writeRow(f, BerufeSheet, 1, toCells(berufeHeaders)); err != nil {
		return err
	}

	row := 2
	for i, beruf := range berufe {
		nr := joinInts(beruf.BerufNr)
		base := []any{i + 1, beruf.Beschreibung, nr}

		wrote := false
		for _, pb := range beruf.PruefungsBereich {
			for _, a := range pb.Aufgaben {
				cells := append(append([]any{}, base...), pb.Name, a.Name, a.Struktur)
				cells = append(cells, terminCells(a.Termin)...)
				cells = append(cells, a.Hilfmittel)
				if err := writeRow(f, BerufeSheet, row, cells); err != nil {
					return err
				}
				row++
				wrote = true
			}
		}
		if !wrote {
			if err := writeRow(f, BerufeSheet, row, base); err != nil {
				return err
			}
			row++
		}
	}

	_ = f.SetColWidth(BerufeSheet, "A", "A", 6)
	_ = f.SetColWidth(BerufeSheet, "B", "B", 40)
	_ = f.SetColWidth(BerufeSheet, "C", "C", 14)
	_ = f.SetColWidth(BerufeSheet, "D", "E", 32)
	_ = f.SetColWidth(BerufeSheet, "F", "F", 24)
	_ = f.SetColWidth(BerufeSheet, "G", "J", 12)
	_ = f.SetColWidth(BerufeSheet, "K", "K", 32)
	return nil
}

func terminCells(t *model.Termin) []any {
	if t == nil {
		return []any{"", "", "", ""}
	}
	return []any{t.Datum, t.UhrzeitVon, t.UhrzeitBis, t.Dauer}
}

func writeVerification(f *excelize.File, v *model.VerificationResult) error {
	if v == nil {
		return writeRow(f, VerificationSheet, 1, []any{"Status", string(model.StatusUnverified)})
	}

	status := model.StatusInvalid
	if v.Valid {
		status = model.StatusValid
	}
	summary := [][]any{
		{"Status", string(status)},
		{"Verified at", v.VerifiedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Errors", v.Count(model.SeverityError)},
		{"Warnings", v.Count(model.SeverityWarning)},
	}
	row := 1
	for _, cells := range summary {
		if err := writeRow(f, VerificationSheet, row, cells); err != nil {
			return err
		}
		row++
	}

	row++
	if err := writeRow(f, VerificationSheet, row, toCells(verificationHeaders)); err != nil {
		return err
	}
	for _, issue := range v.Issues {
		row++
		if err := writeRow(f, VerificationSheet, row, []any{string(issue.Severity), issue.Field, issue.Message}); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(VerificationSheet, "A", "A", 14)
	_ = f.SetColWidth(VerificationSheet, "B", "B", 32)
	_ = f.SetColWidth(VerificationSheet, "C", "C", 60)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
