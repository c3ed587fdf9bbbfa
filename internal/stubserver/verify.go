package stubserver

import (
	"fmt"
	"strings"

	"github.com/Veraticus/zentrum/internal/model"
)

// Verify checks berufe with a few content rules and reports issues per Beruf
// in document order. The result is valid when no issue has severity ERROR.
func Verify(berufe []model.Beruf) model.VerificationResult {
	issues := []model.VerificationIssue{}

	for i, b := range berufe {
		prefix := fmt.Sprintf("berufe[%d]", i)
		if strings.TrimSpace(b.Beschreibung) == "" {
			issues = append(issues, model.VerificationIssue{
				Severity: model.SeverityError,
				Field:    prefix + ".beschreibung",
				Message:  "missing description",
			})
		}
		if len(b.BerufNr) == 0 {
			issues = append(issues, model.VerificationIssue{
				Severity: model.SeverityWarning,
				Field:    prefix + ".berufNr",
				Message:  "missing Beruf number",
			})
		}
		for _, pb := range b.PruefungsBereich {
			for _, a := range pb.Aufgaben {
				issues = append(issues, terminIssues(prefix+".termin", a)...)
			}
		}
	}

	valid := true
	for _, issue := range issues {
		if issue.Severity == model.SeverityError {
			valid = false
			break
		}
	}
	return model.VerificationResult{Valid: valid, Issues: issues}
}

func terminIssues(field string, a model.Aufgabe) []model.VerificationIssue {
	if a.Termin == nil {
		return []model.VerificationIssue{{
			Severity: model.SeverityWarning,
			Field:    field,
			Message:  fmt.Sprintf("no Termin scheduled for %q", a.Name),
		}}
	}
	if a.Termin.Dauer < 0 {
		return []model.VerificationIssue{{
			Severity: model.SeverityError,
			Field:    field + ".dauer",
			Message:  "negative duration",
		}}
	}
	if err := a.Termin.Validate(); err != nil {
		return []model.VerificationIssue{{
			Severity: model.SeverityError,
			Field:    field,
			Message:  err.Error(),
		}}
	}
	return nil
}
