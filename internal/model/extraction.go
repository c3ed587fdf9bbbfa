// Package model defines the extraction resources exchanged with the extraction service.
package model

import (
	"fmt"
	"regexp"
	"time"
)

// Severity classifies a verification finding.
type Severity string

// Severity values reported by the verification pass.
const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Status is the verification state of an extraction as shown to the user.
type Status string

// Extraction lifecycle states after upload.
const (
	StatusUnverified Status = "Unverified"
	StatusValid      Status = "Valid"
	StatusInvalid    Status = "Invalid"
)

// ExtractionSummary is the shape returned by upload and list.
type ExtractionSummary struct {
	ExtractedAt    time.Time `json:"extractedAt" yaml:"extractedAt"`
	ID             string    `json:"id" yaml:"id"`
	SourceFileName string    `json:"sourceFileName" yaml:"sourceFileName"`
	BerufeCount    int       `json:"berufeCount" yaml:"berufeCount"`
}

// Extraction is one processed PDF document and the Berufe derived from it.
// Berufe keep document order. Verification is nil until the extraction has
// been verified at least once.
type Extraction struct {
	ExtractedAt    time.Time           `json:"extractedAt" yaml:"extractedAt"`
	Verification   *VerificationResult `json:"verification" yaml:"verification"`
	ID             string              `json:"id" yaml:"id"`
	SourceFileName string              `json:"sourceFileName" yaml:"sourceFileName"`
	Berufe         []Beruf             `json:"berufe" yaml:"berufe"`
}

// Status derives the badge state from the verification result.
func (e *Extraction) Status() Status {
	if e == nil || e.Verification == nil {
		return StatusUnverified
	}
	if e.Verification.Valid {
		return StatusValid
	}
	return StatusInvalid
}

// Summary reduces the extraction to its list shape.
func (e *Extraction) Summary() ExtractionSummary {
	return ExtractionSummary{
		ID:             e.ID,
		SourceFileName: e.SourceFileName,
		ExtractedAt:    e.ExtractedAt,
		BerufeCount:    len(e.Berufe),
	}
}

// Beruf is one extracted vocational-training profile.
type Beruf struct {
	Beschreibung     string             `json:"beschreibung" yaml:"beschreibung"`
	BerufNr          []int              `json:"berufNr" yaml:"berufNr"`
	PruefungsBereich []PruefungsBereich `json:"pruefungsBereich" yaml:"pruefungsBereich"`
}

// PruefungsBereich is a named examination area within a Beruf.
type PruefungsBereich struct {
	Name     string    `json:"name" yaml:"name"`
	Aufgaben []Aufgabe `json:"aufgaben" yaml:"aufgaben"`
}

// Aufgabe is a task within an examination area. Empty free-text fields mean
// the document did not provide a value; a nil Termin means no slot is scheduled.
type Aufgabe struct {
	Termin     *Termin `json:"termin" yaml:"termin,omitempty"`
	Name       string  `json:"name" yaml:"name"`
	Struktur   string  `json:"struktur" yaml:"struktur,omitempty"`
	Hilfmittel string  `json:"hilfmittel" yaml:"hilfmittel,omitempty"`
}

// Termin is a scheduled examination slot.
type Termin struct {
	Datum      string `json:"datum" yaml:"datum"`
	UhrzeitVon string `json:"uhrzeitVon" yaml:"uhrzeitVon"`
	UhrzeitBis string `json:"uhrzeitBis" yaml:"uhrzeitBis"`
	Dauer      int    `json:"dauer" yaml:"dauer"`
}

var timeOfDay = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

// Validate checks the Termin's own invariants.
func (t Termin) Validate() error {
	if t.Dauer < 0 {
		return fmt.Errorf("negative duration %d", t.Dauer)
	}
	if t.Datum != "" {
		if _, err := time.Parse(time.DateOnly, t.Datum); err != nil {
			return fmt.Errorf("invalid date %q", t.Datum)
		}
	}
	if t.UhrzeitVon != "" && !timeOfDay.MatchString(t.UhrzeitVon) {
		return fmt.Errorf("invalid start time %q", t.UhrzeitVon)
	}
	if t.UhrzeitBis != "" && !timeOfDay.MatchString(t.UhrzeitBis) {
		return fmt.Errorf("invalid end time %q", t.UhrzeitBis)
	}
	return nil
}

// Date parses Datum. ok is false when the date is missing or malformed.
func (t Termin) Date() (time.Time, bool) {
	d, err := time.Parse(time.DateOnly, t.Datum)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// VerificationResult is the outcome of one verification pass. Issues keep
// the order in which the pass encountered them.
type VerificationResult struct {
	VerifiedAt time.Time           `json:"verifiedAt" yaml:"verifiedAt"`
	Issues     []VerificationIssue `json:"issues" yaml:"issues"`
	Valid      bool                `json:"valid" yaml:"valid"`
}

// VerificationIssue is a single finding of a verification pass.
type VerificationIssue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Field    string   `json:"field" yaml:"field"`
	Message  string   `json:"message" yaml:"message"`
}

// Count returns the number of issues with the given severity.
func (v *VerificationResult) Count(sev Severity) int {
	if v == nil {
		return 0
	}
	n := 0
	for _, issue := range v.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any issue has severity ERROR.
func (v *VerificationResult) HasErrors() bool {
	return v.Count(SeverityError) > 0
}

// Consistent reports whether a valid result is free of ERROR issues.
// Warnings and info findings on a valid result are consistent.
func (v *VerificationResult) Consistent() bool {
	if v == nil || !v.Valid {
		return true
	}
	return !v.HasErrors()
}
