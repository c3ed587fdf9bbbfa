package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailJSON = `{
  "id": "abc123",
  "sourceFileName": "report.pdf",
  "extractedAt": "2024-01-01T10:00:00Z",
  "berufe": [
    {"beschreibung": "Fachinformatiker", "berufNr": [1190, 1191], "pruefungsBereich": [
      {"name": "Teil 1", "aufgaben": [
        {"name": "Schriftlich", "struktur": "", "termin": {"datum": "2024-03-05", "uhrzeitVon": "09:00", "uhrzeitBis": "10:30", "dauer": 90}, "hilfmittel": "Taschenrechner"},
        {"name": "Projekt", "struktur": "Dokumentation", "termin": null, "hilfmittel": ""}
      ]}
    ]},
    {"beschreibung": "Elektroniker", "berufNr": [3150], "pruefungsBereich": []},
    {"beschreibung": "Mechatroniker", "berufNr": [], "pruefungsBereich": []}
  ],
  "verification": null
}`

func TestExtraction_DecodeDetail(t *testing.T) {
	var e Extraction
	require.NoError(t, json.Unmarshal([]byte(detailJSON), &e))

	assert.Equal(t, "abc123", e.ID)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), e.ExtractedAt.UTC())
	require.Len(t, e.Berufe, 3)
	assert.Equal(t, []string{"Fachinformatiker", "Elektroniker", "Mechatroniker"},
		[]string{e.Berufe[0].Beschreibung, e.Berufe[1].Beschreibung, e.Berufe[2].Beschreibung})
	assert.Equal(t, []int{1190, 1191}, e.Berufe[0].BerufNr)

	aufgaben := e.Berufe[0].PruefungsBereich[0].Aufgaben
	require.Len(t, aufgaben, 2)
	require.NotNil(t, aufgaben[0].Termin)
	assert.Equal(t, 90, aufgaben[0].Termin.Dauer)
	assert.Nil(t, aufgaben[1].Termin)

	assert.Nil(t, e.Verification)
	assert.Equal(t, StatusUnverified, e.Status())
}

func TestExtraction_EncodeKeepsNullVerification(t *testing.T) {
	e := Extraction{ID: "x", Berufe: []Beruf{}}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"verification":null`)
}

func TestExtraction_Status(t *testing.T) {
	tests := []struct {
		extraction *Extraction
		name       string
		want       Status
	}{
		{name: "nil extraction", extraction: nil, want: StatusUnverified},
		{name: "never verified", extraction: &Extraction{}, want: StatusUnverified},
		{
			name:       "valid",
			extraction: &Extraction{Verification: &VerificationResult{Valid: true}},
			want:       StatusValid,
		},
		{
			name: "invalid",
			extraction: &Extraction{Verification: &VerificationResult{
				Valid:  false,
				Issues: []VerificationIssue{{Severity: SeverityError, Field: "berufe[0].termin.dauer", Message: "negative duration"}},
			}},
			want: StatusInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.extraction.Status())
		})
	}
}

func TestExtraction_Summary(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	e := &Extraction{
		ID:             "abc123",
		SourceFileName: "report.pdf",
		ExtractedAt:    at,
		Berufe:         make([]Beruf, 3),
	}

	assert.Equal(t, ExtractionSummary{
		ID:             "abc123",
		SourceFileName: "report.pdf",
		ExtractedAt:    at,
		BerufeCount:    3,
	}, e.Summary())
}

func TestVerificationResult_Counts(t *testing.T) {
	v := &VerificationResult{
		Valid: true,
		Issues: []VerificationIssue{
			{Severity: SeverityWarning, Field: "berufe[1].berufNr", Message: "empty"},
			{Severity: SeverityInfo, Field: "berufe", Message: "3 entries"},
			{Severity: SeverityWarning, Field: "berufe[2].berufNr", Message: "empty"},
		},
	}

	assert.Equal(t, 2, v.Count(SeverityWarning))
	assert.Equal(t, 1, v.Count(SeverityInfo))
	assert.False(t, v.HasErrors())
	assert.True(t, v.Consistent())

	v.Issues = append(v.Issues, VerificationIssue{Severity: SeverityError, Field: "id", Message: "bad"})
	assert.True(t, v.HasErrors())
	assert.False(t, v.Consistent())

	var none *VerificationResult
	assert.Zero(t, none.Count(SeverityError))
	assert.True(t, none.Consistent())
}

func TestTermin_Validate(t *testing.T) {
	tests := []struct {
		name    string
		termin  Termin
		wantErr bool
	}{
		{name: "complete", termin: Termin{Datum: "2024-03-05", UhrzeitVon: "09:00", UhrzeitBis: "10:30", Dauer: 90}},
		{name: "zero duration", termin: Termin{Dauer: 0}},
		{name: "seconds in time", termin: Termin{UhrzeitVon: "09:00:00"}},
		{name: "negative duration", termin: Termin{Dauer: -5}, wantErr: true},
		{name: "bad date", termin: Termin{Datum: "05.03.2024"}, wantErr: true},
		{name: "bad start", termin: Termin{UhrzeitVon: "9 Uhr"}, wantErr: true},
		{name: "bad end", termin: Termin{UhrzeitBis: "late"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.termin.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTermin_Date(t *testing.T) {
	d, ok := Termin{Datum: "2024-03-05"}.Date()
	require.True(t, ok)
	assert.Equal(t, time.March, d.Month())

	_, ok = Termin{}.Date()
	assert.False(t, ok)
}

func TestAppSettings(t *testing.T) {
	var s AppSettings
	assert.False(t, s.HasAPIKey())
	assert.Empty(t, s.MaskedAPIKey())

	s.AnthropicAPIKey = "sk-ant-123456"
	assert.True(t, s.HasAPIKey())
	assert.Equal(t, "****3456", s.MaskedAPIKey())

	s.AnthropicAPIKey = "abc"
	assert.Equal(t, "****", s.MaskedAPIKey())

	data, err := json.Marshal(AppSettings{AnthropicAPIKey: "k1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"anthropicApiKey":"k1","anthropicBaseUrl":""}`, string(data))
}
