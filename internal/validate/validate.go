// Package validate checks Berufe JSON documents against the Beruf schema
// without contacting the extraction service.
package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed beruf.schema.json
var berufSchema []byte

const schemaURL = "beruf.schema.json"

// ErrNotArray is returned when the document is not a JSON array.
var ErrNotArray = errors.New("expected an array of Beruf objects")

// Exit codes for a validation run.
const (
	ExitValid   = 0
	ExitInvalid = 1
	ExitUsage   = 2
)

// Finding is one schema violation inside an item.
type Finding struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ItemReport lists the findings of one invalid item. Index is 1-based.
type ItemReport struct {
	Errors     []Finding `json:"errors"`
	Index      int       `json:"index"`
	ErrorCount int       `json:"errorCount"`
}

// Report is the result of validating a whole document.
type Report struct {
	Invalid []ItemReport `json:"invalid"`
	Total   int          `json:"total"`
	Valid   int          `json:"valid"`
}

// ExitCode is ExitValid when every item is valid and ExitInvalid otherwise.
func (r *Report) ExitCode() int {
	if r.Valid == r.Total {
		return ExitValid
	}
	return ExitInvalid
}

// Schema is a compiled Beruf schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles the embedded Beruf schema.
func Compile() (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(schemaURL, bytes.NewReader(berufSchema)); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// Berufe validates every item of the JSON array in data. At most maxErrors
// findings are kept per item; zero or less keeps all of them.
func (s *Schema) Berufe(data []byte, maxErrors int) (*Report, error) {
	var items []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w, got %s", ErrNotArray, typeErr.Value)
		}
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w, got null", ErrNotArray)
	}

	report := &Report{Total: len(items), Invalid: []ItemReport{}}
	for i, item := range items {
		err := s.schema.Validate(item)
		if err == nil {
			report.Valid++
			continue
		}

		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("failed to validate item %d: %w", i+1, err)
		}

		findings := leafFindings(verr)
		all := len(findings)
		if maxErrors > 0 && len(findings) > maxErrors {
			findings = findings[:maxErrors]
		}
		report.Invalid = append(report.Invalid, ItemReport{
			Index:      i + 1,
			ErrorCount: all,
			Errors:     findings,
		})
	}
	return report, nil
}

// leafFindings flattens the error tree into its most specific causes.
func leafFindings(verr *jsonschema.ValidationError) []Finding {
	if len(verr.Causes) == 0 {
		return []Finding{{Path: instancePath(verr.InstanceLocation), Message: verr.Message}}
	}
	var out []Finding
	for _, cause := range verr.Causes {
		out = append(out, leafFindings(cause)...)
	}
	return out
}

// instancePath turns a JSON pointer into a dotted path.
func instancePath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return "<root>"
	}
	parts := strings.Split(pointer, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}

// maxListedItems caps the invalid items printed by WriteText.
const maxListedItems = 20

// WriteText prints a summary followed by the first invalid items.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Validated %d objects: %d valid, %d invalid\n", r.Total, r.Valid, len(r.Invalid)); err != nil {
		return err
	}
	if len(r.Invalid) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "\nErrors (first items):"); err != nil {
		return err
	}
	for i, item := range r.Invalid {
		if i == maxListedItems {
			break
		}
		if _, err := fmt.Fprintf(w, "- Item #%d: %d error(s)\n", item.Index, item.ErrorCount); err != nil {
			return err
		}
		for _, f := range item.Errors {
			if _, err := fmt.Fprintf(w, "    %s: %s\n", f.Path, f.Message); err != nil {
				return err
			}
		}
	}
	return nil
}
