// Package fh reads the plain-text Heidelberg tree-ring interchange format:
// HEADER: blocks of Key=Value metadata fields followed by DATA: blocks of
// whitespace-separated ring widths in 1/100 mm. Field names are matched
// case-insensitively. The reader produces tabular ring-width series; it
// feeds the dating step upstream of felling-date estimation and is not
// consumed by the estimators themselves.
package fh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "fellingdate/internal/errors"
)

// RingSeries is one measured series from a Heidelberg file.
type RingSeries struct {
	KeyCode string
	Kind    string // single, tree, chrono, halfchrono, double, quad
	Begin   int    // calendar year of the first ring, 0 when undated
	End     int    // calendar year of the last ring, 0 when undated
	Widths  []float64
	Fields  map[string]string // remaining header fields, lower-cased keys
}

// dataKinds are the recognized DATA block variants.
var dataKinds = map[string]bool{
	"single":     true,
	"tree":       true,
	"chrono":     true,
	"halfchrono": true,
	"double":     true,
	"quad":       true,
}

// ReadFile parses a Heidelberg file from disk.
func ReadFile(path string) ([]RingSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "open ring-width file %s", path)
	}
	defer f.Close()
	series, err := Read(f)
	if err != nil {
		return nil, apperrors.Wrapf(err, "parse ring-width file %s", path)
	}
	return series, nil
}

// Read parses Heidelberg-format content.
func Read(r io.Reader) ([]RingSeries, error) {
	var series []RingSeries
	var current *RingSeries
	inData := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		switch {
		case upper == "HEADER:":
			if current != nil {
				series = append(series, *current)
			}
			current = &RingSeries{Fields: make(map[string]string)}
			inData = false

		case strings.HasPrefix(upper, "DATA:"):
			if current == nil {
				return nil, fmt.Errorf("line %d: DATA block before any HEADER", lineNo)
			}
			kind := strings.ToLower(strings.TrimSpace(line[len("DATA:"):]))
			if kind != "" && !dataKinds[kind] {
				return nil, fmt.Errorf("line %d: unknown data kind %q", lineNo, kind)
			}
			if kind == "" {
				kind = "single"
			}
			current.Kind = kind
			inData = true

		case inData:
			for _, field := range strings.Fields(line) {
				v, err := strconv.Atoi(field)
				if err != nil {
					return nil, fmt.Errorf("line %d: ring width %q is not an integer", lineNo, field)
				}
				if v == 0 {
					// A zero value terminates the measurement block.
					inData = false
					break
				}
				current.Widths = append(current.Widths, float64(v)/100)
			}

		default:
			if current == nil {
				return nil, fmt.Errorf("line %d: field outside a HEADER block", lineNo)
			}
			key, value, found := strings.Cut(line, "=")
			if !found {
				return nil, fmt.Errorf("line %d: malformed header field %q", lineNo, line)
			}
			current.setField(strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		series = append(series, *current)
	}

	for i := range series {
		if series[i].KeyCode == "" {
			series[i].KeyCode = fmt.Sprintf("series_%d", i+1)
		}
	}
	return series, nil
}

func (s *RingSeries) setField(key, value string) {
	switch key {
	case "keycode":
		s.KeyCode = value
	case "datebegin":
		s.Begin, _ = strconv.Atoi(value)
	case "dateend":
		s.End, _ = strconv.Atoi(value)
	default:
		s.Fields[key] = value
	}
}

// WriteCSV exports parsed series as year,width rows, one block per series
// separated by a comment line. Undated series count years from 1.
func WriteCSV(w io.Writer, series []RingSeries) error {
	for _, s := range series {
		if _, err := fmt.Fprintf(w, "# %s (%s)\n", s.KeyCode, s.Kind); err != nil {
			return err
		}
		year := s.Begin
		if year == 0 {
			year = 1
		}
		for i, width := range s.Widths {
			if _, err := fmt.Fprintf(w, "%d,%.2f\n", year+i, width); err != nil {
				return err
			}
		}
	}
	return nil
}
