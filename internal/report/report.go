// Package report renders verification results for operators.
package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-json"

	"github.com/samcharles93/klipverify/internal/compare"
	"github.com/samcharles93/klipverify/internal/record"
	"github.com/samcharles93/klipverify/internal/verify"
)

// InvalidFirmware is printed when no Klipper record is found.
const InvalidFirmware = "Invalid Klipper firmware binary file"

// Status values used in JSON documents.
const (
	StatusPassed   = "passed"
	StatusMismatch = "mismatch"
	StatusInvalid  = "invalid"
)

// WriteText prints the detected version and, for every profile key, the
// required and detected values.
func WriteText(w io.Writer, res verify.Result) error {
	if !res.Found {
		_, err := fmt.Fprintln(w, InvalidFirmware)
		return err
	}
	if _, err := fmt.Fprintf(w, "Detected Klipper binary version %s:\n", res.Record.Version); err != nil {
		return err
	}
	for _, c := range res.Report.Checks {
		if _, err := fmt.Fprintf(w, "  %s:\n    Must be : %s\n    Detected: %s\n",
			c.Key, c.Expected, c.DetectedString()); err != nil {
			return err
		}
	}
	return nil
}

// Document is the JSON form of a verification result.
type Document struct {
	Path        string          `json:"path,omitempty"`
	MCU         string          `json:"mcu"`
	Status      string          `json:"status"`
	Offset      *int            `json:"offset,omitempty"`
	Application string          `json:"application,omitempty"`
	Version     string          `json:"version,omitempty"`
	Checks      []compare.Check `json:"checks"`
	AllMatched  bool            `json:"all_matched"`
}

func Status(res verify.Result) string {
	switch {
	case !res.Found:
		return StatusInvalid
	case res.Report.AllMatched:
		return StatusPassed
	default:
		return StatusMismatch
	}
}

func NewDocument(res verify.Result) Document {
	doc := Document{
		Path:   res.Path,
		MCU:    res.Profile,
		Status: Status(res),
		Checks: []compare.Check{},
	}
	if res.Found {
		off := res.Offset
		doc.Offset = &off
		doc.Application = res.Record.Application
		doc.Version = res.Record.Version
		doc.Checks = res.Report.Checks
		doc.AllMatched = res.Report.AllMatched
	}
	return doc
}

// WriteJSON prints the result as an indented JSON document.
func WriteJSON(w io.Writer, res verify.Result) error {
	b, err := json.MarshalIndent(NewDocument(res), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteRecord prints every field of a located record, config keys sorted.
func WriteRecord(w io.Writer, offset int, rec record.Record) error {
	if _, err := fmt.Fprintf(w, "Record offset: %d (0x%x)\nApplication:   %s\nVersion:       %s\nConfig:\n",
		offset, offset, rec.Application, rec.Version); err != nil {
		return err
	}
	keys := make([]string, 0, len(rec.Config))
	for k := range rec.Config {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %s = %s\n", k, compare.FormatValue(rec.Config[k])); err != nil {
			return err
		}
	}
	return nil
}
