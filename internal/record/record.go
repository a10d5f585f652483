// Package record decodes the configuration document that Klipper embeds in
// its firmware images.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// KlipperApplication is the "app" value of a Klipper firmware record.
const KlipperApplication = "Klipper"

var (
	ErrMalformedDocument = errors.New("record: malformed document")
	ErrMissingField      = errors.New("record: missing field")
)

// Record is a decoded configuration document.
// Config values are strings, json.Number, bools, nil or nested JSON values.
type Record struct {
	Application string
	Version     string
	Config      map[string]any
}

// Decode parses a UTF-8 JSON object with at least a string "app" field.
func Decode(b []byte) (Record, error) {
	if !utf8.Valid(b) {
		return Record{}, fmt.Errorf("%w: invalid utf-8", ErrMalformedDocument)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return Record{}, fmt.Errorf("%w: trailing data", ErrMalformedDocument)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("%w: top-level value is %T, not an object", ErrMalformedDocument, doc)
	}

	app, ok := obj["app"].(string)
	if !ok {
		return Record{}, fmt.Errorf("%w: app", ErrMissingField)
	}

	rec := Record{
		Application: app,
		Config:      map[string]any{},
	}

	switch v := obj["version"].(type) {
	case nil:
	case string:
		rec.Version = v
	default:
		rec.Version = fmt.Sprint(v)
	}

	if raw, present := obj["config"]; present && raw != nil {
		cfg, ok := raw.(map[string]any)
		if !ok {
			return Record{}, fmt.Errorf("%w: config is %T, not an object", ErrMalformedDocument, raw)
		}
		rec.Config = cfg
	}

	return rec, nil
}

// IsKlipper reports whether the record carries the Klipper application tag.
func (r Record) IsKlipper() bool {
	return r.Application == KlipperApplication
}
