package profile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk profiles document.
//
//	profiles:
//	  - name: stm32h723xx
//	    fields:
//	      MCU: stm32h723xx
//	      CLOCK_FREQ: 400000000
type File struct {
	Profiles []fileProfile `yaml:"profiles"`
}

type fileProfile struct {
	Name   string    `yaml:"name"`
	Fields yaml.Node `yaml:"fields"`
}

// Parse decodes a profiles document. Field order follows the document.
func Parse(r io.Reader) ([]Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc File
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	out := make([]Profile, 0, len(doc.Profiles))
	for _, fp := range doc.Profiles {
		fields, err := decodeFields(fp.Name, &fp.Fields)
		if err != nil {
			return nil, err
		}
		p := Profile{Name: fp.Name, Fields: fields}
		if err := p.validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadFile parses the profiles file at path.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	profiles, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

// Merge overlays profiles onto base; same-named profiles are replaced.
func Merge(base *Registry, profiles []Profile) (*Registry, error) {
	r, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, p := range base.Profiles() {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	for _, p := range profiles {
		if err := r.Replace(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func decodeFields(name string, n *yaml.Node) ([]Field, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: fields must be a mapping (line %d)", ErrInvalidProfile, name, n.Line)
	}
	fields := make([]Field, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: %s: field on line %d must be a scalar", ErrInvalidProfile, name, k.Line)
		}
		val, err := scalarValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidProfile, name, k.Value, err)
		}
		fields = append(fields, Field{Key: k.Value, Value: val})
	}
	return fields, nil
}

func scalarValue(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!str":
		return String(n.Value), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, err
		}
		return Int(i), nil
	default:
		return Value{}, fmt.Errorf("unsupported value %q (%s), want string or integer", n.Value, n.ShortTag())
	}
}
