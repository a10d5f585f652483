// Package profile holds the expected build parameters for each supported MCU.
package profile

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownProfile   = errors.New("profile: unknown mcu")
	ErrDuplicateProfile = errors.New("profile: duplicate name")
	ErrInvalidProfile   = errors.New("profile: invalid definition")
)

// Field is one expected key/value pair.
type Field struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Profile is the ordered set of fields a firmware must carry for one MCU.
type Profile struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Lookup returns the expected value for key.
func (p Profile) Lookup(key string) (Value, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (p Profile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidProfile)
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("%w: %s has no fields", ErrInvalidProfile, p.Name)
	}
	seen := make(map[string]struct{}, len(p.Fields))
	for _, f := range p.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: %s has an empty key", ErrInvalidProfile, p.Name)
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: %s repeats key %s", ErrInvalidProfile, p.Name, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}

// Registry maps profile names to profiles in registration order.
// A Registry is not safe for concurrent mutation; lookups may run concurrently
// once registration is done.
type Registry struct {
	order    []string
	profiles map[string]Profile
}

func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p. Names must be unique; use Replace to override.
func (r *Registry) Register(p Profile) error {
	if err := p.validate(); err != nil {
		return err
	}
	if _, ok := r.profiles[p.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProfile, p.Name)
	}
	r.order = append(r.order, p.Name)
	r.profiles[p.Name] = p
	return nil
}

// Replace adds p or overwrites an existing profile of the same name in place.
func (r *Registry) Replace(p Profile) error {
	if err := p.validate(); err != nil {
		return err
	}
	if _, ok := r.profiles[p.Name]; !ok {
		r.order = append(r.order, p.Name)
	}
	r.profiles[p.Name] = p
	return nil
}

func (r *Registry) Lookup(name string) (Profile, error) {
	if r != nil {
		if p, ok := r.profiles[name]; ok {
			return p, nil
		}
	}
	return Profile{}, &UnknownProfileError{Name: name, Known: r.Names()}
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.order)
}

func (r *Registry) Profiles() []Profile {
	if r == nil {
		return nil
	}
	out := make([]Profile, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.profiles[name])
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// UnknownProfileError is returned by Lookup for unregistered names.
type UnknownProfileError struct {
	Name  string
	Known []string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("wrong mcu '%s', mcu must be one of: %s", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownProfileError) Unwrap() error {
	return ErrUnknownProfile
}
