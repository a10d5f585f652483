package profile

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Kind is the declared type of a profile value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
)

// Value is an expected configuration value: either a string or an integer.
type Value struct {
	kind Kind
	str  string
	num  int64
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Int(n int64) Value { return Value{kind: KindInt, num: n} }

func (v Value) Kind() Kind { return v.kind }

// Str returns the string value and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Int64 returns the integer value and whether v is an integer.
func (v Value) Int64() (int64, bool) { return v.num, v.kind == KindInt }

func (v Value) String() string {
	if v.kind == KindInt {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindInt {
		return strconv.AppendInt(nil, v.num, 10), nil
	}
	return json.Marshal(v.str)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = String(s)
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("profile value %s: want string or integer", b)
	}
	*v = Int(n)
	return nil
}
