package firmware

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("firmware: path does not exist")
	ErrPermissionDenied = errors.New("firmware: no read permission")
	ErrIO               = errors.New("firmware: read error")
)

// LoadError reports why a firmware image could not be loaded.
// It unwraps to one of ErrNotFound, ErrPermissionDenied or ErrIO.
type LoadError struct {
	Path string
	Kind error
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil || e.Kind != ErrIO {
		return fmt.Sprintf("%s: %s", e.Path, describeKind(e.Kind))
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, describeKind(e.Kind), e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func describeKind(kind error) string {
	switch kind {
	case ErrNotFound:
		return "path does not exist"
	case ErrPermissionDenied:
		return "no read permission"
	default:
		return "read error"
	}
}
