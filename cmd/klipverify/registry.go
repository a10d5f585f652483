package main

import (
	"fmt"
	"strings"

	"github.com/samcharles93/klipverify/internal/profile"
	"github.com/samcharles93/klipverify/internal/scan"
	"github.com/samcharles93/klipverify/internal/verify"
)

// buildRegistry returns the built-in profiles overlaid with those in path.
func buildRegistry(path string, withBuiltin bool) (*profile.Registry, error) {
	base := profile.Builtin()
	if !withBuiltin {
		var err error
		if base, err = profile.NewRegistry(); err != nil {
			return nil, err
		}
	}
	path = strings.TrimSpace(path)
	if path == "" {
		if base.Len() == 0 {
			return nil, fmt.Errorf("no profiles registered: --no-builtin requires --profiles")
		}
		return base, nil
	}
	loaded, err := profile.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	reg, err := profile.Merge(base, loaded)
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no profiles registered: %s defines none", path)
	}
	return reg, nil
}

func newVerifier() (*verify.Verifier, error) {
	reg, err := buildRegistry(profilesPath, !noBuiltin)
	if err != nil {
		return nil, err
	}
	v := verify.New(reg)
	v.Locator = scan.Locator{Workers: int(scanWorkers)}
	return v, nil
}
