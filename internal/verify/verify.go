// Package verify ties loading, scanning and comparison together.
package verify

import (
	"context"
	"time"

	"github.com/samcharles93/klipverify/internal/compare"
	"github.com/samcharles93/klipverify/internal/firmware"
	"github.com/samcharles93/klipverify/internal/logger"
	"github.com/samcharles93/klipverify/internal/profile"
	"github.com/samcharles93/klipverify/internal/record"
	"github.com/samcharles93/klipverify/internal/scan"
)

// Result is the outcome of verifying one image against one profile.
type Result struct {
	Profile string
	Path    string
	Size    int
	// Found is false when no tag-matching record exists in the image.
	Found  bool
	Offset int
	Record record.Record
	Report compare.Report
}

// Passed reports whether a record was found and every profile key matched.
func (r Result) Passed() bool {
	return r.Found && r.Report.AllMatched
}

// Verifier checks firmware images against registered MCU profiles.
type Verifier struct {
	Registry *profile.Registry
	Locator  scan.Locator
}

func New(registry *profile.Registry) *Verifier {
	if registry == nil {
		registry = profile.Builtin()
	}
	return &Verifier{Registry: registry}
}

// Profile resolves mcu against the registry.
func (v *Verifier) Profile(mcu string) (profile.Profile, error) {
	return v.Registry.Lookup(mcu)
}

// VerifyFile resolves the profile before touching the file, then loads and
// verifies the image at path.
func (v *Verifier) VerifyFile(ctx context.Context, mcu, path string) (Result, error) {
	p, err := v.Profile(mcu)
	if err != nil {
		return Result{}, err
	}
	img, err := firmware.Load(path)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = img.Close() }()

	return v.VerifyImage(ctx, p, img)
}

// VerifyImage scans img for the embedded record and compares it with p.
// A missing record is reported through Result.Found, not as an error.
func (v *Verifier) VerifyImage(ctx context.Context, p profile.Profile, img *firmware.Image) (Result, error) {
	log := logger.FromContext(ctx).With("path", img.Path, "mcu", p.Name)

	res := Result{Profile: p.Name, Path: img.Path, Size: img.Len()}

	start := time.Now()
	m, ok, err := v.Locator.Locate(ctx, img.Bytes())
	if err != nil {
		return Result{}, err
	}
	log.Debug("scan finished", "bytes", img.Len(), "found", ok, "elapsed", time.Since(start))
	if !ok {
		return res, nil
	}

	res.Found = true
	res.Offset = m.Offset
	res.Record = m.Record
	res.Report = compare.Compare(m.Record, p)
	log.Debug("record located", "offset", m.Offset, "version", m.Record.Version, "matched", res.Report.AllMatched)
	return res, nil
}

// Inspect locates the record in the image at path without comparing it.
func (v *Verifier) Inspect(ctx context.Context, path string) (scan.Match, bool, error) {
	img, err := firmware.Load(path)
	if err != nil {
		return scan.Match{}, false, err
	}
	defer func() { _ = img.Close() }()

	m, ok, err := v.Locator.Locate(ctx, img.Bytes())
	if err != nil {
		return scan.Match{}, false, err
	}
	logger.FromContext(ctx).Debug("inspect finished", "path", path, "found", ok, "offset", m.Offset)
	return m, ok, nil
}
