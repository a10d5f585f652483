package verify

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/klipverify/internal/firmware"
	"github.com/samcharles93/klipverify/internal/profile"
)

func writeFirmware(t *testing.T, doc string, offset, size int) string {
	t.Helper()
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	_, _ = zw.Write([]byte(doc))
	if err := zw.Close(); err != nil {
		t.Fatalf("compress: %v", err)
	}
	data := bytes.Repeat([]byte{0xff, 0x00, 0x5a}, size/3+1)[:size]
	copy(data[offset:], z.Bytes())

	path := filepath.Join(t.TempDir(), "klipper.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write firmware: %v", err)
	}
	return path
}

func TestVerifyFilePasses(t *testing.T) {
	t.Parallel()

	doc := `{"app":"Klipper","version":"v0.11.0","config":{"MCU":"stm32g0b1xx","CLOCK_FREQ":64000000,"RESERVE_PINS_USB":"PA11,PA12"}}`
	path := writeFirmware(t, doc, 37, 1000)

	res, err := New(nil).VerifyFile(context.Background(), "stm32g0b1xx", path)
	if err != nil {
		t.Fatalf("VerifyFile returned error: %v", err)
	}
	if !res.Found || res.Offset != 37 {
		t.Fatalf("expected record at 37, got found=%v offset=%d", res.Found, res.Offset)
	}
	if !res.Passed() {
		t.Fatalf("expected pass, got %+v", res.Report)
	}
	if res.Record.Version != "v0.11.0" || res.Size != 1000 {
		t.Fatalf("unexpected result: version=%q size=%d", res.Record.Version, res.Size)
	}
}

func TestVerifyFileWrongProfile(t *testing.T) {
	t.Parallel()

	doc := `{"app":"Klipper","version":"v0.11.0","config":{"MCU":"stm32g0b1xx","CLOCK_FREQ":64000000,"RESERVE_PINS_USB":"PA11,PA12"}}`
	path := writeFirmware(t, doc, 0, 512)

	res, err := New(nil).VerifyFile(context.Background(), "stm32f042x6", path)
	if err != nil {
		t.Fatalf("VerifyFile returned error: %v", err)
	}
	if !res.Found || res.Passed() {
		t.Fatalf("expected found but failing result, got %+v", res)
	}
	if n := len(res.Report.Mismatches()); n != 2 {
		t.Fatalf("expected MCU and CLOCK_FREQ to mismatch, got %d mismatches", n)
	}
}

func TestVerifyFileNoRecord(t *testing.T) {
	t.Parallel()

	path := writeFirmware(t, `{"app":"Marlin"}`, 10, 256)
	res, err := New(nil).VerifyFile(context.Background(), "stm32g0b1xx", path)
	if err != nil {
		t.Fatalf("VerifyFile returned error: %v", err)
	}
	if res.Found || res.Passed() {
		t.Fatalf("expected no record, got %+v", res)
	}
}

func TestVerifyFileUnknownMCUSkipsIO(t *testing.T) {
	t.Parallel()

	_, err := New(nil).VerifyFile(context.Background(), "esp32", filepath.Join(t.TempDir(), "missing.bin"))
	if !errors.Is(err, profile.ErrUnknownProfile) {
		t.Fatalf("expected unknown profile error before any file access, got %v", err)
	}
}

func TestVerifyFileMissingPath(t *testing.T) {
	t.Parallel()

	_, err := New(nil).VerifyFile(context.Background(), "stm32g0b1xx", filepath.Join(t.TempDir(), "missing.bin"))
	if !errors.Is(err, firmware.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyImageCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := profile.Builtin().Lookup("stm32g0b1xx")
	_, err := New(nil).VerifyImage(ctx, p, firmware.FromBytes("mem", make([]byte, 1024)))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	path := writeFirmware(t, `{"app":"Klipper","version":"v0.12.0","config":{"MCU":"rp2040"}}`, 100, 400)
	m, ok, err := New(nil).Inspect(context.Background(), path)
	if err != nil || !ok {
		t.Fatalf("Inspect: ok=%v err=%v", ok, err)
	}
	if m.Offset != 100 || m.Record.Config["MCU"] != "rp2040" {
		t.Fatalf("unexpected match: %+v", m)
	}
}
