package scan

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/samcharles93/klipverify/internal/record"
)

const klipperDoc = `{"app":"Klipper","version":"v0.11.0","config":{"MCU":"stm32g0b1xx","CLOCK_FREQ":64000000,"RESERVE_PINS_USB":"PA11,PA12"}}`

func compress(t *testing.T, doc string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(doc)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compress close: %v", err)
	}
	return buf.Bytes()
}

func noise(size int, seed uint64) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(r.UintN(256))
	}
	return out
}

func embed(dst []byte, off int, payload []byte) []byte {
	copy(dst[off:], payload)
	return dst
}

func TestLocateAtOffset(t *testing.T) {
	t.Parallel()

	data := embed(noise(1000, 1), 37, compress(t, klipperDoc))
	m, ok, err := Locator{}.Locate(context.Background(), data)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected record to be found")
	}
	if m.Offset != 37 {
		t.Fatalf("offset mismatch: got %d want 37", m.Offset)
	}
	if m.Record.Version != "v0.11.0" {
		t.Fatalf("version mismatch: got %q", m.Record.Version)
	}
}

func TestLocateFirstMatchWins(t *testing.T) {
	t.Parallel()

	first := compress(t, `{"app":"Klipper","version":"first"}`)
	second := compress(t, `{"app":"Klipper","version":"second"}`)
	data := noise(2048, 2)
	embed(data, 100, first)
	embed(data, 900, second)

	m, ok, err := Locator{}.Locate(context.Background(), data)
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if m.Offset != 100 || m.Record.Version != "first" {
		t.Fatalf("expected first record at 100, got %q at %d", m.Record.Version, m.Offset)
	}
}

func TestLocateSkipsOtherApplications(t *testing.T) {
	t.Parallel()

	data := noise(2048, 3)
	embed(data, 10, compress(t, `{"app":"Other","version":"nope"}`))
	embed(data, 400, compress(t, `{"version":"no app"}`))
	embed(data, 800, compress(t, `not json at all`))
	embed(data, 1200, compress(t, `{"app":"Klipper","version":"yes"}`))

	m, ok, err := Locator{}.Locate(context.Background(), data)
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if m.Offset != 1200 || m.Record.Version != "yes" {
		t.Fatalf("expected Klipper record at 1200, got %q at %d", m.Record.Version, m.Offset)
	}
}

func TestLocateNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single byte", []byte{0x78}},
		{"noise", noise(4096, 4)},
		{"other application only", embed(noise(1024, 5), 50, compress(t, `{"app":"Marlin"}`))},
		{"truncated stream", compress(t, klipperDoc)[:40]},
	}

	for _, tc := range tests {
		_, ok, err := Locator{}.Locate(context.Background(), tc.data)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if ok {
			t.Errorf("%s: expected no record", tc.name)
		}
	}
}

func TestLocateCustomApplication(t *testing.T) {
	t.Parallel()

	data := embed(noise(1024, 6), 64, compress(t, `{"app":"Katapult","version":"v1"}`))
	m, ok, err := Locator{Application: "Katapult"}.Locate(context.Background(), data)
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if m.Offset != 64 {
		t.Fatalf("offset mismatch: got %d", m.Offset)
	}
}

func TestLocateCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := Locator{}.Locate(ctx, noise(8192, 7))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ok {
		t.Fatal("cancelled scan must not report a match")
	}
}

func TestLocateParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	data := noise(1<<16, 8)
	// Straddles the boundary between the first and second chunk.
	embed(data, 16380, compress(t, `{"app":"Klipper","version":"boundary"}`))
	embed(data, 40000, compress(t, `{"app":"Klipper","version":"later"}`))

	seq, ok, err := Locator{}.Locate(context.Background(), data)
	if err != nil || !ok {
		t.Fatalf("sequential Locate: ok=%v err=%v", ok, err)
	}
	for _, workers := range []int{2, 4, 7} {
		par, ok, err := Locator{Workers: workers}.Locate(context.Background(), data)
		if err != nil || !ok {
			t.Fatalf("parallel Locate(%d): ok=%v err=%v", workers, ok, err)
		}
		if par.Offset != seq.Offset || par.Record.Version != seq.Record.Version {
			t.Fatalf("workers=%d: got %q at %d, want %q at %d",
				workers, par.Record.Version, par.Offset, seq.Record.Version, seq.Offset)
		}
	}
	if seq.Offset != 16380 {
		t.Fatalf("expected boundary record first, got offset %d", seq.Offset)
	}
}

func TestLocateParallelNotFound(t *testing.T) {
	t.Parallel()

	_, ok, err := Locator{Workers: 4}.Locate(context.Background(), noise(1<<15, 9))
	if err != nil || ok {
		t.Fatalf("expected no match, got ok=%v err=%v", ok, err)
	}
}

func TestLocateCustomSniffer(t *testing.T) {
	t.Parallel()

	data := []byte("....KLIPPER....")
	s := SnifferFunc(func(b []byte) (record.Record, bool) {
		if bytes.HasPrefix(b, []byte("KLIPPER")) {
			return record.Record{Application: record.KlipperApplication}, true
		}
		return record.Record{}, false
	})
	m, ok, err := Locator{Sniffer: s}.Locate(context.Background(), data)
	if err != nil || !ok {
		t.Fatalf("Locate: ok=%v err=%v", ok, err)
	}
	if m.Offset != 4 {
		t.Fatalf("offset mismatch: got %d want 4", m.Offset)
	}
}
