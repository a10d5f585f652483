// Package scan finds the configuration record embedded in a firmware image.
//
// The record may start at any byte, so every offset is tried in ascending
// order and the decoder itself decides whether a record starts there. Each
// failed attempt costs a decompression from that offset, which makes the
// worst case quadratic in the image size. Firmware images are small (hundreds
// of KiB) and the zlib header pre-filter rejects almost every offset before
// any decompression, so this is acceptable in practice.
package scan

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/klipverify/internal/record"
)

// checkInterval is how many offsets are scanned between context checks.
const checkInterval = 4096

// Match is the first accepted record and the offset it was found at.
type Match struct {
	Offset int
	Record record.Record
}

// Locator scans an image for the first record whose application tag matches.
type Locator struct {
	// Sniffer decodes candidate records. Nil means ZlibJSON{}.
	Sniffer Sniffer
	// Application is the required tag. Empty means record.KlipperApplication.
	Application string
	// Workers splits the scan across goroutines when greater than one.
	Workers int
}

// Locate returns the lowest offset holding a tag-matching record.
// The bool is false when no offset matches. The error is non-nil only
// when ctx is cancelled before the scan completes.
func (l Locator) Locate(ctx context.Context, data []byte) (Match, bool, error) {
	sniffer := l.Sniffer
	if sniffer == nil {
		sniffer = ZlibJSON{}
	}
	app := l.Application
	if app == "" {
		app = record.KlipperApplication
	}

	workers := l.Workers
	if workers > 1 && len(data) >= workers*checkInterval {
		return locateParallel(ctx, data, sniffer, app, workers)
	}

	idx, rec, err := scanRange(ctx, data, 0, len(data), sniffer, app, nil)
	if err != nil {
		return Match{}, false, err
	}
	if idx < 0 {
		return Match{}, false, nil
	}
	return Match{Offset: idx, Record: rec}, true, nil
}

// scanRange tries offsets [start, end) and returns the first match or -1.
// When best is non-nil the scan gives up once a match below start is known.
func scanRange(ctx context.Context, data []byte, start, end int, s Sniffer, app string, best *atomic.Int64) (int, record.Record, error) {
	for idx := start; idx < end; idx++ {
		if (idx-start)%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return -1, record.Record{}, err
			}
			if best != nil && best.Load() < int64(start) {
				return -1, record.Record{}, nil
			}
		}
		rec, ok := s.Sniff(data[idx:])
		if !ok || rec.Application != app {
			continue
		}
		return idx, rec, nil
	}
	return -1, record.Record{}, nil
}

func locateParallel(ctx context.Context, data []byte, s Sniffer, app string, workers int) (Match, bool, error) {
	chunk := (len(data) + workers - 1) / workers

	var best atomic.Int64
	best.Store(int64(len(data)))
	found := make([]Match, workers)
	ok := make([]bool, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, len(data))
		if start >= end {
			continue
		}
		g.Go(func() error {
			idx, rec, err := scanRange(gctx, data, start, end, s, app, &best)
			if err != nil || idx < 0 {
				return err
			}
			found[w] = Match{Offset: idx, Record: rec}
			ok[w] = true
			for {
				cur := best.Load()
				if int64(idx) >= cur || best.CompareAndSwap(cur, int64(idx)) {
					return nil
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Match{}, false, err
	}

	// Chunks are ordered by offset, so the first chunk with a match holds the minimum.
	for w := range found {
		if ok[w] {
			return found[w], true, nil
		}
	}
	return Match{}, false, nil
}
