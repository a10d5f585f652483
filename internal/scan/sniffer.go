package scan

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/samcharles93/klipverify/internal/record"
)

// DefaultMaxRecordSize bounds the decompressed size of a candidate record.
const DefaultMaxRecordSize = 16 << 20

// Sniffer reports whether a decodable record starts at the beginning of b.
// Implementations must be safe for concurrent use when the Locator runs
// with more than one worker.
type Sniffer interface {
	Sniff(b []byte) (record.Record, bool)
}

// SnifferFunc adapts a function to the Sniffer interface.
type SnifferFunc func(b []byte) (record.Record, bool)

func (f SnifferFunc) Sniff(b []byte) (record.Record, bool) {
	return f(b)
}

// ZlibJSON decodes a zlib stream holding a JSON record.
type ZlibJSON struct {
	// MaxRecordSize caps the decompressed payload. Zero means DefaultMaxRecordSize,
	// a negative value disables the cap.
	MaxRecordSize int64
	// SkipHeaderCheck disables the two-byte zlib header pre-filter.
	SkipHeaderCheck bool
}

func (z ZlibJSON) Sniff(b []byte) (record.Record, bool) {
	if !z.SkipHeaderCheck && !ValidZlibHeader(b) {
		return record.Record{}, false
	}

	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return record.Record{}, false
	}
	defer func() { _ = zr.Close() }()

	var src io.Reader = zr
	limit := z.MaxRecordSize
	if limit == 0 {
		limit = DefaultMaxRecordSize
	}
	if limit > 0 {
		src = io.LimitReader(zr, limit+1)
	}
	payload, err := io.ReadAll(src)
	if err != nil {
		return record.Record{}, false
	}
	if limit > 0 && int64(len(payload)) > limit {
		return record.Record{}, false
	}

	rec, err := record.Decode(payload)
	if err != nil {
		return record.Record{}, false
	}
	return rec, true
}

// ValidZlibHeader reports whether b starts with a zlib header that
// compress/zlib would accept without a preset dictionary (RFC 1950 section 2.2).
func ValidZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	cmf, flg := b[0], b[1]
	if cmf&0x0f != 8 || cmf>>4 > 7 {
		return false
	}
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return false
	}
	return flg&0x20 == 0
}
