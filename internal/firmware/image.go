package firmware

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Image is the read-only contents of a firmware file.
// The bytes must not be modified; a mapped image must be closed to release the mapping.
type Image struct {
	Path    string
	data    []byte
	mmapped bool
}

// Load reads the file at path into an Image. Memory mapping is preferred;
// if it is unavailable the file is read into memory with ReadAt.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classify(path, err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, classify(path, err)
	}
	if stat.IsDir() {
		return nil, &LoadError{Path: path, Kind: ErrIO, Err: errors.New("is a directory")}
	}

	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, &LoadError{Path: path, Kind: ErrIO, Err: fmt.Errorf("unsupported file size %d", size64)}
	}
	size := int(size64)
	if size == 0 {
		return &Image{Path: path, data: []byte{}}, nil
	}

	if data, err := mapFile(f, size); err == nil {
		return &Image{Path: path, data: data, mmapped: true}, nil
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return nil, classify(path, err)
	}
	return &Image{Path: path, data: data}, nil
}

// FromBytes wraps an in-memory buffer, e.g. an uploaded file.
func FromBytes(name string, data []byte) *Image {
	return &Image{Path: name, data: data}
}

// Bytes returns the image contents. The slice is only valid until Close.
func (img *Image) Bytes() []byte {
	if img == nil {
		return nil
	}
	return img.data
}

func (img *Image) Len() int {
	return len(img.Bytes())
}

func (img *Image) Close() error {
	if img == nil || img.data == nil {
		return nil
	}
	var err error
	if img.mmapped {
		err = unmapFile(img.data)
	}
	img.data = nil
	img.mmapped = false
	return err
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		if err == io.EOF {
			return nil, fmt.Errorf("short read: got %d of %d bytes", off, size)
		}
		return nil, err
	}
	return out, nil
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &LoadError{Path: path, Kind: ErrNotFound, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &LoadError{Path: path, Kind: ErrPermissionDenied, Err: err}
	default:
		return &LoadError{Path: path, Kind: ErrIO, Err: err}
	}
}
