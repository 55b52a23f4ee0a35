// Package capture opens recorded provider streams — text/event-stream or
// batch-results bodies saved to disk. Captures are often stored
// compressed; readers here detect gzip and zstd by their magic bytes and
// decompress transparently, so every consumer just sees the wire bytes.
package capture

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// NewReader wraps r, transparently decompressing gzip and zstd streams
// detected by their magic bytes. Anything else passes through unchanged.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)

	// A capture shorter than the magic is necessarily plain.
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("sniffing capture header: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip capture: %w", err)
		}
		return zr, nil

	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening zstd capture: %w", err)
		}
		return zr.IOReadCloser(), nil

	default:
		return io.NopCloser(br), nil
	}
}

// Open opens a capture file with transparent decompression. Closing the
// returned ReadCloser also closes the file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture: %w", err)
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &fileCapture{ReadCloser: r, file: f}, nil
}

// fileCapture closes both the decompressor and the backing file.
type fileCapture struct {
	io.ReadCloser
	file *os.File
}

func (c *fileCapture) Close() error {
	err := c.ReadCloser.Close()
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	return err
}
