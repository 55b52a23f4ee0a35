package testutils

import (
	"bytes"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// WriteCapture writes data to path as a plain capture file.
func WriteCapture(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// WriteGzipCapture writes data to path gzip-compressed.
func WriteGzipCapture(path string, data []byte) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteZstdCapture writes data to path zstd-compressed.
func WriteZstdCapture(path string, data []byte) error {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
