package followcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/splice/pkg/sse"
	"github.com/papercomputeco/splice/pkg/stream"
	"github.com/papercomputeco/splice/pkg/wire"
)

// tailDecoder pushes raw capture bytes through the SSE decoder and wire
// parser, folding decoded events into a message accumulator. Unlike the
// pull-based stream.Stream, it never blocks on a source: bytes go in as
// they land on disk and completed events come out.
type tailDecoder struct {
	dec *sse.Decoder
	acc *stream.Accumulator

	events       int64
	textDeltas   int64
	decodeErrors int64
}

func newTailDecoder() *tailDecoder {
	return &tailDecoder{
		dec: sse.NewDecoder(),
		acc: stream.NewAccumulator(),
	}
}

// Feed pushes one chunk and returns the wire events it completed. An event
// that fails to parse or apply is counted and dropped; the ones after it
// still come through.
func (t *tailDecoder) Feed(chunk []byte) []wire.Event {
	// Decoder writes never fail.
	_, _ = t.dec.Write(chunk)

	var out []wire.Event
	for {
		ev, ok := t.dec.Next()
		if !ok {
			return out
		}

		wev, err := wire.Parse(ev)
		if err != nil {
			t.decodeErrors++
			continue
		}
		if err := t.acc.Apply(wev); err != nil {
			t.decodeErrors++
			continue
		}

		t.events++
		if d, ok := wev.(wire.ContentBlockDelta); ok && d.Delta.Type == wire.DeltaText {
			t.textDeltas++
		}
		out = append(out, wev)
	}
}

// Snapshot returns the message accumulated so far, or nil before
// message_start.
func (t *tailDecoder) Snapshot() *wire.Message {
	return t.acc.Snapshot()
}

// tailCapture follows path, pushing bytes through td and handing each batch
// of completed events to sink. Existing bytes are decoded first, then the
// parent directory is watched for appends. Returns ctx.Err() when the
// context ends.
func tailCapture(ctx context.Context, path string, td *tailDecoder, sink func([]wire.Event)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening capture: %w", err)
	}
	defer file.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating capture watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching capture dir: %w", err)
	}

	buf := make([]byte, 32*1024)
	readAvailable := func() error {
		for {
			n, err := file.Read(buf)
			if n > 0 {
				if evs := td.Feed(buf[:n]); len(evs) > 0 {
					sink(evs)
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}

	if err := readAvailable(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := readAvailable(); err != nil {
				return err
			}
		case err := <-watcher.Errors:
			return fmt.Errorf("capture watcher error: %w", err)
		}
	}
}
