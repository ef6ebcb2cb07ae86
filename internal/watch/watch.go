// Package watch tails a growing log file, delivering appended lines as they
// are written. It is the engine behind follow mode, where diagnostics are
// extracted from a test run that is still in progress.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/desmoke/desmoke/internal/logging"
)

// LineFunc receives one complete line, without its trailing newline.
type LineFunc func(line string) error

// Follow reads path from the beginning and then keeps delivering lines as the
// file grows, until ctx is cancelled. A partial line at the end of the file
// is held back until its newline arrives. Truncation restarts from the top of
// the file.
func Follow(ctx context.Context, path string, fn LineFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	var buf lineBuffer
	offset, err := drain(f, 0, &buf, fn)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return fmt.Errorf("%s was removed while following", path)
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if info.Size() < offset {
				logging.Debug("file truncated, restarting", "path", path)
				offset = 0
				buf.reset()
			}
			offset, err = drain(f, offset, &buf, fn)
			if err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error on %s: %w", path, err)
		}
	}
}

// drain reads everything available past offset, feeding complete lines to fn,
// and returns the new offset.
func drain(f *os.File, offset int64, buf *lineBuffer, fn LineFunc) (int64, error) {
	chunk := make([]byte, 64*1024)
	for {
		n, err := f.ReadAt(chunk, offset)
		if n > 0 {
			offset += int64(n)
			for _, line := range buf.append(string(chunk[:n])) {
				if err := fn(line); err != nil {
					return offset, err
				}
			}
		}
		if err == io.EOF {
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("failed to read: %w", err)
		}
	}
}

// lineBuffer splits a stream of chunks into complete lines, holding back a
// trailing partial line until the rest of it arrives.
type lineBuffer struct {
	partial string
}

func (b *lineBuffer) append(chunk string) []string {
	data := b.partial + chunk
	var lines []string
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, data[:i])
		data = data[i+1:]
	}
	b.partial = data
	return lines
}

func (b *lineBuffer) reset() {
	b.partial = ""
}
