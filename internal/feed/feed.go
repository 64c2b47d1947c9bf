// Mirrors a JSONL file into a live table, rate limiting reload bursts.

// Package feed replaces a table's state from a JSONL file, optionally
// re-reading it on every file change. It is the external mutation source
// used by the livetable demo binary and by integration tests.
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/livetable"
	"golang.org/x/time/rate"
)

// Record is the dynamic row shape decoded from JSONL lines.
type Record = map[string]any

// Feed tails one JSONL file into one table.
type Feed struct {
	table   *livetable.Table[Record]
	path    string
	limiter *rate.Limiter
}

// New creates a feed for path targeting table. Reloads are capped at
// maxPerSec so editor save bursts coalesce into one pass; 0 disables the
// cap.
func New(table *livetable.Table[Record], path string, maxPerSec float64) *Feed {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if maxPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxPerSec), 1)
	}
	return &Feed{table: table, path: filepath.Clean(path), limiter: limiter}
}

// Load reads the whole file and replaces the table state, triggering the
// table's notification fan-out. On any read or decode error the table is
// left untouched.
func (f *Feed) Load() error {
	rows, err := readJSONL(f.path)
	if err != nil {
		return err
	}
	f.table.Replace(rows)
	return nil
}

// Run watches the file and reloads on every write until ctx is done.
// Reload failures are logged, not fatal: a half-written file on one save is
// recovered by the next one.
func (f *Feed) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()
	// Watch the directory: editors replace files by rename, which drops a
	// watch registered on the file itself.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(f.path), err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := f.limiter.Wait(ctx); err != nil {
				return err
			}
			if err := f.Load(); err != nil {
				slog.WarnContext(ctx, "Failed to reload feed", "path", f.path, "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Error watching feed file", "err", err)
		}
	}
}

func readJSONL(path string) ([]Record, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file %s: %w", path, err)
	}
	defer func() {
		_ = fd.Close()
	}()

	var rows []Record
	scanner := bufio.NewScanner(fd)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row Record
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("failed to decode %s line %d: %w", path, lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed file %s: %w", path, err)
	}
	return rows, nil
}
