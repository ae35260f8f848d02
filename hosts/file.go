package hosts

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// LoadFile reads one host URL per line. Blank lines and lines starting with
// '#' are ignored.
func LoadFile(path string) ([]*url.URL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hosts: open %s: %w", path, err)
	}
	defer f.Close()

	var raw []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw = append(raw, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hosts: read %s: %w", path, err)
	}

	hosts, err := Parse(raw...)
	if err != nil {
		return nil, fmt.Errorf("hosts: %s: %w", path, err)
	}
	return hosts, nil
}

// WatchFile loads path into pool and reloads it whenever the file changes,
// until ctx is done. A reload that fails or yields no hosts is logged and the
// previous hosts are kept. The initial load must succeed.
func WatchFile(ctx context.Context, path string, pool *Pool, logger *slog.Logger) error {
	logger = loggerOrDiscard(logger)

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("hosts: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("hosts: watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	// Watch the directory so editors that replace the file by rename are seen.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("hosts: watch %s: %w", path, err)
	}

	initial, err := LoadFile(abs)
	if err != nil {
		return err
	}
	if len(initial) == 0 {
		return fmt.Errorf("hosts: %s: %w", path, ErrNoHosts)
	}
	pool.Replace(initial...)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload(abs, pool, logger)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("hosts watcher error", slog.String("path", abs), slog.String("err", err.Error()))
		}
	}
}

func reload(path string, pool *Pool, logger *slog.Logger) {
	hosts, err := LoadFile(path)
	if err != nil {
		logger.Warn("hosts reload failed", slog.String("path", path), slog.String("err", err.Error()))
		return
	}
	if len(hosts) == 0 {
		logger.Warn("hosts reload produced no hosts, keeping previous list", slog.String("path", path))
		return
	}
	pool.Replace(hosts...)
	logger.Debug("hosts reloaded", slog.String("path", path), slog.Int("count", len(hosts)))
}
