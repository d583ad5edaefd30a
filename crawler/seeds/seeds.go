// Package seeds loads crawl seed lists from disk and keeps them up to date
// while the file changes.
package seeds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Load reads one seed URL per line from path. Blank lines and lines starting
// with '#' are ignored.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seeds: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads a seed list from r using the same format as Load.
func Parse(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("seeds: %w", err)
	}

	return urls, nil
}

// Watch invokes onChange with the reloaded seed list every time the file at
// path is written, created or replaced. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// editors which save through a rename keep triggering reloads.
func Watch(ctx context.Context, path string, logger *logrus.Entry, onChange func([]string)) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("seeds: creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err = watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("seeds: watching %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}

			urls, err := Load(path)
			if err != nil {
				// A rename away leaves nothing to read until the new file lands.
				if !errors.Is(err, os.ErrNotExist) && logger != nil {
					logger.WithField("err", err).Warn("unable to reload seed list")
				}

				continue
			}

			if logger != nil {
				logger.WithField("seed_count", len(urls)).Info("reloaded seed list")
			}
			onChange(urls)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if logger != nil {
				logger.WithField("err", err).Warn("seed watcher error")
			}
		}
	}
}
