package observer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnemet/deckforge/internal/config"
	"github.com/gnemet/deckforge/internal/generator"
	"github.com/gnemet/deckforge/internal/logger"
)

// Generator is the part of generator.Generator the observer needs.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (generator.Result, error)
}

// Observer watches an inbox directory for topic files and turns each one
// into a deck.
type Observer struct {
	cfg config.WatchConfig
	gen Generator
	log *logger.Logger
}

func NewObserver(cfg config.WatchConfig, gen Generator, log *logger.Logger) *Observer {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Done == "" {
		cfg.Done = filepath.Join(cfg.Inbox, "done")
	}
	return &Observer{cfg: cfg, gen: gen, log: log}
}

// Start blocks until ctx is cancelled or the watcher closes. Files are
// processed one at a time.
func (o *Observer) Start(ctx context.Context) error {
	inbox := o.cfg.Inbox
	if inbox == "" {
		return fmt.Errorf("watch inbox directory not configured")
	}
	for _, dir := range []string{inbox, o.cfg.Done} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(inbox); err != nil {
		return err
	}
	o.log.Info("Watching for topic files", "inbox", inbox, "done", o.cfg.Done)

	// Initial scan
	o.scanDirectory(ctx, inbox)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !IsTopicFile(event.Name) {
				continue
			}
			o.log.Debug("Detected change", "file", event.Name)

			// Let the writer finish before reading.
			select {
			case <-time.After(o.cfg.Debounce):
			case <-ctx.Done():
				return nil
			}
			o.processFile(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.log.Warn("Watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// IsTopicFile reports whether name looks like a topic request.
func IsTopicFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".topic", ".txt":
		return !strings.HasPrefix(filepath.Base(name), ".")
	}
	return false
}

func (o *Observer) scanDirectory(ctx context.Context, dir string) {
	files, err := os.ReadDir(dir)
	if err != nil {
		o.log.Warn("Failed to scan directory", "dir", dir, "error", err)
		return
	}
	for _, f := range files {
		if !f.IsDir() && IsTopicFile(f.Name()) {
			o.processFile(ctx, filepath.Join(dir, f.Name()))
		}
	}
}

func (o *Observer) processFile(ctx context.Context, path string) {
	filename := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		// create+write pairs fire twice; the first run already moved the file
		if !errors.Is(err, os.ErrNotExist) {
			o.log.Warn("Failed to read topic file", "file", filename, "error", err)
		}
		return
	}

	req, err := ParseTopicFile(data)
	if err != nil {
		o.log.Warn("Skipping topic file", "file", filename, "error", err)
		o.finalizeFile(path, filename+".failed")
		return
	}

	o.log.Info("Processing topic file", "file", filename, "topic", req.Topic, "style", req.Style)
	res, err := o.gen.Generate(ctx, req)
	if err != nil {
		o.log.Error("Failed to generate deck", "file", filename, "error", err)
		o.finalizeFile(path, filename+".failed")
		return
	}
	o.log.Info("Successfully processed", "file", filename, "output", res.Path)
	o.finalizeFile(path, filename)
}

func (o *Observer) finalizeFile(path, newName string) {
	newPath := filepath.Join(o.cfg.Done, newName)
	if path == newPath {
		return
	}
	if err := os.Rename(path, newPath); err != nil {
		o.log.Warn("Failed to move topic file", "file", path, "error", err)
		return
	}
	o.log.Debug("Moved topic file", "from", path, "to", newPath)
}

// ParseTopicFile reads a request from a topic file: the first non-empty
// line is the topic, an optional following "style: <name>" line picks the
// style.
func ParseTopicFile(data []byte) (generator.Request, error) {
	var req generator.Request
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if req.Topic == "" {
			req.Topic = line
			continue
		}
		if key, val, ok := strings.Cut(line, ":"); ok && strings.EqualFold(strings.TrimSpace(key), "style") {
			req.Style = strings.ToLower(strings.TrimSpace(val))
		}
		break
	}
	if err := sc.Err(); err != nil {
		return req, err
	}
	if req.Topic == "" {
		return req, generator.ErrEmptyTopic
	}
	return req, nil
}
