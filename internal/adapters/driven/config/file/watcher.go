package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/logger"
)

// invalidator is implemented by stores that can drop a single cached prompt.
type invalidator interface {
	Invalidate(name string)
}

// PromptWatcher reloads a PromptStore whenever a prompt file changes.
type PromptWatcher struct {
	store   driven.PromptStore
	dir     string
	watcher *fsnotify.Watcher
}

// NewPromptWatcher watches dir for prompt edits. The directory is created if missing.
func NewPromptWatcher(store driven.PromptStore, dir string) (*PromptWatcher, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create prompt directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &PromptWatcher{store: store, dir: dir, watcher: w}, nil
}

// Run blocks until ctx is done, reloading the store on every relevant event.
// onReload, if non-nil, is called after each reload.
func (w *PromptWatcher) Run(ctx context.Context, onReload func(name string)) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			name, relevant := promptEvent(event)
			if !relevant {
				continue
			}
			if inv, ok := w.store.(invalidator); ok {
				inv.Invalidate(name)
			} else {
				w.store.Reload()
			}
			logger.Debug("prompt %q changed (%s)", name, event.Op)
			if onReload != nil {
				onReload(name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// Close stops watching.
func (w *PromptWatcher) Close() error {
	return w.watcher.Close()
}

// promptEvent reports whether event touches a prompt file, and which prompt.
// Hidden files, non-.txt files and chmod-only events are ignored.
func promptEvent(event fsnotify.Event) (string, bool) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != ".txt" {
		return "", false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}
