// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package script

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher re-runs a callback whenever a script file changes.
//
// Editors often save through several writes or a rename, so changes are
// debounced: the callback runs once the file has been quiet for the
// debounce delay.
type Watcher struct {
	path     string
	onChange func(path string)

	watcher       *fsnotify.Watcher
	debounceDelay time.Duration
	logger        zerolog.Logger

	// mu protects debounceTimer
	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for the script at path. A non-positive
// debounce falls back to 100ms.
func NewWatcher(path string, debounce time.Duration, logger zerolog.Logger, onChange func(path string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	return &Watcher{
		path:          path,
		onChange:      onChange,
		watcher:       watcher,
		debounceDelay: debounce,
		logger:        logger.With().Str("component", "script.watcher").Logger(),
	}, nil
}

// Start watches until ctx is cancelled or the watcher is closed.
// It blocks, so callers usually run it on its own goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	// fsnotify loses the file across rename-on-save, so watch the directory.
	dir, file := filepath.Dir(w.path), filepath.Base(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error().Err(err).Str("dir", dir).Msg("Failed to watch script directory")
		return err
	}

	w.logger.Info().Str("file", w.path).Dur("debounce", w.debounceDelay).Msg("Watching script")

	defer func() {
		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
		w.logger.Info().Msg("Stopped watching script")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug().Str("op", event.Op.String()).Str("file", event.Name).Msg("Script changed")
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		w.onChange(w.path)
	})
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
