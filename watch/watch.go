/*
DESCRIPTION
  watch.go implements a directory watcher that invokes a handler for each
  new audio file that appears, for batch/automation use of the hdcd-detect
  tool against a drop folder.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package watch provides a directory watcher used by hdcd-detect's -watch
// mode: audio files created or written in a directory are handed to a
// caller-supplied handler on each such filesystem event.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/utils/logging"
)

// Handler is called for every create or write event on an audio file in
// the watched directory. path is the file's full path. One file can be
// handed over several times, and a call can arrive before the file has
// been completely written.
type Handler func(path string) error

// extensions is the set of file suffixes treated as audio input; anything
// else dropped into the watched directory is ignored.
var extensions = map[string]bool{
	".wav":  true,
	".flac": true,
}

// Watcher watches a single directory for audio files being created or
// written and invokes a Handler on each such event. It is safe to Stop concurrently with the
// watch loop, but not to Start twice without an intervening Stop.
type Watcher struct {
	dir     string
	log     logging.Logger
	handler Handler

	mu        sync.Mutex
	w         *fsnotify.Watcher
	isRunning bool
	done      chan struct{}
}

// New returns a new Watcher over dir, invoking handler for each new audio
// file observed.
func New(l logging.Logger, dir string, handler Handler) *Watcher {
	return &Watcher{dir: dir, log: l, handler: handler}
}

// Start begins watching the directory, returning once the underlying
// filesystem watch is installed. Events are processed on a background
// goroutine until Stop is called.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create fsnotify watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("could not watch directory %s: %w", w.dir, err)
	}

	w.w = fw
	w.done = make(chan struct{})
	w.isRunning = true
	go w.loop(fw, w.done)
	return nil
}

// loop drains fsnotify events until done is closed, calling the handler for
// each create or write event on a recognised audio file.
func (w *Watcher) loop(fw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !extensions[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			if err := w.handler(ev.Name); err != nil {
				w.log.Error("hdcd-detect: watch handler failed", "path", ev.Name, "error", err.Error())
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Error("hdcd-detect: watch error", "error", err.Error())
		case <-done:
			return
		}
	}
}

// Stop signals the event loop to exit and closes the underlying filesystem
// watch. It returns without waiting for the loop to exit, so a handler call
// already in progress can still be running.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isRunning {
		return nil
	}
	close(w.done)
	err := w.w.Close()
	w.isRunning = false
	return err
}

// IsRunning reports whether the watcher's event loop is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}
