/*
DESCRIPTION
  watch_test.go tests the directory Watcher: new audio files are picked
  up and handed to the registered handler, while other files are ignored.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
)

func TestWatcherPicksUpAudioFiles(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []string
	handler := func(path string) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, filepath.Base(path))
		return nil
	}

	w := New((*logging.TestLogger)(t), dir, handler)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer w.Stop()

	if !w.IsRunning() {
		t.Error("IsRunning() = false immediately after Start()")
	}

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatal("handler was never invoked for clip.wav")
	}
	for _, name := range seen {
		if name != "clip.wav" {
			t.Errorf("handler invoked for unexpected file %q", name)
		}
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
}
