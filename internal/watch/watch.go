// Package watch monitors the config file for credential changes. Stored
// warm-boot hints point at a specific network; when the credentials on
// disk stop matching them the idle loop clears the persistent record so
// the next boot rediscovers.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/warmboot/pkg/bootstrap"
	"github.com/bft-labs/warmboot/pkg/log"
)

const debounceDelay = 100 * time.Millisecond

// Watcher signals on Changes when the credentials in the watched file no
// longer match the ones the device booted with.
type Watcher struct {
	path  string
	creds bootstrap.Credentials
	ch    chan struct{}
	log   log.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// New creates a watcher for path. creds are the credentials currently in
// use.
func New(path string, creds bootstrap.Credentials, logger log.Logger) *Watcher {
	return &Watcher{
		path:  path,
		creds: creds,
		ch:    make(chan struct{}, 1),
		log:   logger,
	}
}

// Changes returns the change signal channel. At most one signal is
// buffered; coalescing is fine since the reaction is idempotent.
func (w *Watcher) Changes() <-chan struct{} {
	return w.ch
}

// Run watches the file's directory until ctx is cancelled. Events are
// debounced because editors produce bursts of writes.
func (w *Watcher) Run(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Error("config watcher setup failed", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.log.Error("config watcher add failed", log.Str("path", w.path), log.Err(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.check)
}

// check reloads the credentials from disk and signals if they diverged.
func (w *Watcher) check() {
	var fc struct {
		SSID       string `toml:"ssid"`
		Passphrase string `toml:"passphrase"`
	}
	b, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("config reload failed", log.Str("path", w.path), log.Err(err))
		return
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		w.log.Warn("config reload failed", log.Str("path", w.path), log.Err(err))
		return
	}
	w.mu.Lock()
	unchanged := fc.SSID == "" || (fc.SSID == w.creds.SSID && fc.Passphrase == w.creds.Passphrase)
	if !unchanged {
		w.creds = bootstrap.Credentials{SSID: fc.SSID, Passphrase: fc.Passphrase}
	}
	w.mu.Unlock()
	if unchanged {
		return
	}

	w.log.Info("credentials changed on disk", log.Str("ssid", fc.SSID))
	select {
	case w.ch <- struct{}{}:
	default:
	}
}
