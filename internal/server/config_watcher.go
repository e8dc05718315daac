package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const configDebounce = 100 * time.Millisecond

// ConfigWatcher reloads a config file whenever it is written, created or
// replaced. The parent directory is watched because editors often save by
// renaming a temporary file over the original.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	update  func(func(*Config))

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	timer *time.Timer
}

// WatchConfig starts watching path. Each reload runs through update, which
// must call its argument with the config owned by the file while holding the
// lock that Stop is called under. Decode errors are logged and leave the
// config unchanged.
func WatchConfig(path string, update func(func(*Config))) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cw := &ConfigWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		update:  update,
		ctx:     ctx,
		cancel:  cancel,
	}

	cw.wg.Add(1)
	go cw.processEvents()
	log.Infof("watching config file %s", cw.path)
	return cw, nil
}

// Stop ends the watch and waits for the event loop to exit.
func (cw *ConfigWatcher) Stop() error {
	cw.cancel()
	err := cw.watcher.Close()
	cw.wg.Wait()

	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	return err
}

func (cw *ConfigWatcher) processEvents() {
	defer cw.wg.Done()
	for {
		select {
		case <-cw.ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				cw.schedule()
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("config watcher: %v", err)
		}
	}
}

// schedule coalesces bursts of events into a single reload.
func (cw *ConfigWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(configDebounce, cw.reload)
}

func (cw *ConfigWatcher) reload() {
	if cw.ctx.Err() != nil {
		return
	}
	data, err := os.ReadFile(cw.path)
	if err != nil {
		log.Errorf("reloading config: %v", err)
		return
	}
	cw.update(func(c *Config) {
		// Stop may have run while this reload waited for the lock.
		if cw.ctx.Err() != nil {
			return
		}
		cfg, err := MergeConfig(DefaultConfig(), data)
		if err != nil {
			log.Errorf("reloading config %s: %v", cw.path, err)
			return
		}
		*c = cfg
		log.Infof("reloaded config from %s", cw.path)
	})
}
