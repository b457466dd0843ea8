package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/agentboard/agentboard/internal/logging"
)

// Watch reloads the config file whenever it changes on disk and hands the
// fresh config to onChange. A reload that fails validation is logged and
// dropped; the previous config stays in effect. The returned stop function
// tears the watcher down.
func Watch(path string, logger *logging.Logger, onChange func(*Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors and atomic writers replace
	// the file by rename, which drops a direct file watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Clean(path)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := NewLoader().WithConfigFile(path).Load()
				if err != nil {
					logger.Warn("config reload failed, keeping previous config",
						"path", path, "error", err)
					continue
				}
				logger.Info("config reloaded", "path", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
