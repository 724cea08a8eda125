package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the configuration whenever the config file changes on
// disk. It returns immediately; watching stops when ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) {
	if m.configPath == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("failed to create config watcher; hot reload disabled")
		return
	}

	// Watch the directory rather than only the file so atomic writes
	// (write temp + rename) are still observed.
	configDir := filepath.Dir(m.configPath)
	if err := watcher.Add(configDir); err != nil {
		log.WithError(err).WithField("dir", configDir).Warn("failed to watch config directory; hot reload disabled")
		watcher.Close()
		return
	}
	_ = watcher.Add(m.configPath)

	log.WithField("path", m.configPath).Info("config watcher started")

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.configPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, func() {
					if err := m.Reload(); err != nil {
						log.WithError(err).Warn("config reload failed; keeping previous configuration")
					} else {
						log.Info("configuration reloaded")
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")

			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			}
		}
	}()
}
