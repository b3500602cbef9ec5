package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// HotReloadable is the subset of Config that Watch will apply on a live
// file change without requiring a restart: fields that don't affect
// wire-level chunk framing.
type HotReloadable struct {
	CompositionOffsetMillis int32
	TelemetryEnabled        bool
	TelemetryAddress        string
}

func (c *Config) hotReloadable() HotReloadable {
	return HotReloadable{
		CompositionOffsetMillis: c.Publish.CompositionOffsetMillis,
		TelemetryEnabled:        c.Telemetry.Enabled,
		TelemetryAddress:        c.Telemetry.Address,
	}
}

// Watch reloads path on every write event and invokes onChange with the
// fields that are safe to apply live, until stop is closed. Decode errors
// on a reload are logged and ignored; the previous good configuration
// keeps applying.
func Watch(path string, logger *zap.SugaredLogger, onChange func(HotReloadable), stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "config: create watcher")
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "config: watch %s", path)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					logger.Warnw("config reload failed, keeping previous configuration", "error", err)
					continue
				}
				logger.Infow("config reloaded", "path", path)
				onChange(cfg.hotReloadable())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnw("config watcher error", "error", err)
			}
		}
	}()

	return nil
}
