package hub

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"evt/internal/common/fsutil"
	"evt/internal/config"
)

// Reload purges the registry and applies cfg's sinks. Sink kinds are checked
// first so an invalid config leaves the current subscriptions in place. Ids
// keep increasing across reloads.
func (h *Hub) Reload(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		h.reloadFailed(err)
		return badRequestError{err: err}
	}
	for i, s := range cfg.Sinks {
		if _, err := h.sinks.Handler(s.Kind); err != nil {
			err = fmt.Errorf("sinks[%d]: %w", i, err)
			h.reloadFailed(err)
			return badRequestError{err: err}
		}
	}
	h.reg.Purge()
	h.sinks.Counts.Reset()
	ids, err := h.sinks.Apply(h.reg, cfg.Sinks)
	if err != nil {
		h.reloadFailed(err)
		return err
	}
	h.mu.Lock()
	h.cfg = cfg
	h.lastErr = ""
	h.reloaded = time.Now()
	h.mu.Unlock()
	h.log.Info().Int("sinks", len(ids)).Msg("sinks applied")
	return nil
}

func (h *Hub) reloadFailed(err error) {
	h.mu.Lock()
	h.lastErr = err.Error()
	h.mu.Unlock()
}

// Config returns the last successfully applied configuration.
func (h *Hub) Config() config.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Watch reloads the sinks whenever the config file at path changes. It
// watches the parent directory so editors that replace the file are seen.
// Watch blocks until ctx is done.
func (h *Hub) Watch(ctx context.Context, path string) error {
	abs, err := fsutil.ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}

	log := h.log.With().Str("config", abs).Logger()
	log.Info().Msg("watching config for changes")
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := config.Load(abs)
			if err != nil {
				log.Warn().Err(err).Msg("config reload skipped")
				continue
			}
			if err := h.Reload(cfg); err != nil {
				log.Warn().Err(err).Msg("config reload failed")
				continue
			}
			log.Info().Msg("config reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case <-ctx.Done():
			return nil
		}
	}
}
