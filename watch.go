package urlwasher

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchConfigFile reloads the config at path whenever it changes and hands
// each new snapshot to apply. Configs that fail to load are logged and
// skipped. It blocks until ctx is done.
func WatchConfigFile(ctx context.Context, path string, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file rather than write it, so watch the
	// directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := LoadConfigFile(path)
			if err != nil {
				log.Errorf("Could not reload config: %v", err)
				continue
			}
			log.Debugf("Reloaded config from %v", path)
			apply(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Config watcher error: %v", err)
		}
	}
}
