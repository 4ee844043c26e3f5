package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/dhamidi/arrange/arrange"
	"github.com/dhamidi/arrange/config"
	"github.com/dhamidi/arrange/lang"
	"github.com/dhamidi/arrange/project"
)

// DefaultDebounce is how long Watch waits for a file to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch arranges the files under opts.Path once and then again whenever
// they change, until ctx is done. Each processed file is reported to
// notify, which may be nil. Writes made by Watch itself are recognized by
// their content and do not trigger another round.
func Watch(ctx context.Context, opts Options, debounce time.Duration, notify func(Result)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	opts.DryRun = false
	cfg := opts.configuration()
	a, err := arrange.New(cfg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w := &watch{
		a:       a,
		cfg:     cfg,
		opts:    &opts,
		fsw:     watcher,
		notify:  notify,
		pending: map[string]bool{},
		written: map[string]uint64{},
	}
	root := opts.root()
	if err := w.addDirs(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	files, err := project.Discover(opts.Path, cfg.Handlers, project.Options{Exclude: opts.Exclude})
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}
	for _, f := range files {
		w.run(f)
	}
	log.Infof("watching %s", root)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch error: %s", err)
		case <-timer.C:
			w.flush()
		}
	}
}

type watch struct {
	a      *arrange.Arranger
	cfg    *config.Configuration
	opts   *Options
	fsw    *fsnotify.Watcher
	notify func(Result)

	pending map[string]bool
	// written holds the hash of the last content written per file.
	written map[string]uint64
}

func (w *watch) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && project.IgnoredDirs[entry.Name()] {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// handle queues the file an event is about and reports whether anything
// was queued.
func (w *watch) handle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && !project.IgnoredDirs[info.Name()] {
			if err := w.addDirs(event.Name); err != nil {
				log.Warningf("failed to watch %s: %s", event.Name, err)
			}
		}
		return false
	}
	if _, err := lang.ForFile(w.cfg, event.Name); err != nil {
		return false
	}
	w.pending[event.Name] = true
	return true
}

func (w *watch) flush() {
	pending := w.pending
	w.pending = map[string]bool{}
	for path := range pending {
		w.run(path)
	}
}

func (w *watch) run(path string) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if sum, ok := w.written[path]; ok && err == nil && sum == xxhash.Sum64(src) {
		return
	}

	res, out := process(w.a, w.cfg, w.opts, path)
	if res.Skipped {
		return
	}
	if res.Err == nil && out != nil {
		w.written[path] = xxhash.Sum64(out)
	}
	if w.notify != nil {
		w.notify(res)
	}
}
