package cli

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/syssam/tablegen/compiler/store"
)

// DefaultDebounce is the quiet period after the last config change before
// regenerating.
const DefaultDebounce = 200 * time.Millisecond

// Watch calls run whenever the stored config of one of tables changes in
// the directory of fs, until ctx is done. Bursts of changes within the
// debounce period trigger a single run. An error returned by run stops
// the watch.
func Watch(ctx context.Context, fs *store.FileStore, tables []string, debounce time.Duration, log logrus.FieldLogger, run func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(fs.Dir()); err != nil {
		return err
	}
	want := make(map[string]bool, len(tables))
	for _, t := range tables {
		want[t] = true
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("config watch error")
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			table, ok := fs.Table(ev.Name)
			if !ok || !want[table] {
				continue
			}
			log.WithFields(logrus.Fields{"table": table, "op": ev.Op.String()}).Debug("stored config changed")
			timer.Reset(debounce)
		case <-timer.C:
			if err := run(ctx); err != nil {
				return err
			}
		}
	}
}
