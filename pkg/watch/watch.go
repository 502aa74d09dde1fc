package watch

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/treesync/treesync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// Watch watches the tree rooted at root, and sends an event on the returned
// channel whenever a file within it changes. Bursts of filesystem events are
// coalesced: after the first event, the watcher waits out the debounce
// interval, discards whatever else arrived in the meantime, and notifies
// once.
func Watch(root string, debounce time.Duration, clock clockwork.Clock) (chan struct{}, error) {
	paths, err := subdirectories(root)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}
	return debounceEvents(watcher.Events, debounce, clock), nil
}

func debounceEvents(events <-chan fsnotify.Event, debounce time.Duration, clock clockwork.Clock) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for range events {
			clock.Sleep(debounce)
			drain(events)

			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

func drain(events <-chan fsnotify.Event) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

// subdirectories returns root and every directory beneath it. fsnotify
// watches are not recursive, so each directory has to be registered
// individually.
func subdirectories(root string) ([]string, error) {
	fi, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: root}
		}
		return nil, errors.WithContext(err, "stat")
	}
	if !fi.IsDir() {
		return nil, errors.InvalidPathError{Path: root, Reason: "not a directory"}
	}

	var paths []string
	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			// Unreadable subtrees degrade to being unwatched, matching how
			// the scanner treats them.
			log.WithError(err).WithField("path", path).Debug("Failed to walk")
			return nil
		}

		if fi.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithContext(err, "walk")
	}
	return paths, nil
}
