package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"go.viam.com/motionsequence/logging"
)

// watchSequences calls onChange for a sequence file every time it is written, until ctx is done.
// Directories are watched rather than files so editors that replace the file on save are seen too.
func watchSequences(
	ctx context.Context,
	logger logging.Logger,
	paths []string,
	onChange func(ctx context.Context, path string),
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer watcher.Close()

	watched := map[string]string{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = path
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return errors.Wrapf(err, "cannot watch %q", path)
		}
	}
	logger.Infow("watching sequences for changes", "files", paths)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			path, ok := watched[abs]
			if !ok {
				continue
			}
			logger.Debugw("sequence changed", "file", path, "op", event.Op.String())
			onChange(ctx, path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watcher error", "error", err)
		}
	}
}
