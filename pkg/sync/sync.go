package sync

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/treesync/treesync/pkg/errors"
	"github.com/treesync/treesync/pkg/scan"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// Reconcile makes the tree rooted at dstRoot match the source index: the
// delete phase removes destination entries absent from the source, then the
// create/update phase copies in entries that are new or changed.
//
// The destination index is a snapshot taken before any deletion, and
// presence decisions in the create/update phase come from that snapshot, not
// from the disk. Per-entry failures are recorded in the returned report and
// never abort the run. Nil indexes are a programming error.
func Reconcile(src, dst *scan.Index, dstRoot string) *Report {
	if src == nil || dst == nil {
		panic("reconcile requires both a source and a destination index")
	}

	report := &Report{}
	deleteOrphans(src, dst, report)
	applySource(src, dst, dstRoot, report)
	return report
}

// deleteOrphans removes destination entries that don't exist in the source.
// The stored post-order means children are visited before their parents, so
// each directory is already empty by the time it's removed.
func deleteOrphans(src, dst *scan.Index, report *Report) {
	for _, entry := range dst.Entries() {
		if src.Has(entry.RelPath) {
			continue
		}

		log.WithField("path", entry.RelPath).Info("Deleting")
		err := fs.Remove(entry.AbsPath)
		if err != nil {
			log.WithError(err).WithField("path", entry.RelPath).Error("Failed to delete")
		}
		report.record(entry.RelPath, OpDelete, err)
	}
}

// applySource creates or updates destination entries to match the source.
// Iterating the post-order index in reverse yields parents before children,
// so a directory always exists before its contents are written.
func applySource(src, dst *scan.Index, dstRoot string, report *Report) {
	entries := src.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		dstPath := filepath.Join(dstRoot, entry.RelPath)

		existing, ok := dst.Get(entry.RelPath)
		if !ok {
			log.WithField("path", entry.RelPath).Info("Creating")
			err := create(entry, dstPath)
			if err != nil {
				log.WithError(err).WithField("path", entry.RelPath).Error("Failed to create")
			}
			report.record(entry.RelPath, OpCreate, err)
			continue
		}

		if entry.IsDir != existing.IsDir {
			// A directory on one side and a plain file on the other can't be
			// reconciled without a merge policy the user hasn't given us.
			// Surface the conflict and leave both sides alone.
			log.WithField("path", entry.RelPath).Warn("Directory/file type conflict, not syncing")
			report.record(entry.RelPath, OpConflict, nil)
			continue
		}

		if entry.IsDir || unchanged(entry, existing) {
			continue
		}

		log.WithField("path", entry.RelPath).Info("Updating")
		err := copyFile(entry, dstPath)
		if err != nil {
			log.WithError(err).WithField("path", entry.RelPath).Error("Failed to update")
		}
		report.record(entry.RelPath, OpUpdate, err)
	}
}

// unchanged returns whether a file can be skipped (i.e. whether a copy is
// unnecessary). Only size and modification time are compared; contents are
// never hashed.
func unchanged(src, dst scan.Entry) bool {
	return src.Size == dst.Size && src.ModTime.Equal(dst.ModTime)
}

func create(entry scan.Entry, dstPath string) error {
	if entry.IsDir {
		// The directory's descendants follow later in the iteration, so an
		// empty directory is all that's needed here.
		return fs.Mkdir(dstPath, entry.Mode.Perm())
	}
	return copyFile(entry, dstPath)
}

// copyFile copies the source entry's contents to dstPath as a fresh regular
// file, and preserves the source's mode and modification time.
func copyFile(entry scan.Entry, dstPath string) error {
	// The scanner never indexes symbolic links, so anything at dstPath that
	// isn't in the destination index could be one. Writing through it would
	// follow the link and clobber its target, which can live outside the
	// destination tree. Remove whatever occupies the path instead of
	// truncating it in place.
	if err := clearDestination(dstPath); err != nil {
		return err
	}

	srcFile, err := fs.Open(entry.AbsPath)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	dstFile, err := fs.Create(dstPath)
	if err != nil {
		return errors.WithContext(err, "create destination")
	}

	_, err = io.Copy(dstFile, srcFile)
	if closeErr := dstFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.WithContext(err, "copy contents")
	}

	if err := fs.Chmod(dstPath, entry.Mode); err != nil {
		return errors.WithContext(err, "preserve mode")
	}
	if err := fs.Chtimes(dstPath, entry.ModTime, entry.ModTime); err != nil {
		return errors.WithContext(err, "preserve modification time")
	}
	return nil
}

// clearDestination removes whatever currently occupies path, without
// following it if it's a symbolic link. A path that doesn't exist is fine.
func clearDestination(path string) error {
	var err error
	if lstater, ok := fs.(afero.Lstater); ok {
		_, _, err = lstater.LstatIfPossible(path)
	} else {
		_, err = fs.Stat(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithContext(err, "stat destination")
	}

	if err := fs.Remove(path); err != nil {
		return errors.WithContext(err, "remove destination")
	}
	return nil
}
