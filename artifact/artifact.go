// Package artifact writes export artifacts to disk atomically.
package artifact

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/gomlx/go-annotations/internal/files"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultDirCreationPerm is used when creating the directory of an artifact.
const DefaultDirCreationPerm = 0o755

// DefaultFileCreationPerm is the permission of written artifacts.
const DefaultFileCreationPerm = 0o644

// ErrExists is returned when the target exists and overwriting was not requested.
var ErrExists = errors.New("artifact already exists")

// lockPollInterval is the base period for polling a busy lock file; each wait adds
// a random jitter of up to the same amount.
var lockPollInterval = time.Second

// Write stores content at filePath.
//
// If filePath exists and force is false, it fails with ErrExists. Otherwise content is
// written to a temporary filePath+".writing*" file and then atomically moved to filePath.
//
// It uses filePath+".lock" to coordinate multiple processes (or goroutines) writing
// the same artifact. ctx is only used while waiting for that lock.
func Write(ctx context.Context, filePath string, content []byte, force bool) error {
	if !force && files.Exists(filePath) {
		return errors.Wrapf(ErrExists, "refusing to overwrite %q (use force to overwrite)", filePath)
	}

	// Checks whether context has already been cancelled, and exit immediately.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Create directory for file.
	if err := os.MkdirAll(filepath.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory for file %q", filePath)
	}

	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(ctx, lockPath, func() {
		if !force && files.Exists(filePath) {
			// Some concurrent other process (or goroutine) already wrote the file.
			mainErr = errors.Wrapf(ErrExists, "%q was written concurrently", filePath)
			return
		}
		mainErr = writeAndRename(filePath, content)
		if mainErr != nil {
			return
		}

		// File already exists, so we no longer need the lock file.
		if err := os.Remove(lockPath); err != nil {
			klog.Warningf("error removing lock file %q: %+v", lockPath, err)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to write %q", lockPath, filePath)
	}
	klog.V(1).Infof("artifact: wrote %d bytes to %s", len(content), filePath)
	return nil
}

func writeAndRename(filePath string, content []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".writing*")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %q", filePath)
	}
	tmpPath := tmpFile.Name()
	tmpFileClosed := false
	defer func() {
		// If we exit with an error, make sure to close and remove unfinished temporary file.
		if !tmpFileClosed {
			if err := tmpFile.Close(); err != nil {
				klog.Warningf("failed closing temporary file %q: %v", tmpPath, err)
			}
			if err := os.Remove(tmpPath); err != nil {
				klog.Warningf("failed removing temporary file %q: %v", tmpPath, err)
			}
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return errors.Wrapf(err, "failed to write %q", tmpPath)
	}
	if err := tmpFile.Chmod(DefaultFileCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to set permissions of %q", tmpPath)
	}
	if err := tmpFile.Sync(); err != nil {
		return errors.Wrapf(err, "failed to sync %q", tmpPath)
	}
	tmpFileClosed = true
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to close temporary file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to move %q to %q", tmpPath, filePath)
	}
	return nil
}

// execOnFileLock opens the lockPath file (or creates if it doesn't yet exist), locks it, and executes the function.
// If the lockPath is already locked, it polls with a randomized period until it acquires the lock or ctx is done.
//
// The lockPath is not removed. It's safe to remove it from the given fn, if one knows that no new calls to
// execOnFileLock with the same lockPath is going to be made.
func execOnFileLock(ctx context.Context, lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrapf(err, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		wait := lockPollInterval + rand.N(lockPollInterval)
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "waiting for lock %q", lockPath)
		case <-time.After(wait):
		}
	}

	// Setup clean up in a deferred function, so it happens even if `fn()` panics.
	defer func() {
		unlockErr := fileLock.Unlock()
		if unlockErr != nil {
			// If we already have an error, don't overwrite it
			if err == nil {
				err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
			} else {
				klog.Errorf("error unlocking file %q: %v", lockPath, unlockErr)
			}
		}
	}()

	fn()
	return
}
