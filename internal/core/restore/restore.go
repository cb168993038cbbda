// Package restore writes reconstructed snapshots back to disk with a
// backup-before-overwrite contract and all-or-nothing writes.
package restore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

// ErrBackupFailed means the pre-overwrite safety copy could not be made.
// A restore never proceeds without one when the target exists.
var ErrBackupFailed = errors.New("backup failed")

// Result describes a completed restore
type Result struct {
	Path       string
	BackupPath string // empty when the target did not exist
	Bytes      int
}

// Executor writes snapshots to disk
type Executor struct {
	// BackupDir receives safety copies; empty means alongside the target
	BackupDir string
}

// Restore writes snapshot content to its target path. Existing content is
// copied to a backup first; the write itself goes through a temp file and
// an atomic rename so a crash cannot leave a truncated target.
func (e *Executor) Restore(snap *models.Snapshot) (*Result, error) {
	target := snap.TargetPath
	res := &Result{Path: target, Bytes: len(snap.Content)}

	mode := os.FileMode(0644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
		backup, berr := e.backup(target)
		if berr != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackupFailed, berr)
		}
		res.BackupPath = backup
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Temp file in the target's directory so the rename stays on one
	// filesystem
	tmp, err := os.CreateTemp(filepath.Dir(target), ".ccrewind-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(snap.Content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("failed to set mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return res, nil
}

// backup copies the current target bytes aside and returns the backup
// path. The suffix carries a timestamp and a uuid fragment so repeated
// restores never collide.
func (e *Executor) backup(target string) (string, error) {
	dir := e.BackupDir
	if dir == "" {
		dir = filepath.Dir(target)
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s.%d.%s.ccbak",
		filepath.Base(target), time.Now().Unix(), uuid.NewString()[:8])
	backupPath := filepath.Join(dir, name)

	src, err := os.Open(target)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = src.Close()
	}()

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(backupPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(backupPath)
		return "", err
	}
	return backupPath, nil
}
