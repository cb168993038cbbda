// Package diffengine renders unified diffs between snapshots and live
// files. Pure functions; the LCS work is difflib's.
package diffengine

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

// DefaultContext is the hunk context used when the caller passes 0
const DefaultContext = 3

// Snapshots diffs two reconstructed states of the same path
func Snapshots(before, after *models.Snapshot, context int) (string, error) {
	return Unified(
		fmt.Sprintf("%s@%s", before.TargetPath, short(before.AsOf)),
		fmt.Sprintf("%s@%s", after.TargetPath, short(after.AsOf)),
		string(before.Content), string(after.Content), context,
	)
}

// AgainstDisk diffs a snapshot against the file currently on disk. A
// missing file diffs against empty content.
func AgainstDisk(snap *models.Snapshot, context int) (string, error) {
	live, err := os.ReadFile(snap.TargetPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read %s: %w", snap.TargetPath, err)
		}
		live = nil
	}
	return Unified(
		fmt.Sprintf("%s@%s", snap.TargetPath, short(snap.AsOf)),
		snap.TargetPath+" (disk)",
		string(snap.Content), string(live), context,
	)
}

// Unified produces a unified diff between two strings. Empty output
// means the inputs are identical.
func Unified(fromName, toName, from, to string, context int) (string, error) {
	if context <= 0 {
		context = DefaultContext
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  context,
	})
	if err != nil {
		return "", fmt.Errorf("failed to compute diff: %w", err)
	}
	return text, nil
}

func short(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}
