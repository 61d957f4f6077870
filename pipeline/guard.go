// Package pipeline contains the batch drivers that run the mask
// stages over whole frame directories.  Stages communicate only
// through files on disk, frames are processed one at a time in
// ascending index order and per-frame failures never abort a batch.
package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard applies the overwrite policy for a stage's output directory.
// When outDir already contains files with the given extension the
// confirm callback decides whether they are deleted and the run
// proceeds.  A nil confirm means the caller is non-interactive and
// the run is skipped, existing output is never silently overwritten.
// Returns true when the stage should proceed.
func Guard(outDir, ext string, confirm func(count int) bool) (bool, error) {

	entries, err := os.ReadDir(outDir)

	if os.IsNotExist(err) {
		return true, nil
	}

	if err != nil {
		return false, fmt.Errorf("checking output directory: %w", err)
	}

	var existing []string

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			existing = append(existing, entry.Name())
		}
	}

	if len(existing) == 0 {
		return true, nil
	}

	if confirm == nil || !confirm(len(existing)) {
		return false, nil
	}

	for _, name := range existing {
		if err := os.Remove(filepath.Join(outDir, name)); err != nil {
			return false, fmt.Errorf("deleting existing output: %w", err)
		}
	}

	return true, nil
}

// ConfirmStdin returns a Guard confirmation callback that prompts for
// y/N on standard input.  When stdin is not a terminal it returns nil
// so Guard skips existing output instead of blocking on a prompt.
func ConfirmStdin(noun string) func(count int) bool {

	info, err := os.Stdin.Stat()

	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return nil
	}

	return func(count int) bool {

		fmt.Printf("WARNING: found %d existing %s. Delete and rerun? (y/N): ",
			count, noun)

		line, err := bufio.NewReader(os.Stdin).ReadString('\n')

		if err != nil {
			return false
		}

		return strings.EqualFold(strings.TrimSpace(line), "y")
	}
}
