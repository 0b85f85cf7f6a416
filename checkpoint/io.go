package checkpoint

import (
	"os"
	"path/filepath"

	"github.com/niceyeti/ionhop/errs"
)

// Phase names the two on-disk checkpoints a run keeps: pre-run state
// and main-run state.
type Phase string

const (
	PhasePrerun Phase = "prerun"
	PhaseMain   Phase = "main"
)

// Paths returns the primary and backup file paths for a checkpoint
// phase within ioDir.
func Paths(ioDir string, phase Phase) (primary, backup string) {
	base := filepath.Join(ioDir, "state."+string(phase))
	return base, base + ".bak"
}

// WriteAtomic encodes s and writes it via rename-primary-to-backup-then-
// write; the new content is never written to the backup path and then
// renamed over the primary. Block-boundary file writes survive a crash
// mid-write: if a
// primary already exists, it is renamed to the backup path first, the
// new content is then written to a fresh primary, and only once that
// write succeeds is the backup removed. A crash between the rename and
// the removal leaves the previous generation intact at the backup
// path, ready for Load to fall back to.
func WriteAtomic(ioDir string, phase Phase, s *State) error {
	const fn = "checkpoint.WriteAtomic"
	primary, backup := Paths(ioDir, phase)

	hadPrimary := true
	if _, err := os.Stat(primary); err != nil {
		if !os.IsNotExist(err) {
			return errs.Wrap(errs.File, fn, err)
		}
		hadPrimary = false
	}

	if hadPrimary {
		if err := os.Rename(primary, backup); err != nil {
			return errs.Wrap(errs.File, fn, err)
		}
	}

	buf := s.Encode()
	if err := writeFileSynced(primary, buf); err != nil {
		return errs.Wrap(errs.File, fn, err)
	}

	if hadPrimary {
		if err := os.Remove(backup); err != nil {
			return errs.Wrap(errs.File, fn, err)
		}
	}
	return nil
}

func writeFileSynced(path string, buf []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads the primary checkpoint file for phase, falling back to the
// backup copy if the primary is missing, truncated, or otherwise fails
// to decode. A missing primary and missing backup is not an error: the
// caller starts from job-model defaults.
func Load(ioDir string, phase Phase, collectionCount, particleLimit int) (*State, error) {
	const fn = "checkpoint.Load"
	primary, backup := Paths(ioDir, phase)

	if s, err := loadOne(primary, collectionCount, particleLimit); err == nil {
		return s, nil
	}

	s, err := loadOne(backup, collectionCount, particleLimit)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.File, fn, err)
	}
	return s, nil
}

func loadOne(path string, collectionCount, particleLimit int) (*State, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(buf, collectionCount, particleLimit)
}
