// Package storage manages the storage root holding uploads in flight and
// finished artifacts.
//
// Layout:
//
//	{root}/{jobID}.csv         finished artifact
//	{root}/.work/upload-*       spooled upload, deleted after processing
//	{root}/.work/{jobID}.part   artifact being written, renamed on commit
//
// Only finished artifacts live directly under the root, which is the set of
// files the retention sweeper considers.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Harsh-BH/csvflag/internal/domain"
)

const (
	workDirName      = ".work"
	artifactExt      = ".csv"
	partialExt       = ".part"
	spoolFilePattern = "upload-*"
)

// ArtifactStore reads and writes job files below a storage root.
type ArtifactStore struct {
	fs      afero.Fs
	root    string
	workDir string
}

// NewArtifactStore creates the storage root and its work area if needed.
func NewArtifactStore(fsys afero.Fs, root string) (*ArtifactStore, error) {
	s := &ArtifactStore{
		fs:      fsys,
		root:    root,
		workDir: filepath.Join(root, workDirName),
	}
	if err := fsys.MkdirAll(s.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", s.workDir, err)
	}
	return s, nil
}

// Fs returns the filesystem the store writes to.
func (s *ArtifactStore) Fs() afero.Fs { return s.fs }

// Root returns the storage root directory.
func (s *ArtifactStore) Root() string { return s.root }

// ArtifactPath returns the location of a job's finished artifact.
func (s *ArtifactStore) ArtifactPath(jobID string) string {
	return filepath.Join(s.root, jobID+artifactExt)
}

// Spool copies r into a new file in the work area. It returns the spool path
// and the number of bytes written. When r holds more than limit bytes the
// spool file is removed and domain.ErrPayloadTooLarge is returned.
func (s *ArtifactStore) Spool(r io.Reader, limit int64) (string, int64, error) {
	f, err := afero.TempFile(s.fs, s.workDir, spoolFilePattern)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create spool file: %w", err)
	}
	path := f.Name()

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = domain.ErrPayloadTooLarge
	}
	if err != nil {
		_ = s.fs.Remove(path)
		if errors.Is(err, domain.ErrPayloadTooLarge) {
			return "", n, err
		}
		return "", n, fmt.Errorf("storage: spool upload: %w", err)
	}
	return path, n, nil
}

// OpenSpool opens a spooled upload for reading.
func (s *ArtifactStore) OpenSpool(path string) (io.ReadCloser, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open spool: %w", err)
	}
	return f, nil
}

// RemoveSpool deletes a spooled upload. A missing file is not an error.
func (s *ArtifactStore) RemoveSpool(path string) error {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove spool: %w", err)
	}
	return nil
}

// Create starts writing a job's artifact. Nothing is visible at
// ArtifactPath until Commit succeeds.
func (s *ArtifactStore) Create(jobID string) (*PendingArtifact, error) {
	partial := filepath.Join(s.workDir, jobID+partialExt)
	f, err := s.fs.Create(partial)
	if err != nil {
		return nil, fmt.Errorf("storage: create artifact: %w", err)
	}
	return &PendingArtifact{
		fs:      s.fs,
		file:    f,
		partial: partial,
		final:   s.ArtifactPath(jobID),
	}, nil
}

// Open returns a handle to a finished artifact and its size. A missing
// artifact yields domain.ErrArtifactMissing.
func (s *ArtifactStore) Open(path string) (io.ReadCloser, int64, error) {
	f, err := s.fs.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, domain.ErrArtifactMissing
	}
	if err != nil {
		return nil, 0, fmt.Errorf("storage: open artifact: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("storage: stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, 0, domain.ErrArtifactMissing
	}
	return f, info.Size(), nil
}

// RemoveArtifact deletes a committed artifact. A missing file is not an error.
func (s *ArtifactStore) RemoveArtifact(path string) error {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove artifact: %w", err)
	}
	return nil
}

// Ping checks that the storage root is still reachable.
func (s *ArtifactStore) Ping() error {
	info, err := s.fs.Stat(s.root)
	if err != nil {
		return fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage: %s is not a directory", s.root)
	}
	return nil
}

// PendingArtifact is an artifact being written.
type PendingArtifact struct {
	fs      afero.Fs
	file    afero.File
	partial string
	final   string
	done    bool
}

func (p *PendingArtifact) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// Path returns where the artifact will live once committed.
func (p *PendingArtifact) Path() string { return p.final }

// Commit closes the artifact and moves it into place.
func (p *PendingArtifact) Commit() error {
	if p.done {
		return nil
	}
	p.done = true
	if err := p.file.Sync(); err != nil {
		p.discard()
		return fmt.Errorf("storage: sync artifact: %w", err)
	}
	if err := p.file.Close(); err != nil {
		_ = p.fs.Remove(p.partial)
		return fmt.Errorf("storage: close artifact: %w", err)
	}
	if err := p.fs.Rename(p.partial, p.final); err != nil {
		_ = p.fs.Remove(p.partial)
		return fmt.Errorf("storage: commit artifact: %w", err)
	}
	return nil
}

// Abort discards a partially written artifact. It is a no-op after Commit.
func (p *PendingArtifact) Abort() {
	if p.done {
		return
	}
	p.done = true
	p.discard()
}

func (p *PendingArtifact) discard() {
	_ = p.file.Close()
	_ = p.fs.Remove(p.partial)
}
