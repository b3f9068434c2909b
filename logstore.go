package batchrename

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

const DefaultFilePermissions = 0644

// LogStore persists the rename log of the most recent batch. Every method
// holds an advisory lock on "<path>.lock" for its duration, which excludes
// other processes. Callers within one process serialize themselves.
type LogStore struct {
	path string
}

func NewLogStore(path string) *LogStore {
	return &LogStore{path: path}
}

// lock returns a held file lock. A fresh flock.Flock is used per call since
// one instance reports success when it already holds the lock.
func (s *LogStore) lock() (*flock.Flock, error) {
	lock := flock.New(s.lockPath())
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	return lock, nil
}

func (s *LogStore) lockPath() string {
	return s.path + ".lock"
}

func (s *LogStore) Path() string {
	return s.path
}

// Exists reports whether a batch is pending undo.
func (s *LogStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

func (s *LogStore) Load() ([]LogEntry, error) {
	lock, err := s.lock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLogMissing, s.path)
		}
		return nil, fmt.Errorf("lock rename log: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLogMissing, s.path)
		}
		return nil, fmt.Errorf("read rename log: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLogEmpty, s.path)
	}

	var entries []LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLogParse, s.path, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLogEmpty, s.path)
	}
	return entries, nil
}

// Save replaces the log with entries. The new content is written to a
// temporary file first so a failed write leaves the previous log intact.
func (s *LogStore) Save(entries []LogEntry) error {
	lock, err := s.lock()
	if err != nil {
		return fmt.Errorf("%w: lock: %v", ErrLogWrite, err)
	}
	defer func() { _ = lock.Unlock() }()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, tempPattern(s.path))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	if err := tmp.Chmod(DefaultFilePermissions); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	return nil
}

// CheckWritable verifies that the log can be replaced by creating and
// removing a temporary file next to it. Nothing else is touched.
func (s *LogStore) CheckWritable() error {
	lock, err := s.lock()
	if err != nil {
		return fmt.Errorf("%w: lock: %v", ErrLogWrite, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), tempPattern(s.path))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	_ = tmp.Close()
	if err := os.Remove(tmp.Name()); err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}

	if info, err := os.Stat(s.path); err == nil && !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrLogWrite, s.path)
	}
	return nil
}

// Remove deletes the log and its lock file.
func (s *LogStore) Remove() error {
	lock, err := s.lock()
	if err != nil {
		return fmt.Errorf("lock rename log: %w", err)
	}

	err = os.Remove(s.path)
	_ = lock.Unlock()
	_ = os.Remove(lock.Path())

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func tempPattern(logPath string) string {
	return "." + filepath.Base(logPath) + ".*.tmp"
}

// isLogArtifact reports whether path is the log, its lock or one of its
// temporary files, none of which may be renamed as part of a batch.
func isLogArtifact(logPath, path string) bool {
	if logPath == "" {
		return false
	}
	if path == logPath || path == logPath+".lock" {
		return true
	}
	if filepath.Dir(path) != filepath.Dir(logPath) {
		return false
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, "."+filepath.Base(logPath)+".") && strings.HasSuffix(base, ".tmp")
}
