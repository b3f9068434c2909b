package batchrename

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

type Renamer interface {
	Scan(ctx context.Context, dir string, recursive bool) ([]FileEntry, error)
	Plan(files []FileEntry, opts PlanOptions) (*RenamePlan, error)
	Execute(ctx context.Context, dir string, plan *RenamePlan) (*ExecuteResult, error)
	Undo(ctx context.Context) (*UndoResult, error)
	PendingUndo() bool
}

type DefaultRenamer struct {
	// mu serializes Execute and Undo within the process.
	mu        sync.Mutex
	scanner   Scanner
	validator Validator
	store     *LogStore
	config    *Config
	log       *slog.Logger
}

func NewDefaultRenamer(config *Config, logger *slog.Logger) (*DefaultRenamer, error) {
	validator := NewDefaultValidator()
	if err := validator.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultRenamer{
		scanner:   NewFilesystemScanner(config),
		validator: validator,
		store:     NewLogStore(config.LogFile),
		config:    config,
		log:       logger,
	}, nil
}

func (r *DefaultRenamer) Scan(ctx context.Context, dir string, recursive bool) ([]FileEntry, error) {
	files, err := r.scanner.ScanDirectory(ctx, dir, recursive)
	if err != nil {
		return nil, err
	}
	r.log.DebugContext(ctx, "scanned directory", "dir", dir, "recursive", recursive, "files", len(files))
	return files, nil
}

func (r *DefaultRenamer) Plan(files []FileEntry, opts PlanOptions) (*RenamePlan, error) {
	return GeneratePlan(files, opts)
}

// Execute applies every pair of plan independently and in order. A failed
// pair never stops the batch. Nothing is renamed unless the log location is
// writable. The log is rewritten whenever at least one file was renamed; an
// ErrLogWrite is returned together with the result when that write fails.
// Cancelling ctx stops the batch between files; the files renamed so far are
// logged and returned with the context error.
func (r *DefaultRenamer) Execute(ctx context.Context, dir string, plan *RenamePlan) (*ExecuteResult, error) {
	if err := r.validator.ValidateDirectory(dir); err != nil {
		return nil, err
	}
	if plan == nil || plan.Len() == 0 {
		return nil, ErrEmptyFileList
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.CheckWritable(); err != nil {
		return nil, err
	}

	result := &ExecuteResult{
		Renamed: []LogEntry{},
	}

	var ctxErr error
	for _, pair := range plan.Pairs {
		if ctxErr = ctx.Err(); ctxErr != nil {
			r.log.WarnContext(ctx, "batch interrupted", "renamed", len(result.Renamed), "remaining", plan.Len()-len(result.Renamed)-len(result.Failed))
			break
		}

		oldPath := pair.Source.Path
		newPath := filepath.Join(filepath.Dir(oldPath), pair.NewName)

		if err := checkVacant(newPath); err != nil {
			r.log.WarnContext(ctx, "skipping rename", "from", pair.Source.Name, "to", pair.NewName, "reason", err)
			result.Failed = append(result.Failed, failure(pair.Source.Name, pair.NewName, err))
			continue
		}

		if err := os.Rename(oldPath, newPath); err != nil {
			r.log.ErrorContext(ctx, "rename failed", "from", pair.Source.Name, "to", pair.NewName, "error", err)
			result.Failed = append(result.Failed, failure(pair.Source.Name, pair.NewName, err))
			continue
		}

		r.log.DebugContext(ctx, "renamed", "from", oldPath, "to", newPath)
		result.Renamed = append(result.Renamed, LogEntry{
			OldName: pair.Source.Name,
			NewName: pair.NewName,
			OldPath: oldPath,
			NewPath: newPath,
		})
	}

	if len(result.Renamed) > 0 {
		if err := r.store.Save(result.Renamed); err != nil {
			return result, err
		}
		result.LogPath = r.store.Path()
		r.log.InfoContext(ctx, "rename log saved", "path", result.LogPath, "entries", len(result.Renamed))
	}

	if ctxErr != nil {
		return result, fmt.Errorf("rename interrupted: %w", ctxErr)
	}
	return result, nil
}

// Undo restores the last batch from the log, most recent rename first. The
// log is deleted only when every entry was restored so a partial undo can be
// retried.
func (r *DefaultRenamer) Undo(ctx context.Context) (*UndoResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	r.log.InfoContext(ctx, "undoing batch", "entries", len(entries))
	result := &UndoResult{
		Restored: []LogEntry{},
	}

	for _, entry := range slices.Backward(entries) {
		if _, err := os.Lstat(entry.NewPath); err != nil {
			reason := err
			if errors.Is(err, os.ErrNotExist) {
				reason = errors.New(ReasonFileNotFound)
			}
			r.log.WarnContext(ctx, "cannot restore", "file", entry.NewName, "reason", reason)
			result.Failed = append(result.Failed, failure(entry.NewName, entry.OldName, reason))
			continue
		}

		if err := checkVacant(entry.OldPath); err != nil {
			r.log.WarnContext(ctx, "cannot restore", "file", entry.NewName, "reason", err)
			result.Failed = append(result.Failed, failure(entry.NewName, entry.OldName, err))
			continue
		}

		if err := os.Rename(entry.NewPath, entry.OldPath); err != nil {
			r.log.ErrorContext(ctx, "restore failed", "from", entry.NewName, "to", entry.OldName, "error", err)
			result.Failed = append(result.Failed, failure(entry.NewName, entry.OldName, err))
			continue
		}

		r.log.DebugContext(ctx, "restored", "from", entry.NewPath, "to", entry.OldPath)
		result.Restored = append(result.Restored, entry)
	}

	if len(result.Failed) == 0 {
		if err := r.store.Remove(); err != nil {
			return result, fmt.Errorf("remove rename log: %w", err)
		}
		result.LogCleared = true
	}

	return result, nil
}

func (r *DefaultRenamer) PendingUndo() bool {
	return r.store.Exists()
}

func (r *DefaultRenamer) LogPath() string {
	return r.store.Path()
}

// checkVacant returns ErrNameCollision when something already occupies path.
func checkVacant(path string) error {
	_, err := os.Lstat(path)
	if err == nil {
		return ErrNameCollision
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func failure(oldName, newName string, err error) RenameFailure {
	return RenameFailure{
		OldName: oldName,
		NewName: newName,
		Reason:  err.Error(),
	}
}
