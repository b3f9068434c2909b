package batchrename

import "errors"

var (
	ErrPathNotFound  = errors.New("path does not exist")
	ErrNotDirectory  = errors.New("path is not a directory")
	ErrEmptyFileList = errors.New("no files found")
	ErrEmptyPrefix   = errors.New("prefix cannot be empty")
	ErrInvalidPrefix = errors.New("invalid prefix")
	ErrNameCollision = errors.New("already exists")
	ErrLogMissing    = errors.New("rename log not found")
	ErrLogEmpty      = errors.New("rename log is empty")
	ErrLogParse      = errors.New("rename log is corrupt")
	ErrLogWrite      = errors.New("failed to write rename log")
	ErrInvalidNumber = errors.New("start number must be an integer")
)

// Reasons recorded on a RenameFailure when no underlying I/O error exists.
const (
	ReasonAlreadyExists = "already exists"
	ReasonFileNotFound  = "file not found"
)
