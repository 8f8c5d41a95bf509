// =============================================================================
// HealthKit Export Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter:
//   - Output directory creation
//   - Atomic output writes (temp file + rename)
//   - Temp file naming
//   - Small file inspection helpers
//
// ATOMIC WRITE STRATEGY:
//   Output is first written to a hidden temp file next to the destination:
//     <dir>/.<name>.<uuid>.tmp
//   Only after the content is fully written, synced and closed is the temp
//   file renamed onto the destination. On any failure the temp file is
//   removed, so a failed run never leaves a partial output file behind.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles output file operations for the converter.
type FileManager struct {
	// DirPerm is the permission used when creating output directories.
	// Default: 0755
	DirPerm os.FileMode

	// FilePerm is the permission of the final output file.
	// Default: 0644
	FilePerm os.FileMode
}

// NewFileManager creates a new FileManager with default permissions.
func NewFileManager() *FileManager {
	return &FileManager{
		DirPerm:  0755,
		FilePerm: 0644,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates the parent directory of path if it does not exist.
//
// PARAMETERS:
//   - path: A file path whose directory should exist.
//
// RETURNS:
//   - An error if the directory cannot be created.
func (fm *FileManager) EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, fm.DirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteAtomic writes a file through a temp file and renames it into place.
//
// PARAMETERS:
//   - path: The destination file path.
//   - write: Produces the file content. It receives a buffered writer; the
//     buffer is flushed by WriteAtomic.
//
// RETURNS:
//   - An error if any step fails. In that case path is left untouched and
//     no temp file remains.
func (fm *FileManager) WriteAtomic(path string, write func(w io.Writer) error) (err error) {
	if err := fm.EnsureDir(path); err != nil {
		return err
	}

	tempPath := TempFileName(path)

	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fm.FilePerm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	// Remove the temp file on every failure path.
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tempPath)
		}
	}()

	writer := bufio.NewWriter(file)

	if err = write(writer); err != nil {
		return err
	}
	if err = writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// TempFileName returns a unique hidden temp file path in the same directory
// as path, so the final rename stays on one filesystem.
//
// EXAMPLE:
//   path:   "/data/health_records.csv"
//   output: "/data/.health_records.csv.a1b2c3d4-e5f6-7890-abcd-ef1234567890.tmp"
func TempFileName(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.New().String()))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
