// =============================================================================
// flat2tab - File Manager Utility
// =============================================================================
//
// This module provides the file helpers used around a conversion run:
//   - Output path expansion (date, time and uuid placeholders)
//   - Input archival after a successful run
//   - Directory and existence checks
//
// ARCHIVAL STRATEGY:
//   - The input file is moved to the archive directory only after the output
//     was written.
//   - A failed run leaves the input where it is.
//   - An archived file never overwrites an earlier one; a timestamp suffix is
//     added on collision.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OUTPUT PATH EXPANSION
// =============================================================================

// ExpandPath replaces placeholders in an output path pattern.
//
// PARAMETERS:
//   - pattern: The path pattern.
//              Placeholders:
//                {uuid}      - A random UUID
//                {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//                {date}      - Current date (YYYYMMDD)
//                {time}      - Current time (HHMMSS)
//                {type}      - Export type, or any other key in params
//   - params: Extra placeholder values, keyed without braces.
//
// RETURNS:
//   - The expanded path. Unknown placeholders are left as they are.
//
// EXAMPLE:
//   pattern: "out/{type}_{date}.csv"
//   params:  {"type": "bill"}
//   output:  "out/bill_20240115.csv"
func ExpandPath(pattern string, params map[string]string) string {
	return expandPathAt(pattern, params, time.Now())
}

func expandPathAt(pattern string, params map[string]string, now time.Time) string {
	if !strings.Contains(pattern, "{") {
		return pattern
	}

	replacements := []string{
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	if strings.Contains(pattern, "{uuid}") {
		replacements = append(replacements, "{uuid}", uuid.New().String())
	}
	for key, value := range params {
		replacements = append(replacements, "{"+key+"}", value)
	}

	return strings.NewReplacer(replacements...).Replace(pattern)
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveFile moves a file into archiveDir, creating the directory if needed.
//
// RETURNS:
//   - The path of the archived file.
//   - An error if the move fails. The original file is then left in place.
func ArchiveFile(filePath, archiveDir string) (string, error) {
	if err := EnsureDir(archiveDir); err != nil {
		return "", err
	}

	archivePath := filepath.Join(archiveDir, filepath.Base(filePath))
	if FileExists(archivePath) {
		ext := filepath.Ext(archivePath)
		base := strings.TrimSuffix(archivePath, ext)
		archivePath = fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist. An empty dir or
// "." is a no-op.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
