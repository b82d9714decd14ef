package preflight

import (
	"fmt"
	"os"
	"syscall"

	"github.com/Aman-CERP/wordex/internal/indexer"
)

// MinDiskSpaceBytes is the free space required when nothing is known about
// the input (16 MB).
const MinDiskSpaceBytes = 16 * 1024 * 1024

// gridFactor is how much larger than the page stream the build's files may
// grow while the .grid and .cong files coexist.
const gridFactor = 3

// requiredSpace estimates the free space a build of files needs.
func requiredSpace(files indexer.Files) uint64 {
	info, err := os.Stat(files.Grid())
	if err != nil {
		return MinDiskSpaceBytes
	}
	return max(MinDiskSpaceBytes, gridFactor*uint64(info.Size()))
}

// CheckDiskSpace checks that at least required bytes are free at path.
func (c *Checker) CheckDiskSpace(path string, required uint64) CheckResult {
	result := CheckResult{
		Name:     "disk_space",
		Required: true,
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	available := stat.Bavail * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free (minimum: %s)", formatBytes(available), formatBytes(required))
	if available < required {
		result.Status = StatusFail
		return result
	}
	result.Status = StatusPass
	return result
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
