// Package seginfo names and parses the on-disk entry files a disk-backed
// CacheProvider persists segments under. Unlike the teacher's original
// append-only log segments — which rotate by size and need "find the
// latest segment" discovery — cache entries are content-addressed: one
// file per header, named from its UniqueID hex digest, with no rotation
// or sequence-number concept. GetLastSegmentInfo/GetLastSegmentName/
// ParseSegmentID accordingly have no counterpart here.
//
// Filename format: prefix_headerIDHex.seg
//
// Example: segment_1f3a9c2b....seg
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateName builds the entry filename for a header identified by
// headerIDHex (its UniqueID hex-encoded).
func GenerateName(headerIDHex, prefix string) string {
	if prefix == "" {
		return fmt.Sprintf("INVALID_PREFIX_%s.seg", headerIDHex)
	}
	return fmt.Sprintf("%s_%s.seg", prefix, headerIDHex)
}

// ParseHeaderID extracts the header ID hex digest from an entry filename
// produced by GenerateName.
func ParseHeaderID(fullPath, prefix string) (string, error) {
	_, filename := filepath.Split(fullPath)

	if !strings.HasPrefix(filename, prefix+"_") {
		return "", fmt.Errorf("filename %s does not start with expected prefix %s", filename, prefix)
	}

	withoutPrefix := strings.TrimPrefix(filename, prefix+"_")
	withoutExtension := strings.TrimSuffix(withoutPrefix, ".seg")
	if withoutExtension == "" {
		return "", fmt.Errorf("filename %s has no header ID component", filename)
	}

	return withoutExtension, nil
}

// GetFileInfo safely retrieves file system metadata for a given path.
func GetFileInfo(filePath string) (os.FileInfo, error) {
	file, err := os.OpenFile(filePath, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", filePath, err)
	}

	return stat, nil
}
