package roster

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the roster file formats the loader understands
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // comma delimited id,surname,name lines
	FormatBinary             // length prefixed snapshot written by SaveBinary
)

// FormatInfo contains metadata about a roster file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Roster",
		Extensions:  []string{".txt", ".csv"},
		MinSize:     0,
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Roster Snapshot",
		Extensions:  []string{".bin"},
		MinSize:     4, // count header
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// maxEntries is a sanity bound on the count header of binary snapshots.
const maxEntries = 10_000_000

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if expectedFormat == FormatBinary {
		return validateBinaryHeader(filename)
	}
	return nil
}

func validateBinaryHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var count int32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if count < 0 {
		return fmt.Errorf("invalid entry count in %s: %d (negative)", filename, count)
	}
	if count > maxEntries {
		return fmt.Errorf("suspicious entry count in %s: %d (too large)", filename, count)
	}

	log.Debugf("Binary roster %s validated: %d entries", filename, count)
	return nil
}

// DetectFileFormat picks the format from the extension. Files without a known
// extension are treated as text, which is what employee lists usually are.
func DetectFileFormat(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatText
}
