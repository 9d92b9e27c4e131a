package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxIDLength bounds plugin and extension identifiers accepted from callers.
const maxIDLength = 256

// ValidatePluginID validates a plugin or extension-point identifier received
// from an untrusted caller (URL parameters, CLI flags).
//
// Identifiers in a snapshot are never validated this way: the engine keeps
// whatever the host declared. The rules only guard the request boundary:
//   - No empty ids
//   - No control characters or null bytes
//   - No commas (they separate list entries in URL state)
//   - Maximum length of 256 characters
func ValidatePluginID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPluginID, "identifier cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidPluginID, "identifier too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPluginID, "identifier contains invalid control characters")
		}
	}

	if strings.Contains(id, ",") {
		return New(ErrCodeInvalidPluginID, "identifier cannot contain commas: %q", id)
	}

	return nil
}

// ValidatePluginIDs validates every identifier in ids.
func ValidatePluginIDs(ids []string) error {
	for _, id := range ids {
		if err := ValidatePluginID(id); err != nil {
			return err
		}
	}
	return nil
}

// snapshotExtensions lists the file extensions a snapshot can be read from.
var snapshotExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// ValidateSnapshotPath validates the path of a snapshot file.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Extension must be .json, .yaml or .yml
func ValidateSnapshotPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "snapshot path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "snapshot path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !snapshotExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported snapshot format %q (must be .json, .yaml or .yml)", ext)
	}

	return nil
}
