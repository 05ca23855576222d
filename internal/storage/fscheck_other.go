//go:build !darwin && !linux

package storage

// Unknown platforms are not checked.
func detectFilesystemType(string) (string, error) { return "", nil }
