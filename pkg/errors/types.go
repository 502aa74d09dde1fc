package errors

import (
	"fmt"
)

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// InvalidPathError represents a root path that can't be scanned, either
// because of its syntax or because it doesn't refer to a directory.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (err InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", err.Path, err.Reason)
}

// FriendlyMessage returns the user-facing message.
func (err InvalidPathError) FriendlyMessage() string {
	return fmt.Sprintf("The path %q can't be scanned: %s.", err.Path, err.Reason)
}
