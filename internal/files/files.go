// Package files has small file-system helpers.
package files

import (
	"os"

	"github.com/pkg/errors"
)

// Exists reports whether path exists. Errors other than "not exist" count as existing,
// so callers don't silently overwrite files they can't stat.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
