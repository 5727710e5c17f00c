package index

import (
	"fmt"
	"strings"
	"unicode"

	herrors "github.com/PolarWolf314/huna/internal/errors"
)

// ValidatePath checks that path is a usable secret path: slash separated,
// no empty, "." or ".." segments, no surrounding slashes or whitespace and
// no control characters.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path is empty", herrors.ErrInvalidPath)
	}
	if strings.TrimSpace(path) != path {
		return fmt.Errorf("%w: %q has surrounding whitespace", herrors.ErrInvalidPath, path)
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return fmt.Errorf("%w: %q must not start or end with /", herrors.ErrInvalidPath, path)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains a control character", herrors.ErrInvalidPath, path)
		}
	}
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "":
			return fmt.Errorf("%w: %q contains an empty segment", herrors.ErrInvalidPath, path)
		case ".", "..":
			return fmt.Errorf("%w: %q contains a %q segment", herrors.ErrInvalidPath, path, seg)
		}
	}
	return nil
}
