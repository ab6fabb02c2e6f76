package discovery

import (
	"fmt"
	"path"
	"strings"

	"go.trai.ch/zerr"
)

// ErrBadPattern is returned for a malformed glob pattern.
var ErrBadPattern = zerr.New("invalid test name pattern")

// Filter keeps the names matching pattern, preserving order.
//
// A pattern containing '*', '?' or '[' is a glob matched against the whole
// name ("Test_*Brev*"). Any other pattern keeps names that contain it. An
// empty pattern keeps everything.
func Filter(names []string, pattern string) ([]string, error) {
	if pattern == "" {
		return names, nil
	}

	glob := strings.ContainsAny(pattern, "*?[")
	if glob {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrBadPattern, pattern, err)
		}
	}

	var filtered []string
	for _, name := range names {
		if glob {
			if ok, _ := path.Match(pattern, name); ok {
				filtered = append(filtered, name)
			}
			continue
		}
		if strings.Contains(name, pattern) {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}
