// Package storage writes export files to the local file system or to an
// S3-compatible object store. Neither store overwrites an existing file.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// maxNameAttempts bounds the search for a free file name
const maxNameAttempts = 1000

// ErrNoFreeName is returned when every candidate name is taken
var ErrNoFreeName = errors.New("storage: no free file name")

// candidateName returns name for attempt 0 and "<stem>_<n><ext>" afterwards
func candidateName(name string, attempt int) string {
	if attempt == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), attempt, ext)
}

// availableName returns the first candidate for which taken reports false
func availableName(ctx context.Context, name string, taken func(context.Context, string) (bool, error)) (string, error) {
	for attempt := range maxNameAttempts {
		candidate := candidateName(name, attempt)
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s", ErrNoFreeName, name)
}

func validateName(name string) error {
	if name == "" || name != path.Base(name) || strings.Contains(name, "..") || strings.ContainsAny(name, `\/`) {
		return fmt.Errorf("storage: invalid file name %q", name)
	}
	return nil
}
