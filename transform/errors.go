// SPDX-License-Identifier: EPL-2.0

package transform

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New when a parameter is outside its
	// valid domain.
	ErrInvalidConfig = errors.New("invalid transform config")
	// ErrInvalidInput is returned by Apply for inputs of unsupported rank,
	// dtype or size.
	ErrInvalidInput = errors.New("invalid transform input")
	// ErrUnknownKind is returned for kind names outside the catalog.
	ErrUnknownKind = errors.New("unknown transform kind")
)

func configError(k Kind, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", k, ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func inputError(k Kind, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", k, ErrInvalidInput, fmt.Sprintf(format, args...))
}

// wrapConfig attaches ErrInvalidConfig to a kernel error raised while
// building a transform.
func wrapConfig(k Kind, err error) error {
	return fmt.Errorf("%s: %w: %w", k, ErrInvalidConfig, err)
}

// wrapInput attaches ErrInvalidInput to a kernel error raised while
// applying a transform.
func wrapInput(k Kind, err error) error {
	return fmt.Errorf("%s: %w: %w", k, ErrInvalidInput, err)
}
