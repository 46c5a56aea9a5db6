// SPDX-License-Identifier: EPL-2.0

package serialize

import (
	"errors"
	"fmt"

	"github.com/ik5/audxf/transform"
)

var (
	// ErrUnknownKind is returned when an encoding names a kind outside the
	// catalog. It is the same value as transform.ErrUnknownKind.
	ErrUnknownKind = transform.ErrUnknownKind
	// ErrConfigDecode is returned when an encoding cannot be turned back
	// into a config: a schema mismatch, an unknown field or bad data.
	ErrConfigDecode = errors.New("config decode error")
	// ErrUnsupportedVersion is returned for encodings written by another
	// format version. It matches ErrConfigDecode.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrConfigDecode)
	// ErrCorrupt is returned for data that is not an encoded transform. It
	// matches ErrConfigDecode.
	ErrCorrupt = fmt.Errorf("%w: corrupt data", ErrConfigDecode)
)
