// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the input is not an AIFF file.
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedAiffLayout covers bit depths and channel layouts the
	// decoder cannot read.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
