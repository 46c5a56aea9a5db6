// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	// ErrInvalidArgument is returned when a kernel receives parameters or
	// data it cannot work with.
	ErrInvalidArgument = errors.New("invalid argument")
)
