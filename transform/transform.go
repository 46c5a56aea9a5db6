// SPDX-License-Identifier: EPL-2.0

package transform

import "github.com/ik5/audxf/buffer"

// Config is the parameter set of one transform kind. Configs are plain
// values; a Transform built from a Config keeps its own copy.
type Config interface {
	// Kind identifies the catalog entry the config belongs to.
	Kind() Kind
	// Validate reports parameters outside the kind's domain.
	Validate() error
}

// Transform is a named, parameterised function from buffer to buffer.
//
// A Transform is immutable after construction and safe for concurrent use.
// Apply never modifies its input and its result depends only on the kind,
// the config and the input.
type Transform interface {
	Kind() Kind
	Config() Config
	Apply(x *buffer.Buffer) (*buffer.Buffer, error)
}
