// SPDX-License-Identifier: EPL-2.0

// Package serialize exports transforms to a versioned binary encoding and
// reconstructs them, and reads and writes YAML pipeline documents.
//
// An exported transform is a msgpack envelope carrying a magic marker, the
// format version, the kind and the msgpack encoding of the kind's config. A
// Sequential carries the envelopes of its steps. Export is deterministic and
// Reconstruct(Export(t)) applies exactly like t:
//
//	s, err := serialize.Export(t)
//	if err != nil {
//		return err
//	}
//	again, err := serialize.Reconstruct(s)
//
// Decoding distinguishes its failures: ErrCorrupt for data that is not an
// envelope, ErrUnsupportedVersion for another format version, ErrUnknownKind
// for kinds outside the catalog and ErrConfigDecode for configs that do not
// match the kind's schema. ErrCorrupt and ErrUnsupportedVersion both match
// ErrConfigDecode with errors.Is.
package serialize
