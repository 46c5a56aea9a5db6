// SPDX-License-Identifier: EPL-2.0

// Package store keeps a library of named transforms in a badger database.
// Each entry is the serialized encoding of a transform, so anything read
// back applies exactly like what was stored.
package store
