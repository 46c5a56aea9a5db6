// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ik5/audxf/serialize"
	"github.com/ik5/audxf/store"
	"github.com/ik5/audxf/transform"
)

// exportExt marks files holding an exported transform rather than YAML.
const exportExt = ".axf"

// loadTransform resolves a transform reference: "@name" reads the library,
// a path ending in .axf loads an export and anything else, "-" included,
// parses a YAML pipeline.
func loadTransform(ctx context.Context, opts *rootOptions, ref string) (transform.Transform, error) {
	if name, ok := strings.CutPrefix(ref, "@"); ok {
		s, err := openStore(opts)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Get(ctx, name)
	}
	if strings.EqualFold(filepath.Ext(ref), exportExt) {
		return serialize.Load(ref)
	}
	return serialize.LoadPipelineFile(ref)
}

func openStore(opts *rootOptions) (*store.Store, error) {
	return store.Open(store.Options{Dir: opts.DB})
}
