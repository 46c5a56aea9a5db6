// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/serialize"
	"github.com/ik5/audxf/transform"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)

	_, err := s.Get(ctx, "mel")
	require.ErrorIs(t, err, ErrNotFound)

	cfg := transform.DefaultMelSpectrogramConfig()
	cfg.NMels = 80
	require.NoError(t, s.Put(ctx, "mel", transform.MustNew(cfg)))

	got, err := s.Get(ctx, "mel")
	require.NoError(t, err)
	assert.Equal(t, cfg, got.Config())

	cfg.NMels = 40
	require.NoError(t, s.Put(ctx, "mel", transform.MustNew(cfg)))
	got, err = s.Get(ctx, "mel")
	require.NoError(t, err)
	assert.Equal(t, cfg, got.Config())

	require.NoError(t, s.Delete(ctx, "mel"))
	_, err = s.Get(ctx, "mel")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "mel"), ErrNotFound)
}

func TestStore_GetBytesMatchesExport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	tr := transform.MustNew(transform.DefaultVadConfig())
	require.NoError(t, s.Put(ctx, "vad", tr))

	data, err := s.GetBytes(ctx, "vad")
	require.NoError(t, err)
	want, err := serialize.Marshal(tr)
	require.NoError(t, err)
	assert.Equal(t, want, data)
}

func TestStore_ListAndEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	pipeline := transform.MustNew(transform.SequentialConfig{Steps: []transform.Config{
		transform.DefaultSpectrogramConfig(),
		transform.DefaultAmplitudeToDBConfig(),
	}})
	require.NoError(t, s.Put(ctx, "zeta", transform.MustNew(transform.DefaultVolConfig())))
	require.NoError(t, s.Put(ctx, "alpha", pipeline))
	require.NoError(t, s.Put(ctx, "mid dle", transform.MustNew(transform.DefaultFadeConfig())))

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid dle", "zeta"}, names)

	exported, err := serialize.Export(pipeline)
	require.NoError(t, err)

	var entries []Entry
	for e, err := range s.Entries(ctx) {
		require.NoError(t, err)
		entries = append(entries, e)
	}
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Name: "alpha", Kind: transform.KindSequential, Fingerprint: exported.Fingerprint()}, entries[0])
	assert.Equal(t, transform.KindFade, entries[1].Kind)
	assert.Equal(t, transform.KindVol, entries[2].Kind)
}

func TestStore_InvalidNames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	tr := transform.MustNew(transform.DefaultVolConfig())

	for _, name := range []string{"", "tab\there", "nul\x00"} {
		require.ErrorIs(t, s.Put(ctx, name, tr), ErrInvalidName, "%q", name)
		_, err := s.Get(ctx, name)
		require.ErrorIs(t, err, ErrInvalidName)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Put(ctx, "vol", transform.MustNew(transform.DefaultVolConfig())), context.Canceled)
	_, err := s.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStore_OnDisk(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "cmn", transform.MustNew(transform.DefaultSlidingWindowCmnConfig())))
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "cmn")
	require.NoError(t, err)
	assert.Equal(t, transform.KindSlidingWindowCmn, got.Kind())
}

func TestOpen_RequiresDir(t *testing.T) {
	t.Parallel()

	_, err := Open(Options{})
	require.Error(t, err)
}
