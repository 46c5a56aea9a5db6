// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf"
	"github.com/ik5/audxf/internal/audiotest"
	"github.com/ik5/audxf/serialize"
	"github.com/ik5/audxf/transform"
)

const volPipeline = "kind: Vol\ngain: 0.5\n"

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestKinds(t *testing.T) {
	out, err := run(t, t.TempDir(), "kinds")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "kinds", []byte(out))
}

func TestDescribe(t *testing.T) {
	out, err := run(t, t.TempDir(), "describe", "Vol")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "describe_vol", []byte(out))
}

func TestDescribeUnknownKind(t *testing.T) {
	_, err := run(t, t.TempDir(), "describe", "Reverb")
	require.ErrorIs(t, err, transform.ErrUnknownKind)
}

func TestInvalidLogFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "--log-format", "xml", "kinds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestExportAndShow(t *testing.T) {
	dir := t.TempDir()
	pipeline := writeFile(t, dir, "vol.yaml", volPipeline)
	out := filepath.Join(dir, "vol.axf")

	stdout, err := run(t, dir, "export", "-p", pipeline, "-o", out)
	require.NoError(t, err)

	want, err := serialize.ParsePipeline([]byte(volPipeline))
	require.NoError(t, err)
	s, err := serialize.Export(want)
	require.NoError(t, err)
	assert.Equal(t, "Vol\t"+s.Fingerprint()+"\t"+out+"\n", stdout)

	loaded, err := serialize.Load(out)
	require.NoError(t, err)
	assert.Equal(t, want.Config(), loaded.Config())

	shown, err := run(t, dir, "show", out)
	require.NoError(t, err)
	assert.Contains(t, shown, "kind: Vol")
	assert.Contains(t, shown, "gain: 0.5")
}

func TestExportRequiresOut(t *testing.T) {
	dir := t.TempDir()
	pipeline := writeFile(t, dir, "vol.yaml", volPipeline)
	_, err := run(t, dir, "export", "-p", pipeline)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out is required")
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	pipeline := writeFile(t, dir, "vol.yaml", volPipeline)
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")

	x := audiotest.WhiteNoise(audiotest.WhiteNoiseOptions{SampleRate: 8000, Duration: 0.25, Seed: 3})
	require.NoError(t, audxf.WriteWAVFile(in, x, 8000))

	stdout, err := run(t, dir, "apply", "-t", pipeline, "-i", in, "-o", out)
	require.NoError(t, err)
	assert.Equal(t, in+" -> "+out+" (Vol)\n", stdout)

	y, rate, err := audxf.LoadFile(out, audxf.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	assert.Equal(t, x.Shape(), y.Shape())
}

func TestApplyRequiresFiles(t *testing.T) {
	dir := t.TempDir()
	pipeline := writeFile(t, dir, "vol.yaml", volPipeline)
	_, err := run(t, dir, "apply", "-t", pipeline)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--in and --out are required")
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	pipeline := writeFile(t, dir, "mel.yaml", "kind: MelSpectrogram\nsample_rate: 8000\nn_fft: 256\nn_mels: 32\n---\nkind: AmplitudeToDB\n")

	stdout, err := run(t, dir, "verify", "-t", pipeline, "--noise-rate", "8000", "--noise-seconds", "0.5", "--seed", "7")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "ok\tSequential\t"), stdout)
	assert.Contains(t, stdout, "max_abs=0")
}

func TestVerifySaveDir(t *testing.T) {
	dir := t.TempDir()
	saveDir := t.TempDir()
	pipeline := writeFile(t, dir, "vol.yaml", volPipeline)

	stdout, err := run(t, dir, "verify", "-t", pipeline, "--save-dir", saveDir, "--noise-channels", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok\tVol\t")
	assert.Contains(t, stdout, "shape=[2 16000]")

	entries, err := os.ReadDir(saveDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".axf", filepath.Ext(entries[0].Name()))
}

func TestVerifyRejectsEmptyNoise(t *testing.T) {
	dir := t.TempDir()
	pipeline := writeFile(t, dir, "vol.yaml", volPipeline)
	_, err := run(t, dir, "verify", "-t", pipeline, "--noise-rate", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive rate")
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "library")
	pipeline := writeFile(t, dir, "vol.yaml", volPipeline)

	_, err := run(t, db, "store", "put", "quiet", "-t", pipeline)
	require.NoError(t, err)

	listed, err := run(t, db, "store", "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(listed), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"NAME", "KIND", "FINGERPRINT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"quiet", "Vol"}, strings.Fields(lines[1])[:2])

	shown, err := run(t, db, "store", "get", "quiet")
	require.NoError(t, err)
	assert.Contains(t, shown, "gain: 0.5")

	exported := filepath.Join(dir, "quiet.axf")
	_, err = run(t, db, "store", "get", "quiet", "-o", exported)
	require.NoError(t, err)
	loaded, err := serialize.Load(exported)
	require.NoError(t, err)
	assert.Equal(t, transform.KindVol, loaded.Kind())

	// "@name" resolves through the library.
	shown, err = run(t, db, "show", "@quiet")
	require.NoError(t, err)
	assert.Contains(t, shown, "kind: Vol")

	_, err = run(t, db, "store", "rm", "quiet")
	require.NoError(t, err)
	_, err = run(t, db, "store", "rm", "quiet")
	require.Error(t, err)

	listed, err = run(t, db, "store", "ls")
	require.NoError(t, err)
	assert.Equal(t, "NAME  KIND  FINGERPRINT\n", listed)
}
