// SPDX-License-Identifier: EPL-2.0

package consistency

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/serialize"
	"github.com/ik5/audxf/transform"
)

// Report summarises a successful Check.
type Report struct {
	Kind        transform.Kind
	Fingerprint string
	// Path is the file the transform was replayed from, empty unless
	// WithSaveDir was given.
	Path      string
	Shape     []int
	DType     buffer.DType
	Tolerance Tolerance
	// MaxAbs and MaxRel are the largest deviations observed, both zero for
	// an exact match.
	MaxAbs float64
	MaxRel float64
}

type options struct {
	tol     *Tolerance
	saveDir string
}

// Option adjusts Check.
type Option func(*options)

// WithTolerance overrides DefaultTolerance.
func WithTolerance(tol Tolerance) Option {
	return func(o *options) { o.tol = &tol }
}

// WithSaveDir replays through a file written to dir instead of in memory.
func WithSaveDir(dir string) Option {
	return func(o *options) { o.saveDir = dir }
}

// Check applies t to x directly and through an exported and reconstructed
// copy of t, and compares the two outputs. A disagreement is reported as a
// *MismatchError. When the direct application fails the replayed one must
// fail too, and the direct error is returned.
func Check(t transform.Transform, x *buffer.Buffer, opts ...Option) (*Report, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transform", transform.ErrInvalidConfig)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	tol := toleranceFor(t.Config())
	if o.tol != nil {
		tol = *o.tol
	}

	s, err := serialize.Export(t)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", t.Kind(), err)
	}
	report := &Report{Kind: t.Kind(), Fingerprint: s.Fingerprint(), Tolerance: tol}

	replayed, err := replay(s, t, &o, report)
	if err != nil {
		return nil, err
	}

	want, directErr := t.Apply(x)
	got, replayErr := replayed.Apply(x)
	switch {
	case directErr != nil && replayErr != nil:
		return nil, directErr
	case directErr != nil:
		return nil, fmt.Errorf("%w in %s: replayed transform accepted an input the original rejected: %w",
			ErrConsistencyMismatch, t.Kind(), directErr)
	case replayErr != nil:
		return nil, fmt.Errorf("%w in %s: replayed transform failed: %w", ErrConsistencyMismatch, t.Kind(), replayErr)
	}

	if err := Compare(want, got, tol); err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			mismatch.Kind = t.Kind()
			logrus.WithFields(logrus.Fields{
				"kind":       t.Kind(),
				"divergence": mismatch.Divergence,
				"max_abs":    mismatch.MaxAbs,
				"max_rel":    mismatch.MaxRel,
				"position":   mismatch.Position,
			}).Warn("replayed transform diverged")
		}
		return nil, err
	}

	report.Shape = want.Shape()
	report.DType = want.DType()
	report.MaxAbs, report.MaxRel = maxDeviation(want, got)
	logrus.WithFields(logrus.Fields{
		"kind":        t.Kind(),
		"fingerprint": report.Fingerprint,
		"shape":       report.Shape,
	}).Debug("transform replayed consistently")
	return report, nil
}

func replay(s serialize.Serialized, t transform.Transform, o *options, report *Report) (transform.Transform, error) {
	if o.saveDir == "" {
		replayed, err := serialize.Reconstruct(s)
		if err != nil {
			return nil, fmt.Errorf("reconstruct %s: %w", t.Kind(), err)
		}
		return replayed, nil
	}

	path := filepath.Join(o.saveDir, fmt.Sprintf("%s-%s.axf", t.Kind(), s.Fingerprint()))
	if err := serialize.Save(t, path); err != nil {
		return nil, err
	}
	replayed, err := serialize.Load(path)
	if err != nil {
		return nil, err
	}
	report.Path = path
	return replayed, nil
}

func maxDeviation(a, b *buffer.Buffer) (maxAbs, maxRel float64) {
	av, bv := values(a), values(b)
	for i := range av {
		abs, rel, _ := deviation(av[i], bv[i], Tolerance{})
		maxAbs = max(maxAbs, abs)
		maxRel = max(maxRel, rel)
	}
	return maxAbs, maxRel
}

// Assert fails tb unless t replays consistently on x within tol.
func Assert(tb testing.TB, t transform.Transform, x *buffer.Buffer, tol Tolerance) *Report {
	tb.Helper()

	report, err := Check(t, x, WithTolerance(tol))
	require.NoError(tb, err)
	return report
}
