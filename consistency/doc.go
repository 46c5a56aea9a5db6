// SPDX-License-Identifier: EPL-2.0

// Package consistency verifies that a transform and its serialized replay
// produce the same output.
//
// Check runs both paths on one input and compares them element-wise:
//
//	report, err := consistency.Check(t, x)
//	var mismatch *consistency.MismatchError
//	if errors.As(err, &mismatch) {
//		log.Printf("diverged at %v by %g", mismatch.Position, mismatch.MaxAbs)
//	}
//
// Tests use Assert, which fails the test on any divergence.
package consistency
