// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ik5/audxf"
	"github.com/ik5/audxf/buffer"
	"github.com/ik5/audxf/consistency"
	"github.com/ik5/audxf/internal/signals"
)

type verifyOptions struct {
	ref      string
	in       string
	rate     int
	seconds  float64
	channels int
	seed     uint64
	saveDir  string
	abs, rel float64
}

func newVerifyCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify -t <pipeline> [-i <input> | --noise-rate <hz>]",
		Short: "Check that an exported pipeline replays exactly",
		Long: `Verify applies the pipeline directly and through its exported encoding and
compares the outputs element by element. The input is an audio file or,
without --in, seeded white noise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := loadTransform(cmd.Context(), rootOpts, opts.ref)
			if err != nil {
				return err
			}
			x, err := verifyInput(opts)
			if err != nil {
				return err
			}

			var checkOpts []consistency.Option
			if cmd.Flags().Changed("abs") || cmd.Flags().Changed("rel") {
				checkOpts = append(checkOpts, consistency.WithTolerance(consistency.Tolerance{Abs: opts.abs, Rel: opts.rel}))
			}
			if opts.saveDir != "" {
				checkOpts = append(checkOpts, consistency.WithSaveDir(opts.saveDir))
			}
			report, err := consistency.Check(t, x, checkOpts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\t%s\tshape=%v\tmax_abs=%g\n",
				report.Kind, report.Fingerprint, report.Shape, report.MaxAbs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ref, "transform", "t", "-", "pipeline to verify")
	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "input audio file")
	cmd.Flags().IntVar(&opts.rate, "noise-rate", 16000, "white noise sample rate")
	cmd.Flags().Float64Var(&opts.seconds, "noise-seconds", 1, "white noise duration")
	cmd.Flags().IntVar(&opts.channels, "noise-channels", 1, "white noise channels")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "white noise seed")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", "", "replay through an export written here")
	cmd.Flags().Float64Var(&opts.abs, "abs", 0, "absolute tolerance")
	cmd.Flags().Float64Var(&opts.rel, "rel", 0, "relative tolerance")

	return cmd
}

func verifyInput(opts *verifyOptions) (*buffer.Buffer, error) {
	if opts.in != "" {
		x, _, err := audxf.LoadFile(opts.in, audxf.LoadOptions{})
		return x, err
	}
	if opts.rate <= 0 || opts.seconds <= 0 || opts.channels <= 0 {
		return nil, fmt.Errorf("verify: noise needs a positive rate, duration and channel count")
	}
	return signals.WhiteNoise(signals.WhiteNoiseOptions{
		SampleRate: opts.rate,
		Duration:   opts.seconds,
		Channels:   opts.channels,
		Seed:       opts.seed,
	}), nil
}
