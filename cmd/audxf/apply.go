// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ik5/audxf"
)

func newApplyCommand(rootOpts *rootOptions) *cobra.Command {
	var ref, in, out string

	cmd := &cobra.Command{
		Use:   "apply -t <pipeline> -i <input> -o <output.wav>",
		Short: "Apply a waveform pipeline to an audio file",
		Long: `Apply decodes the input (wav, aiff, mp3 or ogg), runs the pipeline and
writes the result as 16-bit WAV. The pipeline must end in a waveform, so
spectrogram kinds cannot be the last step. A Resample sets the output rate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" || out == "" {
				return errors.New("apply: --in and --out are required")
			}
			t, err := loadTransform(cmd.Context(), rootOpts, ref)
			if err != nil {
				return err
			}
			if err := audxf.ApplyFile(in, out, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", in, out, t.Kind())
			return nil
		},
	}

	cmd.Flags().StringVarP(&ref, "transform", "t", "-", "pipeline to apply")
	cmd.Flags().StringVarP(&in, "in", "i", "", "input audio file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output WAV file")

	return cmd
}
