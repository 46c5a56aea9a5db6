// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ik5/audxf/serialize"
)

func newExportCommand(rootOpts *rootOptions) *cobra.Command {
	var pipeline, out string

	cmd := &cobra.Command{
		Use:   "export -p <pipeline> -o <file.axf>",
		Short: "Export a pipeline to the binary encoding",
		Long: `Export reads a pipeline (YAML, an .axf export or @name from the library)
and writes its versioned binary encoding. The fingerprint printed is the
same for every export of an equal pipeline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return errors.New("export: --out is required")
			}
			t, err := loadTransform(cmd.Context(), rootOpts, pipeline)
			if err != nil {
				return err
			}
			s, err := serialize.Export(t)
			if err != nil {
				return err
			}
			if err := serialize.Save(t, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.Kind(), s.Fingerprint(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pipeline, "pipeline", "p", "-", "pipeline to export")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")

	return cmd
}

func newShowCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pipeline>",
		Short: "Print a pipeline as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTransform(cmd.Context(), rootOpts, args[0])
			if err != nil {
				return err
			}
			data, err := serialize.MarshalYAML(t)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
