// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ik5/audxf/serialize"
)

func newStoreCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the library of named transforms",
	}

	cmd.AddCommand(newStorePutCommand(rootOpts))
	cmd.AddCommand(newStoreGetCommand(rootOpts))
	cmd.AddCommand(newStoreListCommand(rootOpts))
	cmd.AddCommand(newStoreRemoveCommand(rootOpts))

	return cmd
}

func newStorePutCommand(rootOpts *rootOptions) *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "put <name> -t <pipeline>",
		Short: "Store a pipeline under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTransform(cmd.Context(), rootOpts, ref)
			if err != nil {
				return err
			}
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Put(cmd.Context(), args[0], t)
		},
	}
	cmd.Flags().StringVarP(&ref, "transform", "t", "-", "pipeline to store")

	return cmd
}

func newStoreGetCommand(rootOpts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <name> [-o <file.axf>]",
		Short: "Print a stored pipeline as YAML or write its export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if out != "" {
				data, err := s.GetBytes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return os.WriteFile(out, data, 0o644)
			}
			t, err := s.Get(cmd.Context(), args[0])
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
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the export to this file")

	return cmd
}

func newStoreListCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored pipelines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tFINGERPRINT")
			for e, err := range s.Entries(cmd.Context()) {
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Kind, e.Fingerprint)
			}
			return w.Flush()
		},
	}
}

func newStoreRemoveCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a stored pipeline",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Delete(cmd.Context(), args[0])
		},
	}
}
