package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels <source>",
	Short: "List the labels a template offers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := newLoader().Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		descriptions := make(map[string]string)
		for _, l := range tpl.Manifest.Labels {
			descriptions[strings.TrimSpace(l.Name)] = l.Description
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, l := range tpl.Catalog.BareLabels() {
			fmt.Fprintf(tw, "%s\t%s\n", l, descriptions[l])
		}
		for _, ns := range tpl.Catalog.Namespaces() {
			fmt.Fprintf(tw, "%s::{%s}\t%s\n", ns.Name, strings.Join(ns.Values, ","), descriptions[ns.Name])
		}
		return tw.Flush()
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections <source>",
	Short: "List the sections of every part with their ids and labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := newLoader().Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range tpl.Catalog.Parts() {
			fmt.Fprintf(out, "%s (%s)\n", p.Name, p.File)
			for _, s := range p.Sections {
				line := strings.Repeat("  ", s.Level) + s.Plain
				if s.ID != "" {
					line += " #" + s.ID
				}
				if len(s.Labels) > 0 {
					line += " [" + strings.Join(s.Labels, ", ") + "]"
				}
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}
