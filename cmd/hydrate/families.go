package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hydrate/internal/family"
)

func newFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the resource families in processing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tCATEGORY\tTEMPLATES\tENDPOINTS")
			for _, f := range family.All() {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", f.Name, f.Category, f.TemplateDir, endpointList(f))
			}
			return writer.Flush()
		},
	}
}

func endpointList(f *family.Family) string {
	seen := make(map[string]bool, len(f.Endpoints))
	keys := make([]string, 0, len(f.Endpoints))
	for _, ep := range f.Endpoints {
		key := ep.Key()
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
