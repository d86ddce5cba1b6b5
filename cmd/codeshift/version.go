package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/codeshift"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skip config loading so version works with a broken config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", codeshift.Name, codeshift.FullVersion())
			if codeshift.GitCommit != "unknown" && codeshift.GitCommit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", codeshift.GitCommit)
			}
			if codeshift.BuildDate != "unknown" && codeshift.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", codeshift.BuildDate)
			}
			fmt.Fprintf(a.stdout, "  go:      %s\n", codeshift.GoVersion)
			return nil
		},
	}
}
