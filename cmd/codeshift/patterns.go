package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/codeshift"
	"github.com/ZaguanLabs/codeshift/i18n"
)

func newPatternsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Export or import learned patterns",
		Example: `  codeshift patterns export patterns.json
  codeshift patterns import patterns.json`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export [file]",
		Short: "Write learned patterns as JSON (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			var w io.Writer = a.stdout
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			meta := map[string]string{"generator": codeshift.Name + " " + codeshift.FullVersion()}
			if err := rt.engine.ExportPatterns(w, meta); err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintf(a.stderr, "%s %d patterns to %s\n", green("Exported"), rt.engine.PatternCount(), args[0])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import [file]",
		Short: "Merge patterns from a JSON export (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			var r io.Reader = a.stdin
			if len(args) == 1 {
				f, err := os.Open(args[0]) // #nosec G304 - CLI tool reads user-specified files
				if err != nil {
					return fmt.Errorf("reading file: %w", err)
				}
				defer f.Close()
				r = f
			}

			res, err := rt.engine.ImportPatterns(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("importing patterns: %w", err)
			}
			fmt.Fprintln(a.stdout, green(i18n.T(i18n.MsgPatternsImported, res.Imported, res.Failed)))
			return nil
		},
	})

	return cmd
}
