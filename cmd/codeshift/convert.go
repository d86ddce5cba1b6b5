package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/codeshift"
)

type convertOptions struct {
	from      codeshift.Language
	to        []codeshift.Language
	mode      codeshift.Mode
	threshold float64
	jsonOut   bool
	outDir    string
}

func newConvertCmd(a *app) *cobra.Command {
	opts := &convertOptions{threshold: -1}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a source file into two target languages",
		Long: `Convert a source file (or stdin) into two target languages.

The source language is detected from the file name and content unless
--from is given. --mode and --threshold change the stored settings, the
same way the settings panel of the web UI does.`,
		Example: `  codeshift convert --to java --to python Point.ts
  cat main.py | codeshift convert --from python --to ts,cs
  codeshift convert --mode always-model --json --to java --to csharp app.ts`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, opts, args)
		},
	}

	f := cmd.Flags()
	f.Var(newLanguageValue(&opts.from), "from", "source language (detected when omitted)")
	f.Var(newLanguageList(&opts.to), "to", "target language; give exactly two")
	f.Var(&modeValue{mode: &opts.mode}, "mode", "operation mode (adaptive, always-model, manual-only, disabled)")
	f.Float64Var(&opts.threshold, "threshold", -1, "confidence threshold in [0, 1]")
	f.BoolVar(&opts.jsonOut, "json", false, "output results as JSON")
	f.StringVarP(&opts.outDir, "output-dir", "o", "", "write each result to a file in this directory")
	return cmd
}

func runConvert(cmd *cobra.Command, a *app, opts *convertOptions, args []string) error {
	if len(opts.to) != 2 {
		return fmt.Errorf("exactly two --to languages are required, got %d", len(opts.to))
	}

	var (
		source []byte
		name   = "stdin"
		err    error
	)
	if len(args) == 1 {
		source, err = os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		name = filepath.Base(args[0])
	} else {
		source, err = io.ReadAll(a.stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	from := opts.from
	if from == "" {
		filename := ""
		if len(args) == 1 {
			filename = args[0]
		}
		from, err = codeshift.DetectLanguage(filename, source)
		if err != nil {
			return fmt.Errorf("cannot detect source language, use --from: %w", err)
		}
	}

	ctx := cmd.Context()
	rt, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	var patch codeshift.SettingsPatch
	if opts.mode != "" {
		patch.Mode = &opts.mode
	}
	if opts.threshold >= 0 {
		patch.ConfidenceThreshold = &opts.threshold
	}
	if patch != (codeshift.SettingsPatch{}) {
		if _, err := rt.engine.PatchSettings(ctx, patch); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.stderr, "%s %s (%s) -> %s, %s\n", cyan("Converting"), name, from.Name(), opts.to[0].Name(), opts.to[1].Name())

	sess := codeshift.NewSession("cli", rt.engine)
	res, err := sess.Convert(ctx, string(source), from, opts.to[0], opts.to[1])
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := writeResults(opts.outDir, name, res); err != nil {
			return err
		}
	}

	if opts.jsonOut {
		return outputJSON(a.stdout, res, rt.engine.Stats())
	}

	for i, r := range res.Results {
		fmt.Fprintf(a.stdout, "%s\n", cyan(fmt.Sprintf("=== %s ===", res.Targets[i].Name())))
		fmt.Fprintln(a.stdout, r.Content)
		fmt.Fprintln(a.stdout)
		fmt.Fprintf(a.stderr, "  %s: %s\n", res.Targets[i].Name(), statusColor(r.Source)(r.Status))
	}

	stats := rt.engine.Stats()
	fmt.Fprintf(a.stderr, "%s  confidence %.0f%%, %d conversions, %d patterns\n",
		green(res.Status), stats.CurrentConfidence*100, stats.TotalConversions, rt.engine.PatternCount())
	return nil
}

func statusColor(src codeshift.Source) func(a ...any) string {
	switch src {
	case codeshift.SourceFallback:
		return red
	case codeshift.SourceModel:
		return yellow
	default:
		return green
	}
}

// writeResults saves each result next to the others as <base><ext>.
func writeResults(dir, name string, res *codeshift.DualResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base := name[:len(name)-len(filepath.Ext(name))]
	if base == "" || name == "stdin" {
		base = "converted"
	}
	for i, r := range res.Results {
		path := filepath.Join(dir, base+res.Targets[i].Extension())
		if err := os.WriteFile(path, []byte(r.Content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// JSONResult is one target in the JSON output format.
type JSONResult struct {
	Target      codeshift.Language     `json:"target"`
	Content     string                 `json:"content"`
	Status      string                 `json:"status"`
	Source      codeshift.Source       `json:"source"`
	Similarity  float64                `json:"similarity,omitempty"`
	Differences []codeshift.Difference `json:"differences,omitempty"`
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	From    codeshift.Language `json:"from"`
	Results []JSONResult       `json:"results"`
	Status  string             `json:"status"`
	Stats   codeshift.Stats    `json:"stats"`
}

func outputJSON(w io.Writer, res *codeshift.DualResult, stats codeshift.Stats) error {
	out := JSONOutput{From: res.From, Status: res.Status, Stats: stats}
	for i, r := range res.Results {
		out.Results = append(out.Results, JSONResult{
			Target:      res.Targets[i],
			Content:     r.Content,
			Status:      r.Status,
			Source:      r.Source,
			Similarity:  r.Similarity,
			Differences: r.Differences,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
