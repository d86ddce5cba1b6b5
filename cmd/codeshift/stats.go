package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/codeshift"
	"github.com/ZaguanLabs/codeshift/i18n"
)

func newStatsCmd(a *app) *cobra.Command {
	var jsonOut bool
	var history int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			stats := rt.engine.Stats()
			settings := rt.engine.Settings()
			entries := rt.engine.History(history)

			if jsonOut {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Stats    codeshift.Stats          `json:"stats"`
					Patterns int                      `json:"patterns"`
					Settings codeshift.Settings       `json:"settings"`
					History  []codeshift.HistoryEntry `json:"history,omitempty"`
				}{stats, rt.engine.PatternCount(), settings, entries})
			}

			fmt.Fprintf(a.stdout, "%s\n", cyan("Learning statistics"))
			fmt.Fprintf(a.stdout, "  Conversions:      %d\n", stats.TotalConversions)
			fmt.Fprintf(a.stdout, "  Rules confirmed:  %d\n", stats.ManualSuccesses)
			fmt.Fprintf(a.stdout, "  Model corrections: %d\n", stats.AICorrections)
			fmt.Fprintf(a.stdout, "  Confidence:       %.0f%%\n", stats.CurrentConfidence*100)
			fmt.Fprintf(a.stdout, "  Learned patterns: %d\n", rt.engine.PatternCount())
			fmt.Fprintf(a.stdout, "\n%s\n", cyan("Settings"))
			fmt.Fprintf(a.stdout, "  Mode:             %s\n", settings.Mode)
			fmt.Fprintf(a.stdout, "  Threshold:        %.2f\n", settings.ConfidenceThreshold)
			fmt.Fprintf(a.stdout, "  Model:            %s @ %s\n", settings.Model, settings.BaseURL)

			if len(entries) > 0 {
				fmt.Fprintf(a.stdout, "\n%s\n", cyan("Recent corrections"))
				for _, e := range entries {
					fmt.Fprintf(a.stdout, "  %s  %s -> %s  %d differences\n",
						e.Timestamp.Format("2006-01-02 15:04"), e.From.Name(), e.To.Name(), len(e.Differences))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().IntVar(&history, "history", 5, "number of recent corrections to show")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget learned patterns, statistics and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.engine.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, green(i18n.T(i18n.MsgResetDone)))
			return nil
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Check the model endpoint and list installed models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			settings := rt.engine.Settings()
			names := codeshift.DefaultModels

			infos, err := rt.models.ListModels(cmd.Context(), settings.BaseURL)
			if err != nil {
				a.logger.WithError(err).Debug("Model listing failed")
				fmt.Fprintln(a.stderr, red(i18n.T(i18n.MsgModelUnavailable, settings.BaseURL)))
			} else {
				fmt.Fprintln(a.stderr, green(i18n.T(i18n.MsgModelAvailable)))
				if len(infos) > 0 {
					names = make([]string, len(infos))
					for i, m := range infos {
						names[i] = m.Name
					}
				}
			}

			for _, n := range names {
				marker := " "
				if n == settings.Model {
					marker = "*"
				}
				fmt.Fprintf(a.stdout, "%s %s\n", marker, n)
			}
			return nil
		},
	}
}
