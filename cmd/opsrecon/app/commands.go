package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmo-lgtm/ops-command-center/internal/cmd/output"
	"github.com/cosmo-lgtm/ops-command-center/internal/ingest"
	"github.com/cosmo-lgtm/ops-command-center/pkg/logging"
	"github.com/cosmo-lgtm/ops-command-center/pkg/reconcile"
)

// NewReconcileCommand creates the reconcile command.
func (a *App) NewReconcileCommand() *cobra.Command {
	var (
		rulesFile      string
		keyColumn      string
		threshold      float64
		oneToMany      bool
		segmentField   string
		showUnresolved bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile <side-a.csv> <side-b.csv>",
		Short: "Link records between two CSV exports",
		Long: `Reconcile links the records in two CSV exports and reports match
assignments, duplicate clusters, and aggregate data-quality statistics.

The first row of each file is the header; --key-column names the column
holding each record's source key. Matching rules come from a YAML rules
file (see --rules); flags override individual rule values.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rules, err := a.loadRules(rulesFile)
			if err != nil {
				return err
			}
			if threshold > 0 {
				cfg.MatchThreshold = threshold
			}
			if oneToMany {
				cfg.AllowOneToMany = true
			}
			if segmentField != "" {
				cfg.SegmentField = segmentField
			}

			key := a.keyColumn(keyColumn, rules)
			recordsA, err := ingest.LoadCSV(args[0], key)
			if err != nil {
				return err
			}
			recordsB, err := ingest.LoadCSV(args[1], key)
			if err != nil {
				return err
			}

			engine, err := a.Engine()
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			result, err := engine.Reconcile(ctx, recordsA, recordsB, cfg)
			if err != nil {
				return err
			}

			format := output.DetectFormat(a.config.Format)
			formatter := output.NewFormatter(format)
			if format != output.FormatTable {
				return formatter.Format(os.Stdout, result)
			}

			sections := output.ReconcileReport(result)
			if showUnresolved {
				sections = append(sections, output.AssignmentSection(result))
			}
			return formatter.Format(os.Stdout, sections)
		},
	}

	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "YAML rules file with normalizers, weights, and thresholds")
	cmd.Flags().StringVarP(&keyColumn, "key-column", "k", "", "CSV column holding the source key (default \"key\")")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "match threshold override")
	cmd.Flags().BoolVar(&oneToMany, "one-to-many", false, "allow one record to match several on the other side")
	cmd.Flags().StringVar(&segmentField, "segment", "", "field for per-segment alignment rows")
	cmd.Flags().BoolVar(&showUnresolved, "show-unresolved", false, "list ambiguous and unmatched records")

	return cmd
}

// NewDedupeCommand creates the dedupe command.
func (a *App) NewDedupeCommand() *cobra.Command {
	var (
		rulesFile string
		keyColumn string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "dedupe <batch.csv>",
		Short: "Find duplicate records within one CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rules, err := a.loadDuplicateRules(rulesFile)
			if err != nil {
				return err
			}
			if threshold > 0 {
				cfg.DuplicateThreshold = threshold
			}

			records, err := ingest.LoadCSV(args[0], a.keyColumn(keyColumn, rules))
			if err != nil {
				return err
			}

			engine, err := a.Engine()
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), a.logger)
			clusters, err := engine.FindDuplicates(ctx, records, cfg)
			if err != nil {
				return err
			}

			format := output.DetectFormat(a.config.Format)
			formatter := output.NewFormatter(format)
			if format != output.FormatTable {
				return formatter.Format(os.Stdout, clusters)
			}
			return formatter.Format(os.Stdout, output.ClusterSection("Duplicates", clusters))
		},
	}

	cmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "YAML rules file with normalizers, weights, and thresholds")
	cmd.Flags().StringVarP(&keyColumn, "key-column", "k", "", "CSV column holding the source key (default \"key\")")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "duplicate threshold override")

	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("opsrecon %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit: %s\n", a.commit)
				cmd.Printf("  built:  %s\n", a.date)
			}
		},
	}
}

// loadRules resolves the rules file (flag, then config) and returns the
// engine configuration. No rules file yields the zero config, which runs
// with engine defaults over all shared fields.
func (a *App) loadRules(rulesFile string) (reconcile.Config, *ingest.RuleFile, error) {
	rules, err := a.readRules(rulesFile)
	if err != nil || rules == nil {
		return reconcile.Config{}, nil, err
	}
	return rules.Config(), rules, nil
}

func (a *App) loadDuplicateRules(rulesFile string) (reconcile.DuplicateConfig, *ingest.RuleFile, error) {
	rules, err := a.readRules(rulesFile)
	if err != nil || rules == nil {
		return reconcile.DuplicateConfig{}, nil, err
	}
	return rules.DuplicateConfig(), rules, nil
}

func (a *App) readRules(rulesFile string) (*ingest.RuleFile, error) {
	if rulesFile == "" {
		rulesFile = a.config.RulesFile
	}
	if rulesFile == "" {
		return nil, nil
	}
	return ingest.LoadRules(rulesFile)
}

// keyColumn resolves the key column: flag, then rules file, then app
// config (which defaults to "key").
func (a *App) keyColumn(flag string, rules *ingest.RuleFile) string {
	if flag != "" {
		return flag
	}
	if rules != nil && rules.KeyColumn != "" {
		return rules.KeyColumn
	}
	return a.config.KeyColumn
}
